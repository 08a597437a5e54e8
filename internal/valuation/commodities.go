package valuation

// Static commodity reference tables. Prices are never defaulted from these
// tables; only units and volatility assumptions live here.

var commodityUnits = map[string]string{
	"gold":      "oz",
	"silver":    "oz",
	"copper":    "lb",
	"zinc":      "lb",
	"nickel":    "lb",
	"lithium":   "tonne",
	"uranium":   "lb",
	"platinum":  "oz",
	"palladium": "oz",
}

// Annual price volatility (standard deviation of the log process) by
// commodity, used by the Monte Carlo engine.
var commodityVolatility = map[string]float64{
	"gold":    0.15,
	"silver":  0.25,
	"copper":  0.20,
	"zinc":    0.22,
	"nickel":  0.28,
	"lithium": 0.35,
	"uranium": 0.30,
}

const fallbackVolatility = 0.20

// CommodityUnit returns the production unit for a commodity, defaulting to
// "units".
func CommodityUnit(commodity string) string {
	if unit, ok := commodityUnits[commodity]; ok {
		return unit
	}
	return "units"
}

// VolatilityFor returns the annual price volatility assumption for a
// commodity.
func VolatilityFor(commodity string) float64 {
	if vol, ok := commodityVolatility[commodity]; ok {
		return vol
	}
	return fallbackVolatility
}
