package extraction

import (
	"fmt"

	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// Normalize derives missing core fields from related fields where possible and
// returns a normalized copy of the record together with a note per derivation
// made. Fields that already hold a positive value are never overwritten, and
// no field is ever set to a non-derived guess.
func Normalize(logger *zap.Logger, record Record) (Record, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var derivations []string
	note := func(format string, args ...any) {
		d := fmt.Sprintf(format, args...)
		derivations = append(derivations, d)
		logger.Debug(d, zap.String("op", "extraction.Normalize"))
	}

	economics := &record.Economics
	production := &record.Production

	// Annual production from life-of-mine production over mine life.
	if production.AnnualProduction <= 0 {
		if production.LifeOfMineProduction > 0 && economics.MineLife > 0 {
			production.AnnualProduction = production.LifeOfMineProduction / economics.MineLife
			note("Derived annual_production (%.0f) from life_of_mine_production / mine_life", production.AnnualProduction)
		}
	}

	// Annual production from throughput, grade, and recovery. The troy-ounce
	// conversion targets precious metals, the dominant case in the corpus.
	if production.AnnualProduction <= 0 {
		throughput := production.ThroughputTPD
		grade := record.Resources.TotalMIGrade
		recovery := mathutil.FractionalRate(production.RecoveryRate)
		if throughput > 0 && grade > 0 && recovery > 0 {
			production.AnnualProduction = throughput * grade * recovery *
				constants.DaysPerYear / constants.GramsPerTroyOunce
			note("Calculated annual_production (%.0f oz) from throughput * grade * recovery", production.AnnualProduction)
		}
	}

	// Commodity price from the stated price assumption.
	if economics.CommodityPrice <= 0 && economics.CommodityPriceAssumption > 0 {
		economics.CommodityPrice = economics.CommodityPriceAssumption
		note("Used commodity_price_assumption ($%.2f) as commodity_price", economics.CommodityPrice)
	}

	// Commodity price from annual revenue over annual production. Revenue is
	// reported in $ millions, production in commodity units.
	if economics.CommodityPrice <= 0 {
		if economics.AnnualRevenue > 0 && production.AnnualProduction > 0 {
			economics.CommodityPrice = economics.AnnualRevenue * constants.Million / production.AnnualProduction
			note("Calculated commodity_price ($%.0f) from annual_revenue / annual_production", economics.CommodityPrice)
		}
	}

	// Operating cost from annual opex over annual production.
	if economics.AllInSustainingCost <= 0 && economics.OperatingCost <= 0 {
		if economics.AnnualOpex > 0 && production.AnnualProduction > 0 {
			economics.OperatingCost = economics.AnnualOpex * constants.Million / production.AnnualProduction
			note("Calculated operating_cost ($%.0f/unit) from annual_opex / annual_production", economics.OperatingCost)
		}
	}

	// AISC from operating cost plus a 15% sustaining allowance.
	if economics.AllInSustainingCost <= 0 && economics.OperatingCost > 0 {
		economics.AllInSustainingCost = economics.OperatingCost * 1.15
		note("Estimated AISC ($%.0f/unit) as operating_cost + 15%%", economics.AllInSustainingCost)
	}

	return record, derivations
}
