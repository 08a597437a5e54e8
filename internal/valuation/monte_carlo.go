package valuation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// MonteCarloInput holds the explicit inputs for the risk simulation.
// InitialCapex is in $ millions; SpotPrice and UnitCost in raw dollars per
// commodity unit.
type MonteCarloInput struct {
	Commodity        string
	SpotPrice        float64
	AnnualProduction float64
	UnitCost         float64
	InitialCapex     float64
	ProjectLifeYears int
	DiscountRate     float64
	RoyaltyRate      float64
	TaxRate          float64
	Simulations      int
	// Volatility overrides the commodity volatility table when positive.
	Volatility float64
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64
}

// NPVDistribution holds the statistics of the simulated NPV sample set, in
// $ millions.
type NPVDistribution struct {
	MeanMillions     float64 `json:"mean_millions"`
	MedianMillions   float64 `json:"median_millions"`
	StdDevMillions   float64 `json:"std_dev_millions"`
	P10Millions      float64 `json:"p10_millions"`
	P25Millions      float64 `json:"p25_millions"`
	P75Millions      float64 `json:"p75_millions"`
	P90Millions      float64 `json:"p90_millions"`
	VaR5Millions     float64 `json:"var_5_millions"`
	ProbPositive     float64 `json:"prob_positive"`
	ProbExceedHurdle float64 `json:"prob_exceed_hurdle"`
}

// PriceStatistics summarizes the simulated final-year prices, in raw dollars.
type PriceStatistics struct {
	Initial   float64 `json:"initial"`
	MeanFinal float64 `json:"mean_final"`
	StdFinal  float64 `json:"std_final"`
	P10Final  float64 `json:"p10_final"`
	P90Final  float64 `json:"p90_final"`
}

// MonteCarloResult is the risk-simulation payload.
type MonteCarloResult struct {
	CommodityName        string  `json:"commodity"`
	SpotPrice            float64 `json:"spot_price"`
	AnnualProduction     float64 `json:"annual_production"`
	UnitCost             float64 `json:"unit_cost"`
	InitialCapexMillions float64 `json:"initial_capex_millions"`
	ProjectLifeYears     int     `json:"project_life_years"`
	DiscountRate         float64 `json:"discount_rate"`
	Volatility           float64 `json:"volatility"`
	Simulations          int     `json:"num_simulations"`

	NPVStats   NPVDistribution `json:"npv_statistics"`
	PriceStats PriceStatistics `json:"price_statistics"`

	RealOptionsValueMillions float64 `json:"real_options_value_millions"`
	OptionPremiumPct         float64 `json:"option_premium_pct"`

	Recommendation   Recommendation `json:"recommendation"`
	MethodologyNotes []string       `json:"methodology_notes"`
}

// MonteCarlo simulates commodity price paths and derives the NPV probability
// distribution for the record. The strict core-input gate applies before any
// simulation runs; the engine never simulates with fabricated inputs.
func (e *Engine) MonteCarlo(record extraction.Record) Result[MonteCarloResult] {
	if missing := coreInputGate(record); len(missing) > 0 {
		return failed[MonteCarloResult](insufficient(MethodMonteCarlo, missing,
			"cannot run Monte Carlo: core inputs are required before simulating"))
	}

	economics := record.Economics
	result := RunMonteCarlo(e.logger, MonteCarloInput{
		Commodity:        record.Commodity(),
		SpotPrice:        economics.CommodityPrice,
		AnnualProduction: record.Production.AnnualProduction,
		UnitCost:         economics.UnitCost(),
		InitialCapex:     economics.InitialCapex,
		ProjectLifeYears: positiveYearsOr(economics.MineLife, constants.DefaultMineLifeYears),
		DiscountRate:     rateOr(economics.DiscountRate, e.defaultDiscount()),
		RoyaltyRate:      rateOr(economics.RoyaltyRate, constants.DefaultRoyaltyRate),
		TaxRate:          rateOr(economics.TaxRate, constants.DefaultTaxRate),
		Simulations:      e.simulations,
		Volatility:       e.volatilityOverride,
		Seed:             e.seed,
	})
	return succeeded(result)
}

// RunMonteCarlo runs the full simulation. Price paths follow a mean-reverting
// log process (exponential Ornstein-Uhlenbeck): each year's log price reverts
// toward the log of the spot price at a fixed speed with volatility-scaled
// normal shocks, floored at 10% of spot to avoid degenerate paths.
func RunMonteCarlo(logger *zap.Logger, in MonteCarloInput) *MonteCarloResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in.Simulations <= 0 {
		in.Simulations = constants.DefaultSimulations
	}
	in.Simulations = mathutil.ClampInt(in.Simulations, 1, constants.MaxSimulations)
	if in.ProjectLifeYears < 1 {
		in.ProjectLifeYears = 1
	}

	volatility := in.Volatility
	if volatility <= 0 {
		volatility = VolatilityFor(in.Commodity)
	}

	seed := in.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	capexRaw := in.InitialCapex * constants.Million
	logSpot := math.Log(in.SpotPrice)
	priceFloor := in.SpotPrice * constants.PriceFloorFraction
	annualOpex := in.AnnualProduction * in.UnitCost

	npvs := make([]float64, in.Simulations)
	finalPrices := make([]float64, in.Simulations)

	for sim := 0; sim < in.Simulations; sim++ {
		price := in.SpotPrice
		npv := -capexRaw
		for year := 1; year <= in.ProjectLifeYears; year++ {
			if year > 1 {
				logPrice := math.Log(math.Max(price, in.SpotPrice*0.01))
				logPrice += constants.MeanReversionSpeed*(logSpot-logPrice) +
					volatility*rng.NormFloat64()
				price = math.Max(math.Exp(logPrice), priceFloor)
			}

			revenue := in.AnnualProduction * price
			royalty := revenue * in.RoyaltyRate
			ebitda := revenue - royalty - annualOpex
			cashFlow := ebitda
			if ebitda > 0 {
				cashFlow = ebitda * (1 - in.TaxRate)
			}
			npv += cashFlow * math.Pow(1+in.DiscountRate, -float64(year))
		}
		npvs[sim] = npv / constants.Million
		finalPrices[sim] = price
	}

	sort.Float64s(npvs)
	sort.Float64s(finalPrices)

	mean := stat.Mean(npvs, nil)
	stdDev := 0.0
	if len(npvs) > 1 {
		stdDev = stat.StdDev(npvs, nil)
	}

	hurdleMillions := in.InitialCapex * constants.HurdleCapexFraction
	positive, aboveHurdle := 0, 0
	for _, npv := range npvs {
		if npv > 0 {
			positive++
		}
		if npv > hurdleMillions {
			aboveHurdle++
		}
	}
	n := float64(len(npvs))

	stats := NPVDistribution{
		MeanMillions:     mathutil.Round(mean),
		MedianMillions:   mathutil.Round(stat.Quantile(0.50, stat.Empirical, npvs, nil)),
		StdDevMillions:   mathutil.Round(stdDev),
		P10Millions:      mathutil.Round(stat.Quantile(0.10, stat.Empirical, npvs, nil)),
		P25Millions:      mathutil.Round(stat.Quantile(0.25, stat.Empirical, npvs, nil)),
		P75Millions:      mathutil.Round(stat.Quantile(0.75, stat.Empirical, npvs, nil)),
		P90Millions:      mathutil.Round(stat.Quantile(0.90, stat.Empirical, npvs, nil)),
		VaR5Millions:     mathutil.Round(stat.Quantile(0.05, stat.Empirical, npvs, nil)),
		ProbPositive:     float64(positive) / n,
		ProbExceedHurdle: float64(aboveHurdle) / n,
	}

	// Heuristic real-options premium over the static mean: development
	// optionality (defer, expand, abandon) adds value beyond static NPV.
	premium := math.Abs(mean) * 0.20
	if mean > 0 {
		premium = math.Abs(mean) * 0.35
	}
	realOptions := mean + premium
	premiumPct := 0.0
	if mean > 0 {
		premiumPct = (realOptions/math.Max(mean, 1) - 1) * constants.PercentageMultiplier
	}

	logger.Debug("Monte Carlo simulation complete",
		zap.String("op", "valuation.RunMonteCarlo"),
		zap.Int("simulations", in.Simulations),
		zap.Float64("meanNPVMillions", stats.MeanMillions),
		zap.Float64("probPositive", stats.ProbPositive),
	)

	return &MonteCarloResult{
		CommodityName:        in.Commodity,
		SpotPrice:            in.SpotPrice,
		AnnualProduction:     in.AnnualProduction,
		UnitCost:             in.UnitCost,
		InitialCapexMillions: in.InitialCapex,
		ProjectLifeYears:     in.ProjectLifeYears,
		DiscountRate:         in.DiscountRate,
		Volatility:           volatility,
		Simulations:          in.Simulations,

		NPVStats: stats,
		PriceStats: PriceStatistics{
			Initial:   in.SpotPrice,
			MeanFinal: mathutil.Round(stat.Mean(finalPrices, nil)),
			StdFinal:  mathutil.Round(sampleStdDev(finalPrices)),
			P10Final:  mathutil.Round(stat.Quantile(0.10, stat.Empirical, finalPrices, nil)),
			P90Final:  mathutil.Round(stat.Quantile(0.90, stat.Empirical, finalPrices, nil)),
		},

		RealOptionsValueMillions: mathutil.Round(realOptions),
		OptionPremiumPct:         mathutil.Round(premiumPct),

		Recommendation: monteCarloRecommendation(mean, stats.ProbPositive),
		MethodologyNotes: []string{
			fmt.Sprintf("Mean-reverting log-price simulation with %.0f%% annual volatility over %d years", volatility*100, in.ProjectLifeYears),
			fmt.Sprintf("%d price paths; simulated prices floored at %.0f%% of spot", in.Simulations, constants.PriceFloorFraction*100),
			fmt.Sprintf("Hurdle defined as %.0f%% of initial capex", constants.HurdleCapexFraction*100),
			"Real options premium reflects embedded flexibility beyond static NPV",
		},
	}
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

func monteCarloRecommendation(mean, probPositive float64) Recommendation {
	switch {
	case mean > 0 && probPositive > 0.70:
		return Recommendation{
			Text:     "Favorable Risk Profile - High probability of positive returns",
			Severity: SeverityGreen,
		}
	case mean > 0 && probPositive > 0.50:
		return Recommendation{
			Text:     "Moderate Risk - Positive expected value with significant downside",
			Severity: SeverityBlue,
		}
	case probPositive > 0.30:
		return Recommendation{
			Text:     "High Risk - Substantial probability of loss",
			Severity: SeverityOrange,
		}
	}
	return Recommendation{
		Text:     "Very High Risk - Majority of scenarios show losses",
		Severity: SeverityRed,
	}
}
