// Package constants provides shared constants for the mineral-valuation engine.
package constants

// Financial constants
const (
	// Million converts between raw currency units and $ millions.
	Million = 1_000_000.0

	// PercentageMultiplier is used for percentage conversions.
	PercentageMultiplier = 100.0

	// GramsPerTroyOunce converts tonnage-and-grade arithmetic into troy
	// ounces for precious metals.
	GramsPerTroyOunce = 31.1035

	// DaysPerYear is used when annualizing daily plant throughput.
	DaysPerYear = 365.0

	// NPVTolerance is the convergence tolerance for the IRR solver, in
	// $ millions.
	NPVTolerance = 0.01

	// ValueTolerance is the tolerance for monetary comparisons, in $ millions.
	ValueTolerance = 0.01
)

// Engine defaults for non-core inputs. The three core inputs (annual
// production, commodity price, operating cost/AISC) never default.
const (
	DefaultMineLifeYears   = 15
	DefaultRampUpYears     = 2
	DefaultRoyaltyRate     = 0.03
	DefaultTaxRate         = 0.25
	DefaultDiscountRate    = 0.08
	DefaultPriceEscalation = 0.02
)

// Monte Carlo constants
const (
	// DefaultSimulations is the default number of Monte Carlo price paths.
	DefaultSimulations = 10_000

	// MaxSimulations caps a pathological caller-supplied simulation count.
	MaxSimulations = 200_000

	// MeanReversionSpeed is the annual reversion speed of the log-price
	// process toward the log of the spot price.
	MeanReversionSpeed = 0.15

	// PriceFloorFraction floors simulated prices at this fraction of spot.
	PriceFloorFraction = 0.10

	// HurdleCapexFraction defines the simple NPV hurdle as a fraction of
	// initial capex.
	HurdleCapexFraction = 0.10
)

// Cost-approach constants
const (
	// DefaultRating is the 1-4 geoscientific rating assumed when a factor
	// cannot be inferred from the record.
	DefaultRating = 2

	// DefaultAreaHectares is assumed when no property area is reported.
	DefaultAreaHectares = 1000.0

	// ExplorationInflationRate adjusts historical exploration spend to
	// present-day dollars.
	ExplorationInflationRate = 0.03

	// DrillCostPerMeterMillions estimates exploration spend ($ millions) from
	// drill meters when no spend is reported.
	DrillCostPerMeterMillions = 0.0003

	// HectaresPerKm2 converts reported property area to hectares.
	HectaresPerKm2 = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format.
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format.
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format.
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name.
	DefaultConfigFile = "config.yaml"
)
