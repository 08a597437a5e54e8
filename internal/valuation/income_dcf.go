package valuation

import (
	"fmt"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/orefront/mineral-valuation/pkg/finance"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// IncomeDCFInput holds the explicit inputs for the income-approach DCF.
// Capital items are in $ millions; prices and unit costs in raw dollars per
// commodity unit.
type IncomeDCFInput struct {
	Commodity        string
	AnnualProduction float64
	CommodityPrice   float64
	MineLifeYears    int
	InitialCapex     float64
	SustainingCapex  float64
	UnitCost         float64
	RoyaltyRate      float64
	TaxRate          float64
	DiscountRate     float64
	RampUpYears      int
	ClosureCost      float64
	WorkingCapital   float64
	PriceEscalation  float64
}

// YearCashFlow is one row of the projected cash-flow schedule. Production is
// in commodity units and Price in raw dollars; all other columns are in
// $ millions.
type YearCashFlow struct {
	Year               int     `json:"year"`
	Production         float64 `json:"production"`
	Price              float64 `json:"price"`
	RevenueMillions    float64 `json:"revenue_millions"`
	OpexMillions       float64 `json:"opex_millions"`
	RoyaltyMillions    float64 `json:"royalty_millions"`
	EBITDAMillions     float64 `json:"ebitda_millions"`
	SustainingMillions float64 `json:"sustaining_millions"`
	TaxMillions        float64 `json:"tax_millions"`
	FCFMillions        float64 `json:"fcf_millions"`
}

// IncomeDCFResult is the income-approach payload.
type IncomeDCFResult struct {
	NPVMillions   float64 `json:"npv_millions"`
	IRR           float64 `json:"irr"`
	IRRDetermined bool    `json:"irr_determined"`
	PaybackYears  float64 `json:"payback_years"`
	PaybackFound  bool    `json:"payback_found"`
	DiscountRate  float64 `json:"discount_rate"`
	MineLifeYears int     `json:"mine_life_years"`

	Commodity        string  `json:"commodity"`
	ProductionUnit   string  `json:"production_unit"`
	CommodityPrice   float64 `json:"commodity_price"`
	AnnualProduction float64 `json:"annual_production"`
	UnitCost         float64 `json:"unit_cost"`
	MarginPerUnit    float64 `json:"margin_per_unit"`
	MarginPercent    float64 `json:"margin_percent"`

	InitialCapexMillions    float64 `json:"initial_capex_millions"`
	SustainingCapexMillions float64 `json:"sustaining_capex_millions"`
	TotalCapexMillions      float64 `json:"total_capex_millions"`
	WorkingCapitalMillions  float64 `json:"working_capital_millions"`
	ClosureCostMillions     float64 `json:"closure_cost_millions"`

	TotalRevenueMillions      float64 `json:"total_revenue_millions"`
	TotalOpexMillions         float64 `json:"total_opex_millions"`
	TotalEBITDAMillions       float64 `json:"total_ebitda_millions"`
	TotalFreeCashFlowMillions float64 `json:"total_free_cash_flow_millions"`

	CumulativeProduction float64 `json:"cumulative_production"`
	RampUpYears          int     `json:"ramp_up_years"`
	SteadyStateYears     int     `json:"steady_state_years"`

	Schedule         []YearCashFlow     `json:"cash_flow_schedule"`
	Sensitivity      []SensitivityPoint `json:"sensitivity_analysis"`
	Recommendation   Recommendation     `json:"recommendation"`
	MethodologyNotes []string           `json:"methodology_notes"`
}

// IncomeDCF projects the base-case cash-flow schedule for the record and
// computes NPV, IRR, and payback. It is the first method to run; its result
// feeds the probability-weighted DCF and decision-tree engines.
func (e *Engine) IncomeDCF(record extraction.Record) Result[IncomeDCFResult] {
	if missing := coreInputGate(record); len(missing) > 0 {
		return failed[IncomeDCFResult](insufficient(MethodIncomeDCF, missing,
			"cannot calculate DCF: all three core inputs (annual production, commodity price, operating cost/AISC) are required"))
	}

	economics := record.Economics
	input := IncomeDCFInput{
		Commodity:        record.Commodity(),
		AnnualProduction: record.Production.AnnualProduction,
		CommodityPrice:   economics.CommodityPrice,
		MineLifeYears:    positiveYearsOr(economics.MineLife, constants.DefaultMineLifeYears),
		InitialCapex:     economics.InitialCapex,
		SustainingCapex:  economics.SustainingCapex,
		UnitCost:         economics.UnitCost(),
		RoyaltyRate:      rateOr(economics.RoyaltyRate, constants.DefaultRoyaltyRate),
		TaxRate:          rateOr(economics.TaxRate, constants.DefaultTaxRate),
		DiscountRate:     rateOr(economics.DiscountRate, e.defaultDiscount()),
		RampUpYears:      constants.DefaultRampUpYears,
		ClosureCost:      economics.ClosureCost,
		WorkingCapital:   economics.WorkingCapital,
		PriceEscalation:  constants.DefaultPriceEscalation,
	}

	result := CalculateIncomeDCF(e.logger, input)
	return succeeded(result)
}

// CalculateIncomeDCF builds the year-indexed schedule from the pre-development
// year through the end of mine life and derives the valuation metrics. The
// caller is responsible for the core-input gate; production, price, and unit
// cost must be strictly positive.
func CalculateIncomeDCF(logger *zap.Logger, in IncomeDCFInput) *IncomeDCFResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in.RampUpYears < 1 {
		in.RampUpYears = 1
	}
	if in.RampUpYears > in.MineLifeYears {
		in.RampUpYears = in.MineLifeYears
	}

	var (
		schedule             []YearCashFlow
		years                []int
		flows                []float64
		cumulativeProduction float64
		totals               struct{ revenue, opex, ebitda, fcf float64 }
	)

	for year := -1; year <= in.MineLifeYears; year++ {
		row := YearCashFlow{Year: year, Price: in.CommodityPrice}

		switch {
		case year == -1:
			// Pre-development: deploy working capital and initial capex.
			row.FCFMillions = -in.InitialCapex - in.WorkingCapital
		case year == 0:
			// Construction completion tranche.
			if in.InitialCapex > 0 {
				row.FCFMillions = -in.InitialCapex * 0.5
			}
		default:
			rampFactor := 1.0
			if year <= in.RampUpYears {
				rampFactor = float64(year) / float64(in.RampUpYears)
			}
			row.Production = in.AnnualProduction * rampFactor
			row.Price = finance.EscalatedPrice(in.CommodityPrice, in.PriceEscalation, year)
			revenue := row.Production * row.Price / constants.Million
			opex := row.Production * in.UnitCost / constants.Million
			royalty := revenue * in.RoyaltyRate
			ebitda := revenue - opex - royalty
			sustaining := in.SustainingCapex * rampFactor
			taxable := ebitda - sustaining
			tax := 0.0
			if taxable > 0 {
				tax = taxable * in.TaxRate
			}
			fcf := ebitda - sustaining - tax
			if year == in.MineLifeYears {
				// Terminal adjustments: closure spend and working capital release.
				fcf += -in.ClosureCost + in.WorkingCapital
			}

			row.RevenueMillions = revenue
			row.OpexMillions = opex
			row.RoyaltyMillions = royalty
			row.EBITDAMillions = ebitda
			row.SustainingMillions = sustaining
			row.TaxMillions = tax
			row.FCFMillions = fcf

			cumulativeProduction += row.Production
			totals.revenue += revenue
			totals.opex += opex
			totals.ebitda += ebitda
		}

		totals.fcf += row.FCFMillions
		schedule = append(schedule, row)
		years = append(years, year)
		flows = append(flows, row.FCFMillions)
	}

	npv := finance.NPV(years, flows, in.DiscountRate)
	irr, irrOK := finance.IRR(years, flows, constants.NPVTolerance)
	payback, paybackOK := finance.Payback(years, flows)

	logger.Debug("income DCF schedule complete",
		zap.String("op", "valuation.CalculateIncomeDCF"),
		zap.Float64("npvMillions", npv),
		zap.Bool("irrDetermined", irrOK),
	)

	unit := CommodityUnit(in.Commodity)
	result := &IncomeDCFResult{
		NPVMillions:   mathutil.Round(npv),
		IRR:           irr,
		IRRDetermined: irrOK,
		PaybackYears:  payback,
		PaybackFound:  paybackOK,
		DiscountRate:  in.DiscountRate,
		MineLifeYears: in.MineLifeYears,

		Commodity:        in.Commodity,
		ProductionUnit:   unit,
		CommodityPrice:   in.CommodityPrice,
		AnnualProduction: in.AnnualProduction,
		UnitCost:         in.UnitCost,
		MarginPerUnit:    mathutil.Round(in.CommodityPrice - in.UnitCost),
		MarginPercent:    mathutil.Round((in.CommodityPrice - in.UnitCost) / in.CommodityPrice * constants.PercentageMultiplier),

		InitialCapexMillions:    in.InitialCapex,
		SustainingCapexMillions: in.SustainingCapex,
		TotalCapexMillions:      mathutil.Round(in.InitialCapex + in.SustainingCapex*float64(in.MineLifeYears-in.RampUpYears)),
		WorkingCapitalMillions:  in.WorkingCapital,
		ClosureCostMillions:     in.ClosureCost,

		TotalRevenueMillions:      mathutil.Round(totals.revenue),
		TotalOpexMillions:         mathutil.Round(totals.opex),
		TotalEBITDAMillions:       mathutil.Round(totals.ebitda),
		TotalFreeCashFlowMillions: mathutil.Round(totals.fcf),

		CumulativeProduction: cumulativeProduction,
		RampUpYears:          in.RampUpYears,
		SteadyStateYears:     in.MineLifeYears - in.RampUpYears,

		Schedule:       schedule,
		Sensitivity:    incomeDCFSensitivity(npv),
		Recommendation: incomeDCFRecommendation(npv, irr, irrOK),
	}

	result.MethodologyNotes = []string{
		fmt.Sprintf("Base case DCF at %.0f%% discount rate over %d year mine life", in.DiscountRate*100, in.MineLifeYears),
		fmt.Sprintf("Production ramp-up over %d years to steady state", in.RampUpYears),
		fmt.Sprintf("Unit cost of $%.2f/%s vs $%.2f commodity price", in.UnitCost, unit, in.CommodityPrice),
		"Tax rate applied after sustaining capital deductions",
	}

	return result
}

// incomeDCFSensitivity builds the +/-10%/20% price and opex shock table using
// the linear NPV scalings of the base model (price elasticity 2.5x, opex
// elasticity 1.5x).
func incomeDCFSensitivity(npv float64) []SensitivityPoint {
	shocks := []float64{-0.20, -0.10, 0.10, 0.20}
	points := make([]SensitivityPoint, 0, len(shocks)*2)
	for _, shock := range shocks {
		points = append(points, SensitivityPoint{
			Label:       fmt.Sprintf("Price %+.0f%%", shock*100),
			NPVMillions: mathutil.Round(npv * (1 + shock*2.5)),
		})
	}
	for _, shock := range shocks {
		points = append(points, SensitivityPoint{
			Label:       fmt.Sprintf("OPEX %+.0f%%", shock*100),
			NPVMillions: mathutil.Round(npv * (1 - shock*1.5)),
		})
	}
	return points
}

func incomeDCFRecommendation(npv, irr float64, irrOK bool) Recommendation {
	if npv <= 0 {
		return Recommendation{
			Text:     "Not Economic - NPV is negative at current assumptions",
			Severity: SeverityRed,
		}
	}
	switch {
	case irrOK && irr >= 0.25:
		return Recommendation{
			Text:     "Strong Investment - Excellent returns exceed hurdle rates",
			Severity: SeverityGreen,
		}
	case irrOK && irr >= 0.15:
		return Recommendation{
			Text:     "Positive Investment - Solid risk-adjusted returns",
			Severity: SeverityBlue,
		}
	}
	return Recommendation{
		Text:     "Marginal - Returns may not justify risk",
		Severity: SeverityOrange,
	}
}

// coreInputGate names the missing members of the three core inputs. Every
// strict method fails with exactly these names when any is absent.
func coreInputGate(record extraction.Record) []string {
	var missing []string
	if record.Production.AnnualProduction <= 0 {
		missing = append(missing, InputAnnualProduction)
	}
	if record.Economics.CommodityPrice <= 0 {
		missing = append(missing, InputCommodityPrice)
	}
	if record.Economics.UnitCost() <= 0 {
		missing = append(missing, InputOperatingCost)
	}
	return missing
}

// positiveYearsOr returns years as an int when positive, else the default.
func positiveYearsOr(years float64, def int) int {
	if years > 0 {
		return int(years)
	}
	return def
}

// rateOr normalizes a possibly-percentage rate and falls back to a default
// for absent values. Used only for non-core inputs.
func rateOr(rate, def float64) float64 {
	if rate <= 0 {
		return def
	}
	return mathutil.FractionalRate(rate)
}
