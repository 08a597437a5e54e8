package valuation

import (
	"fmt"
	"strings"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// JurisdictionTier is a country-risk classification.
type JurisdictionTier string

// Jurisdiction tiers from lowest to highest risk.
const (
	Tier1 JurisdictionTier = "tier_1"
	Tier2 JurisdictionTier = "tier_2"
	Tier3 JurisdictionTier = "tier_3"
	Tier4 JurisdictionTier = "tier_4"
)

// ParseJurisdictionTier infers the risk tier from a free-form jurisdiction
// string. Unknown jurisdictions default to tier 2.
func ParseJurisdictionTier(jurisdiction string) JurisdictionTier {
	lower := strings.ToLower(jurisdiction)
	switch {
	case containsAny(lower, "canada", "australia", "usa", "united states", "tier 1", "tier1", "tier_1"):
		return Tier1
	case containsAny(lower, "chile", "peru", "mexico", "tier 2", "tier2", "tier_2"):
		return Tier2
	case containsAny(lower, "tier 3", "tier3", "tier_3", "africa", "asia"):
		return Tier3
	case containsAny(lower, "tier 4", "tier4", "tier_4"):
		return Tier4
	}
	return Tier2
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// gateProbabilities are the six stage-gate success probabilities for a
// development stage, before risk adjustment.
type gateProbabilities struct {
	ExplorationSuccess   float64
	ResourceDefinition   float64
	PermittingApproval   float64
	FinancingSecured     float64
	ConstructionComplete float64
	ProductionRamp       float64
}

var stageSuccessProbabilities = map[extraction.Stage]gateProbabilities{
	extraction.StageGrassroots:          {0.10, 0.30, 0.60, 0.50, 0.85, 0.90},
	extraction.StageEarlyExploration:    {0.25, 0.45, 0.65, 0.55, 0.85, 0.90},
	extraction.StageAdvancedExploration: {0.50, 0.65, 0.70, 0.60, 0.85, 0.92},
	extraction.StagePreFeasibility:      {0.80, 0.85, 0.75, 0.65, 0.88, 0.93},
	extraction.StageFeasibility:         {0.90, 0.92, 0.80, 0.70, 0.90, 0.95},
	extraction.StagePermitted:           {1.00, 1.00, 0.95, 0.75, 0.92, 0.95},
	extraction.StageConstruction:        {1.00, 1.00, 1.00, 0.90, 0.93, 0.96},
	extraction.StageProduction:          {1.00, 1.00, 1.00, 1.00, 1.00, 0.97},
}

var jurisdictionAdjustments = map[JurisdictionTier]float64{
	Tier1: 1.00,
	Tier2: 0.90,
	Tier3: 0.75,
	Tier4: 0.55,
}

var commodityRiskAdjustments = map[string]float64{
	"gold":       1.00,
	"silver":     0.95,
	"copper":     0.95,
	"lithium":    0.85,
	"nickel":     0.90,
	"zinc":       0.92,
	"uranium":    0.80,
	"rare_earth": 0.75,
}

var complexityAdjustments = map[extraction.Complexity]float64{
	extraction.ComplexitySimple:        1.00,
	extraction.ComplexityModerate:      0.92,
	extraction.ComplexityComplex:       0.80,
	extraction.ComplexityHighlyComplex: 0.65,
}

const (
	fallbackJurisdictionAdj = 0.85
	fallbackCommodityAdj    = 0.90

	// Adjusted per-gate probabilities are capped below certainty.
	gateProbabilityCap = 0.99
)

// StageProbability is one risk-adjusted gate probability.
type StageProbability struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// RiskAdjustments records the three multipliers applied to the base gate
// probabilities.
type RiskAdjustments struct {
	Jurisdiction float64 `json:"jurisdiction"`
	Commodity    float64 `json:"commodity"`
	Technical    float64 `json:"technical"`
	Combined     float64 `json:"combined"`
}

// RiskSensitivityPoint is a base-NPV shock with its risk-adjusted value.
type RiskSensitivityPoint struct {
	Label                   string  `json:"label"`
	BaseNPVMillions         float64 `json:"base_npv_millions"`
	RiskAdjustedNPVMillions float64 `json:"risk_adjusted_npv_millions"`
}

// RiskAdjustedResult is the probability-weighted DCF payload.
type RiskAdjustedResult struct {
	BaseNPVMillions  float64 `json:"base_npv_millions"`
	BaseIRR          float64 `json:"base_irr"`
	ProjectLifeYears int     `json:"project_life_years"`
	DiscountRate     float64 `json:"discount_rate"`

	Stage                 extraction.Stage   `json:"stage"`
	JurisdictionTier      JurisdictionTier   `json:"jurisdiction_tier"`
	StageProbabilities    []StageProbability `json:"stage_probabilities"`
	CumulativeProbability float64            `json:"cumulative_probability"`
	Adjustments           RiskAdjustments    `json:"risk_adjustments"`

	RiskAdjustedNPVMillions float64 `json:"risk_adjusted_npv_millions"`
	NPVDiscountFromBasePct  float64 `json:"npv_discount_from_base_pct"`
	RiskAdjustedIRR         float64 `json:"risk_adjusted_irr"`

	Sensitivity      []RiskSensitivityPoint `json:"sensitivity_analysis"`
	Recommendation   Recommendation         `json:"recommendation"`
	MethodologyNotes []string               `json:"methodology_notes"`
}

// ProbabilityDCF multiplies the Income DCF base NPV by the cumulative
// stage-gate success probability. It never uses a document-reported NPV: the
// base value comes from the upstream result, and an upstream failure is
// propagated rather than recomputed.
func (e *Engine) ProbabilityDCF(record extraction.Record, income Result[IncomeDCFResult]) Result[RiskAdjustedResult] {
	baseNPV, baseIRR, err := baseValueFromIncome(MethodProbabilityDCF, record, income)
	if err != nil {
		return failed[RiskAdjustedResult](err)
	}
	if baseNPV <= 0 {
		return failed[RiskAdjustedResult](insufficient(MethodProbabilityDCF, nil,
			"calculated base NPV is zero or negative; risk weighting is not meaningful"))
	}

	result := CalculateProbabilityWeightedDCF(e.logger, ProbabilityDCFInput{
		BaseNPV:          baseNPV,
		BaseIRR:          baseIRR,
		Stage:            record.Stage(),
		JurisdictionTier: ParseJurisdictionTier(record.ProjectInfo.Jurisdiction),
		Commodity:        record.Commodity(),
		Complexity:       record.Complexity(),
		ProjectLifeYears: positiveYearsOr(record.Economics.MineLife, constants.DefaultMineLifeYears),
		DiscountRate:     rateOr(record.Economics.DiscountRate, e.defaultDiscount()),
	})
	return succeeded(result)
}

// ProbabilityDCFInput holds the explicit inputs for the probability-weighted
// DCF. BaseNPV is in $ millions.
type ProbabilityDCFInput struct {
	BaseNPV          float64
	BaseIRR          float64
	Stage            extraction.Stage
	JurisdictionTier JurisdictionTier
	Commodity        string
	Complexity       extraction.Complexity
	ProjectLifeYears int
	DiscountRate     float64
}

// CalculateProbabilityWeightedDCF applies the adjusted stage-gate probability
// chain to the base NPV.
func CalculateProbabilityWeightedDCF(logger *zap.Logger, in ProbabilityDCFInput) *RiskAdjustedResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, ok := stageSuccessProbabilities[in.Stage]
	if !ok {
		base = stageSuccessProbabilities[extraction.StageEarlyExploration]
	}

	jurAdj := fallbackJurisdictionAdj
	if adj, found := jurisdictionAdjustments[in.JurisdictionTier]; found {
		jurAdj = adj
	}
	commAdj := fallbackCommodityAdj
	if adj, found := commodityRiskAdjustments[in.Commodity]; found {
		commAdj = adj
	}
	techAdj := complexityAdjustments[extraction.ComplexityModerate]
	if adj, found := complexityAdjustments[in.Complexity]; found {
		techAdj = adj
	}
	combined := jurAdj * commAdj * techAdj

	gates := []StageProbability{
		{Name: "exploration_success", Probability: base.ExplorationSuccess},
		{Name: "resource_definition", Probability: base.ResourceDefinition},
		{Name: "permitting_approval", Probability: base.PermittingApproval},
		{Name: "financing_secured", Probability: base.FinancingSecured},
		{Name: "construction_complete", Probability: base.ConstructionComplete},
		{Name: "production_ramp", Probability: base.ProductionRamp},
	}

	cumulative := 1.0
	for i := range gates {
		adjusted := mathutil.Clamp(gates[i].Probability*combined, 0, gateProbabilityCap)
		gates[i].Probability = mathutil.RoundTo(adjusted, 3)
		cumulative *= adjusted
	}

	riskNPV := in.BaseNPV * cumulative

	logger.Debug("stage-gate probability chain applied",
		zap.String("op", "valuation.CalculateProbabilityWeightedDCF"),
		zap.String("stage", string(in.Stage)),
		zap.Float64("cumulativeProbability", cumulative),
		zap.Float64("riskAdjustedNPVMillions", riskNPV),
	)

	shocks := []float64{-0.20, -0.10, 0.10, 0.20}
	sensitivity := make([]RiskSensitivityPoint, 0, len(shocks))
	for _, shock := range shocks {
		shockedBase := in.BaseNPV * (1 + shock)
		sensitivity = append(sensitivity, RiskSensitivityPoint{
			Label:                   fmt.Sprintf("%+.0f%%", shock*100),
			BaseNPVMillions:         mathutil.Round(shockedBase),
			RiskAdjustedNPVMillions: mathutil.Round(shockedBase * cumulative),
		})
	}

	return &RiskAdjustedResult{
		BaseNPVMillions:  mathutil.Round(in.BaseNPV),
		BaseIRR:          in.BaseIRR,
		ProjectLifeYears: in.ProjectLifeYears,
		DiscountRate:     in.DiscountRate,

		Stage:                 in.Stage,
		JurisdictionTier:      in.JurisdictionTier,
		StageProbabilities:    gates,
		CumulativeProbability: mathutil.RoundTo(cumulative, 4),
		Adjustments: RiskAdjustments{
			Jurisdiction: jurAdj,
			Commodity:    commAdj,
			Technical:    techAdj,
			Combined:     mathutil.RoundTo(combined, 3),
		},

		RiskAdjustedNPVMillions: mathutil.Round(riskNPV),
		NPVDiscountFromBasePct:  mathutil.Round((1 - cumulative) * constants.PercentageMultiplier),
		RiskAdjustedIRR:         mathutil.RoundTo(in.BaseIRR*cumulative, 4),

		Sensitivity:    sensitivity,
		Recommendation: probabilityDCFRecommendation(riskNPV, in.BaseNPV),
		MethodologyNotes: []string{
			"Probability-weighted DCF applies stage-gate success probabilities to the base case NPV",
			fmt.Sprintf("Current stage %q implies %.1f%% probability of full value realization", in.Stage, cumulative*100),
			fmt.Sprintf("Jurisdiction (%s), commodity (%s), and technical factors adjust base probabilities", in.JurisdictionTier, in.Commodity),
			"Risk-adjusted NPV represents expected value considering all development risks",
		},
	}
}

func probabilityDCFRecommendation(riskNPV, baseNPV float64) Recommendation {
	switch {
	case riskNPV > baseNPV*0.5:
		return Recommendation{
			Text:     "Strong Buy - High probability of value realization",
			Severity: SeverityGreen,
		}
	case riskNPV > baseNPV*0.25:
		return Recommendation{
			Text:     "Buy - Moderate probability-adjusted upside",
			Severity: SeverityBlue,
		}
	case riskNPV > baseNPV*0.10:
		return Recommendation{
			Text:     "Hold - Significant execution risk embedded",
			Severity: SeverityOrange,
		}
	}
	return Recommendation{
		Text:     "High Risk - Consider only with portfolio diversification",
		Severity: SeverityRed,
	}
}

// baseValueFromIncome extracts the base NPV and IRR for a dependent method
// from the upstream Income DCF result. An upstream failure is propagated with
// its missing-input list. Only when no upstream result exists at all does it
// fall back to a first-principles margin estimate, and then only when all
// three core inputs are present.
func baseValueFromIncome(method Method, record extraction.Record, income Result[IncomeDCFResult]) (npv, irr float64, err *InsufficientDataError) {
	if income.Err != nil {
		return 0, 0, propagate(method, income.Err)
	}
	if income.Payload != nil {
		irr = 0.0
		if income.Payload.IRRDetermined {
			irr = income.Payload.IRR
		}
		return income.Payload.NPVMillions, irr, nil
	}

	if missing := coreInputGate(record); len(missing) > 0 {
		return 0, 0, insufficient(method, missing,
			"no upstream DCF result and core inputs are missing")
	}

	// Rough margin heuristic: lifetime margin at 60% realization less capex.
	economics := record.Economics
	mineLife := float64(positiveYearsOr(economics.MineLife, constants.DefaultMineLifeYears))
	marginMillions := record.Production.AnnualProduction *
		(economics.CommodityPrice - economics.UnitCost()) / constants.Million
	npv = marginMillions*mineLife*0.6 - economics.InitialCapex
	if npv > 0 {
		irr = 0.15
	} else {
		irr = 0.05
	}
	return npv, irr, nil
}
