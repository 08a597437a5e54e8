package valuation

import (
	"fmt"
	"math"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// StageDefinition is one gate on the path to production: its cost
// ($ millions at reference scale), duration in years, probability of clearing
// the gate, and the stage unlocked on success.
type StageDefinition struct {
	Name        string
	Cost        float64
	Duration    float64
	SuccessProb float64
	NextStage   string
}

// stageGateDefinitions maps each development stage to the remaining gates
// between it and production. The production stage has no remaining gates.
var stageGateDefinitions = map[extraction.Stage][]StageDefinition{
	extraction.StageGrassroots: {
		{"Initial Exploration", 2.0, 2, 0.15, "Target Generation"},
		{"Target Generation", 5.0, 2, 0.25, "Drilling Program"},
		{"Drilling Program", 15.0, 2, 0.30, "Resource Definition"},
		{"Resource Definition", 25.0, 2, 0.50, "Preliminary Economic Assessment"},
		{"Preliminary Economic Assessment", 3.0, 1, 0.60, "Pre-Feasibility Study"},
		{"Pre-Feasibility Study", 10.0, 1, 0.70, "Feasibility Study"},
		{"Feasibility Study", 25.0, 1.5, 0.80, "Permitting"},
		{"Permitting", 15.0, 2, 0.75, "Financing"},
		{"Financing", 5.0, 0.5, 0.70, "Construction"},
		{"Construction", 250.0, 2, 0.90, "Production"},
	},
	extraction.StageEarlyExploration: {
		{"Target Generation", 5.0, 1.5, 0.30, "Drilling Program"},
		{"Drilling Program", 15.0, 2, 0.35, "Resource Definition"},
		{"Resource Definition", 20.0, 1.5, 0.55, "Preliminary Economic Assessment"},
		{"Preliminary Economic Assessment", 3.0, 1, 0.65, "Pre-Feasibility Study"},
		{"Pre-Feasibility Study", 10.0, 1, 0.72, "Feasibility Study"},
		{"Feasibility Study", 25.0, 1.5, 0.82, "Permitting"},
		{"Permitting", 15.0, 2, 0.78, "Financing"},
		{"Financing", 5.0, 0.5, 0.72, "Construction"},
		{"Construction", 250.0, 2, 0.92, "Production"},
	},
	extraction.StageAdvancedExploration: {
		{"Infill Drilling", 20.0, 1.5, 0.60, "Resource Update"},
		{"Resource Update", 5.0, 0.5, 0.75, "Preliminary Economic Assessment"},
		{"Preliminary Economic Assessment", 3.0, 0.75, 0.70, "Pre-Feasibility Study"},
		{"Pre-Feasibility Study", 10.0, 1, 0.75, "Feasibility Study"},
		{"Feasibility Study", 25.0, 1.5, 0.85, "Permitting"},
		{"Permitting", 15.0, 2, 0.80, "Financing"},
		{"Financing", 5.0, 0.5, 0.75, "Construction"},
		{"Construction", 250.0, 2, 0.93, "Production"},
	},
	extraction.StagePreFeasibility: {
		{"Complete Pre-Feasibility", 8.0, 0.75, 0.80, "Feasibility Study"},
		{"Feasibility Study", 25.0, 1.5, 0.88, "Permitting"},
		{"Permitting", 15.0, 2, 0.82, "Financing"},
		{"Financing", 5.0, 0.5, 0.78, "Construction"},
		{"Construction", 250.0, 2, 0.94, "Production"},
	},
	extraction.StageFeasibility: {
		{"Complete Feasibility", 15.0, 1, 0.90, "Permitting"},
		{"Permitting", 15.0, 2, 0.85, "Financing"},
		{"Financing", 5.0, 0.5, 0.80, "Construction"},
		{"Construction", 250.0, 2, 0.95, "Production"},
	},
	extraction.StagePermitted: {
		{"Financing", 5.0, 0.5, 0.82, "Construction"},
		{"Construction", 250.0, 2, 0.96, "Production"},
	},
	extraction.StageConstruction: {
		{"Complete Construction", 150.0, 1.5, 0.97, "Production"},
	},
	extraction.StageProduction: {},
}

// Stage-gate decisions.
const (
	DecisionProceed    = "PROCEED"
	DecisionReconsider = "STOP/RECONSIDER"
)

// StageGate is one row of the stage-gate analysis table.
type StageGate struct {
	Number                 int     `json:"number"`
	Name                   string  `json:"name"`
	CostMillions           float64 `json:"cost_millions"`
	DurationYears          float64 `json:"duration_years"`
	SuccessProbability     float64 `json:"success_probability"`
	CumulativeProbability  float64 `json:"cumulative_probability"`
	CumulativeCostMillions float64 `json:"cumulative_cost_millions"`
	CumulativeTimeYears    float64 `json:"cumulative_time_years"`
	ValueIfSuccessMillions float64 `json:"expected_value_if_success_millions"`
	StageEMVMillions       float64 `json:"stage_emv_millions"`
	Decision               string  `json:"decision"`
	NextStage              string  `json:"next_stage"`
}

// RealOptionsBreakdown is the simplified option-value decomposition.
type RealOptionsBreakdown struct {
	AbandonMillions float64 `json:"option_to_abandon_millions"`
	ExpandMillions  float64 `json:"option_to_expand_millions"`
	DeferMillions   float64 `json:"option_to_defer_millions"`
	TotalMillions   float64 `json:"total_options_value_millions"`
}

// DecisionTreeResult is the stage-gate EMV payload.
type DecisionTreeResult struct {
	EMVMillions             float64 `json:"emv_millions"`
	TerminalValueMillions   float64 `json:"terminal_value_millions"`
	ProbabilityToProduction float64 `json:"probability_to_production"`
	TotalInvestmentMillions float64 `json:"total_investment_millions"`
	TotalTimeYears          float64 `json:"total_time_years"`
	RiskAdjustedMultiple    float64 `json:"risk_adjusted_multiple"`

	Stages            []StageGate          `json:"stage_gate_analysis"`
	RealOptions       RealOptionsBreakdown `json:"real_options_value"`
	OptimalPath       string               `json:"optimal_path"`
	HighestRiskStages []string             `json:"highest_risk_stages,omitempty"`

	Recommendation   Recommendation `json:"recommendation"`
	MethodologyNotes []string       `json:"methodology_notes"`
}

// DecisionTree models the sequential stage-gate path to production and
// computes the expected monetary value. The terminal value comes from the
// upstream Income DCF result; an upstream failure is propagated.
func (e *Engine) DecisionTree(record extraction.Record, income Result[IncomeDCFResult]) Result[DecisionTreeResult] {
	terminal, _, err := baseValueFromIncome(MethodDecisionTree, record, income)
	if err != nil {
		return failed[DecisionTreeResult](err)
	}
	// The strict fallback path can produce a negative margin estimate; the
	// tree needs a positive value at the end of the path.
	if terminal <= 0 {
		return failed[DecisionTreeResult](insufficient(MethodDecisionTree, nil,
			"calculated terminal value is zero or negative"))
	}

	result := CalculateDecisionTreeEMV(e.logger, DecisionTreeInput{
		Stage:         record.Stage(),
		TerminalValue: terminal,
		DiscountRate:  rateOr(record.Economics.DiscountRate, defaultEMVDiscountRate),
		ScaleFactor:   capexScaleFactor(record.Economics.InitialCapex),
	})
	return succeeded(result)
}

// defaultEMVDiscountRate is the time-value rate used when the record reports
// no discount rate; stage-gate timelines carry more risk than producing
// assets.
const defaultEMVDiscountRate = 0.10

// capexScaleFactor scales the reference stage costs to the project's capital
// magnitude: above $500M costs scale up proportionally, below $100M they
// scale down to half.
func capexScaleFactor(initialCapexMillions float64) float64 {
	switch {
	case initialCapexMillions > 500:
		return initialCapexMillions / 250
	case initialCapexMillions > 0 && initialCapexMillions < 100:
		return 0.5
	}
	return 1.0
}

// DecisionTreeInput holds the explicit inputs for the EMV calculation.
// TerminalValue is in $ millions.
type DecisionTreeInput struct {
	Stage         extraction.Stage
	TerminalValue float64
	DiscountRate  float64
	ScaleFactor   float64
}

// CalculateDecisionTreeEMV walks the stage list forward to build the
// per-stage report, then sums the discounted expected failure losses and the
// probability-weighted terminal value into the overall EMV.
func CalculateDecisionTreeEMV(logger *zap.Logger, in DecisionTreeInput) *DecisionTreeResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in.ScaleFactor <= 0 {
		in.ScaleFactor = 1.0
	}

	stages, ok := stageGateDefinitions[in.Stage]
	if !ok {
		stages = stageGateDefinitions[extraction.StageEarlyExploration]
	}

	if len(stages) == 0 {
		// Already producing: the EMV degenerates to the terminal value.
		return &DecisionTreeResult{
			EMVMillions:             mathutil.Round(in.TerminalValue),
			TerminalValueMillions:   mathutil.Round(in.TerminalValue),
			ProbabilityToProduction: 1.0,
			OptimalPath:             "Already in production",
			Recommendation: Recommendation{
				Text:     "Already in Production - Value equals operating project NPV",
				Severity: SeverityGreen,
			},
			MethodologyNotes: []string{
				"Project is in production; no remaining stage gates to clear",
			},
		}
	}

	var (
		analysis       []StageGate
		cumulativeCost float64
		cumulativeTime float64
		cumulativeProb = 1.0
	)

	for i, stage := range stages {
		cost := stage.Cost * in.ScaleFactor
		cumulativeCost += cost
		cumulativeTime += stage.Duration
		cumulativeProb *= stage.SuccessProb

		// Value realized if this and all remaining gates clear, discounted to
		// the time production is reached.
		var valueIfSuccess float64
		if i == len(stages)-1 {
			valueIfSuccess = in.TerminalValue / math.Pow(1+in.DiscountRate, cumulativeTime)
		} else {
			remainingProb := 1.0
			remainingTime := 0.0
			for _, later := range stages[i+1:] {
				remainingProb *= later.SuccessProb
				remainingTime += later.Duration
			}
			valueIfSuccess = in.TerminalValue * remainingProb /
				math.Pow(1+in.DiscountRate, cumulativeTime+remainingTime)
		}

		stageEMV := valueIfSuccess*stage.SuccessProb - cost
		decision := DecisionProceed
		if stageEMV <= 0 {
			decision = DecisionReconsider
		}

		analysis = append(analysis, StageGate{
			Number:                 i + 1,
			Name:                   stage.Name,
			CostMillions:           mathutil.Round(cost),
			DurationYears:          stage.Duration,
			SuccessProbability:     stage.SuccessProb,
			CumulativeProbability:  mathutil.RoundTo(cumulativeProb, 4),
			CumulativeCostMillions: mathutil.Round(cumulativeCost),
			CumulativeTimeYears:    mathutil.RoundTo(cumulativeTime, 1),
			ValueIfSuccessMillions: mathutil.Round(valueIfSuccess),
			StageEMVMillions:       mathutil.Round(stageEMV),
			Decision:               decision,
			NextStage:              stage.NextStage,
		})
	}

	// Overall EMV: expected discounted loss of sunk stage cost on each
	// failure branch, plus the terminal value on the single success path.
	emv := 0.0
	runningProb := 1.0
	runningTime := 0.0
	for _, stage := range stages {
		runningTime += stage.Duration
		discount := math.Pow(1+in.DiscountRate, runningTime)
		failureLoss := -(stage.Cost * in.ScaleFactor * runningProb) / discount
		emv += failureLoss * (1 - stage.SuccessProb)
		runningProb *= stage.SuccessProb
	}
	emv += in.TerminalValue * runningProb / math.Pow(1+in.DiscountRate, runningTime)

	totalInvestment := cumulativeCost

	var reconsider, riskiest []string
	abandonValue := 0.0
	for _, gate := range analysis {
		if gate.Decision == DecisionReconsider {
			reconsider = append(reconsider, gate.Name)
			abandonValue += gate.CostMillions
		}
		if gate.SuccessProbability < 0.70 {
			riskiest = append(riskiest, fmt.Sprintf("%s (%.0f%% success)", gate.Name, gate.SuccessProbability*100))
		}
	}
	optimalPath := "Proceed through all stages"
	if len(reconsider) > 0 {
		optimalPath = "Consider exit at: " + joinNames(reconsider)
	}

	logger.Debug("decision tree EMV complete",
		zap.String("op", "valuation.CalculateDecisionTreeEMV"),
		zap.String("stage", string(in.Stage)),
		zap.Float64("emvMillions", emv),
		zap.Float64("probabilityToProduction", cumulativeProb),
	)

	multiple := 0.0
	if totalInvestment > 0 {
		multiple = emv / totalInvestment
	}

	return &DecisionTreeResult{
		EMVMillions:             mathutil.Round(emv),
		TerminalValueMillions:   mathutil.Round(in.TerminalValue),
		ProbabilityToProduction: mathutil.RoundTo(cumulativeProb, 4),
		TotalInvestmentMillions: mathutil.Round(totalInvestment),
		TotalTimeYears:          mathutil.RoundTo(cumulativeTime, 1),
		RiskAdjustedMultiple:    mathutil.Round(multiple),

		Stages: analysis,
		RealOptions: RealOptionsBreakdown{
			AbandonMillions: mathutil.Round(abandonValue * 0.5),
			ExpandMillions:  mathutil.Round(emv * 0.15),
			DeferMillions:   mathutil.Round(emv * 0.10),
			TotalMillions:   mathutil.Round(emv * 0.25),
		},
		OptimalPath:       optimalPath,
		HighestRiskStages: riskiest,

		Recommendation: decisionTreeRecommendation(emv, totalInvestment),
		MethodologyNotes: []string{
			fmt.Sprintf("Decision tree with %d stages from %s to production", len(stages), in.Stage),
			fmt.Sprintf("Terminal value of $%.1fM discounted at %.0f%% over %.1f years", in.TerminalValue, in.DiscountRate*100, cumulativeTime),
			fmt.Sprintf("Cumulative probability of reaching production: %.2f%%", cumulativeProb*100),
			"Real options value reflects flexibility to abandon, expand, or defer",
		},
	}
}

func joinNames(names []string) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func decisionTreeRecommendation(emv, totalInvestment float64) Recommendation {
	switch {
	case emv > totalInvestment*0.5:
		return Recommendation{
			Text:     "High Value Opportunity - EMV significantly exceeds required investment",
			Severity: SeverityGreen,
		}
	case emv > totalInvestment*0.2:
		return Recommendation{
			Text:     "Positive EMV - Expected value exceeds risk-adjusted costs",
			Severity: SeverityBlue,
		}
	case emv > 0:
		return Recommendation{
			Text:     "Marginal Opportunity - Positive but low EMV relative to investment",
			Severity: SeverityOrange,
		}
	}
	return Recommendation{
		Text:     "Negative EMV - Expected losses exceed potential gains",
		Severity: SeverityRed,
	}
}
