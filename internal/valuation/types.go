// Package valuation implements the five valuation methodologies for
// mineral-development projects and the orchestrator that runs them against a
// normalized extraction record. All reported monetary values are in $ millions
// unless a field documents otherwise.
package valuation

import (
	"fmt"
	"strings"
)

// Method identifies one of the five valuation methodologies.
type Method string

// The five methods, in orchestration order.
const (
	MethodIncomeDCF      Method = "income_dcf"
	MethodProbabilityDCF Method = "probability_dcf"
	MethodMonteCarlo     Method = "monte_carlo"
	MethodCostApproach   Method = "cost_approach"
	MethodDecisionTree   Method = "decision_tree"
)

// DisplayName returns the human-readable method name used in reports.
func (m Method) DisplayName() string {
	switch m {
	case MethodIncomeDCF:
		return "Income DCF"
	case MethodProbabilityDCF:
		return "Probability-Weighted DCF"
	case MethodMonteCarlo:
		return "Monte Carlo Simulation"
	case MethodCostApproach:
		return "Cost Approach"
	case MethodDecisionTree:
		return "Decision Tree EMV"
	}
	return string(m)
}

// Core input field names used in InsufficientDataError reporting.
const (
	InputAnnualProduction = "annual_production"
	InputCommodityPrice   = "commodity_price"
	InputOperatingCost    = "operating_cost/AISC"
)

// InsufficientDataError is the single domain error: a method cannot produce a
// defensible value because named inputs are missing. The engine never
// substitutes an invented default for a missing core input.
type InsufficientDataError struct {
	Method        Method   `json:"method"`
	MissingInputs []string `json:"missing_inputs"`
	Message       string   `json:"message"`
}

func (e *InsufficientDataError) Error() string {
	if len(e.MissingInputs) == 0 {
		return fmt.Sprintf("%s: %s", e.Method.DisplayName(), e.Message)
	}
	return fmt.Sprintf("%s: %s (missing: %s)", e.Method.DisplayName(), e.Message,
		strings.Join(e.MissingInputs, ", "))
}

// insufficient builds an InsufficientDataError for the given method.
func insufficient(method Method, missing []string, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Method:        method,
		MissingInputs: missing,
		Message:       fmt.Sprintf(format, args...),
	}
}

// propagate carries an upstream method's missing-input list into a dependent
// method's failure, so callers see which fields unlock the chain.
func propagate(method Method, upstream *InsufficientDataError) *InsufficientDataError {
	return &InsufficientDataError{
		Method:        method,
		MissingInputs: upstream.MissingInputs,
		Message:       fmt.Sprintf("upstream %s failed: %s", upstream.Method.DisplayName(), upstream.Message),
	}
}

// Severity classifies a recommendation for cross-method voting.
type Severity string

// Recommendation severities from most to least favorable.
const (
	SeverityGreen  Severity = "green"
	SeverityBlue   Severity = "blue"
	SeverityOrange Severity = "orange"
	SeverityRed    Severity = "red"
	SeverityGray   Severity = "gray"
)

// Recommendation is a method-level investment signal derived from that
// method's thresholds.
type Recommendation struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Result is the tagged outcome of one method: either a payload or an
// InsufficientDataError, never both.
type Result[T any] struct {
	Payload *T                     `json:"payload,omitempty"`
	Err     *InsufficientDataError `json:"error,omitempty"`
}

// Completed reports whether the method produced a payload.
func (r Result[T]) Completed() bool {
	return r.Err == nil && r.Payload != nil
}

func succeeded[T any](payload *T) Result[T] {
	return Result[T]{Payload: payload}
}

func failed[T any](err *InsufficientDataError) Result[T] {
	return Result[T]{Err: err}
}

// SensitivityPoint is one entry of a +/-10%/20% shock table.
type SensitivityPoint struct {
	Label       string  `json:"label"`
	NPVMillions float64 `json:"npv_millions"`
}

// Bundle is the orchestrator output: the five method results, the
// normalization notes, the per-method missing-inputs report, and the
// cross-method summary.
type Bundle struct {
	IncomeDCF      Result[IncomeDCFResult]    `json:"income_dcf"`
	ProbabilityDCF Result[RiskAdjustedResult] `json:"probability_dcf"`
	MonteCarlo     Result[MonteCarloResult]   `json:"monte_carlo"`
	CostApproach   Result[CostApproachResult] `json:"cost_approach"`
	DecisionTree   Result[DecisionTreeResult] `json:"decision_tree"`

	Derivations   []string            `json:"derivations,omitempty"`
	MissingInputs map[string][]string `json:"missing_inputs_report,omitempty"`
	Summary       Summary             `json:"summary"`
}

// MethodValue is one method's primary value contribution to the summary.
type MethodValue struct {
	Method        Method  `json:"method"`
	ValueMillions float64 `json:"value_millions"`
}

// ValuationRange summarizes the spread of positive method values.
type ValuationRange struct {
	LowMillions     float64 `json:"low_millions"`
	MedianMillions  float64 `json:"median_millions"`
	HighMillions    float64 `json:"high_millions"`
	AverageMillions float64 `json:"average_millions"`
}

// Summary aggregates the five method results into one view.
type Summary struct {
	ProjectName      string         `json:"project_name"`
	Commodity        string         `json:"commodity"`
	Stage            string         `json:"stage"`
	Range            ValuationRange `json:"valuation_range"`
	Breakdown        []MethodValue  `json:"valuation_breakdown"`
	MethodsCompleted int            `json:"methods_completed"`
	MethodsFailed    int            `json:"methods_failed"`
	Overall          Recommendation `json:"overall_recommendation"`
	MethodSignals    []string       `json:"method_recommendations,omitempty"`
}
