package valuation

import (
	"fmt"
	"sort"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine runs the five valuation methodologies against extraction records.
type Engine struct {
	logger             *zap.Logger
	simulations        int
	seed               int64
	volatilityOverride float64
	discountRate       float64
}

// Options tune the engine. Zero values select the defaults.
type Options struct {
	// Simulations is the Monte Carlo path count.
	Simulations int
	// Seed fixes the Monte Carlo random source for reproducible runs.
	Seed int64
	// VolatilityOverride replaces the per-commodity volatility table when
	// positive.
	VolatilityOverride float64
	// DiscountRate replaces the default discount rate applied to records that
	// report none. Records that report a rate always keep it.
	DiscountRate float64
}

// NewEngine constructs a valuation engine. A nil logger is replaced with a
// no-op logger.
func NewEngine(logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:             logger,
		simulations:        opts.Simulations,
		seed:               opts.Seed,
		volatilityOverride: opts.VolatilityOverride,
		discountRate:       opts.DiscountRate,
	}
}

// defaultDiscount is the rate applied when a record reports no discount rate.
func (e *Engine) defaultDiscount() float64 {
	if e.discountRate > 0 {
		return mathutil.FractionalRate(e.discountRate)
	}
	return constants.DefaultDiscountRate
}

// Run executes the full pipeline for one record: normalization, the five
// methods in dependency order, the missing-inputs report, and the cross-method
// summary. Methods that cannot produce a defensible value fail individually;
// one failure never aborts the run.
func (e *Engine) Run(record extraction.Record) Bundle {
	if err := record.Validate(); err != nil {
		e.logger.Warn("record failed field validation; proceeding with presence gates",
			zap.String("op", "valuation.Engine.Run"),
			zap.Error(err),
		)
	}

	normalized, derivations := extraction.Normalize(e.logger, record)

	bundle := Bundle{Derivations: derivations}
	bundle.IncomeDCF = guard(e.logger, MethodIncomeDCF, func() Result[IncomeDCFResult] {
		return e.IncomeDCF(normalized)
	})
	bundle.ProbabilityDCF = guard(e.logger, MethodProbabilityDCF, func() Result[RiskAdjustedResult] {
		return e.ProbabilityDCF(normalized, bundle.IncomeDCF)
	})
	bundle.MonteCarlo = guard(e.logger, MethodMonteCarlo, func() Result[MonteCarloResult] {
		return e.MonteCarlo(normalized)
	})
	bundle.CostApproach = guard(e.logger, MethodCostApproach, func() Result[CostApproachResult] {
		return e.CostApproach(normalized)
	})
	bundle.DecisionTree = guard(e.logger, MethodDecisionTree, func() Result[DecisionTreeResult] {
		return e.DecisionTree(normalized, bundle.IncomeDCF)
	})

	bundle.MissingInputs = missingInputsReport(bundle)
	bundle.Summary = buildSummary(normalized, bundle)

	e.logger.Info("valuation run complete",
		zap.String("op", "valuation.Engine.Run"),
		zap.String("project", bundle.Summary.ProjectName),
		zap.Int("methodsCompleted", bundle.Summary.MethodsCompleted),
		zap.Int("methodsFailed", bundle.Summary.MethodsFailed),
	)
	return bundle
}

// guard converts a panicking method into a failed result so a defect in one
// engine cannot abort the remaining methods.
func guard[T any](logger *zap.Logger, method Method, fn func() Result[T]) (result Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("valuation method panicked",
				zap.String("op", "valuation.guard"),
				zap.String("method", string(method)),
				zap.Any("panic", r),
			)
			result = failed[T](insufficient(method, nil, "internal error: %v", r))
		}
	}()
	return fn()
}

// missingInputsReport maps each failed method to the inputs that would unlock
// it.
func missingInputsReport(bundle Bundle) map[string][]string {
	report := make(map[string][]string)
	record := func(method Method, err *InsufficientDataError) {
		if err == nil {
			return
		}
		inputs := err.MissingInputs
		if len(inputs) == 0 {
			inputs = []string{err.Message}
		}
		report[string(method)] = inputs
	}
	record(MethodIncomeDCF, bundle.IncomeDCF.Err)
	record(MethodProbabilityDCF, bundle.ProbabilityDCF.Err)
	record(MethodMonteCarlo, bundle.MonteCarlo.Err)
	record(MethodCostApproach, bundle.CostApproach.Err)
	record(MethodDecisionTree, bundle.DecisionTree.Err)
	if len(report) == 0 {
		return nil
	}
	return report
}

// methodOutcome flattens one result for summary building.
type methodOutcome struct {
	method    Method
	completed bool
	value     float64
	signal    Recommendation
}

func outcomes(bundle Bundle) []methodOutcome {
	flatten := func(method Method, completed bool, value float64, rec Recommendation) methodOutcome {
		if !completed {
			rec = Recommendation{Text: "Insufficient data", Severity: SeverityGray}
		}
		return methodOutcome{method: method, completed: completed, value: value, signal: rec}
	}

	out := make([]methodOutcome, 0, 5)
	if r := bundle.IncomeDCF; r.Completed() {
		out = append(out, flatten(MethodIncomeDCF, true, r.Payload.NPVMillions, r.Payload.Recommendation))
	} else {
		out = append(out, flatten(MethodIncomeDCF, false, 0, Recommendation{}))
	}
	if r := bundle.ProbabilityDCF; r.Completed() {
		out = append(out, flatten(MethodProbabilityDCF, true, r.Payload.RiskAdjustedNPVMillions, r.Payload.Recommendation))
	} else {
		out = append(out, flatten(MethodProbabilityDCF, false, 0, Recommendation{}))
	}
	if r := bundle.MonteCarlo; r.Completed() {
		out = append(out, flatten(MethodMonteCarlo, true, r.Payload.NPVStats.MedianMillions, r.Payload.Recommendation))
	} else {
		out = append(out, flatten(MethodMonteCarlo, false, 0, Recommendation{}))
	}
	if r := bundle.CostApproach; r.Completed() {
		out = append(out, flatten(MethodCostApproach, true, r.Payload.ValueMillions, r.Payload.Recommendation))
	} else {
		out = append(out, flatten(MethodCostApproach, false, 0, Recommendation{}))
	}
	if r := bundle.DecisionTree; r.Completed() {
		out = append(out, flatten(MethodDecisionTree, true, r.Payload.EMVMillions, r.Payload.Recommendation))
	} else {
		out = append(out, flatten(MethodDecisionTree, false, 0, Recommendation{}))
	}
	return out
}

// buildSummary aggregates the method results: the valuation range over
// positive values and a severity vote across method recommendations.
func buildSummary(record extraction.Record, bundle Bundle) Summary {
	all := outcomes(bundle)

	summary := Summary{
		ProjectName: record.ProjectInfo.ProjectName,
		Commodity:   record.Commodity(),
		Stage:       string(record.Stage()),
	}

	var positives []float64
	counts := map[Severity]int{}
	for _, o := range all {
		if !o.completed {
			summary.MethodsFailed++
			continue
		}
		summary.MethodsCompleted++
		summary.Breakdown = append(summary.Breakdown, MethodValue{
			Method:        o.method,
			ValueMillions: o.value,
		})
		summary.MethodSignals = append(summary.MethodSignals,
			fmt.Sprintf("%s: %s", o.method.DisplayName(), o.signal.Text))
		counts[o.signal.Severity]++
		if o.value > 0 {
			positives = append(positives, o.value)
		}
	}

	summary.Range = valuationRange(positives)
	summary.Overall = overallRecommendation(counts, summary.MethodsCompleted)
	return summary
}

func valuationRange(values []float64) ValuationRange {
	if len(values) == 0 {
		return ValuationRange{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	median := sorted[len(sorted)/2]
	if len(sorted)%2 == 0 {
		median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return ValuationRange{
		LowMillions:     sorted[0],
		MedianMillions:  median,
		HighMillions:    sorted[len(sorted)-1],
		AverageMillions: sum / float64(len(sorted)),
	}
}

// overallRecommendation votes across the per-method severities.
func overallRecommendation(counts map[Severity]int, completed int) Recommendation {
	if completed == 0 {
		return Recommendation{
			Text:     "Insufficient Data - No method could produce a defensible value",
			Severity: SeverityGray,
		}
	}
	switch {
	case counts[SeverityGreen] >= 2:
		return Recommendation{
			Text:     "Strong Investment Opportunity - Multiple methods indicate high value",
			Severity: SeverityGreen,
		}
	case counts[SeverityGreen]+counts[SeverityBlue] >= 3:
		return Recommendation{
			Text:     "Positive Investment Case - Good risk-adjusted returns expected",
			Severity: SeverityBlue,
		}
	case counts[SeverityRed] >= 2:
		return Recommendation{
			Text:     "High Risk / Low Value - Proceed with caution",
			Severity: SeverityRed,
		}
	}
	return Recommendation{
		Text:     "Mixed Signals - Detailed analysis required before investment",
		Severity: SeverityOrange,
	}
}
