package valuation

import (
	"testing"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"go.uber.org/zap"
)

func TestRunGoldProjectEndToEnd(t *testing.T) {
	bundle := testEngine().Run(goldRecord())

	if !bundle.IncomeDCF.Completed() {
		t.Fatalf("IncomeDCF failed: %v", bundle.IncomeDCF.Err)
	}
	if !bundle.ProbabilityDCF.Completed() {
		t.Fatalf("ProbabilityDCF failed: %v", bundle.ProbabilityDCF.Err)
	}
	if !bundle.MonteCarlo.Completed() {
		t.Fatalf("MonteCarlo failed: %v", bundle.MonteCarlo.Err)
	}
	if !bundle.CostApproach.Completed() {
		t.Fatalf("CostApproach failed: %v", bundle.CostApproach.Err)
	}
	if !bundle.DecisionTree.Completed() {
		t.Fatalf("DecisionTree failed: %v", bundle.DecisionTree.Err)
	}

	if bundle.ProbabilityDCF.Payload.RiskAdjustedNPVMillions >= bundle.IncomeDCF.Payload.NPVMillions {
		t.Error("risk-adjusted NPV should fall below the base NPV")
	}

	summary := bundle.Summary
	if summary.MethodsCompleted != 5 || summary.MethodsFailed != 0 {
		t.Errorf("completed/failed = %d/%d, expected 5/0", summary.MethodsCompleted, summary.MethodsFailed)
	}
	if summary.ProjectName != "Carlin Ridge" {
		t.Errorf("ProjectName = %q, expected Carlin Ridge", summary.ProjectName)
	}
	if summary.Stage != "feasibility" {
		t.Errorf("Stage = %q, expected feasibility", summary.Stage)
	}
	if len(summary.Breakdown) != 5 {
		t.Errorf("breakdown entries = %d, expected 5", len(summary.Breakdown))
	}
	if summary.Range.LowMillions > summary.Range.MedianMillions ||
		summary.Range.MedianMillions > summary.Range.HighMillions {
		t.Errorf("range out of order: %+v", summary.Range)
	}
	if summary.Overall.Severity == SeverityGray {
		t.Error("overall severity should not be gray when all methods completed")
	}
	if len(bundle.MissingInputs) != 0 {
		t.Errorf("missing-inputs report = %v, expected empty", bundle.MissingInputs)
	}
}

func TestRunWithMissingPriceFailsCashFlowMethods(t *testing.T) {
	record := goldRecord()
	record.Economics.CommodityPrice = 0

	bundle := testEngine().Run(record)

	for name, result := range map[string]bool{
		"income_dcf":      bundle.IncomeDCF.Completed(),
		"probability_dcf": bundle.ProbabilityDCF.Completed(),
		"monte_carlo":     bundle.MonteCarlo.Completed(),
		"decision_tree":   bundle.DecisionTree.Completed(),
	} {
		if result {
			t.Errorf("%s completed despite the missing price", name)
		}
	}

	// The cost approach does not need price inputs.
	if !bundle.CostApproach.Completed() {
		t.Errorf("CostApproach failed: %v", bundle.CostApproach.Err)
	}

	if bundle.Summary.MethodsCompleted != 1 || bundle.Summary.MethodsFailed != 4 {
		t.Errorf("completed/failed = %d/%d, expected 1/4",
			bundle.Summary.MethodsCompleted, bundle.Summary.MethodsFailed)
	}

	missing, ok := bundle.MissingInputs[string(MethodIncomeDCF)]
	if !ok {
		t.Fatal("missing-inputs report lacks the income DCF entry")
	}
	if len(missing) != 1 || missing[0] != InputCommodityPrice {
		t.Errorf("income DCF missing inputs = %v, expected [%s]", missing, InputCommodityPrice)
	}
}

func TestRunDerivesInputsBeforeGating(t *testing.T) {
	// The record lacks direct core inputs but carries enough related fields
	// for the normalizer to derive all three.
	record := extraction.Record{
		ProjectInfo: extraction.ProjectInfo{
			ProjectName:      "Derived Hill",
			PrimaryCommodity: "gold",
			DevelopmentStage: "pre-feasibility",
			Jurisdiction:     "Ontario, Canada",
		},
		Production: extraction.Production{LifeOfMineProduction: 1_200_000},
		Economics: extraction.Economics{
			MineLife:                 12,
			CommodityPriceAssumption: 1850,
			AnnualOpex:               95,
			InitialCapex:             250,
		},
	}

	bundle := testEngine().Run(record)
	if !bundle.IncomeDCF.Completed() {
		t.Fatalf("IncomeDCF failed after normalization: %v", bundle.IncomeDCF.Err)
	}
	if len(bundle.Derivations) < 3 {
		t.Errorf("derivation notes = %v, expected production, price, and cost derivations", bundle.Derivations)
	}
}

func TestRunEmptyRecord(t *testing.T) {
	bundle := NewEngine(zap.NewNop(), Options{Simulations: 100}).Run(extraction.Record{})

	// The cost approach has no input gate and values the default land
	// position; the four cash-flow methods fail their core-input gates.
	if !bundle.CostApproach.Completed() {
		t.Fatalf("CostApproach failed on an empty record: %v", bundle.CostApproach.Err)
	}
	if bundle.CostApproach.Payload.ValueMillions <= 0 {
		t.Errorf("cost approach floor value = %v, expected positive", bundle.CostApproach.Payload.ValueMillions)
	}
	if bundle.Summary.MethodsCompleted != 1 || bundle.Summary.MethodsFailed != 4 {
		t.Errorf("completed/failed = %d/%d, expected 1/4",
			bundle.Summary.MethodsCompleted, bundle.Summary.MethodsFailed)
	}
	if bundle.Summary.Overall.Severity == SeverityGray {
		t.Error("overall severity should not be gray when the cost approach completed")
	}
	if len(bundle.MissingInputs) != 4 {
		t.Errorf("missing-inputs entries = %d, expected the 4 gated methods", len(bundle.MissingInputs))
	}
}

func TestEngineDiscountRateOverride(t *testing.T) {
	record := goldRecord()
	record.Economics.DiscountRate = 0

	low := NewEngine(nil, Options{DiscountRate: 0.05}).IncomeDCF(record)
	high := NewEngine(nil, Options{DiscountRate: 0.15}).IncomeDCF(record)
	if !low.Completed() || !high.Completed() {
		t.Fatalf("IncomeDCF failed: %v / %v", low.Err, high.Err)
	}
	if low.Payload.DiscountRate != 0.05 || high.Payload.DiscountRate != 0.15 {
		t.Errorf("discount rates = %v / %v, expected the configured overrides",
			low.Payload.DiscountRate, high.Payload.DiscountRate)
	}
	if low.Payload.NPVMillions <= high.Payload.NPVMillions {
		t.Errorf("NPV at 5%% (%v) should exceed NPV at 15%% (%v)",
			low.Payload.NPVMillions, high.Payload.NPVMillions)
	}

	// A record-reported rate always wins over the configured default.
	record.Economics.DiscountRate = 8
	reported := NewEngine(nil, Options{DiscountRate: 0.15}).IncomeDCF(record)
	if !reported.Completed() {
		t.Fatalf("IncomeDCF failed: %v", reported.Err)
	}
	if reported.Payload.DiscountRate != 0.08 {
		t.Errorf("DiscountRate = %v, expected the record's 8%%", reported.Payload.DiscountRate)
	}
}

func TestOverallRecommendationVoting(t *testing.T) {
	tests := []struct {
		name     string
		counts   map[Severity]int
		expected Severity
	}{
		{
			name:     "two greens win",
			counts:   map[Severity]int{SeverityGreen: 2, SeverityOrange: 2},
			expected: SeverityGreen,
		},
		{
			name:     "greens and blues together",
			counts:   map[Severity]int{SeverityGreen: 1, SeverityBlue: 2},
			expected: SeverityBlue,
		},
		{
			name:     "two reds warn",
			counts:   map[Severity]int{SeverityRed: 2, SeverityOrange: 1},
			expected: SeverityRed,
		},
		{
			name:     "mixed signals",
			counts:   map[Severity]int{SeverityGreen: 1, SeverityOrange: 2, SeverityRed: 1},
			expected: SeverityOrange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overallRecommendation(tt.counts, 5)
			if got.Severity != tt.expected {
				t.Errorf("overallRecommendation() severity = %v, expected %v", got.Severity, tt.expected)
			}
		})
	}
}

func TestValuationRange(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected ValuationRange
	}{
		{
			name:   "odd count",
			values: []float64{300, 100, 200},
			expected: ValuationRange{
				LowMillions: 100, MedianMillions: 200, HighMillions: 300, AverageMillions: 200,
			},
		},
		{
			name:   "even count interpolates median",
			values: []float64{400, 100, 200, 300},
			expected: ValuationRange{
				LowMillions: 100, MedianMillions: 250, HighMillions: 400, AverageMillions: 250,
			},
		},
		{
			name:     "empty",
			values:   nil,
			expected: ValuationRange{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valuationRange(tt.values); got != tt.expected {
				t.Errorf("valuationRange() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}
