package output

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/orefront/mineral-valuation/internal/valuation"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func testBundle() valuation.Bundle {
	return valuation.Bundle{
		IncomeDCF: valuation.Result[valuation.IncomeDCFResult]{
			Payload: &valuation.IncomeDCFResult{
				NPVMillions: 374.07,
				Recommendation: valuation.Recommendation{
					Text:     "Strong Investment - Excellent returns exceed hurdle rates",
					Severity: valuation.SeverityGreen,
				},
			},
		},
		ProbabilityDCF: valuation.Result[valuation.RiskAdjustedResult]{
			Payload: &valuation.RiskAdjustedResult{
				RiskAdjustedNPVMillions: 89.93,
				Recommendation: valuation.Recommendation{
					Text:     "Hold - Significant execution risk embedded",
					Severity: valuation.SeverityOrange,
				},
			},
		},
		MonteCarlo: valuation.Result[valuation.MonteCarloResult]{
			Err: &valuation.InsufficientDataError{
				Method:        valuation.MethodMonteCarlo,
				MissingInputs: []string{"commodity_price"},
				Message:       "cannot run Monte Carlo: core inputs are required before simulating",
			},
		},
		CostApproach: valuation.Result[valuation.CostApproachResult]{
			Payload: &valuation.CostApproachResult{
				ValueMillions: 72.46,
				Recommendation: valuation.Recommendation{
					Text:     "Sound Exploration Property - Above-average prospectivity",
					Severity: valuation.SeverityBlue,
				},
			},
		},
		DecisionTree: valuation.Result[valuation.DecisionTreeResult]{
			Err: &valuation.InsufficientDataError{
				Method:  valuation.MethodDecisionTree,
				Message: "calculated terminal value is zero or negative",
			},
		},
		Derivations: []string{"Used commodity_price_assumption ($1900.00) as commodity_price"},
		MissingInputs: map[string][]string{
			"monte_carlo": {"commodity_price"},
		},
		Summary: valuation.Summary{
			ProjectName:      "Carlin Ridge",
			Commodity:        "gold",
			Stage:            "feasibility",
			MethodsCompleted: 3,
			MethodsFailed:    2,
			Range: valuation.ValuationRange{
				LowMillions: 72.46, MedianMillions: 89.93, HighMillions: 374.07, AverageMillions: 178.82,
			},
			Overall: valuation.Recommendation{
				Text:     "Mixed Signals - Detailed analysis required before investment",
				Severity: valuation.SeverityOrange,
			},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	output := captureStdout(t, func() {
		PrettyFormat(testBundle())
	})

	if !strings.Contains(output, "--- Valuation results for Carlin Ridge ---") {
		t.Error("PrettyFormat missing project header")
	}
	if !strings.Contains(output, "Commodity: gold | Stage: feasibility") {
		t.Error("PrettyFormat missing classification line")
	}
	if !strings.Contains(output, "Income DCF") {
		t.Error("PrettyFormat missing income DCF row")
	}
	if !strings.Contains(output, "$374.1M") {
		t.Error("PrettyFormat missing formatted NPV")
	}
	if !strings.Contains(output, "missing: commodity_price") {
		t.Error("PrettyFormat missing the failed method's missing inputs")
	}
	if !strings.Contains(output, "Mixed Signals") {
		t.Error("PrettyFormat missing overall recommendation")
	}
	if !strings.Contains(output, "Derived inputs:") {
		t.Error("PrettyFormat missing derivations section")
	}
}

func TestCsvFormat(t *testing.T) {
	output := captureStdout(t, func() {
		CsvFormat(testBundle())
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 6 {
		t.Fatalf("CsvFormat produced %d lines, expected header plus 5 methods", len(lines))
	}
	if !strings.Contains(lines[0], `"method","status","value_millions"`) {
		t.Errorf("CsvFormat header = %q", lines[0])
	}
	if !strings.Contains(output, `"income_dcf","completed","374.07"`) {
		t.Error("CsvFormat missing the income DCF row")
	}
	if !strings.Contains(output, `"monte_carlo","insufficient_data"`) {
		t.Error("CsvFormat missing the failed Monte Carlo row")
	}
	if !strings.Contains(output, `"commodity_price"`) {
		t.Error("CsvFormat missing the missing-inputs column")
	}
}

func TestJSONFormatRoundTrips(t *testing.T) {
	output := captureStdout(t, func() {
		if err := JSONFormat(testBundle()); err != nil {
			t.Errorf("JSONFormat() error: %v", err)
		}
	})

	var decoded valuation.Bundle
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("JSONFormat output is not valid JSON: %v", err)
	}
	if decoded.Summary.ProjectName != "Carlin Ridge" {
		t.Errorf("decoded project = %q, expected Carlin Ridge", decoded.Summary.ProjectName)
	}
	if !decoded.IncomeDCF.Completed() {
		t.Error("decoded income DCF lost its payload")
	}
	if decoded.MonteCarlo.Err == nil || decoded.MonteCarlo.Err.Method != valuation.MethodMonteCarlo {
		t.Error("decoded Monte Carlo lost its error")
	}
}

func TestPrettyFormatEmptyBundle(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("PrettyFormat panicked on an empty bundle: %v", r)
		}
	}()

	_ = captureStdout(t, func() {
		PrettyFormat(valuation.Bundle{})
	})
}
