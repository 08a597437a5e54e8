// Package output provides utilities for formatting and displaying valuation
// results.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/orefront/mineral-valuation/internal/valuation"
	"github.com/orefront/mineral-valuation/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// methodRow flattens one method result for tabular output.
type methodRow struct {
	Method        valuation.Method
	Completed     bool
	ValueMillions float64
	ValueLabel    string
	Signal        valuation.Recommendation
	MissingInputs []string
	FailureReason string
}

func rows(bundle valuation.Bundle) []methodRow {
	var out []methodRow

	add := func(method valuation.Method, completed bool, value float64, label string, rec valuation.Recommendation, err *valuation.InsufficientDataError) {
		row := methodRow{Method: method, Completed: completed, ValueMillions: value, ValueLabel: label, Signal: rec}
		if err != nil {
			row.MissingInputs = err.MissingInputs
			row.FailureReason = err.Message
		}
		out = append(out, row)
	}

	if r := bundle.IncomeDCF; r.Completed() {
		add(valuation.MethodIncomeDCF, true, r.Payload.NPVMillions, "NPV", r.Payload.Recommendation, nil)
	} else {
		add(valuation.MethodIncomeDCF, false, 0, "NPV", valuation.Recommendation{}, r.Err)
	}
	if r := bundle.ProbabilityDCF; r.Completed() {
		add(valuation.MethodProbabilityDCF, true, r.Payload.RiskAdjustedNPVMillions, "Risk-adjusted NPV", r.Payload.Recommendation, nil)
	} else {
		add(valuation.MethodProbabilityDCF, false, 0, "Risk-adjusted NPV", valuation.Recommendation{}, r.Err)
	}
	if r := bundle.MonteCarlo; r.Completed() {
		add(valuation.MethodMonteCarlo, true, r.Payload.NPVStats.MedianMillions, "Median NPV", r.Payload.Recommendation, nil)
	} else {
		add(valuation.MethodMonteCarlo, false, 0, "Median NPV", valuation.Recommendation{}, r.Err)
	}
	if r := bundle.CostApproach; r.Completed() {
		add(valuation.MethodCostApproach, true, r.Payload.ValueMillions, "Preferred value", r.Payload.Recommendation, nil)
	} else {
		add(valuation.MethodCostApproach, false, 0, "Preferred value", valuation.Recommendation{}, r.Err)
	}
	if r := bundle.DecisionTree; r.Completed() {
		add(valuation.MethodDecisionTree, true, r.Payload.EMVMillions, "EMV", r.Payload.Recommendation, nil)
	} else {
		add(valuation.MethodDecisionTree, false, 0, "EMV", valuation.Recommendation{}, r.Err)
	}
	return out
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(bundle valuation.Bundle) {
	p := message.NewPrinter(language.English)
	summary := bundle.Summary

	fmt.Printf("--- Valuation results for %s ---\n", summary.ProjectName)
	fmt.Printf("Commodity: %s | Stage: %s\n", summary.Commodity, summary.Stage)
	fmt.Printf("Methods completed: %d | failed: %d\n\n", summary.MethodsCompleted, summary.MethodsFailed)

	fmt.Printf("Method                   | Value            | Signal\n")
	fmt.Printf("______________________   | ______________   | ______\n")
	for _, row := range rows(bundle) {
		if row.Completed {
			_, _ = p.Printf("%-24s | %-16s | %s\n", row.Method.DisplayName(),
				row.ValueLabel+" "+format.Millions(row.ValueMillions), row.Signal.Text)
		} else {
			reason := row.FailureReason
			if len(row.MissingInputs) > 0 {
				reason = "missing: " + strings.Join(row.MissingInputs, ", ")
			}
			fmt.Printf("%-24s | %-16s | %s\n", row.Method.DisplayName(), "n/a", reason)
		}
	}

	if summary.MethodsCompleted > 0 {
		fmt.Printf("\nValuation range: %s to %s (median %s, average %s)\n",
			format.Millions(summary.Range.LowMillions),
			format.Millions(summary.Range.HighMillions),
			format.Millions(summary.Range.MedianMillions),
			format.Millions(summary.Range.AverageMillions))
	}
	fmt.Printf("Overall: %s\n", summary.Overall.Text)

	if len(bundle.Derivations) > 0 {
		fmt.Printf("\nDerived inputs:\n")
		for _, note := range bundle.Derivations {
			fmt.Printf("  - %s\n", note)
		}
	}
	if len(bundle.MissingInputs) > 0 {
		fmt.Printf("\nMissing inputs by method:\n")
		methods := make([]string, 0, len(bundle.MissingInputs))
		for method := range bundle.MissingInputs {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			fmt.Printf("  %s: %s\n", method, strings.Join(bundle.MissingInputs[method], ", "))
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(bundle valuation.Bundle) {
	fmt.Printf(`"method","status","value_millions","signal","severity","missing_inputs"`)
	fmt.Printf("\n")
	for _, row := range rows(bundle) {
		if row.Completed {
			fmt.Printf(`"%s","completed","%.2f","%s","%s",""`, row.Method, row.ValueMillions, row.Signal.Text, row.Signal.Severity)
		} else {
			fmt.Printf(`"%s","insufficient_data","","","","%s"`, row.Method, strings.Join(row.MissingInputs, ";"))
		}
		fmt.Printf("\n")
	}
}

// JSONFormat outputs the full bundle as indented JSON.
func JSONFormat(bundle valuation.Bundle) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(bundle)
}
