package valuation

import (
	"math"
	"testing"

	"github.com/orefront/mineral-valuation/internal/extraction"
)

func TestProspectivityPEM(t *testing.T) {
	tests := []struct {
		name        string
		average     float64
		expectBand  string
		expectedPEM float64
	}{
		{"minimum rating", 1.0, "very_low", 0.5},
		{"top of very low band", 1.5, "very_low", 1.0},
		{"mid low band", 1.75, "low", 1.25},
		{"top of moderate band", 2.5, "moderate", 2.0},
		{"mid high band", 2.75, "high", 2.5},
		{"maximum rating", 4.0, "very_high", 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			band, pem := prospectivityPEM(tt.average)
			if band.Name != tt.expectBand {
				t.Errorf("band = %q, expected %q", band.Name, tt.expectBand)
			}
			if math.Abs(pem-tt.expectedPEM) > 0.001 {
				t.Errorf("PEM = %v, expected %v", pem, tt.expectedPEM)
			}
		})
	}
}

func TestInferRatings(t *testing.T) {
	tests := []struct {
		name     string
		in       CostApproachInput
		expected GeoscientificRatings
	}{
		{
			name: "explicit ratings pass through",
			in: CostApproachInput{
				Ratings: GeoscientificRatings{3, 4, 2, 3},
			},
			expected: GeoscientificRatings{3, 4, 2, 3},
		},
		{
			name: "feasibility stage with resources and a compliant report",
			in: CostApproachInput{
				Stage:        extraction.StageFeasibility,
				ReportType:   "NI 43-101",
				HasResources: true,
			},
			expected: GeoscientificRatings{2, 4, 3, 3},
		},
		{
			name: "grassroots with nothing known",
			in: CostApproachInput{
				Stage: extraction.StageGrassroots,
			},
			expected: GeoscientificRatings{2, 1, 2, 2},
		},
		{
			name: "jorc report raises analytical quality",
			in: CostApproachInput{
				Stage:      extraction.StageEarlyExploration,
				ReportType: "JORC technical report",
			},
			expected: GeoscientificRatings{2, 2, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferRatings(tt.in); got != tt.expected {
				t.Errorf("inferRatings() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestRetainedExpenditure(t *testing.T) {
	inflation := math.Pow(1.03, 5)

	t.Run("reported spend is inflated", func(t *testing.T) {
		got := retainedExpenditure(10, 0)
		if math.Abs(got-10*inflation) > 0.001 {
			t.Errorf("retainedExpenditure = %v, expected %v", got, 10*inflation)
		}
	})
	t.Run("drill meters estimate spend", func(t *testing.T) {
		got := retainedExpenditure(0, 50_000)
		if math.Abs(got-15*inflation) > 0.001 {
			t.Errorf("retainedExpenditure = %v, expected %v", got, 15*inflation)
		}
	})
	t.Run("reported spend wins over meters", func(t *testing.T) {
		got := retainedExpenditure(10, 50_000)
		if math.Abs(got-10*inflation) > 0.001 {
			t.Errorf("retainedExpenditure = %v, expected the reported figure", got)
		}
	})
	t.Run("nothing reported", func(t *testing.T) {
		if got := retainedExpenditure(0, 0); got != 0 {
			t.Errorf("retainedExpenditure = %v, expected 0", got)
		}
	})
}

func TestCostApproachGoldProject(t *testing.T) {
	result := testEngine().CostApproach(goldRecord())
	if !result.Completed() {
		t.Fatalf("CostApproach failed unexpectedly: %v", result.Err)
	}
	payload := result.Payload

	if payload.ValueMillions <= 0 {
		t.Errorf("ValueMillions = %v, expected positive", payload.ValueMillions)
	}
	if payload.ExpenditureValue == nil {
		t.Fatal("expected an expenditure-based value for a project with reported spend")
	}
	if payload.AreaValue == nil {
		t.Fatal("expected an area-based value for a project with reported area")
	}
	if payload.ExpenditureValue.LowMillions >= payload.ExpenditureValue.HighMillions {
		t.Errorf("expenditure band inverted: %+v", payload.ExpenditureValue)
	}
	if payload.AreaHectares != 4500 {
		t.Errorf("AreaHectares = %v, expected 4500 from 45 km2", payload.AreaHectares)
	}

	// 25M of reported spend dwarfs the land-position value.
	if payload.PreferredBasis != "retained_expenditure" {
		t.Errorf("PreferredBasis = %q, expected retained_expenditure", payload.PreferredBasis)
	}
	if payload.ValueMillions != payload.ExpenditureValue.PreferredMillions {
		t.Errorf("ValueMillions = %v, expected the expenditure midpoint %v",
			payload.ValueMillions, payload.ExpenditureValue.PreferredMillions)
	}
}

func TestCostApproachAreaOnly(t *testing.T) {
	record := extraction.Record{
		ProjectInfo: extraction.ProjectInfo{
			PrimaryCommodity: "copper",
			DevelopmentStage: "early exploration",
			Jurisdiction:     "Western Australia",
			PropertyAreaKm2:  120,
		},
	}

	result := testEngine().CostApproach(record)
	if !result.Completed() {
		t.Fatalf("CostApproach failed unexpectedly: %v", result.Err)
	}
	if result.Payload.ExpenditureValue != nil {
		t.Error("expected no expenditure value without any exploration history")
	}
	if result.Payload.AreaValue == nil {
		t.Fatal("expected an area value from the reported property area")
	}
	if result.Payload.PreferredBasis != "base_acquisition_cost" {
		t.Errorf("PreferredBasis = %q, expected base_acquisition_cost", result.Payload.PreferredBasis)
	}
}

func TestCostApproachDefaultsAreaForSpendOnlyRecord(t *testing.T) {
	record := extraction.Record{
		ProjectInfo: extraction.ProjectInfo{
			PrimaryCommodity: "gold",
			DevelopmentStage: "advanced exploration",
		},
		Exploration: extraction.Exploration{HistoricalExplorationSpend: 12},
	}

	result := testEngine().CostApproach(record)
	if !result.Completed() {
		t.Fatalf("CostApproach failed unexpectedly: %v", result.Err)
	}
	if result.Payload.AreaHectares != 1000 {
		t.Errorf("AreaHectares = %v, expected the 1000 ha default", result.Payload.AreaHectares)
	}
	if result.Payload.AreaValue == nil {
		t.Error("expected an area value on the default holding size")
	}
	if result.Payload.PreferredBasis != "retained_expenditure" {
		t.Errorf("PreferredBasis = %q, expected retained_expenditure", result.Payload.PreferredBasis)
	}
}

func TestCostApproachFloorValueOnBareRecord(t *testing.T) {
	// No exploration history, no area, no ratings: the method still values
	// the land position on the 1000 ha default at minimum ratings.
	result := testEngine().CostApproach(extraction.Record{})
	if !result.Completed() {
		t.Fatalf("CostApproach failed on a bare record: %v", result.Err)
	}
	payload := result.Payload

	if payload.AreaHectares != 1000 {
		t.Errorf("AreaHectares = %v, expected the 1000 ha default", payload.AreaHectares)
	}
	if payload.ValueMillions <= 0 {
		t.Errorf("ValueMillions = %v, expected a positive floor value", payload.ValueMillions)
	}
	if payload.ExpenditureValue != nil {
		t.Error("expected no expenditure value without any exploration history")
	}
	if payload.PreferredBasis != "base_acquisition_cost" {
		t.Errorf("PreferredBasis = %q, expected base_acquisition_cost", payload.PreferredBasis)
	}
}

func TestCostApproachFloorValueWithoutExplorationFields(t *testing.T) {
	// A record that fails every cash-flow method (no price) and reports no
	// exploration or area fields still gets a floor value here.
	record := goldRecord()
	record.Economics.CommodityPrice = 0
	record.ProjectInfo.PropertyAreaKm2 = 0
	record.Exploration = extraction.Exploration{}

	result := testEngine().CostApproach(record)
	if !result.Completed() {
		t.Fatalf("CostApproach failed without exploration fields: %v", result.Err)
	}
	if result.Payload.ValueMillions <= 0 {
		t.Errorf("ValueMillions = %v, expected positive", result.Payload.ValueMillions)
	}
}

func TestAcquisitionCostPerHectare(t *testing.T) {
	tests := []struct {
		name         string
		jurisdiction string
		expected     float64
	}{
		{"canada", "British Columbia, Canada", 25},
		{"australia", "Western Australia", 20},
		{"africa", "Ghana", 10},
		{"europe", "Finland", 30},
		{"unknown", "elsewhere", 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := acquisitionCostPerHectare(tt.jurisdiction); got != tt.expected {
				t.Errorf("acquisitionCostPerHectare(%q) = %v, expected %v", tt.jurisdiction, got, tt.expected)
			}
		})
	}
}
