package valuation

import (
	"fmt"
	"math"
	"strings"

	"github.com/orefront/mineral-valuation/internal/extraction"
	"github.com/orefront/mineral-valuation/pkg/constants"
	"github.com/orefront/mineral-valuation/pkg/mathutil"
	"go.uber.org/zap"
)

// GeoscientificRatings are the four 1-4 Kilburn factor ratings. Zero means
// the rating was not reported and must be inferred from the record.
type GeoscientificRatings struct {
	RegionalProspectivity int `json:"regional_prospectivity"`
	ProjectMaturity       int `json:"project_maturity"`
	LocalGeology          int `json:"local_geology"`
	AnalyticalQuality     int `json:"analytical_quality"`
}

// Average returns the mean of the four ratings.
func (g GeoscientificRatings) Average() float64 {
	return float64(g.RegionalProspectivity+g.ProjectMaturity+g.LocalGeology+g.AnalyticalQuality) / 4.0
}

// prospectivityBand classifies the average rating and carries its prospectivity
// enhancement multiplier (PEM) range.
type prospectivityBand struct {
	Name       string
	UpperBound float64
	PEMLow     float64
	PEMHigh    float64
}

// prospectivityBands in ascending rating order. The final band is open-ended.
var prospectivityBands = []prospectivityBand{
	{"very_low", 1.5, 0.5, 1.0},
	{"low", 2.0, 1.0, 1.5},
	{"moderate", 2.5, 1.5, 2.0},
	{"high", 3.0, 2.0, 3.0},
	{"very_high", math.Inf(1), 3.0, 5.0},
}

// baseAcquisitionCostPerHectare by region, in raw dollars.
var baseAcquisitionCostPerHectare = map[string]float64{
	"north_america": 25.0,
	"south_america": 15.0,
	"australia":     20.0,
	"africa":        10.0,
	"europe":        30.0,
	"asia":          12.0,
}

const fallbackAcquisitionCostPerHectare = 15.0

// ValueBand is a low/preferred/high monetary band in $ millions.
type ValueBand struct {
	LowMillions       float64 `json:"low_millions"`
	PreferredMillions float64 `json:"preferred_millions"`
	HighMillions      float64 `json:"high_millions"`
}

// CostApproachResult is the Kilburn geoscientific valuation payload.
type CostApproachResult struct {
	Ratings       GeoscientificRatings `json:"geoscientific_ratings"`
	AverageRating float64              `json:"average_rating"`
	Band          string               `json:"prospectivity_band"`
	PEM           float64              `json:"prospectivity_enhancement_multiplier"`

	RetainedExpenditureMillions float64 `json:"retained_expenditure_millions"`
	AreaHectares                float64 `json:"area_hectares"`

	ExpenditureValue *ValueBand `json:"expenditure_value,omitempty"`
	AreaValue        *ValueBand `json:"area_value,omitempty"`
	PreferredBasis   string     `json:"preferred_basis"`

	ValueMillions float64 `json:"value_millions"`

	Recommendation   Recommendation `json:"recommendation"`
	MethodologyNotes []string       `json:"methodology_notes"`
}

// CostApproach values the property by the Kilburn geoscientific method:
// retained exploration expenditure and base acquisition cost, each scaled by
// the prospectivity enhancement multiplier. Unlike the cash-flow methods it
// has no input gate: unreported ratings, region, and area fall back to
// defaults, so every record gets at least a land-position floor value.
func (e *Engine) CostApproach(record extraction.Record) Result[CostApproachResult] {
	exploration := record.Exploration
	result := CalculateCostApproach(e.logger, CostApproachInput{
		Stage:           record.Stage(),
		ReportType:      record.DataQuality.ReportType,
		Jurisdiction:    record.ProjectInfo.Jurisdiction + " " + record.ProjectInfo.Location,
		AreaKm2:         record.ProjectInfo.PropertyAreaKm2,
		HistoricalSpend: exploration.HistoricalExplorationSpend,
		DrillMeters:     exploration.DrillMetersCompleted,
		HasResources:    record.Resources.TotalMIContainedMetal > 0,
		Ratings: GeoscientificRatings{
			RegionalProspectivity: exploration.RegionalProspectivity,
			ProjectMaturity:       exploration.ProjectMaturityScore,
			LocalGeology:          exploration.LocalGeologyScore,
			AnalyticalQuality:     exploration.AnalyticalDataQuality,
		},
	})
	return succeeded(result)
}

// CostApproachInput holds the explicit inputs for the Kilburn calculation.
// HistoricalSpend is in $ millions.
type CostApproachInput struct {
	Stage           extraction.Stage
	ReportType      string
	Jurisdiction    string
	AreaKm2         float64
	HistoricalSpend float64
	DrillMeters     float64
	HasResources    bool
	Ratings         GeoscientificRatings
}

// CalculateCostApproach runs the Kilburn geoscientific valuation.
func CalculateCostApproach(logger *zap.Logger, in CostApproachInput) *CostApproachResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	ratings := inferRatings(in)
	average := ratings.Average()
	band, pem := prospectivityPEM(average)

	retained := retainedExpenditure(in.HistoricalSpend, in.DrillMeters)

	areaHectares := in.AreaKm2 * constants.HectaresPerKm2
	if areaHectares <= 0 {
		areaHectares = constants.DefaultAreaHectares
	}

	var (
		expenditureValue *ValueBand
		areaValue        *ValueBand
	)
	if retained > 0 {
		mid := retained * pem
		expenditureValue = &ValueBand{
			LowMillions:       mathutil.Round(mid * 0.85),
			PreferredMillions: mathutil.Round(mid),
			HighMillions:      mathutil.Round(mid * 1.15),
		}
	}
	// The area basis runs even on the default holding size; land position is
	// the floor value of any property.
	bac := acquisitionCostPerHectare(in.Jurisdiction)
	mid := areaHectares * bac * pem / constants.Million
	areaValue = &ValueBand{
		LowMillions:       mathutil.Round(mid * 0.80),
		PreferredMillions: mathutil.Round(mid),
		HighMillions:      mathutil.Round(mid * 1.20),
	}

	preferred, basis := preferredValue(expenditureValue, areaValue)

	logger.Debug("cost approach complete",
		zap.String("op", "valuation.CalculateCostApproach"),
		zap.Float64("averageRating", average),
		zap.Float64("pem", pem),
		zap.Float64("valueMillions", preferred),
	)

	return &CostApproachResult{
		Ratings:       ratings,
		AverageRating: mathutil.Round(average),
		Band:          band.Name,
		PEM:           mathutil.Round(pem),

		RetainedExpenditureMillions: mathutil.Round(retained),
		AreaHectares:                mathutil.Round(areaHectares),

		ExpenditureValue: expenditureValue,
		AreaValue:        areaValue,
		PreferredBasis:   basis,

		ValueMillions: mathutil.Round(preferred),

		Recommendation: costApproachRecommendation(average, preferred),
		MethodologyNotes: []string{
			"Kilburn geoscientific method: retained expenditure and base acquisition cost scaled by prospectivity",
			fmt.Sprintf("Average geoscientific rating %.2f places the property in the %s band (PEM %.2f)", average, band.Name, pem),
			fmt.Sprintf("Retained expenditure of $%.2fM inflated at %.0f%% per year", retained, constants.ExplorationInflationRate*100),
			"Cost approach values exploration work done, not future cash flows",
		},
	}
}

// inferRatings fills unreported ratings from record context: development stage
// for maturity, defined resources for geology, and report standard for
// analytical quality.
func inferRatings(in CostApproachInput) GeoscientificRatings {
	ratings := in.Ratings

	if ratings.RegionalProspectivity == 0 {
		ratings.RegionalProspectivity = constants.DefaultRating
	}
	if ratings.ProjectMaturity == 0 {
		ratings.ProjectMaturity = maturityFromStage(in.Stage)
	}
	if ratings.LocalGeology == 0 {
		ratings.LocalGeology = constants.DefaultRating
		if in.HasResources {
			ratings.LocalGeology = 3
		}
	}
	if ratings.AnalyticalQuality == 0 {
		ratings.AnalyticalQuality = constants.DefaultRating
		report := strings.ToLower(in.ReportType)
		if strings.Contains(report, "43-101") || strings.Contains(report, "jorc") {
			ratings.AnalyticalQuality = 3
		}
	}

	ratings.RegionalProspectivity = mathutil.ClampInt(ratings.RegionalProspectivity, 1, 4)
	ratings.ProjectMaturity = mathutil.ClampInt(ratings.ProjectMaturity, 1, 4)
	ratings.LocalGeology = mathutil.ClampInt(ratings.LocalGeology, 1, 4)
	ratings.AnalyticalQuality = mathutil.ClampInt(ratings.AnalyticalQuality, 1, 4)
	return ratings
}

func maturityFromStage(stage extraction.Stage) int {
	switch stage {
	case extraction.StageGrassroots:
		return 1
	case extraction.StageEarlyExploration:
		return 2
	case extraction.StageAdvancedExploration, extraction.StagePreFeasibility:
		return 3
	case extraction.StageFeasibility, extraction.StagePermitted,
		extraction.StageConstruction, extraction.StageProduction:
		return 4
	}
	return constants.DefaultRating
}

// prospectivityPEM classifies the average rating and interpolates the PEM
// linearly within the band.
func prospectivityPEM(average float64) (prospectivityBand, float64) {
	lower := 1.0
	for _, band := range prospectivityBands {
		if average <= band.UpperBound {
			upper := band.UpperBound
			if math.IsInf(upper, 1) {
				upper = 4.0
			}
			width := upper - lower
			fraction := 0.0
			if width > 0 {
				fraction = mathutil.Clamp((average-lower)/width, 0, 1)
			}
			return band, band.PEMLow + fraction*(band.PEMHigh-band.PEMLow)
		}
		lower = band.UpperBound
	}
	last := prospectivityBands[len(prospectivityBands)-1]
	return last, last.PEMHigh
}

// retainedExpenditure inflates reported historical spend to present dollars,
// assuming a five-year average age, and estimates spend from drill meters when
// no figure was reported.
func retainedExpenditure(historicalSpendMillions, drillMeters float64) float64 {
	spend := historicalSpendMillions
	if spend <= 0 && drillMeters > 0 {
		spend = drillMeters * constants.DrillCostPerMeterMillions
	}
	if spend <= 0 {
		return 0
	}
	return spend * math.Pow(1+constants.ExplorationInflationRate, assumedExpenditureAgeYears)
}

const assumedExpenditureAgeYears = 5

func acquisitionCostPerHectare(jurisdiction string) float64 {
	lower := strings.ToLower(jurisdiction)
	switch {
	case containsAny(lower, "canada", "usa", "united states", "mexico"):
		return baseAcquisitionCostPerHectare["north_america"]
	case containsAny(lower, "chile", "peru", "argentina", "brazil", "ecuador"):
		return baseAcquisitionCostPerHectare["south_america"]
	case containsAny(lower, "australia", "new zealand"):
		return baseAcquisitionCostPerHectare["australia"]
	case containsAny(lower, "africa", "ghana", "tanzania", "mali", "burkina", "congo", "zambia", "namibia", "botswana"):
		return baseAcquisitionCostPerHectare["africa"]
	case containsAny(lower, "europe", "finland", "sweden", "spain", "portugal", "serbia"):
		return baseAcquisitionCostPerHectare["europe"]
	case containsAny(lower, "asia", "mongolia", "kazakhstan", "indonesia", "philippines"):
		return baseAcquisitionCostPerHectare["asia"]
	}
	return fallbackAcquisitionCostPerHectare
}

// preferredValue picks the larger of the two preferred midpoints. Exploration
// work demonstrates value better than raw land position, so ties go to the
// expenditure basis.
func preferredValue(expenditure, area *ValueBand) (float64, string) {
	switch {
	case expenditure != nil && area != nil:
		if area.PreferredMillions > expenditure.PreferredMillions {
			return area.PreferredMillions, "base_acquisition_cost"
		}
		return expenditure.PreferredMillions, "retained_expenditure"
	case expenditure != nil:
		return expenditure.PreferredMillions, "retained_expenditure"
	case area != nil:
		return area.PreferredMillions, "base_acquisition_cost"
	}
	return 0, "none"
}

func costApproachRecommendation(averageRating, valueMillions float64) Recommendation {
	if valueMillions <= 0 {
		return Recommendation{
			Text:     "No Demonstrable Cost Basis - Property value unsupported by exploration work",
			Severity: SeverityRed,
		}
	}
	switch {
	case averageRating >= 3.0:
		return Recommendation{
			Text:     "Attractive Exploration Property - Strong geoscientific fundamentals",
			Severity: SeverityGreen,
		}
	case averageRating >= 2.5:
		return Recommendation{
			Text:     "Sound Exploration Property - Above-average prospectivity",
			Severity: SeverityBlue,
		}
	}
	return Recommendation{
		Text:     "Early-Stage Property - Value limited to exploration work performed",
		Severity: SeverityOrange,
	}
}
