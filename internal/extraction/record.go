// Package extraction defines the extraction record supplied by the upstream
// document-understanding service and includes functions for normalizing it
// before valuation. A zero value in any numeric field means the field was
// absent from the source documents.
package extraction

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Stage is a project development stage. Unrecognized stages normalize to
// StageEarlyExploration.
type Stage string

// Development stages ordered from earliest to latest.
const (
	StageGrassroots          Stage = "grassroots"
	StageEarlyExploration    Stage = "early_exploration"
	StageAdvancedExploration Stage = "advanced_exploration"
	StagePreFeasibility      Stage = "pre_feasibility"
	StageFeasibility         Stage = "feasibility"
	StagePermitted           Stage = "permitted"
	StageConstruction        Stage = "construction"
	StageProduction          Stage = "production"
)

// ParseStage canonicalizes a free-form development stage string.
func ParseStage(s string) Stage {
	key := Stage(strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s))))
	switch key {
	case StageGrassroots, StageEarlyExploration, StageAdvancedExploration,
		StagePreFeasibility, StageFeasibility, StagePermitted,
		StageConstruction, StageProduction:
		return key
	}
	return StageEarlyExploration
}

// Complexity is a technical complexity classification.
type Complexity string

// Technical complexity levels.
const (
	ComplexitySimple        Complexity = "simple"
	ComplexityModerate      Complexity = "moderate"
	ComplexityComplex       Complexity = "complex"
	ComplexityHighlyComplex Complexity = "highly_complex"
)

// ParseComplexity canonicalizes a free-form technical complexity string.
func ParseComplexity(s string) Complexity {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "highly"):
		return ComplexityHighlyComplex
	case strings.Contains(lower, "simple"), strings.Contains(lower, "straightforward"):
		return ComplexitySimple
	case strings.Contains(lower, "complex"), strings.Contains(lower, "difficult"):
		return ComplexityComplex
	}
	return ComplexityModerate
}

// ProjectInfo holds the project identity and classification fields.
type ProjectInfo struct {
	ProjectName         string  `json:"project_name"`
	PrimaryCommodity    string  `json:"primary_commodity"`
	DevelopmentStage    string  `json:"development_stage"`
	Jurisdiction        string  `json:"jurisdiction"`
	Location            string  `json:"location"`
	TechnicalComplexity string  `json:"technical_complexity"`
	PropertyAreaKm2     float64 `json:"property_area_km2" validate:"gte=0"`
}

// Resources holds mineral resource tonnages and grades by confidence category.
type Resources struct {
	MeasuredTonnes        float64 `json:"measured_tonnes" validate:"gte=0"`
	MeasuredGrade         float64 `json:"measured_grade" validate:"gte=0"`
	IndicatedTonnes       float64 `json:"indicated_tonnes" validate:"gte=0"`
	IndicatedGrade        float64 `json:"indicated_grade" validate:"gte=0"`
	InferredTonnes        float64 `json:"inferred_tonnes" validate:"gte=0"`
	InferredGrade         float64 `json:"inferred_grade" validate:"gte=0"`
	TotalMIGrade          float64 `json:"total_mi_grade" validate:"gte=0"`
	TotalMIContainedMetal float64 `json:"total_mi_contained_metal" validate:"gte=0"`
}

// Reserves holds mineral reserve tonnages and grades.
type Reserves struct {
	ProvenTonnes   float64 `json:"proven_tonnes" validate:"gte=0"`
	ProvenGrade    float64 `json:"proven_grade" validate:"gte=0"`
	ProbableTonnes float64 `json:"probable_tonnes" validate:"gte=0"`
	ProbableGrade  float64 `json:"probable_grade" validate:"gte=0"`
}

// Production holds production rate fields. AnnualProduction is in commodity
// units per year (oz, lb, or tonnes depending on the commodity).
type Production struct {
	AnnualProduction     float64 `json:"annual_production" validate:"gte=0"`
	LifeOfMineProduction float64 `json:"life_of_mine_production" validate:"gte=0"`
	ThroughputTPD        float64 `json:"throughput_tpd" validate:"gte=0"`
	RecoveryRate         float64 `json:"recovery_rate" validate:"gte=0,lte=100"`
}

// Economics holds the financial inputs. Capex, closure cost, working capital,
// annual revenue, and annual opex are in $ millions; unit prices and costs are
// in raw dollars per commodity unit. ReportedNPV and ReportedIRR are advisory
// only and never used as valuation inputs.
type Economics struct {
	InitialCapex             float64 `json:"initial_capex" validate:"gte=0"`
	SustainingCapex          float64 `json:"sustaining_capex" validate:"gte=0"`
	CommodityPrice           float64 `json:"commodity_price" validate:"gte=0"`
	CommodityPriceAssumption float64 `json:"commodity_price_assumption" validate:"gte=0"`
	OperatingCost            float64 `json:"operating_cost" validate:"gte=0"`
	AllInSustainingCost      float64 `json:"all_in_sustaining_cost" validate:"gte=0"`
	AnnualRevenue            float64 `json:"annual_revenue" validate:"gte=0"`
	AnnualOpex               float64 `json:"annual_opex" validate:"gte=0"`
	DiscountRate             float64 `json:"discount_rate" validate:"gte=0,lte=100"`
	MineLife                 float64 `json:"mine_life" validate:"gte=0"`
	RoyaltyRate              float64 `json:"royalty_rate" validate:"gte=0,lte=100"`
	TaxRate                  float64 `json:"tax_rate" validate:"gte=0,lte=100"`
	ClosureCost              float64 `json:"closure_cost" validate:"gte=0"`
	WorkingCapital           float64 `json:"working_capital" validate:"gte=0"`
	ReportedNPV              float64 `json:"reported_npv"`
	ReportedIRR              float64 `json:"reported_irr"`
}

// Exploration holds historical exploration work and the four 1-4
// geoscientific ratings used by the cost approach.
type Exploration struct {
	HistoricalExplorationSpend float64 `json:"historical_exploration_spend" validate:"gte=0"`
	DrillMetersCompleted       float64 `json:"drill_meters_completed" validate:"gte=0"`
	RegionalProspectivity      int     `json:"regional_prospectivity" validate:"omitempty,min=1,max=4"`
	ProjectMaturityScore       int     `json:"project_maturity_score" validate:"omitempty,min=1,max=4"`
	LocalGeologyScore          int     `json:"local_geology_score" validate:"omitempty,min=1,max=4"`
	AnalyticalDataQuality      int     `json:"analytical_data_quality" validate:"omitempty,min=1,max=4"`
}

// DataQuality describes the source report.
type DataQuality struct {
	ReportType string `json:"report_type"`
}

// Record is one extraction record: the complete structured input for a single
// valuation run. Records are immutable for the duration of a run; the
// normalizer operates on a copy.
type Record struct {
	ProjectInfo ProjectInfo `json:"project_info"`
	Resources   Resources   `json:"resources"`
	Reserves    Reserves    `json:"reserves"`
	Production  Production  `json:"production"`
	Economics   Economics   `json:"economics"`
	Exploration Exploration `json:"exploration"`
	DataQuality DataQuality `json:"data_quality"`
}

// Stage returns the canonicalized development stage.
func (r *Record) Stage() Stage {
	return ParseStage(r.ProjectInfo.DevelopmentStage)
}

// Complexity returns the canonicalized technical complexity.
func (r *Record) Complexity() Complexity {
	return ParseComplexity(r.ProjectInfo.TechnicalComplexity)
}

// Commodity returns the lower-cased primary commodity, defaulting to gold
// when unreported.
func (r *Record) Commodity() string {
	c := strings.ToLower(strings.TrimSpace(r.ProjectInfo.PrimaryCommodity))
	if c == "" {
		return "gold"
	}
	return c
}

// UnitCost returns the per-unit cost used by the strict valuation methods:
// AISC when present, otherwise operating cost. Zero means neither is known.
func (e *Economics) UnitCost() float64 {
	if e.AllInSustainingCost > 0 {
		return e.AllInSustainingCost
	}
	return e.OperatingCost
}

var validate = validator.New()

// Validate checks field bounds on the record (rating scales, rate ranges).
// A validation error indicates suspect extracted values; callers log it as a
// warning and proceed, since the engines gate on presence separately.
func (r *Record) Validate() error {
	return validate.Struct(r)
}
