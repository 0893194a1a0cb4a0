package wells

import (
	"math"
	"time"
)

// Status classifies a well or pad for the dashboard.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusAlert   Status = "alert"
)

// Classification thresholds. These are part of the record model's contract,
// not tunables: the dashboard legend, the tests and the status endpoint all
// assume them.
const (
	WarningDeviationPct = 10.0
	AlertDeviationPct   = 15.0
	WarningWaterCutPct  = 20.0
	AlertWaterCutPct    = 25.0
)

// WellRecord is the normalized per-well output of one load.
type WellRecord struct {
	Name          string    `json:"name"`
	PadName       string    `json:"pad_name"`
	OilRate       float64   `json:"oil_rate"`
	LiquidRate    float64   `json:"liquid_rate"`
	WaterCut      float64   `json:"water_cut"`
	ESPFrequency  float64   `json:"esp_frequency"`
	PlanTarget    float64   `json:"plan_target"`
	PlanDeviation float64   `json:"plan_deviation"`
	Status        Status    `json:"status"`
	LastUpdated   time.Time `json:"last_updated"`

	// Extended holds the optional numeric metrics (gas rate, pressures,
	// temperatures, motor electricals) keyed by canonical metric name.
	Extended map[string]float64 `json:"extended,omitempty"`

	// CustomAttributes preserves remote attributes the mapping never
	// referenced, verbatim.
	CustomAttributes map[string]any `json:"custom_attributes,omitempty"`

	// DataSources records per-metric provenance: "measured" when the value
	// came from the remote attribute, "synthetic" when a bounded fallback was
	// substituted. Downstream consumers must be able to tell the two apart.
	DataSources map[string]string `json:"data_sources"`
}

// WellPadRecord aggregates the wells under one parent element. Created fresh
// on every load; it has no identity across loads.
type WellPadRecord struct {
	Name            string       `json:"name"`
	Wells           []WellRecord `json:"wells"`
	Status          Status       `json:"status"`
	WellCount       int          `json:"well_count"`
	ActiveWellCount int          `json:"active_well_count"`
	AvgOilRate      float64      `json:"avg_oil_rate"`
	AvgWaterCut     float64      `json:"avg_water_cut"`
}

// PlanDeviation is the percentage deviation of oilRate from the plan target.
// A non-positive target falls back to the oil rate itself, so the result is
// exactly 0 instead of a division blowup.
func PlanDeviation(oilRate, planTarget float64) float64 {
	target := planTarget
	if target <= 0 {
		target = oilRate
	}
	if target == 0 {
		return 0
	}
	return (oilRate - target) / target * 100
}

// StatusFor derives status from plan deviation and water cut. Warning is
// evaluated first, then upgraded to alert; alert's triggers are a superset of
// warning's.
func StatusFor(planDeviation, waterCut float64) Status {
	status := StatusGood
	if math.Abs(planDeviation) > WarningDeviationPct || waterCut > WarningWaterCutPct {
		status = StatusWarning
	}
	if math.Abs(planDeviation) > AlertDeviationPct || waterCut > AlertWaterCutPct {
		status = StatusAlert
	}
	return status
}

func statusRank(s Status) int {
	switch s {
	case StatusAlert:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// WorstStatus returns the more severe of two statuses.
func WorstStatus(a, b Status) Status {
	if statusRank(b) > statusRank(a) {
		return b
	}
	return a
}
