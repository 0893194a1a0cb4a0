package wells

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go-pi-well-dashboard/internal/connectors/piwebapi"
)

// Canonical metric names. The core metrics always appear on a record; the
// extended ones are filled only when the remote element carries them.
const (
	MetricOilRate      = "oilRate"
	MetricLiquidRate   = "liquidRate"
	MetricWaterCut     = "waterCut"
	MetricESPFrequency = "espFrequency"
	MetricPlanTarget   = "planTarget"
)

var coreMetrics = []string{
	MetricOilRate,
	MetricLiquidRate,
	MetricWaterCut,
	MetricESPFrequency,
	MetricPlanTarget,
}

var extendedMetrics = []string{
	"gasRate",
	"gasOilRatio",
	"tubingPressure",
	"casingPressure",
	"linePressure",
	"intakePressure",
	"dischargePressure",
	"wellheadTemperature",
	"motorTemperature",
	"motorAmps",
	"motorVoltage",
	"vibration",
	"chokeSize",
	"runtimeHours",
}

// Per-metric provenance markers.
const (
	SourceMeasured  = "measured"
	SourceSynthetic = "synthetic"
)

// Mapping translates canonical metric names to vendor attribute names.
type Mapping map[string]string

// DefaultMapping covers every canonical metric with the vendor's stock
// attribute names. Callers override any subset.
func DefaultMapping() Mapping {
	return Mapping{
		MetricOilRate:         "Oil Rate",
		MetricLiquidRate:      "Liquid Rate",
		MetricWaterCut:        "Water Cut",
		MetricESPFrequency:    "ESP Frequency",
		MetricPlanTarget:      "Plan Target",
		"gasRate":             "Gas Rate",
		"gasOilRatio":         "GOR",
		"tubingPressure":      "Tubing Pressure",
		"casingPressure":      "Casing Pressure",
		"linePressure":        "Line Pressure",
		"intakePressure":      "Intake Pressure",
		"dischargePressure":   "Discharge Pressure",
		"wellheadTemperature": "Wellhead Temperature",
		"motorTemperature":    "Motor Temperature",
		"motorAmps":           "Motor Amps",
		"motorVoltage":        "Motor Voltage",
		"vibration":           "Vibration",
		"chokeSize":           "Choke Size",
		"runtimeHours":        "Runtime",
	}
}

// Merge layers non-empty overrides on top of m, returning a new Mapping.
func (m Mapping) Merge(overrides Mapping) Mapping {
	out := make(Mapping, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		v = strings.TrimSpace(v)
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// syntheticRanges documents the half-open [min, max) fallback range per
// metric. Metrics without an entry use genericRange.
var syntheticRanges = map[string][2]float64{
	MetricOilRate:         {20, 100},
	MetricLiquidRate:      {40, 160},
	MetricWaterCut:        {0, 40},
	MetricESPFrequency:    {35, 60},
	MetricPlanTarget:      {30, 90},
	"gasRate":             {100, 900},
	"gasOilRatio":         {50, 300},
	"tubingPressure":      {10, 60},
	"casingPressure":      {5, 40},
	"linePressure":        {5, 30},
	"intakePressure":      {20, 120},
	"dischargePressure":   {60, 220},
	"wellheadTemperature": {20, 90},
	"motorTemperature":    {60, 140},
	"motorAmps":           {15, 70},
	"motorVoltage":        {380, 440},
	"vibration":           {0, 5},
	"chokeSize":           {8, 64},
	"runtimeHours":        {0, 8760},
}

var genericRange = [2]float64{0, 100}

func syntheticValue(metric string, rng *rand.Rand) float64 {
	r, ok := syntheticRanges[metric]
	if !ok {
		r = genericRange
	}
	return r[0] + rng.Float64()*(r[1]-r[0])
}

// numericValue coerces a raw attribute value to a float. Numbers and numeric
// strings pass; null, booleans and free text count as absent, never as zero.
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MapWell normalizes one well element's raw attributes into a WellRecord.
// Every core metric the mapping cannot resolve to a numeric attribute gets a
// bounded pseudo-random fallback so the dashboard never shows a hole, and the
// substitution is flagged in DataSources. Extended metrics are filled only
// when measured. Remote attributes the mapping never references go into the
// custom bag verbatim.
func MapWell(name string, attrs []piwebapi.RawAttribute, mapping Mapping, rng *rand.Rand) WellRecord {
	if mapping == nil {
		mapping = DefaultMapping()
	}

	byName := make(map[string]piwebapi.RawAttribute, len(attrs))
	for _, a := range attrs {
		byName[strings.ToLower(strings.TrimSpace(a.Name))] = a
	}

	mappedNames := make(map[string]struct{}, len(mapping))
	for _, attrName := range mapping {
		mappedNames[strings.ToLower(strings.TrimSpace(attrName))] = struct{}{}
	}

	var lastUpdated time.Time
	resolve := func(metric string) (float64, string) {
		attrName := strings.ToLower(strings.TrimSpace(mapping[metric]))
		if attrName != "" {
			if a, ok := byName[attrName]; ok {
				if f, ok := numericValue(a.Value); ok {
					if a.Timestamp.After(lastUpdated) {
						lastUpdated = a.Timestamp
					}
					return f, SourceMeasured
				}
			}
		}
		return syntheticValue(metric, rng), SourceSynthetic
	}

	rec := WellRecord{
		Name:        name,
		DataSources: make(map[string]string, len(coreMetrics)),
	}
	rec.OilRate, rec.DataSources[MetricOilRate] = resolve(MetricOilRate)
	rec.LiquidRate, rec.DataSources[MetricLiquidRate] = resolve(MetricLiquidRate)
	rec.WaterCut, rec.DataSources[MetricWaterCut] = resolve(MetricWaterCut)
	rec.ESPFrequency, rec.DataSources[MetricESPFrequency] = resolve(MetricESPFrequency)
	rec.PlanTarget, rec.DataSources[MetricPlanTarget] = resolve(MetricPlanTarget)

	for _, metric := range extendedMetrics {
		attrName := strings.ToLower(strings.TrimSpace(mapping[metric]))
		if attrName == "" {
			continue
		}
		a, ok := byName[attrName]
		if !ok {
			continue
		}
		f, ok := numericValue(a.Value)
		if !ok {
			continue
		}
		if rec.Extended == nil {
			rec.Extended = make(map[string]float64)
		}
		rec.Extended[metric] = f
		rec.DataSources[metric] = SourceMeasured
		if a.Timestamp.After(lastUpdated) {
			lastUpdated = a.Timestamp
		}
	}

	for _, a := range attrs {
		key := strings.ToLower(strings.TrimSpace(a.Name))
		if _, mapped := mappedNames[key]; mapped {
			continue
		}
		if rec.CustomAttributes == nil {
			rec.CustomAttributes = make(map[string]any)
		}
		rec.CustomAttributes[a.Name] = a.Value
	}

	if lastUpdated.IsZero() {
		lastUpdated = time.Now().UTC()
	}
	rec.LastUpdated = lastUpdated
	rec.PlanDeviation = PlanDeviation(rec.OilRate, rec.PlanTarget)
	rec.Status = StatusFor(rec.PlanDeviation, rec.WaterCut)
	return rec
}
