package wells

// AggregatePad rolls the already-mapped wells of one parent element into a
// pad record: worst-of status, counts, and arithmetic means. Pure function;
// callers must not pass an empty well list (the loader skips pads with zero
// mapped wells instead of emitting NaN averages).
func AggregatePad(name string, padWells []WellRecord) WellPadRecord {
	pad := WellPadRecord{
		Name:      name,
		Wells:     make([]WellRecord, len(padWells)),
		Status:    StatusGood,
		WellCount: len(padWells),
	}

	var oilSum, waterSum float64
	for i, w := range padWells {
		w.PadName = name
		pad.Wells[i] = w

		pad.Status = WorstStatus(pad.Status, w.Status)
		if w.Status != StatusAlert {
			pad.ActiveWellCount++
		}
		oilSum += w.OilRate
		waterSum += w.WaterCut
	}

	if pad.WellCount > 0 {
		pad.AvgOilRate = oilSum / float64(pad.WellCount)
		pad.AvgWaterCut = waterSum / float64(pad.WellCount)
	}
	return pad
}
