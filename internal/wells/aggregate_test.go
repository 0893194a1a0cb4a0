package wells

import "testing"

func TestAggregatePadWorstStatusAndAverages(t *testing.T) {
	pad := AggregatePad("Pad A", []WellRecord{
		{Name: "W1", OilRate: 100, WaterCut: 10, Status: StatusGood},
		{Name: "W2", OilRate: 50, WaterCut: 30, Status: StatusWarning},
		{Name: "W3", OilRate: 90, WaterCut: 20, Status: StatusGood},
	})

	if pad.Status != StatusWarning {
		t.Fatalf("expected pad status warning, got %q", pad.Status)
	}
	if pad.WellCount != 3 {
		t.Fatalf("expected 3 wells, got %d", pad.WellCount)
	}
	if pad.ActiveWellCount != 3 {
		t.Fatalf("expected 3 active wells, got %d", pad.ActiveWellCount)
	}
	if pad.AvgOilRate != 80 {
		t.Fatalf("expected avg oil rate 80, got %v", pad.AvgOilRate)
	}
	if pad.AvgWaterCut != 20 {
		t.Fatalf("expected avg water cut 20, got %v", pad.AvgWaterCut)
	}
}

func TestAggregatePadAlertWinsOverWarning(t *testing.T) {
	pad := AggregatePad("Pad B", []WellRecord{
		{Name: "W1", Status: StatusGood},
		{Name: "W2", Status: StatusWarning},
		{Name: "W3", Status: StatusAlert},
	})

	if pad.Status != StatusAlert {
		t.Fatalf("expected pad status alert, got %q", pad.Status)
	}
	if pad.ActiveWellCount != 2 {
		t.Fatalf("expected 2 active wells, got %d", pad.ActiveWellCount)
	}
}

func TestAggregatePadStampsPadName(t *testing.T) {
	pad := AggregatePad("Pad C", []WellRecord{{Name: "W1", Status: StatusGood}})

	if pad.Wells[0].PadName != "Pad C" {
		t.Fatalf("expected pad name stamped on well, got %q", pad.Wells[0].PadName)
	}
}
