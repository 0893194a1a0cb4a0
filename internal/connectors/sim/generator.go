// Package sim generates synthetic well-pad data for simulated mode and as
// the display fallback when a live load fails.
package sim

import (
	"fmt"
	"math/rand"

	"go-pi-well-dashboard/internal/wells"
)

const (
	defaultPadCount = 4
	minWellsPerPad  = 3
	maxWellsPerPad  = 8
)

// Generator produces fully synthetic well pads. Records go through the same
// mapping path as live data with zero attributes, so every field carries the
// synthetic provenance marker and the documented value ranges.
type Generator struct {
	rng      *rand.Rand
	padCount int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		padCount: defaultPadCount,
	}
}

// WellPads generates one synthetic snapshot.
func (g *Generator) WellPads() []wells.WellPadRecord {
	mapping := wells.DefaultMapping()
	out := make([]wells.WellPadRecord, 0, g.padCount)
	wellNo := 100

	for p := 0; p < g.padCount; p++ {
		padName := fmt.Sprintf("Pad %c", 'A'+p)
		count := minWellsPerPad + g.rng.Intn(maxWellsPerPad-minWellsPerPad+1)

		padWells := make([]wells.WellRecord, 0, count)
		for w := 0; w < count; w++ {
			wellNo++
			name := fmt.Sprintf("Well %d", wellNo)
			padWells = append(padWells, wells.MapWell(name, nil, mapping, g.rng))
		}
		out = append(out, wells.AggregatePad(padName, padWells))
	}
	return out
}
