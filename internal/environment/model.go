package environment

import "fleet-monitor/simulator/internal/domain"

const (
	WarmingProbability = 0.05
	WarmingStepC       = 0.5
	CoolingStepC       = 0.1
)

// Source supplies uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// Model evolves the cargo temperature of a reefer trailer. The compressor pulls
// the temperature down to the floor; a door opening or defrost cycle warms it
// with no upper bound.
type Model struct {
	src Source
}

// NewModel uses src for its draws; a nil src gets a clock-seeded PCG source.
func NewModel(src Source) *Model {
	if src == nil {
		src = NewPCGSource(0)
	}
	return &Model{src: src}
}

func (m *Model) Step(currentC float64) float64 {
	if m.src.Float64() < WarmingProbability {
		return currentC + WarmingStepC
	}
	if currentC > domain.CargoTempFloorC {
		return max(currentC-CoolingStepC, domain.CargoTempFloorC)
	}
	return currentC
}
