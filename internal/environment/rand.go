package environment

import (
	"time"

	"github.com/MichaelTJones/pcg"
)

const pcgSequence = 0xda3e39cb94b95bdb

// PCGSource is a seedable Source backed by PCG32.
type PCGSource struct {
	r *pcg.PCG32
}

// NewPCGSource seeds a source; a zero seed draws one from the clock.
func NewPCGSource(seed int64) *PCGSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := pcg.NewPCG32()
	r.Seed(uint64(seed), pcgSequence)
	return &PCGSource{r: r}
}

func (s *PCGSource) Float64() float64 {
	return float64(s.r.Random()) / (1 << 32)
}

// FixedSource returns the same draw every time.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }
