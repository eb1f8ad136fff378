package route

import (
	"errors"
	"fmt"
	"iter"

	"fleet-monitor/simulator/internal/domain"
)

// StepsPerLeg is the number of positions emitted for each leg.
const StepsPerLeg = 50

var ErrTooFewWaypoints = errors.New("route needs at least 2 waypoints")

type Step struct {
	Leg      int
	Step     int
	Position domain.Position
}

// Interpolator walks a route leg by leg. Each leg is half-open, so the final
// waypoint of the route is never emitted.
type Interpolator struct {
	route domain.Route
}

func NewInterpolator(r domain.Route) (*Interpolator, error) {
	if len(r) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewWaypoints, len(r))
	}
	return &Interpolator{route: append(domain.Route(nil), r...)}, nil
}

func (in *Interpolator) Route() domain.Route {
	return in.route
}

// Len is the total number of steps over all legs.
func (in *Interpolator) Len() int {
	return StepsPerLeg * in.route.Legs()
}

func (in *Interpolator) Position(leg, step int) domain.Position {
	start, end := in.route[leg], in.route[leg+1]
	return domain.Position{
		Lat: start.Lat + (end.Lat-start.Lat)*float64(step)/StepsPerLeg,
		Lng: start.Lng + (end.Lng-start.Lng)*float64(step)/StepsPerLeg,
	}
}

// Steps yields every (leg, step) position in order. Each call starts over.
func (in *Interpolator) Steps() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for leg := 0; leg < in.route.Legs(); leg++ {
			for s := 0; s < StepsPerLeg; s++ {
				if !yield(Step{Leg: leg, Step: s, Position: in.Position(leg, s)}) {
					return
				}
			}
		}
	}
}
