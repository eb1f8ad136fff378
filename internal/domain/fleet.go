package domain

import "fmt"

type Waypoint struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
}

func (w Waypoint) Position() Position {
	return Position{Lat: w.Lat, Lng: w.Lng}
}

// Route is an ordered sequence of waypoints; consecutive pairs form legs.
type Route []Waypoint

func (r Route) Legs() int {
	if len(r) < 2 {
		return 0
	}
	return len(r) - 1
}

func (r Route) LegLabel(leg int) string {
	return fmt.Sprintf("%s->%s", r[leg].Name, r[leg+1].Name)
}

// VehicleSummary is one entry of the backend's fleet listing.
type VehicleSummary struct {
	ID     int64   `json:"id"`
	Plate  string  `json:"plate"`
	Brand  string  `json:"brand"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

type RecallOutcome struct {
	VehicleID int64  `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Succeeded bool   `json:"succeeded"`
	Err       error  `json:"-"`
}

// RecallReport aggregates the outcomes of one recall run.
type RecallReport struct {
	Depot        Position        `json:"depot"`
	Outcomes     []RecallOutcome `json:"outcomes"`
	Succeeded    int             `json:"succeeded"`
	Failed       int             `json:"failed"`
	FailedPlates []string        `json:"failed_plates"`
}

func NewRecallReport(depot Position, outcomes []RecallOutcome) RecallReport {
	r := RecallReport{Depot: depot, Outcomes: outcomes, FailedPlates: []string{}}
	for _, o := range outcomes {
		if o.Succeeded {
			r.Succeeded++
			continue
		}
		r.Failed++
		r.FailedPlates = append(r.FailedPlates, o.Plate)
	}
	return r
}
