package route

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"fleet-monitor/simulator/internal/domain"
)

type routeFile struct {
	Waypoints []domain.Waypoint `yaml:"waypoints"`
}

// DefaultRoute is the Cluj-Napoca to Madrid run.
func DefaultRoute() domain.Route {
	return domain.Route{
		{Name: "Cluj-Napoca, RO", Lat: 46.7712, Lng: 23.5889},
		{Name: "Budapest, HU", Lat: 47.4979, Lng: 19.0402},
		{Name: "Vienna, AT", Lat: 48.2082, Lng: 16.3738},
		{Name: "Milan, IT", Lat: 45.4642, Lng: 9.1900},
		{Name: "Barcelona, ES", Lat: 41.3851, Lng: 2.1734},
		{Name: "Madrid, ES", Lat: 40.4168, Lng: -3.7038},
	}
}

// LoadFile reads a YAML route of the form
//
//	waypoints:
//	  - {name: "Cluj-Napoca, RO", lat: 46.7712, lng: 23.5889}
//
// An empty path returns DefaultRoute.
func LoadFile(path string) (domain.Route, error) {
	if path == "" {
		return DefaultRoute(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (domain.Route, error) {
	var rf routeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse route: %w", err)
	}
	if len(rf.Waypoints) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewWaypoints, len(rf.Waypoints))
	}
	for i, w := range rf.Waypoints {
		if w.Lat < -90 || w.Lat > 90 || w.Lng < -180 || w.Lng > 180 {
			return nil, fmt.Errorf("waypoint %d (%s) out of range: %f,%f", i, w.Name, w.Lat, w.Lng)
		}
	}
	return domain.Route(rf.Waypoints), nil
}
