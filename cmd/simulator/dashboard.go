package main

import (
	"fmt"
	"io"
	"strings"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/route"
)

const (
	green       = "\033[92m"
	yellow      = "\033[93m"
	red         = "\033[91m"
	reset       = "\033[0m"
	bold        = "\033[1m"
	clearScreen = "\033[H\033[2J"
)

type dashboard struct {
	w io.Writer
}

func (d dashboard) Observe(s domain.Snapshot) {
	color := yellow
	switch s.Status {
	case domain.StatusOnTrip:
		color = green
	case domain.StatusMaintenance:
		color = red
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "%s== SMART TRUCK SIMULATOR ==%s\n", bold, reset)
	fmt.Fprintf(&b, "PLATE:  %-12s DRIVER: %s\n", s.Plate, s.Driver)
	fmt.Fprintf(&b, "LEG:    %s (%d/%d)\n", s.LegLabel, s.Step+1, route.StepsPerLeg)
	fmt.Fprintf(&b, "POS:    %.4f, %.4f\n", s.Position.Lat, s.Position.Lng)
	fmt.Fprintf(&b, "STATUS: %s%-12s%s SPEED: %3d km/h\n", color, s.Status, reset, int(s.SpeedKmh))
	fmt.Fprintf(&b, "FUEL:   %3d%%         TEMP:  %.1f°C\n", int(s.FuelPct), s.CargoTempC)
	if msg := s.AlertMessage(); msg != "" {
		fmt.Fprintf(&b, "\n%s%s%s\n", red, msg, reset)
	}
	io.WriteString(d.w, b.String())
}
