package domain

import (
	"errors"
	"testing"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		temp float64
		want Status
	}{
		{-22.0, StatusOnTrip},
		{-18.5, StatusOnTrip},
		{-18.0, StatusOnTrip},
		{-17.99, StatusMaintenance},
		{-17.5, StatusMaintenance},
		{4.0, StatusMaintenance},
	}
	for _, tt := range tests {
		if got := DeriveStatus(tt.temp); got != tt.want {
			t.Errorf("DeriveStatus(%v) = %s, want %s", tt.temp, got, tt.want)
		}
	}
}

func TestDeriveStatusHasNoMemory(t *testing.T) {
	seq := []float64{-19, -17.5, -18.1, -17.9, -20}
	want := []Status{StatusOnTrip, StatusMaintenance, StatusOnTrip, StatusMaintenance, StatusOnTrip}
	for i, temp := range seq {
		if got := DeriveStatus(temp); got != want[i] {
			t.Errorf("step %d: DeriveStatus(%v) = %s, want %s", i, temp, got, want[i])
		}
	}
}

func TestNewVehicleTelemetryState(t *testing.T) {
	s := NewVehicleTelemetryState()
	if s.Status != StatusIdle || s.FuelPct != 100.0 || s.CargoTempC != -22.0 || s.SpeedKmh != 0 {
		t.Errorf("unexpected initial state: %+v", s)
	}
}

func TestEvaluateAlerts(t *testing.T) {
	s := VehicleTelemetryState{FuelPct: 50, CargoTempC: -20}
	if got := EvaluateAlerts(DefaultAlertRules, &s); len(got) != 0 {
		t.Fatalf("expected no alerts, got %+v", got)
	}

	s.CargoTempC = -17.5
	s.FuelPct = 8
	got := EvaluateAlerts(DefaultAlertRules, &s)
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts, got %+v", got)
	}
	if got[0].Type != AlertCargoTempHigh || got[0].Value != -17.5 {
		t.Errorf("first alert = %+v", got[0])
	}

	snap := Snapshot{Alerts: []Alert{got[1], got[0]}}
	if msg := snap.AlertMessage(); msg != "CRITICAL: CARGO TEMP HIGH!" {
		t.Errorf("AlertMessage() = %q", msg)
	}
}

func TestNewRecallReport(t *testing.T) {
	outcomes := []RecallOutcome{
		{VehicleID: 1, Plate: "CJ-01-AAA", Succeeded: true},
		{VehicleID: 2, Plate: "CJ-02-BBB", Err: errors.New("boom")},
		{VehicleID: 3, Plate: "CJ-03-CCC", Succeeded: true},
	}
	r := NewRecallReport(Position{Lat: 46.7712, Lng: 23.5889}, outcomes)

	if r.Succeeded != 2 || r.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d", r.Succeeded, r.Failed)
	}
	if len(r.FailedPlates) != 1 || r.FailedPlates[0] != "CJ-02-BBB" {
		t.Errorf("FailedPlates = %v", r.FailedPlates)
	}
	if !outcomes[0].Succeeded || outcomes[1].Succeeded {
		t.Error("outcomes were modified")
	}
}

func TestRouteLegs(t *testing.T) {
	r := Route{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	if r.Legs() != 2 {
		t.Errorf("Legs() = %d", r.Legs())
	}
	if r.LegLabel(1) != "B->C" {
		t.Errorf("LegLabel(1) = %q", r.LegLabel(1))
	}
	if (Route{{Name: "A"}}).Legs() != 0 {
		t.Error("single waypoint route should have no legs")
	}
}
