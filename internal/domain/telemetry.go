package domain

import "time"

type Status string

const (
	StatusIdle        Status = "IDLE"
	StatusOnTrip      Status = "ON_TRIP"
	StatusMaintenance Status = "MAINTENANCE"
	StatusAvailable   Status = "AVAILABLE"
	StatusActive      Status = "ACTIVE"
)

// Physical constants of the simulated reefer truck.
const (
	TargetSpeedKmh  = 90.0
	SpeedStepKmh    = 5.0
	FuelStartPct    = 100.0
	FuelPerTickPct  = 0.05
	CargoTempStartC = -22.0
	CargoTempFloorC = -22.0
	CargoTempAlarmC = -18.0
)

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VehicleTelemetryState is owned by a single simulation run and mutated once
// per tick.
type VehicleTelemetryState struct {
	Position   Position
	SpeedKmh   float64
	FuelPct    float64
	CargoTempC float64
	Status     Status
}

func NewVehicleTelemetryState() VehicleTelemetryState {
	return VehicleTelemetryState{
		FuelPct:    FuelStartPct,
		CargoTempC: CargoTempStartC,
		Status:     StatusIdle,
	}
}

// DeriveStatus maps the current cargo temperature to an operational status.
// It holds no memory: a recovered temperature flips straight back to ON_TRIP.
func DeriveStatus(cargoTempC float64) Status {
	if cargoTempC > CargoTempAlarmC {
		return StatusMaintenance
	}
	return StatusOnTrip
}

// Snapshot is the observable state emitted after every tick.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Tick      int       `json:"tick"`
	Timestamp time.Time `json:"timestamp"`

	VehicleID int64  `json:"vehicle_id"`
	Plate     string `json:"plate"`
	Driver    string `json:"driver"`

	Leg      int    `json:"leg"`
	Step     int    `json:"step"`
	LegLabel string `json:"leg_label"`

	Position   Position `json:"position"`
	SpeedKmh   float64  `json:"speed_kmh"`
	FuelPct    float64  `json:"fuel_pct"`
	CargoTempC float64  `json:"cargo_temp_c"`
	Status     Status   `json:"status"`

	Alerts []Alert `json:"alerts,omitempty"`
}

// AlertMessage returns the message of the most severe alert, or "".
func (s *Snapshot) AlertMessage() string {
	msg := ""
	for _, a := range s.Alerts {
		if a.Severity == SeverityCritical {
			return a.Message
		}
		if msg == "" {
			msg = a.Message
		}
	}
	return msg
}
