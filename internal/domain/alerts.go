package domain

type AlertType string

const (
	AlertCargoTempHigh AlertType = "CARGO_TEMP_HIGH"
	AlertLowFuel       AlertType = "LOW_FUEL"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "INFO"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityCritical AlertSeverity = "CRITICAL"
)

type Alert struct {
	Type     AlertType     `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	Value    float64       `json:"value"`
}

type AlertRule struct {
	Type      AlertType
	Severity  AlertSeverity
	Message   string
	Evaluator func(s *VehicleTelemetryState) bool
	Value     func(s *VehicleTelemetryState) float64
}

// Alerts annotate snapshots only. Status is derived by DeriveStatus alone.
var DefaultAlertRules = []AlertRule{
	{
		Type:     AlertCargoTempHigh,
		Severity: SeverityCritical,
		Message:  "CRITICAL: CARGO TEMP HIGH!",
		Evaluator: func(s *VehicleTelemetryState) bool {
			return s.CargoTempC > CargoTempAlarmC
		},
		Value: func(s *VehicleTelemetryState) float64 { return s.CargoTempC },
	},
	{
		Type:     AlertLowFuel,
		Severity: SeverityWarning,
		Message:  "WARNING: FUEL LOW",
		Evaluator: func(s *VehicleTelemetryState) bool {
			return s.FuelPct < 10.0
		},
		Value: func(s *VehicleTelemetryState) float64 { return s.FuelPct },
	},
}

func EvaluateAlerts(rules []AlertRule, s *VehicleTelemetryState) []Alert {
	var out []Alert
	for _, rule := range rules {
		if !rule.Evaluator(s) {
			continue
		}
		out = append(out, Alert{
			Type:     rule.Type,
			Severity: rule.Severity,
			Message:  rule.Message,
			Value:    rule.Value(s),
		})
	}
	return out
}
