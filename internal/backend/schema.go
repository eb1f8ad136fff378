package backend

import (
	"errors"

	"fleet-monitor/simulator/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (r *LoginResponse) validate() error {
	if r.Token == "" {
		return errors.New("missing token")
	}
	return nil
}

// DriverIdentity is the /api/drivers/me payload. VehicleID is nil when no
// vehicle is assigned to the driver.
type DriverIdentity struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	VehicleID    *int64 `json:"vehicleId"`
	VehiclePlate string `json:"vehiclePlate"`
	VehicleBrand string `json:"vehicleBrand"`
}

// VehicleUpdate is the body of PUT /api/vehicles/{id}. Empty fields are
// omitted so the backend applies a partial update.
type VehicleUpdate struct {
	Plate  string `json:"plate,omitempty"`
	Brand  string `json:"brand,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

func validateVehicles(vs []domain.VehicleSummary) error {
	for _, v := range vs {
		if v.ID == 0 {
			return errors.New("vehicle entry without id")
		}
	}
	return nil
}
