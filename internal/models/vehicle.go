package models

// FixedVehicleID is the identifier every vehicle lookup currently returns.
const FixedVehicleID = "123"

// Vehicle is the record served by the vehicle endpoint.
type Vehicle struct {
	ID string `json:"id"`
}

// NewVehicle builds the vehicle served to callers. A fresh value is returned on
// every call.
func NewVehicle() Vehicle {
	return Vehicle{ID: FixedVehicleID}
}
