package handlers

import (
	"net/http"

	"vehicle/api/internal/httpapi/response"
	"vehicle/api/internal/models"
)

type VehicleHandler struct{}

func NewVehicleHandler() *VehicleHandler {
	return &VehicleHandler{}
}

// Get serves the vehicle as a bare JSON object. Nothing on the request is read.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, models.NewVehicle())
}
