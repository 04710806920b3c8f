package handlers

import (
	"net/http"

	"vehicle/api/internal/httpapi/response"
)

type SystemHandler struct{}

func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, http.StatusOK, map[string]string{"message": "Vehicle API"})
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, http.StatusNotFound, "not found")
}

func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
