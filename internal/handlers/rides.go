package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/db"
	"github.com/ukydev/ride-dispatch/internal/fare"
	"github.com/ukydev/ride-dispatch/internal/middleware"
	"github.com/ukydev/ride-dispatch/internal/models"
	"github.com/ukydev/ride-dispatch/internal/rides"
)

// RideService is the dispatch surface the ride handlers depend on.
type RideService interface {
	GetFare(ctx context.Context, pickup, destination string) (*models.FareQuote, error)
	CreateRide(ctx context.Context, riderID, pickup, destination string, class models.VehicleClass, quote models.FareQuote) (*models.RideWithRider, error)
	GetRide(ctx context.Context, rideID, riderID string) (*models.Ride, error)
	ConfirmRide(ctx context.Context, rideID, captainID string) (*models.Ride, error)
	StartRide(ctx context.Context, rideID, captainID, code string) (*models.Ride, error)
	EndRide(ctx context.Context, rideID, captainID string) (*models.Ride, error)
	CancelRide(ctx context.Context, rideID, riderID string) (*models.Ride, error)
}

// RideHandler handles ride dispatch and lifecycle requests
type RideHandler struct {
	service RideService
}

// NewRideHandler creates a new ride handler
func NewRideHandler(service RideService) *RideHandler {
	return &RideHandler{service: service}
}

// CreateRideRequest is the body of a ride creation request.
type CreateRideRequest struct {
	Pickup       string              `json:"pickup"`
	Destination  string              `json:"destination"`
	VehicleClass models.VehicleClass `json:"vehicle_class"`
	FareQuote    models.FareQuote    `json:"fare_quote"`
}

// createRideResponse attaches the one-time code for the rider; the code is
// excluded from every other serialization of a ride.
type createRideResponse struct {
	models.RideWithRider
	Code string `json:"code"`
}

// GetFare quotes a trip between the pickup and destination query params.
func (h *RideHandler) GetFare(w http.ResponseWriter, r *http.Request) {
	pickup := r.URL.Query().Get("pickup")
	destination := r.URL.Query().Get("destination")
	if pickup == "" || destination == "" {
		http.Error(w, "Pickup and destination are required", http.StatusBadRequest)
		return
	}

	quote, err := h.service.GetFare(r.Context(), pickup, destination)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// CreateRide creates a ride for the calling rider.
func (h *RideHandler) CreateRide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req CreateRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Pickup == "" || req.Destination == "" {
		http.Error(w, "Pickup and destination are required", http.StatusBadRequest)
		return
	}

	ride, err := h.service.CreateRide(r.Context(), claims.UserID, req.Pickup, req.Destination, req.VehicleClass, req.FareQuote)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createRideResponse{RideWithRider: *ride, Code: ride.Code})
}

// GetRide returns the calling rider's ride with its one-time code, so a
// rider can recover the code after losing their connection.
func (h *RideHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	ride, err := h.service.GetRide(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		models.Ride
		Code string `json:"code"`
	}{Ride: *ride, Code: ride.Code})
}

// ConfirmRide claims a ride for the calling captain.
func (h *RideHandler) ConfirmRide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	ride, err := h.service.ConfirmRide(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

// StartRide starts a claimed ride once the captain supplies the rider's
// one-time code.
func (h *RideHandler) StartRide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "Field 'code' is required", http.StatusBadRequest)
		return
	}

	ride, err := h.service.StartRide(r.Context(), mux.Vars(r)["id"], claims.UserID, req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

// EndRide completes an ongoing ride.
func (h *RideHandler) EndRide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	ride, err := h.service.EndRide(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

// CancelRide cancels a ride that has not started yet. Only the ride's own
// rider can cancel it.
func (h *RideHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	ride, err := h.service.CancelRide(r.Context(), mux.Vars(r)["id"], claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ride)
}

// writeError maps service errors to HTTP statuses. Conflicts are reported
// distinctly from not-found so clients can tell "someone else got it" from
// "it never existed".
func (h *RideHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rides.ErrInvalidRequest), errors.Is(err, db.ErrInvalidCode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, fare.ErrQuoteUnavailable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, rides.ErrNoDriversAvailable), errors.Is(err, db.ErrRideNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, db.ErrRideUnavailable),
		errors.Is(err, db.ErrRideNotClaimable),
		errors.Is(err, db.ErrRideNotActive),
		errors.Is(err, db.ErrRideNotCancellable):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Error("Ride request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
