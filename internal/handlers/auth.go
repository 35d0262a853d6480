package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/auth"
	"github.com/ukydev/ride-dispatch/internal/db"
	"github.com/ukydev/ride-dispatch/internal/middleware"
	"github.com/ukydev/ride-dispatch/internal/models"
)

// AuthHandler handles rider and captain account requests
type AuthHandler struct {
	authService *auth.Service
	riders      db.RiderCollection
	captains    db.CaptainCollection
	tokens      db.TokenCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, riders db.RiderCollection, captains db.CaptainCollection, tokens db.TokenCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		riders:      riders,
		captains:    captains,
		tokens:      tokens,
	}
}

// RegisterRider handles rider registration
func (h *AuthHandler) RegisterRider(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.RegisterRiderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidateFullname(req.Fullname); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.riders.FindRiderByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	rider, err := h.riders.InsertRider(r.Context(), models.Rider{
		Fullname:     req.Fullname,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		http.Error(w, "Failed to create rider", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(rider.ID.Hex(), rider.Email, models.RoleRider)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, User: rider})
}

// RegisterCaptain handles captain registration
func (h *AuthHandler) RegisterCaptain(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.RegisterCaptainRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidateFullname(req.Fullname); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsValidVehicleClass(req.Vehicle.Class) {
		http.Error(w, "Invalid vehicle class", http.StatusBadRequest)
		return
	}
	if req.Vehicle.Plate == "" || req.Vehicle.Capacity < 1 {
		http.Error(w, "Vehicle plate and capacity are required", http.StatusBadRequest)
		return
	}

	if _, err := h.captains.FindCaptainByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	// New captains start unavailable and without a location; they become
	// eligible for matching only after toggling availability and reporting
	// a position.
	captain, err := h.captains.InsertCaptain(r.Context(), models.Captain{
		Fullname:     req.Fullname,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Vehicle:      req.Vehicle,
	})
	if err != nil {
		http.Error(w, "Failed to create captain", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(captain.ID.Hex(), captain.Email, models.RoleCaptain)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, User: captain})
}

// LoginRider handles rider login
func (h *AuthHandler) LoginRider(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	rider, err := h.riders.FindRiderByEmail(r.Context(), req.Email)
	if err != nil || !h.authService.CheckPassword(req.Password, rider.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(rider.ID.Hex(), rider.Email, models.RoleRider)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: rider})
}

// LoginCaptain handles captain login
func (h *AuthHandler) LoginCaptain(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}

	captain, err := h.captains.FindCaptainByEmail(r.Context(), req.Email)
	if err != nil || !h.authService.CheckPassword(req.Password, captain.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(captain.ID.Hex(), captain.Email, models.RoleCaptain)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: captain})
}

// Logout blacklists the presented token until it would have expired.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := h.authService.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	if err := h.tokens.BlacklistToken(r.Context(), token, time.Unix(claims.Exp, 0)); err != nil {
		log.WithError(err).Error("Failed to blacklist token")
		http.Error(w, "Failed to log out", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Profile returns the current caller's account.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	switch claims.Role {
	case models.RoleRider:
		rider, err := h.riders.FindRiderByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Rider not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rider)
	case models.RoleCaptain:
		captain, err := h.captains.FindCaptainByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Captain not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, captain)
	default:
		http.Error(w, "Unknown role", http.StatusForbidden)
	}
}

// SetAvailability toggles whether the calling captain is matchable.
func (h *AuthHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var req struct {
		Available *bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Available == nil {
		http.Error(w, "Field 'available' is required", http.StatusBadRequest)
		return
	}

	if err := h.captains.SetAvailability(r.Context(), claims.UserID, *req.Available); err != nil {
		if errors.Is(err, db.ErrCaptainNotFound) {
			http.Error(w, "Captain not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update availability", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": *req.Available})
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (models.LoginRequest, bool) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return req, false
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
