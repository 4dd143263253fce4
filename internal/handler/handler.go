// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lotus-yoga/booking-api/internal/model"
	"github.com/lotus-yoga/booking-api/internal/repository"
	"github.com/lotus-yoga/booking-api/internal/service"
)

// Service defines the business-logic contract consumed by the HTTP handlers.
type Service interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, bool, error)
	UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) error

	ListInstructors(ctx context.Context) ([]model.Instructor, error)
	GetInstructor(ctx context.Context, id string) (*model.Instructor, error)

	ListClasses(ctx context.Context) ([]model.Class, error)
	GetClassWithInstructors(ctx context.Context, id string) (*model.ClassDetail, error)
	ClassesByInstructor(ctx context.Context, instructorID string) ([]model.Class, error)
	InstructorsForClass(ctx context.Context, classID string) ([]model.Instructor, error)

	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error)
	ListPurchases(ctx context.Context) ([]model.Purchase, error)
	PurchasedClasses(ctx context.Context, email string) ([]model.Class, error)
	RemovePurchase(ctx context.Context, id string) error
}

// BookingHandler holds all HTTP handlers for the booking API.
type BookingHandler struct {
	svc    Service
	logger *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondServiceError converts service/repository failures into HTTP
// responses. Store failures never leak detail beyond a logged message.
func (h *BookingHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrAlreadyEnrolled):
		writeError(w, http.StatusConflict, "You have already enrolled in this class.")
	case errors.Is(err, repository.ErrClassFull):
		writeError(w, http.StatusConflict, "No seats available")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}

// ─── Users ───────────────────────────────────────────────────────────────────

// ListUsers handles GET /users
func (h *BookingHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUserByEmail handles GET /users/{email}
// Responds with the user document, or a JSON null when the email is unknown.
func (h *BookingHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.svc.GetUserByEmail(r.Context(), email)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /users
// Registration is idempotent per email: a known email returns an
// informational message and writes nothing.
func (h *BookingHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, created, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, model.MessageResponse{Message: "User already added"})
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /users/{id}
func (h *BookingHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateUser(r.Context(), id, req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "User updated successfully"})
}

// ─── Instructors ─────────────────────────────────────────────────────────────

// ListInstructors handles GET /instructors
func (h *BookingHandler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.svc.ListInstructors(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if instructors == nil {
		instructors = []model.Instructor{}
	}
	writeJSON(w, http.StatusOK, instructors)
}

// GetInstructor handles GET /instructors/{id}
func (h *BookingHandler) GetInstructor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	instructor, err := h.svc.GetInstructor(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructor)
}

// ─── Classes ─────────────────────────────────────────────────────────────────

// ListClasses handles GET /classes
func (h *BookingHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.svc.ListClasses(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if classes == nil {
		classes = []model.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

// GetClass handles GET /classes/{id}
// Returns the class joined with its instructor records matched by name.
func (h *BookingHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.svc.GetClassWithInstructors(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ClassesByInstructor handles GET /instructors/classes/{id}
func (h *BookingHandler) ClassesByInstructor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	classes, err := h.svc.ClassesByInstructor(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if classes == nil {
		classes = []model.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

// InstructorsForClass handles GET /classes/instructors/{id}
func (h *BookingHandler) InstructorsForClass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	instructors, err := h.svc.InstructorsForClass(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if instructors == nil {
		instructors = []model.Instructor{}
	}
	writeJSON(w, http.StatusOK, instructors)
}

// ─── Purchases ───────────────────────────────────────────────────────────────

// Purchase handles POST /purchase
// Performs the seat-safe enrollment flow for the requested class and email.
func (h *BookingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Purchase(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Class not found")
			return
		}
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListPurchases handles GET /purchases
func (h *BookingHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.svc.ListPurchases(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

// PurchasedClasses handles GET /purchases/{email}
// Returns the class documents the email has purchased.
func (h *BookingHandler) PurchasedClasses(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	classes, err := h.svc.PurchasedClasses(r.Context(), email)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if classes == nil {
		classes = []model.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

// RemovePurchase handles DELETE /purchases/{id}
func (h *BookingHandler) RemovePurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.RemovePurchase(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Purchase not found")
			return
		}
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Class removed successfully"})
}

// ─── Liveness ────────────────────────────────────────────────────────────────

// Home handles GET /
func Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Server is running"))
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
