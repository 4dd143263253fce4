// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lotus-yoga/booking-api/internal/model"
	"github.com/lotus-yoga/booking-api/internal/repository"
)

// ErrInvalidArgument is returned for malformed ids and invalid payloads.
// Handlers map it to a client-error status.
var ErrInvalidArgument = errors.New("invalid argument")

// UserStore is the persistence contract for users.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user model.User) (*model.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update model.UpdateUserRequest) error
}

// InstructorStore is the persistence contract for instructors.
type InstructorStore interface {
	List(ctx context.Context) ([]model.Instructor, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Instructor, error)
	ListByName(ctx context.Context, name string) ([]model.Instructor, error)
}

// ClassStore is the persistence contract for classes.
type ClassStore interface {
	List(ctx context.Context) ([]model.Class, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Class, error)
	ListByInstructorName(ctx context.Context, name string) ([]model.Class, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Class, error)
	ReserveSeat(ctx context.Context, id primitive.ObjectID) (*model.Class, error)
	ReleaseSeat(ctx context.Context, id primitive.ObjectID) error
}

// PurchaseStore is the persistence contract for purchase records.
type PurchaseStore interface {
	List(ctx context.Context) ([]model.Purchase, error)
	ListByEmail(ctx context.Context, email string) ([]model.Purchase, error)
	GetByClassAndEmail(ctx context.Context, classID primitive.ObjectID, email string) (*model.Purchase, error)
	Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// BookingService orchestrates all booking-platform operations.
type BookingService struct {
	users       UserStore
	instructors InstructorStore
	classes     ClassStore
	purchases   PurchaseStore
	validate    *validator.Validate
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(users UserStore, instructors InstructorStore, classes ClassStore, purchases PurchaseStore) *BookingService {
	return &BookingService{
		users:       users,
		instructors: instructors,
		classes:     classes,
		purchases:   purchases,
		validate:    validator.New(),
	}
}

// parseID validates the store's 24-character hex id format before any lookup
// so malformed ids surface as a client error, never a store error.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id format", ErrInvalidArgument)
	}
	return oid, nil
}

// normalizeEmail canonicalizes an email before it is stored or looked up.
// Every email-keyed path must use this, read and write alike, or a user
// registered as A@X.com becomes unreadable by the same string.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ─── Users ────────────────────────────────────────────────────────────────────

// ListUsers returns all users.
func (s *BookingService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// GetUserByEmail returns the user for an email, or nil when absent.
func (s *BookingService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CreateUser registers a user idempotently by email: if the email is already
// present, no write happens and created is false.
func (s *BookingService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, bool, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user, err := s.users.Create(ctx, model.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

// UpdateUser applies a partial profile update to the user with the given id.
func (s *BookingService) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if req.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidArgument)
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	return s.users.Update(ctx, oid, req)
}

// ─── Instructors ─────────────────────────────────────────────────────────────

// ListInstructors returns all instructors.
func (s *BookingService) ListInstructors(ctx context.Context) ([]model.Instructor, error) {
	return s.instructors.List(ctx)
}

// GetInstructor returns a single instructor by id.
func (s *BookingService) GetInstructor(ctx context.Context, id string) (*model.Instructor, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.instructors.GetByID(ctx, oid)
}

// ─── Classes ─────────────────────────────────────────────────────────────────

// ListClasses returns all classes.
func (s *BookingService) ListClasses(ctx context.Context) ([]model.Class, error) {
	return s.classes.List(ctx)
}

// GetClassWithInstructors returns a class together with the instructors whose
// name matches its denormalized instructor field. The name is not enforced
// unique, so the instructor slice may hold zero or many entries.
func (s *BookingService) GetClassWithInstructors(ctx context.Context, id string) (*model.ClassDetail, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	instructors, err := s.instructors.ListByName(ctx, class.Instructor)
	if err != nil {
		return nil, fmt.Errorf("resolve class instructors: %w", err)
	}
	if instructors == nil {
		instructors = []model.Instructor{}
	}
	return &model.ClassDetail{ClassItem: *class, InstructorItem: instructors}, nil
}

// ClassesByInstructor resolves an instructor by id and returns the classes
// taught under that instructor's name.
func (s *BookingService) ClassesByInstructor(ctx context.Context, instructorID string) ([]model.Class, error) {
	oid, err := parseID(instructorID)
	if err != nil {
		return nil, err
	}
	instructor, err := s.instructors.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.classes.ListByInstructorName(ctx, instructor.Name)
}

// InstructorsForClass resolves a class by id and returns the instructors
// matching its instructor name.
func (s *BookingService) InstructorsForClass(ctx context.Context, classID string) ([]model.Instructor, error) {
	oid, err := parseID(classID)
	if err != nil {
		return nil, err
	}
	class, err := s.classes.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.instructors.ListByName(ctx, class.Instructor)
}

// ─── Enrollment ──────────────────────────────────────────────────────────────

// Purchase enrolls an email in a class. Checks run strictly in order and the
// first failure short-circuits: class existence, duplicate enrollment, seat
// capacity. The seat is taken with a single conditional increment, and the
// purchase record is written afterwards; if that write fails the seat is
// released again.
func (s *BookingService) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	classID, err := parseID(req.ClassID)
	if err != nil {
		return nil, err
	}

	// Step 1: the class must exist.
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		return nil, err
	}

	// Step 2: reject duplicate enrollment up front. The unique purchase
	// index remains the backstop for concurrent attempts.
	if _, err := s.purchases.GetByClassAndEmail(ctx, classID, req.Email); err == nil {
		return nil, repository.ErrAlreadyEnrolled
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing purchase: %w", err)
	}

	// Step 3+4: capacity check and counter increment in one conditional write.
	class, err := s.classes.ReserveSeat(ctx, classID)
	if err != nil {
		return nil, err
	}

	// Step 5: record who holds the seat.
	_, err = s.purchases.Create(ctx, model.Purchase{
		ClassID:      classID,
		Email:        req.Email,
		PurchaseDate: time.Now().UTC(),
	})
	if err != nil {
		if releaseErr := s.classes.ReleaseSeat(ctx, classID); releaseErr != nil {
			return nil, fmt.Errorf("record purchase: %w (release seat: %s)", err, releaseErr)
		}
		if errors.Is(err, repository.ErrAlreadyEnrolled) {
			return nil, repository.ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	return &model.PurchaseResult{
		Message:          "Purchase successful",
		Success:          true,
		StudentsEnrolled: class.StudentsEnrolled,
		TotalSeats:       class.TotalSeats,
	}, nil
}

// ─── Purchases ───────────────────────────────────────────────────────────────

// ListPurchases returns all purchase records.
func (s *BookingService) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	return s.purchases.List(ctx)
}

// PurchasedClasses returns the class documents an email has purchased.
// Purchases whose class no longer exists are silently dropped.
func (s *BookingService) PurchasedClasses(ctx context.Context, email string) ([]model.Class, error) {
	purchases, err := s.purchases.ListByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ClassID)
	}
	return s.classes.ListByIDs(ctx, ids)
}

// RemovePurchase deletes a purchase record by its own id.
func (s *BookingService) RemovePurchase(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	return s.purchases.DeleteByID(ctx, oid)
}
