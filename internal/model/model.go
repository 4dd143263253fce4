// Package model defines the core domain types for the yoga booking system.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered member of the platform.
// Email is the natural key: registration is idempotent per email.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	PhoneNumber string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
}

// Instructor represents a yoga instructor. Instructors are provisioned
// directly in the store and are read-only through this API. The name doubles
// as the denormalized join key on Class documents.
type Instructor struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
	Bio   string             `bson:"bio,omitempty" json:"bio,omitempty"`
}

// Class represents a bookable yoga class.
type Class struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Instructor       string             `bson:"instructor" json:"instructor"`
	Price            float64            `bson:"price,omitempty" json:"price,omitempty"`
	TotalSeats       int                `bson:"totalSeats" json:"totalSeats"`
	StudentsEnrolled int                `bson:"studentsEnrolled" json:"studentsEnrolled"`
}

// Remaining returns the number of available seats.
func (c *Class) Remaining() int {
	return c.TotalSeats - c.StudentsEnrolled
}

// IsFull returns true when no seats remain.
func (c *Class) IsFull() bool {
	return c.StudentsEnrolled >= c.TotalSeats
}

// Purchase records one user's enrollment in one class. At most one purchase
// may exist per (classId, email) pair; a unique index enforces this.
type Purchase struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ClassID      primitive.ObjectID `bson:"classId" json:"classId"`
	Email        string             `bson:"email" json:"email"`
	PurchaseDate time.Time          `bson:"purchaseDate" json:"purchaseDate"`
}

// ClassDetail is the response shape of GET /classes/{id}: the class document
// together with every instructor whose name matches its instructor field.
type ClassDetail struct {
	ClassItem      Class        `json:"classItem"`
	InstructorItem []Instructor `json:"instructorItem"`
}

// CreateUserRequest is the payload for registering a user.
type CreateUserRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// UpdateUserRequest carries a partial profile update. Nil fields are left
// untouched in the stored document.
type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u UpdateUserRequest) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.PhoneNumber == nil && u.Address == nil
}

// PurchaseRequest is the payload for enrolling in a class.
type PurchaseRequest struct {
	ClassID string `json:"classId" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// PurchaseResult summarises a successful enrollment.
type PurchaseResult struct {
	Message          string `json:"message"`
	Success          bool   `json:"success"`
	StudentsEnrolled int    `json:"studentsEnrolled"`
	TotalSeats       int    `json:"totalSeats"`
}

// MessageResponse is a minimal JSON message envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
