// Package repository implements all document-store access for the yoga
// booking system. It uses the official MongoDB driver directly (no ODM) for
// transparency and performance.
package repository

import "errors"

// Collection names inside the yoga database.
const (
	usersCollection       = "users"
	instructorsCollection = "instructors"
	classesCollection     = "classes"
	purchasesCollection   = "purchases"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// ErrClassFull is returned when a class has no remaining seats.
var ErrClassFull = errors.New("no seats available")

// ErrAlreadyEnrolled is returned when the same email purchases a class twice.
var ErrAlreadyEnrolled = errors.New("already enrolled in this class")
