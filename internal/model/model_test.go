package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassSeatHelpers(t *testing.T) {
	c := Class{TotalSeats: 10, StudentsEnrolled: 4}
	assert.Equal(t, 6, c.Remaining())
	assert.False(t, c.IsFull())

	c.StudentsEnrolled = 10
	assert.Equal(t, 0, c.Remaining())
	assert.True(t, c.IsFull())
}

func TestUpdateUserRequestIsEmpty(t *testing.T) {
	assert.True(t, UpdateUserRequest{}.IsEmpty())

	name := "A"
	assert.False(t, UpdateUserRequest{Name: &name}.IsEmpty())
}
