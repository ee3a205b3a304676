package pgerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: CodeUniqueViolation, Constraint: "bookings_pkey"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "bookings_pkey"))
	assert.False(t, IsUniqueViolation(err, "uq_bookings_patient_slot_active"))
	assert.False(t, IsUniqueViolation(errors.New("plain"), ""))
	assert.False(t, IsCheckViolation(err, ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := &pq.Error{Code: CodeForeignKeyViolation, Constraint: "fk_bookings_slot"}

	assert.True(t, IsForeignKeyViolation(err, "fk_bookings_slot"))
	assert.False(t, IsForeignKeyViolation(err, "other"))
	assert.False(t, IsForeignKeyViolation(&pq.Error{Code: CodeUniqueViolation}, ""))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, IsCheckViolation(&pq.Error{Code: CodeCheckViolation, Constraint: "chk_slots_capacity"}, "chk_slots_capacity"))
}
