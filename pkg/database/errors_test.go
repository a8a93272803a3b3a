package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolationExtractsConstraint(t *testing.T) {
	err := fmt.Errorf("create student: %w", &pq.Error{Code: "23505", Constraint: ConstraintStudentID})

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, ConstraintStudentID, constraint)
}

func TestUniqueViolationIgnoresOtherErrors(t *testing.T) {
	_, ok := UniqueViolation(&pq.Error{Code: "23503", Constraint: "fk"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("boom"))
	assert.False(t, ok)

	_, ok = UniqueViolation(nil)
	assert.False(t, ok)
}
