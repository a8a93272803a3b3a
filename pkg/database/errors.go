package database

import (
	"errors"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// Constraint names guarded by unique indexes. Services classify insert
// failures by these names.
const (
	ConstraintCenterEmail             = "centers_email_key"
	ConstraintStudentID               = "students_student_id_key"
	ConstraintStudentEmail            = "students_auth_email_key"
	ConstraintCertificateID           = "certificates_certificate_id_key"
	ConstraintCertificateVerification = "certificates_verification_code_key"
	ConstraintCertificateStudent      = "certificates_student_ref_key"
)

// UniqueViolation reports the constraint name when err is a PostgreSQL
// unique violation. The boolean is false for any other error.
func UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	if string(pqErr.Code) != uniqueViolationCode {
		return "", false
	}
	return pqErr.Constraint, true
}
