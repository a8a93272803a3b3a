package models

import (
	"database/sql/driver"
	"time"
)

// CertificateType categorises an issued certificate.
type CertificateType string

const (
	CertificateTypeCompletion    CertificateType = "completion"
	CertificateTypeExcellence    CertificateType = "excellence"
	CertificateTypeParticipation CertificateType = "participation"
	CertificateTypeAchievement   CertificateType = "achievement"
)

// CertificateStatus captures the lifecycle of a certificate.
type CertificateStatus string

const (
	CertificateStatusActive  CertificateStatus = "active"
	CertificateStatusRevoked CertificateStatus = "revoked"
	CertificateStatusExpired CertificateStatus = "expired"
)

// Grades accepted on issuance.
var CertificateGrades = []string{"A+", "A", "B+", "B", "C+", "C", "Pass"}

// DefaultCertificateGrade is applied when no grade is supplied.
const DefaultCertificateGrade = "Pass"

// StudentSnapshot is the copy of a student embedded in a certificate.
type StudentSnapshot struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Value marshals the snapshot to JSON for persistence.
func (s StudentSnapshot) Value() (driver.Value, error) {
	return jsonbValue("student snapshot", s)
}

// Scan unmarshals JSON payloads into the snapshot.
func (s *StudentSnapshot) Scan(value interface{}) error {
	var out StudentSnapshot
	if err := scanJSONB("student snapshot", value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// CertificateMetadata records who issued a certificate and why.
type CertificateMetadata struct {
	IssuerName  string  `json:"issuerName"`
	IssuerEmail string  `json:"issuerEmail,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Value marshals metadata to JSON for persistence.
func (m CertificateMetadata) Value() (driver.Value, error) {
	return jsonbValue("certificate metadata", m)
}

// Scan unmarshals JSON payloads into the metadata.
func (m *CertificateMetadata) Scan(value interface{}) error {
	var out CertificateMetadata
	if err := scanJSONB("certificate metadata", value, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Certificate is an issued credential.
type Certificate struct {
	ID               string              `db:"id" json:"id"`
	CertificateID    string              `db:"certificate_id" json:"certificateId"`
	VerificationCode string              `db:"verification_code" json:"verificationCode"`
	StudentRef       string              `db:"student_ref" json:"-"`
	Student          StudentSnapshot     `db:"student" json:"student"`
	Course           CourseSnapshot      `db:"course" json:"course"`
	Center           CenterSnapshot      `db:"center" json:"center"`
	CertificateType  CertificateType     `db:"certificate_type" json:"certificateType"`
	Grade            string              `db:"grade" json:"grade"`
	IssueDate        time.Time           `db:"issue_date" json:"issueDate"`
	ValidUntil       *time.Time          `db:"valid_until" json:"validUntil,omitempty"`
	Status           CertificateStatus   `db:"status" json:"status"`
	IssuedBy         string              `db:"issued_by" json:"issuedBy"`
	Metadata         CertificateMetadata `db:"metadata" json:"metadata"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updatedAt"`
}

// Expired reports whether validUntil lies before now.
func (c Certificate) Expired(now time.Time) bool {
	return c.ValidUntil != nil && c.ValidUntil.Before(now)
}

// CertificateFilter captures list criteria.
type CertificateFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// IssueCertificateRequest is the super-admin issuance payload.
type IssueCertificateRequest struct {
	StudentID       string `json:"studentId" form:"studentId"`
	CertificateType string `json:"certificateType" form:"certificateType"`
	Grade           string `json:"grade" form:"grade"`
	ValidUntil      string `json:"validUntil" form:"validUntil"`
	Notes           string `json:"notes" form:"notes"`
}

// IssueCertificateResult is returned after a successful issuance.
type IssueCertificateResult struct {
	OK               bool   `json:"ok"`
	Message          string `json:"message"`
	CertificateID    string `json:"certificateId"`
	VerificationCode string `json:"verificationCode"`
}
