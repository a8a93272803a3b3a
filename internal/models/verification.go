package models

import "time"

// VerificationKind names what a verification request looks up.
type VerificationKind string

const (
	VerificationCenter      VerificationKind = "center"
	VerificationStudent     VerificationKind = "student"
	VerificationCertificate VerificationKind = "certificate"
)

// VerificationResult is the outcome of a lookup. Not-found outcomes carry
// Success false and a message.
type VerificationResult struct {
	Type        VerificationKind         `json:"type"`
	Success     bool                     `json:"success"`
	Error       string                   `json:"error,omitempty"`
	Data        interface{}              `json:"data,omitempty"`
	Certificate *CertificateVerification `json:"certificate,omitempty"`
	SearchQuery string                   `json:"searchQuery"`
}

// CenterVerification is the public projection of a verified center.
type CenterVerification struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Institute    string `json:"institute"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	Status       string `json:"status"`
	RegisteredOn string `json:"registeredOn"`
	Verified     bool   `json:"verified"`
}

// StudentVerification is the public projection of a verified student.
type StudentVerification struct {
	StudentID      string `json:"studentId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Center         string `json:"center"`
	CenterLocation string `json:"centerLocation"`
	Course         string `json:"course"`
	CourseType     string `json:"courseType"`
	CourseDuration string `json:"courseDuration"`
	Status         string `json:"status"`
	EnrolledOn     string `json:"enrolledOn"`
	Verified       bool   `json:"verified"`
}

// CertificateVerification is the public projection of a verified certificate.
type CertificateVerification struct {
	CertificateID    string     `json:"certificateId"`
	VerificationCode string     `json:"verificationCode"`
	StudentName      string     `json:"studentName"`
	StudentID        string     `json:"studentId"`
	StudentEmail     string     `json:"studentEmail"`
	Course           string     `json:"course"`
	CourseType       string     `json:"courseType"`
	Duration         string     `json:"duration"`
	Center           string     `json:"center"`
	CenterLocation   string     `json:"centerLocation"`
	CertificateType  string     `json:"certificateType"`
	Grade            string     `json:"grade"`
	IssueDate        time.Time  `json:"issueDate"`
	ValidUntil       *time.Time `json:"validUntil"`
	IssuedBy         string     `json:"issuedBy"`
	Status           string     `json:"status"`
	Notes            *string    `json:"notes"`
}
