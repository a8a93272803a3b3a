package models

import (
	"database/sql/driver"
	"time"
)

// StudyMode says whether a student enrolled under a center or online.
type StudyMode string

const (
	StudyModeOnline  StudyMode = "online"
	StudyModeOffline StudyMode = "offline"
)

// StudentStatus captures the enrollment state of a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusSuspended StudentStatus = "suspended"
)

// Guardian relations recorded on admission.
const (
	RelationFather   = "Father"
	RelationMother   = "Mother"
	RelationHusband  = "Husband"
	RelationGuardian = "Guardian"
)

// Placeholders used in the center snapshot of online students.
const (
	OnlineCenterName = "Online"
	NotApplicable    = "N/A"
)

// CenterSnapshot is the copy of a center embedded in students and certificates.
type CenterSnapshot struct {
	ID     *string `json:"id"`
	Inst   string  `json:"inst"`
	CenAdr string  `json:"cenAdr,omitempty"`
	State  string  `json:"state,omitempty"`
	Phone  string  `json:"phone,omitempty"`
}

// OnlineCenterSnapshot is used for students enrolled without a center.
func OnlineCenterSnapshot() CenterSnapshot {
	return CenterSnapshot{Inst: OnlineCenterName, CenAdr: NotApplicable, State: NotApplicable, Phone: NotApplicable}
}

// Value marshals the snapshot to JSON for persistence.
func (s CenterSnapshot) Value() (driver.Value, error) {
	return jsonbValue("center snapshot", s)
}

// Scan unmarshals JSON payloads into the snapshot.
func (s *CenterSnapshot) Scan(value interface{}) error {
	var out CenterSnapshot
	if err := scanJSONB("center snapshot", value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// CourseSnapshot is the copy of a catalog course embedded in students and certificates.
type CourseSnapshot struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      string   `json:"type"`
	Duration  string   `json:"duration"`
	Subjects  []string `json:"subjects,omitempty"`
	Semesters int      `json:"semesters,omitempty"`
}

// Value marshals the snapshot to JSON for persistence.
func (s CourseSnapshot) Value() (driver.Value, error) {
	return jsonbValue("course snapshot", s)
}

// Scan unmarshals JSON payloads into the snapshot.
func (s *CourseSnapshot) Scan(value interface{}) error {
	var out CourseSnapshot
	if err := scanJSONB("course snapshot", value, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// StudentProfile holds the personal details captured on admission.
type StudentProfile struct {
	Name          string    `json:"name"`
	Relation      string    `json:"relation"`
	GuardianName  string    `json:"guardianName"`
	Gender        string    `json:"gender"`
	DOB           time.Time `json:"dob"`
	Phone         string    `json:"phone"`
	Qualification string    `json:"qualification"`
	Address       string    `json:"address"`
}

// Value marshals the profile to JSON for persistence.
func (p StudentProfile) Value() (driver.Value, error) {
	return jsonbValue("student profile", p)
}

// Scan unmarshals JSON payloads into the profile.
func (p *StudentProfile) Scan(value interface{}) error {
	var out StudentProfile
	if err := scanJSONB("student profile", value, &out); err != nil {
		return err
	}
	*p = out
	return nil
}

// Student is an enrolled learner.
type Student struct {
	ID           string         `db:"id" json:"id"`
	StudentID    string         `db:"student_id" json:"studentId"`
	StudyMode    StudyMode      `db:"study_mode" json:"studyMode"`
	Center       CenterSnapshot `db:"center" json:"center"`
	Course       CourseSnapshot `db:"course" json:"course"`
	Profile      StudentProfile `db:"personal" json:"student"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Status       StudentStatus  `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// Active reports whether the student is currently enrolled.
func (s Student) Active() bool {
	return s.Status == StudentStatusActive
}

// Snapshot copies the fields certificates embed at issue time.
func (s Student) Snapshot() StudentSnapshot {
	return StudentSnapshot{ID: s.ID, StudentID: s.StudentID, Name: s.Profile.Name, Email: s.Email}
}

// StudentFilter captures list criteria.
type StudentFilter struct {
	Status   string
	Search   string
	CenterID string
	Page     int
	PageSize int
}

// AdmissionResult is returned after a successful admission.
type AdmissionResult struct {
	OK        bool            `json:"ok"`
	Message   string          `json:"message"`
	StudentID string          `json:"studentId"`
	Center    AdmissionCenter `json:"center"`
}

// AdmissionCenter summarises where the student enrolled.
type AdmissionCenter struct {
	Inst   string `json:"inst"`
	CenAdr string `json:"cenAdr"`
}
