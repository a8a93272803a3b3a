package models

import (
	"database/sql/driver"
	"time"
)

// CenterStatus is the moderation state of a center.
type CenterStatus string

const (
	CenterStatusPending  CenterStatus = "pending"
	CenterStatusApproved CenterStatus = "approved"
	CenterStatusRejected CenterStatus = "rejected"
)

// Upload field names accepted on center registration.
const (
	CenterFileAadharFront             = "aadhar_f"
	CenterFileAadharBack              = "aadhar_b"
	CenterFileMarksheet               = "marksheet"
	CenterFileRegistrationCertificate = "registration_certificate"
	CenterFilePhoto                   = "ch_img"
	CenterFileSignature               = "ch_sign"
)

// CenterFileFields lists the document slots in display order.
var CenterFileFields = []string{
	CenterFileAadharFront,
	CenterFileAadharBack,
	CenterFileMarksheet,
	CenterFileRegistrationCertificate,
	CenterFilePhoto,
	CenterFileSignature,
}

// CenterFiles maps document slots to stored relative paths.
type CenterFiles map[string]string

// Value marshals files to JSON for persistence.
func (f CenterFiles) Value() (driver.Value, error) {
	if f == nil {
		f = CenterFiles{}
	}
	return jsonbValue("center files", map[string]string(f))
}

// Scan unmarshals JSON payloads into the files map.
func (f *CenterFiles) Scan(value interface{}) error {
	out := CenterFiles{}
	if err := scanJSONB("center files", value, (*map[string]string)(&out)); err != nil {
		return err
	}
	*f = out
	return nil
}

// FormValues is a submitted form kept verbatim for audit.
type FormValues map[string]string

// Value marshals the form to JSON for persistence.
func (v FormValues) Value() (driver.Value, error) {
	if v == nil {
		v = FormValues{}
	}
	return jsonbValue("form values", map[string]string(v))
}

// Scan unmarshals JSON payloads into the form map.
func (v *FormValues) Scan(value interface{}) error {
	out := FormValues{}
	if err := scanJSONB("form values", value, (*map[string]string)(&out)); err != nil {
		return err
	}
	*v = out
	return nil
}

// Center is a registered training institute.
type Center struct {
	ID           string       `db:"id" json:"id"`
	CReg         int          `db:"c_reg" json:"cReg"`
	FullName     string       `db:"fullname" json:"fullname"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Inst         string       `db:"inst" json:"inst"`
	CenAdr       string       `db:"cen_adr" json:"cenAdr"`
	State        string       `db:"state" json:"state"`
	District     string       `db:"district" json:"district"`
	City         string       `db:"city" json:"city"`
	Pincode      string       `db:"pincode" json:"pincode"`
	TPC          string       `db:"t_pc" json:"tPC"`
	Staffs       string       `db:"staffs" json:"staffs"`
	Phone        string       `db:"phone" json:"phone"`
	Files        CenterFiles  `db:"files" json:"files,omitempty"`
	RawBody      FormValues   `db:"raw_body" json:"-"`
	Status       CenterStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// Approved reports whether the center passed moderation.
func (c Center) Approved() bool {
	return c.Status == CenterStatusApproved
}

// Snapshot copies the fields students embed at admission time.
func (c Center) Snapshot() CenterSnapshot {
	id := c.ID
	return CenterSnapshot{ID: &id, Inst: c.Inst, CenAdr: c.CenAdr, State: c.State, Phone: c.Phone}
}

// CenterFilter captures super-admin list criteria.
type CenterFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// PublicCenter is the projection exposed on public listings.
type PublicCenter struct {
	ID        string     `db:"id" json:"id"`
	Inst      string     `db:"inst" json:"inst"`
	FullName  string     `db:"fullname" json:"fullname,omitempty"`
	CenAdr    string     `db:"cen_adr" json:"cenAdr"`
	City      string     `db:"city" json:"city,omitempty"`
	District  string     `db:"district" json:"district,omitempty"`
	State     string     `db:"state" json:"state"`
	Phone     string     `db:"phone" json:"phone"`
	CreatedAt *time.Time `db:"created_at" json:"createdAt,omitempty"`
}

// PublicCenterPage is a paged public listing.
type PublicCenterPage struct {
	Centers []PublicCenter `json:"centers"`
	Meta    ListMeta       `json:"meta"`
}

// ListMeta describes a public page.
type ListMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// StateCount aggregates centers per state.
type StateCount struct {
	State    string `db:"state" json:"state"`
	Count    int    `db:"count" json:"count"`
	Approved int    `db:"approved" json:"approved"`
	Pending  int    `db:"pending" json:"pending"`
}

// CenterDocument is a signed download link for one uploaded document.
type CenterDocument struct {
	Field     string    `json:"field"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
