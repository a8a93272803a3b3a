package models

import "time"

// ContactStatus tracks triage of a contact query.
type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusInProgress ContactStatus = "in-progress"
	ContactStatusResolved   ContactStatus = "resolved"
	ContactStatusClosed     ContactStatus = "closed"
)

// ContactPriority ranks a contact query.
type ContactPriority string

const (
	ContactPriorityLow    ContactPriority = "low"
	ContactPriorityMedium ContactPriority = "medium"
	ContactPriorityHigh   ContactPriority = "high"
	ContactPriorityUrgent ContactPriority = "urgent"
)

// ContactQuery is a message submitted through the public contact form.
type ContactQuery struct {
	ID         string          `db:"id" json:"id"`
	FullName   string          `db:"fullname" json:"fullname"`
	Email      string          `db:"email" json:"email"`
	Phone      string          `db:"phone" json:"phone"`
	Message    string          `db:"message" json:"message"`
	Status     ContactStatus   `db:"status" json:"status"`
	Priority   ContactPriority `db:"priority" json:"priority"`
	IPAddress  string          `db:"ip_address" json:"ipAddress"`
	UserAgent  string          `db:"user_agent" json:"userAgent"`
	AdminNotes string          `db:"admin_notes" json:"adminNotes"`
	AssignedTo string          `db:"assigned_to" json:"assignedTo"`
	ResolvedAt *time.Time      `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// ContactQueryFilter captures list criteria.
type ContactQueryFilter struct {
	Status   string
	Priority string
	Search   string
	Page     int
	PageSize int
}

// ContactQueryUpdate carries super-admin triage changes. Nil fields are left untouched.
type ContactQueryUpdate struct {
	Status     *string `json:"status" form:"status"`
	Priority   *string `json:"priority" form:"priority"`
	AdminNotes *string `json:"adminNotes" form:"adminNotes"`
	AssignedTo *string `json:"assignedTo" form:"assignedTo"`
}

// CallbackStatus tracks a callback request.
type CallbackStatus string

const (
	CallbackStatusPending   CallbackStatus = "pending"
	CallbackStatusCalled    CallbackStatus = "called"
	CallbackStatusCompleted CallbackStatus = "completed"
	CallbackStatusCancelled CallbackStatus = "cancelled"
)

// CallbackRequest is a public request for a phone call.
type CallbackRequest struct {
	ID        string         `db:"id" json:"id"`
	Phone     string         `db:"phone" json:"phone"`
	IPAddress string         `db:"ip_address" json:"ipAddress"`
	UserAgent string         `db:"user_agent" json:"userAgent"`
	Status    CallbackStatus `db:"status" json:"status"`
	Notes     string         `db:"notes" json:"notes"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// CallbackFilter captures list criteria.
type CallbackFilter struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ClientInfo identifies the origin of a public submission.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}
