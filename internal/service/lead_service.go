package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// Lead messages.
const (
	MsgContactFieldsRequired = "All fields are required"
	MsgLeadInvalidPhone      = "Please enter a valid 10-digit phone number starting with 6-9"
	MsgContactRecent         = "You have already submitted a query recently. Please wait before submitting again."
	MsgContactReceived       = "Thank you for contacting us! We will get back to you soon."
	MsgCallbackPhoneRequired = "Phone number is required"
	MsgCallbackRecent        = "Callback already requested for this number in the last 24 hours"
	MsgCallbackReceived      = "Callback request submitted successfully. We will call you soon!"
	MsgQueryUpdated          = "Query updated successfully"
	MsgQueryDeleted          = "Query deleted successfully"
	MsgQueryMissing          = "Query not found"
	MsgCallbackMissing       = "Callback request not found"
	MsgInvalidStatus         = "Invalid status"
	MsgInvalidPriority       = "Invalid priority"
	MsgStatusUpdated         = "Status updated successfully"
)

const (
	contactDedupeWindow  = 5 * time.Minute
	callbackDedupeWindow = 24 * time.Hour
)

type contactQueryRepository interface {
	Create(ctx context.Context, q *models.ContactQuery) error
	FindByID(ctx context.Context, id string) (*models.ContactQuery, error)
	ExistsSince(ctx context.Context, email, phone string, since time.Time) (bool, error)
	Update(ctx context.Context, q *models.ContactQuery) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.ContactQueryFilter) ([]models.ContactQuery, int, error)
}

type callbackRepository interface {
	Create(ctx context.Context, cb *models.CallbackRequest) error
	ExistsSince(ctx context.Context, phone string, since time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.CallbackStatus, notes string) error
	List(ctx context.Context, filter models.CallbackFilter) ([]models.CallbackRequest, int, error)
}

// ContactRequest is the public contact form.
type ContactRequest struct {
	FullName string `json:"fullname" form:"fullname"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Message  string `json:"message" form:"message"`
}

// CallbackRequestInput is the public callback form.
type CallbackRequestInput struct {
	Phone string `json:"phone" form:"phone"`
}

// CallbackStatusUpdate is the super-admin callback triage payload.
type CallbackStatusUpdate struct {
	Status string `json:"status" form:"status"`
	Notes  string `json:"notes" form:"notes"`
}

// LeadService accepts public contact queries and callback requests and
// exposes them for triage.
type LeadService struct {
	queries   contactQueryRepository
	callbacks callbackRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewLeadService constructs a LeadService.
func NewLeadService(queries contactQueryRepository, callbacks callbackRepository, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{queries: queries, callbacks: callbacks, logger: logger, now: time.Now}
}

// SubmitContact stores a contact query unless the same email or phone wrote in recently.
func (s *LeadService) SubmitContact(ctx context.Context, req ContactRequest, client models.ClientInfo) (string, error) {
	trimFields(&req.FullName, &req.Email, &req.Phone, &req.Message)
	if req.FullName == "" || req.Email == "" || req.Phone == "" || req.Message == "" {
		return "", validationError(MsgContactFieldsRequired)
	}
	phone := digitsOnly(req.Phone)
	if !indianMobilePattern.MatchString(phone) {
		return "", validationError(MsgLeadInvalidPhone)
	}
	if !emailPattern.MatchString(req.Email) {
		return "", validationError(MsgInvalidEmail)
	}
	email := normalizeEmail(req.Email)

	recent, err := s.queries.ExistsSince(ctx, email, phone, s.now().Add(-contactDedupeWindow))
	if err != nil {
		return "", internalError(err, "check recent contact queries")
	}
	if recent {
		return "", validationError(MsgContactRecent)
	}

	query := &models.ContactQuery{
		FullName:  req.FullName,
		Email:     email,
		Phone:     phone,
		Message:   req.Message,
		Status:    models.ContactStatusNew,
		Priority:  models.ContactPriorityMedium,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := s.queries.Create(ctx, query); err != nil {
		return "", internalError(err, "create contact query")
	}
	s.logger.Info("contact query received", zap.String("id", query.ID))
	return MsgContactReceived, nil
}

// RequestCallback stores a callback request unless the phone asked within a day.
func (s *LeadService) RequestCallback(ctx context.Context, req CallbackRequestInput, client models.ClientInfo) (string, error) {
	if strings.TrimSpace(req.Phone) == "" {
		return "", validationError(MsgCallbackPhoneRequired)
	}
	phone := digitsOnly(req.Phone)
	if !indianMobilePattern.MatchString(phone) {
		return "", validationError(MsgLeadInvalidPhone)
	}
	recent, err := s.callbacks.ExistsSince(ctx, phone, s.now().Add(-callbackDedupeWindow))
	if err != nil {
		return "", internalError(err, "check recent callbacks")
	}
	if recent {
		return "", validationError(MsgCallbackRecent)
	}
	cb := &models.CallbackRequest{
		Phone:     phone,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Status:    models.CallbackStatusPending,
	}
	if err := s.callbacks.Create(ctx, cb); err != nil {
		return "", internalError(err, "create callback request")
	}
	s.logger.Info("callback requested", zap.String("id", cb.ID))
	return MsgCallbackReceived, nil
}

// UpdateQuery applies triage changes. Moving to resolved or closed stamps resolvedAt.
func (s *LeadService) UpdateQuery(ctx context.Context, id string, update models.ContactQueryUpdate) (string, error) {
	query, err := s.queries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, MsgQueryMissing)
		}
		return "", internalError(err, "load contact query")
	}
	if v := optional(update.Status); v != "" {
		status := models.ContactStatus(v)
		switch status {
		case models.ContactStatusNew, models.ContactStatusInProgress:
		case models.ContactStatusResolved, models.ContactStatusClosed:
			resolved := s.now().UTC()
			query.ResolvedAt = &resolved
		default:
			return "", validationError(MsgInvalidStatus)
		}
		query.Status = status
	}
	if v := optional(update.Priority); v != "" {
		priority := models.ContactPriority(v)
		switch priority {
		case models.ContactPriorityLow, models.ContactPriorityMedium, models.ContactPriorityHigh, models.ContactPriorityUrgent:
		default:
			return "", validationError(MsgInvalidPriority)
		}
		query.Priority = priority
	}
	if v := optional(update.AdminNotes); v != "" {
		query.AdminNotes = v
	}
	if v := optional(update.AssignedTo); v != "" {
		query.AssignedTo = v
	}
	if err := s.queries.Update(ctx, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, MsgQueryMissing)
		}
		return "", internalError(err, "update contact query")
	}
	return MsgQueryUpdated, nil
}

// DeleteQuery removes a contact query.
func (s *LeadService) DeleteQuery(ctx context.Context, id string) (string, error) {
	if err := s.queries.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, MsgQueryMissing)
		}
		return "", internalError(err, "delete contact query")
	}
	return MsgQueryDeleted, nil
}

// UpdateCallback moves a callback request to another status.
func (s *LeadService) UpdateCallback(ctx context.Context, id string, update CallbackStatusUpdate) (string, error) {
	status := models.CallbackStatus(strings.TrimSpace(update.Status))
	switch status {
	case models.CallbackStatusPending, models.CallbackStatusCalled, models.CallbackStatusCompleted, models.CallbackStatusCancelled:
	default:
		return "", validationError(MsgInvalidStatus)
	}
	if err := s.callbacks.UpdateStatus(ctx, id, status, strings.TrimSpace(update.Notes)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, MsgCallbackMissing)
		}
		return "", internalError(err, "update callback status")
	}
	return MsgStatusUpdated, nil
}

// ListQueries returns a page of contact queries.
func (s *LeadService) ListQueries(ctx context.Context, filter models.ContactQueryFilter) ([]models.ContactQuery, *models.Pagination, error) {
	page, size, _ := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	filter.Page, filter.PageSize = page, size
	queries, total, err := s.queries.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "list contact queries")
	}
	return queries, models.NewPagination(page, size, total), nil
}

// ListCallbacks returns a page of callback requests.
func (s *LeadService) ListCallbacks(ctx context.Context, filter models.CallbackFilter) ([]models.CallbackRequest, *models.Pagination, error) {
	page, size, _ := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	filter.Page, filter.PageSize = page, size
	callbacks, total, err := s.callbacks.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "list callbacks")
	}
	return callbacks, models.NewPagination(page, size, total), nil
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
