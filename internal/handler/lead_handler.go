package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/service"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type leadService interface {
	SubmitContact(ctx context.Context, req service.ContactRequest, client models.ClientInfo) (string, error)
	RequestCallback(ctx context.Context, req service.CallbackRequestInput, client models.ClientInfo) (string, error)
	UpdateQuery(ctx context.Context, id string, update models.ContactQueryUpdate) (string, error)
	DeleteQuery(ctx context.Context, id string) (string, error)
	UpdateCallback(ctx context.Context, id string, update service.CallbackStatusUpdate) (string, error)
	ListQueries(ctx context.Context, filter models.ContactQueryFilter) ([]models.ContactQuery, *models.Pagination, error)
	ListCallbacks(ctx context.Context, filter models.CallbackFilter) ([]models.CallbackRequest, *models.Pagination, error)
}

// LeadHandler exposes the contact form, callback requests and their triage.
type LeadHandler struct {
	leads leadService
}

// NewLeadHandler constructs a LeadHandler.
func NewLeadHandler(leads leadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// Contact godoc
// @Summary Submit a contact query
// @Tags Leads
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.ContactRequest true "Contact form"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/contact [post]
func (h *LeadHandler) Contact(c *gin.Context) {
	var req service.ContactRequest
	if err := bind(c, &req, service.MsgContactFieldsRequired); err != nil {
		response.Error(c, err)
		return
	}
	h.reply(c)(h.leads.SubmitContact(c.Request.Context(), req, clientInfo(c)))
}

// Callback godoc
// @Summary Request a phone callback
// @Tags Leads
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.CallbackRequestInput true "Phone number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/callback-request [post]
func (h *LeadHandler) Callback(c *gin.Context) {
	var req service.CallbackRequestInput
	if err := bind(c, &req, service.MsgCallbackPhoneRequired); err != nil {
		response.Error(c, err)
		return
	}
	h.reply(c)(h.leads.RequestCallback(c.Request.Context(), req, clientInfo(c)))
}

// Queries godoc
// @Summary List contact queries
// @Tags Super Admin
// @Produce json
// @Param status query string false "new, in-progress, resolved or closed"
// @Param priority query string false "low, medium, high or urgent"
// @Param search query string false "Name, email, phone or message"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /super-admin/contact-queries [get]
func (h *LeadHandler) Queries(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.ContactQueryFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: size,
	}
	queries, pagination, err := h.leads.ListQueries(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries, pagination)
}

// UpdateQuery godoc
// @Summary Triage a contact query
// @Tags Super Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Query id"
// @Param payload body models.ContactQueryUpdate true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/contact-query/{id}/update [post]
func (h *LeadHandler) UpdateQuery(c *gin.Context) {
	var update models.ContactQueryUpdate
	if err := bind(c, &update, "invalid query update"); err != nil {
		response.Error(c, err)
		return
	}
	h.reply(c)(h.leads.UpdateQuery(c.Request.Context(), c.Param("id"), update))
}

// DeleteQuery godoc
// @Summary Delete a contact query
// @Tags Super Admin
// @Produce json
// @Param id path string true "Query id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/contact-query/{id}/delete [delete]
func (h *LeadHandler) DeleteQuery(c *gin.Context) {
	h.reply(c)(h.leads.DeleteQuery(c.Request.Context(), c.Param("id")))
}

// Callbacks godoc
// @Summary List callback requests
// @Tags Super Admin
// @Produce json
// @Param status query string false "pending, called, completed or cancelled"
// @Param search query string false "Phone"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /super-admin/callbacks [get]
func (h *LeadHandler) Callbacks(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.CallbackFilter{Status: c.Query("status"), Search: strings.TrimSpace(c.Query("search")), Page: page, PageSize: size}
	callbacks, pagination, err := h.leads.ListCallbacks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, callbacks, pagination)
}

// UpdateCallback godoc
// @Summary Move a callback request to another status
// @Tags Super Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path string true "Callback id"
// @Param payload body service.CallbackStatusUpdate true "Status and notes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /super-admin/callback/{id}/status [post]
func (h *LeadHandler) UpdateCallback(c *gin.Context) {
	var update service.CallbackStatusUpdate
	if err := bind(c, &update, service.MsgInvalidStatus); err != nil {
		response.Error(c, err)
		return
	}
	h.reply(c)(h.leads.UpdateCallback(c.Request.Context(), c.Param("id"), update))
}

// reply renders the (message, error) pair returned by lead mutations.
func (h *LeadHandler) reply(c *gin.Context) func(string, error) {
	return func(msg string, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, okMessage{OK: true, Message: msg}, nil)
	}
}
