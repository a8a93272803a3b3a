package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/database"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/storage"
)

// Registration and moderation messages.
const (
	MsgRegistrationRequired = "fullname, email and phone are required"
	MsgPasswordsRequired    = "Password and confirm password are required"
	MsgPasswordsMismatch    = "Passwords do not match"
	MsgPasswordPolicy       = "Password must contain at least 8 characters, one uppercase, one lowercase, and one number"
	MsgRegistrationReceived = "Registration received"
	MsgCenterApproved       = "Center approved successfully"
	MsgCenterRejected       = "Center rejected successfully"
	MsgCenterMissing        = "Center not found"
	MsgStateQueryRequired   = "state query parameter is required"
	MsgFileTooLarge         = "File upload error"
)

// uploadPrefix marks document references that live in upload storage.
const uploadPrefix = "uploads/"

const (
	centersStateCachePrefix = "centers:state:"
	publicCentersLimit      = 100
	publicCentersMaxLimit   = 500
)

type centerRepository interface {
	Create(ctx context.Context, center *models.Center) error
	FindByID(ctx context.Context, id string) (*models.Center, error)
	FindByEmail(ctx context.Context, email string) (*models.Center, error)
	UpdateStatus(ctx context.Context, id string, status models.CenterStatus) error
	List(ctx context.Context, filter models.CenterFilter) ([]models.Center, int, error)
	ListApprovedByState(ctx context.Context, state string) ([]models.PublicCenter, error)
	PageApprovedByState(ctx context.Context, state string, limit, offset int) ([]models.PublicCenter, int, error)
}

type centerStudentCounter interface {
	CountByCenter(ctx context.Context, centerID string) (int, error)
}

type uploadStore interface {
	SaveStream(filename string, r io.Reader, limit int64) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type documentSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string) (ownerID, relPath string, err error)
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// CenterRegistration is the multipart registration form.
type CenterRegistration struct {
	CReg            string `form:"cReg"`
	FullName        string `form:"fullname"`
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
	Inst            string `form:"inst"`
	CenAdr          string `form:"cenAdr"`
	State           string `form:"state"`
	District        string `form:"district"`
	City            string `form:"city"`
	Pincode         string `form:"pincode"`
	TPC             string `form:"tPC"`
	Staffs          string `form:"staffs"`
	Phone           string `form:"phone"`
	Passport        string `form:"passport"`
	Signature       string `form:"signature"`
}

// UploadedFile is one document submitted with a registration.
type UploadedFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// RegistrationResult is returned after a center registers.
type RegistrationResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Email   string `json:"email"`
}

// Document is an opened stored document.
type Document struct {
	File     *os.File
	Filename string
}

// CenterServiceConfig carries the tunables of CenterService.
type CenterServiceConfig struct {
	MaxUploadBytes int64
	PublicBaseURL  string
	CacheTTL       time.Duration
}

// CenterService implements center registration, moderation and listings.
type CenterService struct {
	centers   centerRepository
	students  centerStudentCounter
	uploads   uploadStore
	signer    documentSigner
	hasher    passwordHasher
	cache     listingCache
	validator *validator.Validate
	logger    *zap.Logger
	config    CenterServiceConfig
	now       func() time.Time
}

// NewCenterService constructs a CenterService. cache may be nil.
func NewCenterService(centers centerRepository, students centerStudentCounter, uploads uploadStore, signer documentSigner, hasher passwordHasher, cache listingCache, validate *validator.Validate, logger *zap.Logger, cfg CenterServiceConfig) *CenterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CenterService{
		centers:   centers,
		students:  students,
		uploads:   uploads,
		signer:    signer,
		hasher:    hasher,
		cache:     cache,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Register stores a pending center with its uploaded documents. Stored files
// are removed again when the center cannot be persisted.
func (s *CenterService) Register(ctx context.Context, req CenterRegistration, form map[string]string, files []UploadedFile) (*RegistrationResult, error) {
	trimFields(&req.CReg, &req.FullName, &req.Email, &req.Inst, &req.CenAdr, &req.State, &req.District,
		&req.City, &req.Pincode, &req.TPC, &req.Staffs, &req.Phone, &req.Passport, &req.Signature)
	if req.FullName == "" || req.Email == "" || req.Phone == "" {
		return nil, validationError(MsgRegistrationRequired)
	}
	if req.Password == "" || req.ConfirmPassword == "" {
		return nil, validationError(MsgPasswordsRequired)
	}
	if req.Password != req.ConfirmPassword {
		return nil, validationError(MsgPasswordsMismatch)
	}
	if !strongPassword(req.Password) {
		return nil, validationError(MsgPasswordPolicy)
	}
	email := normalizeEmail(req.Email)
	if err := s.validator.Var(email, "email"); err != nil {
		return nil, validationError(MsgInvalidEmail)
	}

	if _, err := s.centers.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, MsgEmailRegistered)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "check center email")
	}

	stored, err := s.storeDocuments(files)
	if err != nil {
		return nil, err
	}
	if _, ok := stored[models.CenterFilePhoto]; !ok && req.Passport != "" {
		stored[models.CenterFilePhoto] = req.Passport
	}
	if _, ok := stored[models.CenterFileSignature]; !ok && req.Signature != "" {
		stored[models.CenterFileSignature] = req.Signature
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.discardDocuments(stored)
		return nil, internalError(err, "hash center password")
	}

	center := &models.Center{
		CReg:         parseCReg(req.CReg),
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: hash,
		Inst:         req.Inst,
		CenAdr:       req.CenAdr,
		State:        req.State,
		District:     req.District,
		City:         req.City,
		Pincode:      req.Pincode,
		TPC:          req.TPC,
		Staffs:       req.Staffs,
		Phone:        req.Phone,
		Files:        stored,
		RawBody:      auditForm(form),
		Status:       models.CenterStatusPending,
	}
	if err := s.centers.Create(ctx, center); err != nil {
		s.discardDocuments(stored)
		if constraint, ok := database.UniqueViolation(err); ok {
			if constraint == database.ConstraintCenterEmail {
				return nil, appErrors.Clone(appErrors.ErrDuplicate, MsgEmailRegistered)
			}
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "")
		}
		return nil, internalError(err, "create center")
	}
	s.logger.Info("center registered", zap.String("center_id", center.ID), zap.Int("documents", len(stored)))
	return &RegistrationResult{OK: true, Message: MsgRegistrationReceived, ID: center.ID, Email: center.Email}, nil
}

func (s *CenterService) storeDocuments(files []UploadedFile) (models.CenterFiles, error) {
	allowed := make(map[string]bool, len(models.CenterFileFields))
	for _, field := range models.CenterFileFields {
		allowed[field] = true
	}
	stored := models.CenterFiles{}
	for _, file := range files {
		if !allowed[file.Field] || file.Content == nil {
			continue
		}
		if _, dup := stored[file.Field]; dup {
			continue
		}
		mime, content, err := storage.DetectContentType(file.Content)
		if err != nil {
			s.discardDocuments(stored)
			return nil, internalError(err, "read upload")
		}
		if !acceptedDocumentType(mime) {
			s.logger.Debug("upload skipped", zap.String("field", file.Field), zap.String("mime", mime))
			continue
		}
		name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), storage.SanitizeFilename(file.Filename))
		if _, err := s.uploads.SaveStream(name, content, s.config.MaxUploadBytes); err != nil {
			s.discardDocuments(stored)
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, MsgFileTooLarge)
			}
			return nil, internalError(err, "store upload")
		}
		stored[file.Field] = uploadPrefix + name
	}
	return stored, nil
}

func (s *CenterService) discardDocuments(files models.CenterFiles) {
	for field, ref := range files {
		if !strings.HasPrefix(ref, uploadPrefix) {
			continue
		}
		if err := s.uploads.Delete(strings.TrimPrefix(ref, uploadPrefix)); err != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("field", field), zap.Error(err))
		}
	}
}

func acceptedDocumentType(mime string) bool {
	mime = strings.ToLower(mime)
	return strings.HasPrefix(mime, "image/") || strings.HasPrefix(mime, "application/pdf")
}

// strongPassword requires eight characters with an upper, a lower and a digit.
func strongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r) && r < unicode.MaxASCII:
			upper = true
		case unicode.IsLower(r) && r < unicode.MaxASCII:
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

func parseCReg(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// auditForm copies the submitted form without password fields.
func auditForm(form map[string]string) models.FormValues {
	out := models.FormValues{}
	for k, v := range form {
		switch k {
		case "password", "confirmPassword":
			continue
		}
		out[k] = v
	}
	return out
}

// Get returns a center by record id.
func (s *CenterService) Get(ctx context.Context, id string) (*models.Center, error) {
	center, err := s.centers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCenterMissing)
		}
		return nil, internalError(err, "get center")
	}
	return center, nil
}

// Dashboard returns the signed-in center with its enrollment count.
func (s *CenterService) Dashboard(ctx context.Context, id string) (*models.CenterDashboard, error) {
	center, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.students.CountByCenter(ctx, id)
	if err != nil {
		return nil, internalError(err, "count center students")
	}
	return &models.CenterDashboard{Center: *center, TotalStudents: total}, nil
}

// Approve marks a center approved.
func (s *CenterService) Approve(ctx context.Context, id string) (string, error) {
	if err := s.setStatus(ctx, id, models.CenterStatusApproved); err != nil {
		return "", err
	}
	return MsgCenterApproved, nil
}

// Reject marks a center rejected.
func (s *CenterService) Reject(ctx context.Context, id string) (string, error) {
	if err := s.setStatus(ctx, id, models.CenterStatusRejected); err != nil {
		return "", err
	}
	return MsgCenterRejected, nil
}

func (s *CenterService) setStatus(ctx context.Context, id string, status models.CenterStatus) error {
	if err := s.centers.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, MsgCenterMissing)
		}
		return internalError(err, "update center status")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, centersStateCachePrefix+"*"); err != nil {
			s.logger.Warn("failed to invalidate center listings", zap.Error(err))
		}
	}
	s.logger.Info("center moderated", zap.String("center_id", id), zap.String("status", string(status)))
	return nil
}

// ListByState returns approved centers in state. A blank state yields an empty list.
func (s *CenterService) ListByState(ctx context.Context, state string) ([]models.PublicCenter, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return []models.PublicCenter{}, nil
	}
	key := centersStateCachePrefix + strings.ToLower(state)
	if s.cache != nil {
		var cached []models.PublicCenter
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}
	centers, err := s.centers.ListApprovedByState(ctx, state)
	if err != nil {
		return nil, internalError(err, "list centers by state")
	}
	if centers == nil {
		centers = []models.PublicCenter{}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, centers, s.config.CacheTTL)
	}
	return centers, nil
}

// PublicList returns one page of approved centers in state.
func (s *CenterService) PublicList(ctx context.Context, state string, page, limit int) (*models.PublicCenterPage, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return nil, validationError(MsgStateQueryRequired)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = publicCentersLimit
	}
	if limit > publicCentersMaxLimit {
		limit = publicCentersMaxLimit
	}
	centers, total, err := s.centers.PageApprovedByState(ctx, state, limit, (page-1)*limit)
	if err != nil {
		return nil, internalError(err, "list public centers")
	}
	if centers == nil {
		centers = []models.PublicCenter{}
	}
	return &models.PublicCenterPage{
		Centers: centers,
		Meta:    models.ListMeta{Total: total, Page: page, Limit: limit, Pages: (total + limit - 1) / limit},
	}, nil
}

// List returns a page of centers for moderation.
func (s *CenterService) List(ctx context.Context, filter models.CenterFilter) ([]models.Center, *models.Pagination, error) {
	page, size, _ := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	filter.Page, filter.PageSize = page, size
	centers, total, err := s.centers.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "list centers")
	}
	return centers, models.NewPagination(page, size, total), nil
}

// Documents returns short lived download links for a center's stored uploads.
func (s *CenterService) Documents(ctx context.Context, id string) ([]models.CenterDocument, error) {
	center, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	docs := make([]models.CenterDocument, 0, len(center.Files))
	for _, field := range models.CenterFileFields {
		ref, ok := center.Files[field]
		if !ok || !strings.HasPrefix(ref, uploadPrefix) {
			continue
		}
		token, expiresAt, err := s.signer.Generate(center.ID, ref)
		if err != nil {
			return nil, internalError(err, "sign document url")
		}
		docs = append(docs, models.CenterDocument{
			Field:     field,
			URL:       s.config.PublicBaseURL + "/files/" + token,
			ExpiresAt: expiresAt,
		})
	}
	return docs, nil
}

// OpenDocument resolves a download token into the stored file. The token must
// name a document still referenced by its center.
func (s *CenterService) OpenDocument(ctx context.Context, token string) (*Document, error) {
	ownerID, ref, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	center, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	referenced := false
	for _, stored := range center.Files {
		if stored == ref {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	file, err := s.uploads.Open(strings.TrimPrefix(ref, uploadPrefix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, internalError(err, "open document")
	}
	return &Document{File: file, Filename: path.Base(ref)}, nil
}
