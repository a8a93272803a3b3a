package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/database"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/export"
)

// Admission failure messages.
const (
	MsgStateRequired         = "State is required"
	MsgCenterRequired        = "Center is required"
	MsgCourseRequired        = "Course is required"
	MsgStudentFieldsRequired = "All student fields are required"
	MsgAdmissionCredentials  = "Email and password are required"
	MsgInvalidCenter         = "Invalid or unapproved center"
	MsgInvalidCourse         = "Invalid course"
	MsgInvalidPhone          = "Invalid phone number"
	MsgInvalidGender         = "Invalid gender"
	MsgInvalidDOB            = "Invalid date of birth"
	MsgInvalidStudyMode      = "Invalid study mode"
	MsgInvalidEmail          = "Please enter a valid email address"
	MsgEmailRegistered       = "Email already registered"
	MsgStudentIDConflict     = "Student ID conflict, please try again"
	MsgAdmissionSuccessful   = "Admission successful."
)

// activeStudentsForIssuance caps the issue page student picker.
const activeStudentsForIssuance = 100

var (
	indianMobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern        = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

var genders = map[string]bool{"Male": true, "Female": true, "Other": true}

// AdmissionRequest is the public admission form.
type AdmissionRequest struct {
	StudyMode     string `json:"studyMode" form:"studyMode"`
	State         string `json:"state" form:"state"`
	CenterID      string `json:"center_id" form:"center_id"`
	CourseID      string `json:"course_id" form:"course_id"`
	StudentName   string `json:"student_name" form:"student_name"`
	Relation      string `json:"s_rel" form:"s_rel"`
	GuardianName  string `json:"father_name" form:"father_name"`
	Gender        string `json:"s_gender" form:"s_gender"`
	DOB           string `json:"dob" form:"dob"`
	Phone         string `json:"s_phone" form:"s_phone"`
	Qualification string `json:"qualification" form:"qualification"`
	Address       string `json:"s_address" form:"s_address"`
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
}

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	ListActive(ctx context.Context, limit int) ([]models.Student, error)
}

type admissionCenterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Center, error)
}

type courseCatalog interface {
	Find(id string) (models.Course, bool)
}

type studentIDIssuer interface {
	NextStudentID(ctx context.Context) (string, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// StudentService implements admission and student listings.
type StudentService struct {
	students    studentRepository
	centers     admissionCenterRepository
	catalog     courseCatalog
	ids         studentIDIssuer
	credentials passwordHasher
	exporters   map[string]datasetRenderer
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, centers admissionCenterRepository, catalog courseCatalog, ids studentIDIssuer, credentials passwordHasher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{
		students:    students,
		centers:     centers,
		catalog:     catalog,
		ids:         ids,
		credentials: credentials,
		exporters: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Admit enrolls a student after validating the form, assigning the next
// sequential studentId immediately before the insert.
func (s *StudentService) Admit(ctx context.Context, req AdmissionRequest) (*models.Student, *models.AdmissionResult, error) {
	mode, err := s.validateAdmission(&req)
	if err != nil {
		return nil, nil, err
	}

	centerSnapshot := models.OnlineCenterSnapshot()
	if mode == models.StudyModeOffline {
		center, err := s.centers.FindByID(ctx, req.CenterID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, internalError(err, "load admission center")
		}
		if center == nil || !center.Approved() {
			return nil, nil, validationError(MsgInvalidCenter)
		}
		centerSnapshot = center.Snapshot()
	}

	course, ok := s.catalog.Find(req.CourseID)
	if !ok {
		return nil, nil, validationError(MsgInvalidCourse)
	}
	if !indianMobilePattern.MatchString(req.Phone) {
		return nil, nil, validationError(MsgInvalidPhone)
	}
	if !genders[req.Gender] {
		return nil, nil, validationError(MsgInvalidGender)
	}
	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return nil, nil, validationError(MsgInvalidDOB)
	}
	email := normalizeEmail(req.Email)
	if err := s.validator.Var(email, "required,email"); err != nil {
		return nil, nil, validationError(MsgInvalidEmail)
	}

	if _, err := s.students.FindByEmail(ctx, email); err == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrDuplicate, MsgEmailRegistered)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, internalError(err, "check student email")
	}

	hash, err := s.credentials.Hash(req.Password)
	if err != nil {
		return nil, nil, internalError(err, "hash student password")
	}

	studentID, err := s.ids.NextStudentID(ctx)
	if err != nil {
		return nil, nil, internalError(err, "issue student id")
	}

	student := &models.Student{
		StudentID: studentID,
		StudyMode: mode,
		Center:    centerSnapshot,
		Course:    course.Snapshot(),
		Profile: models.StudentProfile{
			Name:          req.StudentName,
			Relation:      relationLabel(req.Relation),
			GuardianName:  req.GuardianName,
			Gender:        req.Gender,
			DOB:           dob,
			Phone:         req.Phone,
			Qualification: req.Qualification,
			Address:       req.Address,
		},
		Email:        email,
		PasswordHash: hash,
		Status:       models.StudentStatusActive,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, nil, s.classifyInsert(err)
	}
	s.metrics.RecordIdentifierIssued(IdentifierStudent)
	s.logger.Info("student admitted", zap.String("student_id", student.StudentID), zap.String("study_mode", string(mode)))

	return student, &models.AdmissionResult{
		OK:        true,
		Message:   MsgAdmissionSuccessful,
		StudentID: student.StudentID,
		Center:    models.AdmissionCenter{Inst: centerSnapshot.Inst, CenAdr: centerSnapshot.CenAdr},
	}, nil
}

func (s *StudentService) validateAdmission(req *AdmissionRequest) (models.StudyMode, error) {
	trimFields(&req.StudyMode, &req.State, &req.CenterID, &req.CourseID, &req.StudentName, &req.Relation,
		&req.GuardianName, &req.Gender, &req.DOB, &req.Phone, &req.Qualification, &req.Address, &req.Email)

	mode := models.StudyMode(strings.ToLower(req.StudyMode))
	switch mode {
	case "":
		mode = models.StudyModeOffline
	case models.StudyModeOnline, models.StudyModeOffline:
	default:
		return "", validationError(MsgInvalidStudyMode)
	}
	if mode == models.StudyModeOffline {
		if req.State == "" {
			return "", validationError(MsgStateRequired)
		}
		if req.CenterID == "" {
			return "", validationError(MsgCenterRequired)
		}
	}
	if req.CourseID == "" {
		return "", validationError(MsgCourseRequired)
	}
	if req.StudentName == "" || req.Relation == "" || req.GuardianName == "" || req.Gender == "" ||
		req.DOB == "" || req.Phone == "" || req.Qualification == "" || req.Address == "" {
		return "", validationError(MsgStudentFieldsRequired)
	}
	if req.Email == "" || req.Password == "" {
		return "", validationError(MsgAdmissionCredentials)
	}
	return mode, nil
}

func (s *StudentService) classifyInsert(err error) error {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return internalError(err, "create student")
	}
	switch constraint {
	case database.ConstraintStudentEmail:
		return appErrors.Clone(appErrors.ErrDuplicate, MsgEmailRegistered)
	case database.ConstraintStudentID:
		s.metrics.RecordIdentifierConflict(IdentifierStudent)
		s.logger.Warn("student id collision", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrIDConflict.Code, appErrors.ErrIDConflict.Status, MsgStudentIDConflict)
	default:
		return appErrors.Clone(appErrors.ErrDuplicate, "")
	}
}

// relationLabel maps the admission form relation code to its label.
func relationLabel(code string) string {
	switch code {
	case "0":
		return models.RelationFather
	case "1":
		return models.RelationMother
	case "2":
		return models.RelationHusband
	default:
		return models.RelationGuardian
	}
}

// Get returns a student by studentId.
func (s *StudentService) Get(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, internalError(err, "get student")
	}
	return student, nil
}

// List returns a page of students.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	page, size, _ := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	filter.Page, filter.PageSize = page, size
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "list students")
	}
	return students, models.NewPagination(page, size, total), nil
}

// ListByCenter returns a page of students enrolled under centerID.
func (s *StudentService) ListByCenter(ctx context.Context, centerID string, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if centerID == "" {
		return nil, nil, validationError("center id is required")
	}
	filter.CenterID = centerID
	return s.List(ctx, filter)
}

// ListActiveForIssuance returns the newest active students a certificate can be issued to.
func (s *StudentService) ListActiveForIssuance(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.ListActive(ctx, activeStudentsForIssuance)
	if err != nil {
		return nil, internalError(err, "list active students")
	}
	return students, nil
}

// Export renders every student matching filter as CSV or PDF.
func (s *StudentService) Export(ctx context.Context, filter models.StudentFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.exporters[format]
	if !ok {
		return nil, validationError(fmt.Sprintf("unsupported export format %q", format))
	}
	students, err := s.students.ListAll(ctx, filter)
	if err != nil {
		return nil, internalError(err, "load students for export")
	}
	data, err := renderer.Render(studentDataset(students), "Students")
	if err != nil {
		return nil, internalError(err, "render student export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("students-%s.%s", time.Now().UTC().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

var studentExportHeaders = []string{"Student ID", "Name", "Email", "Phone", "Course", "Center", "State", "Study Mode", "Status", "Enrolled On"}

func studentDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, map[string]string{
			"Student ID":  st.StudentID,
			"Name":        st.Profile.Name,
			"Email":       st.Email,
			"Phone":       st.Profile.Phone,
			"Course":      st.Course.Title,
			"Center":      st.Center.Inst,
			"State":       st.Center.State,
			"Study Mode":  string(st.StudyMode),
			"Status":      string(st.Status),
			"Enrolled On": st.CreatedAt.Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: studentExportHeaders, Rows: rows}
}

func trimFields(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
