package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/repository"
	"github.com/noah-isme/miit-portal/pkg/recordid"
)

type fakeCenterStore struct {
	centers    []*models.Center
	err        error
	createErr  error
	matchCalls []repository.CenterMatchField
	statuses   map[string]models.CenterStatus
}

func (f *fakeCenterStore) Create(_ context.Context, c *models.Center) error {
	if f.createErr != nil {
		return f.createErr
	}
	if c.ID == "" {
		c.ID = recordid.New()
	}
	f.centers = append(f.centers, c)
	return nil
}

func (f *fakeCenterStore) FindByID(_ context.Context, id string) (*models.Center, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.centers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCenterStore) FindByEmail(_ context.Context, email string) (*models.Center, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.centers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCenterStore) FindFirstMatch(_ context.Context, field repository.CenterMatchField, term string) (*models.Center, error) {
	f.matchCalls = append(f.matchCalls, field)
	if f.err != nil {
		return nil, f.err
	}
	needle := strings.ToLower(term)
	for _, c := range f.centers {
		var value string
		switch field {
		case repository.CenterMatchInst:
			value = c.Inst
		case repository.CenterMatchEmail:
			value = c.Email
		case repository.CenterMatchPhone:
			if c.Phone == term {
				return c, nil
			}
			continue
		case repository.CenterMatchFullName:
			value = c.FullName
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCenterStore) UpdateStatus(_ context.Context, id string, status models.CenterStatus) error {
	for _, c := range f.centers {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeCenterStore) List(_ context.Context, filter models.CenterFilter) ([]models.Center, int, error) {
	var out []models.Center
	for _, c := range f.centers {
		if filter.Status == "" || string(c.Status) == filter.Status {
			out = append(out, *c)
		}
	}
	return out, len(out), f.err
}

func (f *fakeCenterStore) approvedIn(state string) []models.PublicCenter {
	var out []models.PublicCenter
	for _, c := range f.centers {
		if c.Approved() && strings.EqualFold(c.State, state) {
			out = append(out, models.PublicCenter{ID: c.ID, Inst: c.Inst, CenAdr: c.CenAdr, State: c.State, Phone: c.Phone})
		}
	}
	return out
}

func (f *fakeCenterStore) ListApprovedByState(_ context.Context, state string) ([]models.PublicCenter, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.approvedIn(state), nil
}

func (f *fakeCenterStore) PageApprovedByState(_ context.Context, state string, limit, offset int) ([]models.PublicCenter, int, error) {
	all := f.approvedIn(state)
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (f *fakeCenterStore) CountByStatus(context.Context) (models.StatusCounts, error) {
	counts := models.StatusCounts{}
	for _, c := range f.centers {
		counts[string(c.Status)]++
	}
	return counts, f.err
}

func (f *fakeCenterStore) Recent(_ context.Context, limit int) ([]models.Center, error) {
	var out []models.Center
	for i := len(f.centers) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.centers[i])
	}
	return out, f.err
}

func (f *fakeCenterStore) CountByState(_ context.Context, limit int) ([]models.StateCount, error) {
	byState := map[string]*models.StateCount{}
	for _, c := range f.centers {
		sc, ok := byState[c.State]
		if !ok {
			sc = &models.StateCount{State: c.State}
			byState[c.State] = sc
		}
		sc.Count++
		switch c.Status {
		case models.CenterStatusApproved:
			sc.Approved++
		case models.CenterStatusPending:
			sc.Pending++
		}
	}
	out := make([]models.StateCount, 0, len(byState))
	for _, sc := range byState {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].State < out[j].State
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeStudentStore struct {
	students  []*models.Student
	err       error
	createErr error
	created   int
}

func (f *fakeStudentStore) Create(_ context.Context, s *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if s.ID == "" {
		s.ID = recordid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	f.students = append(f.students, s)
	f.created++
	return nil
}

func (f *fakeStudentStore) find(match func(*models.Student) bool) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.students {
		if match(s) {
			return s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentStore) FindByID(_ context.Context, id string) (*models.Student, error) {
	return f.find(func(s *models.Student) bool { return s.ID == id })
}

func (f *fakeStudentStore) FindByStudentID(_ context.Context, studentID string) (*models.Student, error) {
	return f.find(func(s *models.Student) bool { return s.StudentID == studentID })
}

func (f *fakeStudentStore) FindByEmail(_ context.Context, email string) (*models.Student, error) {
	return f.find(func(s *models.Student) bool { return s.Email == email })
}

func (f *fakeStudentStore) FindFirstByEmailOrName(_ context.Context, term string) (*models.Student, error) {
	needle := strings.ToLower(term)
	return f.find(func(s *models.Student) bool {
		return strings.Contains(strings.ToLower(s.Email), needle) || strings.Contains(strings.ToLower(s.Profile.Name), needle)
	})
}

func (f *fakeStudentStore) CountCreatedBetween(context.Context, time.Time, time.Time) (int, error) {
	return len(f.students), f.err
}

func (f *fakeStudentStore) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	all, err := f.ListAll(context.Background(), filter)
	return all, len(all), err
}

func (f *fakeStudentStore) ListAll(_ context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		if filter.CenterID != "" && (s.Center.ID == nil || *s.Center.ID != filter.CenterID) {
			continue
		}
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, f.err
}

func (f *fakeStudentStore) ListActive(_ context.Context, limit int) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		if s.Active() && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, f.err
}

func (f *fakeStudentStore) CountByCenter(_ context.Context, centerID string) (int, error) {
	all, err := f.ListAll(context.Background(), models.StudentFilter{CenterID: centerID})
	return len(all), err
}

func (f *fakeStudentStore) CountByStatus(context.Context) (models.StatusCounts, error) {
	counts := models.StatusCounts{}
	for _, s := range f.students {
		counts[string(s.Status)]++
	}
	return counts, f.err
}

func (f *fakeStudentStore) Recent(_ context.Context, limit int) ([]models.Student, error) {
	var out []models.Student
	for i := len(f.students) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.students[i])
	}
	return out, f.err
}

type fakeCertificateStore struct {
	certificates []*models.Certificate
	err          error
	createErr    error
	matchCalls   []repository.CertificateMatchField
	matchTerms   []string
}

func (f *fakeCertificateStore) Create(_ context.Context, c *models.Certificate) error {
	if f.createErr != nil {
		return f.createErr
	}
	if c.ID == "" {
		c.ID = recordid.New()
	}
	f.certificates = append(f.certificates, c)
	return nil
}

func (f *fakeCertificateStore) FindByCertificateID(_ context.Context, certificateID string) (*models.Certificate, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.certificates {
		if c.CertificateID == certificateID {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCertificateStore) FindFirstActiveMatch(_ context.Context, field repository.CertificateMatchField, term string) (*models.Certificate, error) {
	f.matchCalls = append(f.matchCalls, field)
	f.matchTerms = append(f.matchTerms, term)
	if f.err != nil {
		return nil, f.err
	}
	needle := strings.ToUpper(term)
	for _, c := range f.certificates {
		if c.Status != models.CertificateStatusActive {
			continue
		}
		var value string
		switch field {
		case repository.CertificateMatchID:
			value = c.CertificateID
		case repository.CertificateMatchVerificationCode:
			value = c.VerificationCode
		case repository.CertificateMatchStudentID:
			value = c.Student.StudentID
		}
		if strings.Contains(strings.ToUpper(value), needle) {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCertificateStore) ExistsForStudent(_ context.Context, studentRef string) (bool, error) {
	for _, c := range f.certificates {
		if c.StudentRef == studentRef {
			return true, nil
		}
	}
	return false, f.err
}

func (f *fakeCertificateStore) CountCreatedBetween(context.Context, time.Time, time.Time) (int, error) {
	return len(f.certificates), f.err
}

func (f *fakeCertificateStore) UpdateStatus(_ context.Context, id string, status models.CertificateStatus) error {
	for _, c := range f.certificates {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeCertificateStore) ListByStudent(_ context.Context, studentRef string) ([]models.Certificate, error) {
	var out []models.Certificate
	for _, c := range f.certificates {
		if c.StudentRef == studentRef {
			out = append(out, *c)
		}
	}
	return out, f.err
}

func (f *fakeCertificateStore) List(context.Context, models.CertificateFilter) ([]models.Certificate, int, error) {
	out := make([]models.Certificate, 0, len(f.certificates))
	for _, c := range f.certificates {
		out = append(out, *c)
	}
	return out, len(out), f.err
}

func (f *fakeCertificateStore) Count(context.Context) (int, error) {
	return len(f.certificates), f.err
}

// fakeHasher stores passwords with a readable prefix.
type fakeHasher struct {
	err error
}

func (f fakeHasher) Hash(plain string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + plain, nil
}

func (f fakeHasher) Verify(hash, plain string) (bool, error) {
	if !strings.HasPrefix(hash, "hashed:") {
		return false, errors.New("malformed hash")
	}
	return hash == "hashed:"+plain, nil
}

type fakeCache struct {
	values      map[string]interface{}
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]interface{}{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := f.values[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *[]models.PublicCenter:
		*d = v.([]models.PublicCenter)
	case *models.SuperAdminDashboard:
		*d = *v.(*models.SuperAdminDashboard)
	}
	return true, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range f.values {
		if strings.HasPrefix(k, prefix) {
			delete(f.values, k)
		}
	}
	return nil
}

func strPtr(v string) *string { return &v }
