package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/export"
	"github.com/noah-isme/miit-portal/pkg/jobs"
)

// JobRenderCertificate is the job type handled by CertificateRenderer.
const JobRenderCertificate = "certificate.render"

// Render outcomes recorded in metrics.
const (
	RenderOutcomeRendered = "rendered"
	RenderOutcomeCached   = "cached"
	RenderOutcomeFailed   = "failed"
)

type certificateLookup interface {
	FindByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
}

type pdfStore interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
}

type certificateDocumentRenderer interface {
	Render(doc export.CertificateDocument) ([]byte, error)
}

type verifyLinker interface {
	VerifyURL(certificateID, verificationCode string) (string, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) (string, error)
}

// CertificateRenderer produces certificate PDFs and keeps them in storage.
// Issuance schedules a render in the background; downloads fall back to
// rendering on demand when the stored copy is missing.
type CertificateRenderer struct {
	certificates certificateLookup
	store        pdfStore
	pdf          certificateDocumentRenderer
	links        verifyLinker
	queue        jobEnqueuer
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewCertificateRenderer constructs a CertificateRenderer.
func NewCertificateRenderer(certificates certificateLookup, store pdfStore, pdf certificateDocumentRenderer, links verifyLinker, metrics *MetricsService, logger *zap.Logger) *CertificateRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewCertificatePDFExporter()
	}
	return &CertificateRenderer{
		certificates: certificates,
		store:        store,
		pdf:          pdf,
		links:        links,
		metrics:      metrics,
		logger:       logger,
	}
}

// UseQueue attaches the background queue used by Schedule.
func (r *CertificateRenderer) UseQueue(queue jobEnqueuer) {
	r.queue = queue
}

// Schedule queues a background render. Failures only log; the PDF is rendered
// on first download instead.
func (r *CertificateRenderer) Schedule(certificateID string) {
	if r.queue == nil {
		return
	}
	if _, err := r.queue.Enqueue(jobs.Job{Type: JobRenderCertificate, Payload: certificateID}); err != nil {
		r.logger.Warn("failed to queue certificate render", zap.String("certificate_id", certificateID), zap.Error(err))
	}
}

// Handle is the queue handler for JobRenderCertificate jobs.
func (r *CertificateRenderer) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != JobRenderCertificate {
		return fmt.Errorf("unsupported job type %q", job.Type)
	}
	certificateID, ok := job.Payload.(string)
	if !ok || certificateID == "" {
		return fmt.Errorf("render job %s: missing certificate id", job.ID)
	}
	cert, err := r.certificates.FindByCertificateID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("render skipped for unknown certificate", zap.String("certificate_id", certificateID))
			return nil
		}
		return err
	}
	_, err = r.render(cert)
	return err
}

// PDF returns the stored PDF for cert, rendering and storing it when absent.
func (r *CertificateRenderer) PDF(cert *models.Certificate) ([]byte, error) {
	data, err := r.store.Read(pdfName(cert.CertificateID))
	if err == nil {
		r.metrics.RecordCertificateRender(RenderOutcomeCached)
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("stored certificate unreadable", zap.String("certificate_id", cert.CertificateID), zap.Error(err))
	}
	return r.render(cert)
}

func (r *CertificateRenderer) render(cert *models.Certificate) ([]byte, error) {
	doc := export.CertificateDocument{
		CertificateID:    cert.CertificateID,
		VerificationCode: cert.VerificationCode,
		StudentName:      cert.Student.Name,
		StudentID:        cert.Student.StudentID,
		CourseTitle:      cert.Course.Title,
		CourseDuration:   cert.Course.Duration,
		CenterName:       cert.Center.Inst,
		CenterState:      cert.Center.State,
		CertificateType:  string(cert.CertificateType),
		Grade:            cert.Grade,
		IssueDate:        cert.IssueDate,
		ValidUntil:       cert.ValidUntil,
		IssuedBy:         cert.IssuedBy,
	}
	if r.links != nil {
		link, err := r.links.VerifyURL(cert.CertificateID, cert.VerificationCode)
		if err != nil {
			r.metrics.RecordCertificateRender(RenderOutcomeFailed)
			return nil, fmt.Errorf("sign verify link: %w", err)
		}
		doc.VerifyURL = link
	}
	data, err := r.pdf.Render(doc)
	if err != nil {
		r.metrics.RecordCertificateRender(RenderOutcomeFailed)
		return nil, err
	}
	if _, err := r.store.Save(pdfName(cert.CertificateID), data); err != nil {
		r.logger.Warn("failed to store certificate pdf", zap.String("certificate_id", cert.CertificateID), zap.Error(err))
	}
	r.metrics.RecordCertificateRender(RenderOutcomeRendered)
	return data, nil
}

func pdfName(certificateID string) string {
	return certificateID + ".pdf"
}
