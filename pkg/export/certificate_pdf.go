package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateDocument carries everything printed on a certificate.
type CertificateDocument struct {
	CertificateID    string
	VerificationCode string
	StudentName      string
	StudentID        string
	CourseTitle      string
	CourseDuration   string
	CenterName       string
	CenterState      string
	CertificateType  string
	Grade            string
	IssueDate        time.Time
	ValidUntil       *time.Time
	IssuedBy         string
	VerifyURL        string
}

// CertificatePDFExporter lays out a single landscape certificate page.
type CertificatePDFExporter struct{}

// NewCertificatePDFExporter constructs the exporter.
func NewCertificatePDFExporter() *CertificatePDFExporter {
	return &CertificatePDFExporter{}
}

// Render produces the PDF bytes for doc.
func (e *CertificatePDFExporter) Render(doc CertificateDocument) ([]byte, error) {
	if doc.CertificateID == "" || doc.StudentName == "" {
		return nil, fmt.Errorf("certificate id and student name required")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(doc.CertificateID, true)
	pdf.SetAuthor(doc.IssuedBy, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(20, 60, 120)
	pdf.SetLineWidth(2)
	pdf.Rect(8, 8, pageW-16, pageH-16, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(12, 12, pageW-24, pageH-24, "D")

	pdf.SetY(28)
	pdf.SetTextColor(20, 60, 120)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr(strings.ToUpper(doc.IssuedBy)), "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Times", "B", 32)
	pdf.CellFormat(0, 14, tr("Certificate of "+titleCase(doc.CertificateType)), "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "BI", 28)
	pdf.CellFormat(0, 16, tr(doc.StudentName), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("(Student ID %s) has successfully completed the course", doc.StudentID)), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 17)
	pdf.CellFormat(0, 11, tr(doc.CourseTitle), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	line := fmt.Sprintf("Duration: %s    Grade: %s", fallback(doc.CourseDuration, "-"), fallback(doc.Grade, "-"))
	pdf.CellFormat(0, 8, tr(line), "", 1, "C", false, 0, "")
	if doc.CenterName != "" {
		center := doc.CenterName
		if doc.CenterState != "" {
			center += ", " + doc.CenterState
		}
		pdf.CellFormat(0, 8, tr("Study centre: "+center), "", 1, "C", false, 0, "")
	}

	pdf.SetY(pageH - 50)
	pdf.SetFont("Helvetica", "", 10)
	left := []string{
		"Certificate No: " + doc.CertificateID,
		"Verification Code: " + doc.VerificationCode,
		"Issued on: " + doc.IssueDate.Format("02 Jan 2006"),
	}
	if doc.ValidUntil != nil {
		left = append(left, "Valid until: "+doc.ValidUntil.Format("02 Jan 2006"))
	}
	for _, l := range left {
		pdf.SetX(24)
		pdf.CellFormat(120, 6, tr(l), "", 1, "L", false, 0, "")
	}

	if doc.VerifyURL != "" {
		pdf.SetXY(pageW-24-130, pageH-44)
		pdf.SetTextColor(20, 60, 120)
		pdf.SetFont("Helvetica", "U", 9)
		pdf.CellFormat(130, 6, "Verify this certificate online", "", 2, "R", false, 0, doc.VerifyURL)
		pdf.SetFont("Helvetica", "", 7)
		pdf.MultiCell(130, 4, doc.VerifyURL, "", "R", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func titleCase(value string) string {
	if value == "" {
		return "Completion"
	}
	return strings.ToUpper(value[:1]) + strings.ToLower(value[1:])
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
