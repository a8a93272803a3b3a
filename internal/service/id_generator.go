package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const verificationAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// verificationSuffixLength is the number of random characters after the certificate id.
const verificationSuffixLength = 6

// Identifier kinds used in metrics and conflict messages.
const (
	IdentifierStudent     = "student"
	IdentifierCertificate = "certificate"
)

type windowCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
}

// IDGenerator issues sequential human readable identifiers. The sequence is
// derived from the number of records already created in the current calendar
// window, so two concurrent callers can receive the same value; the unique
// indexes reject the second insert.
type IDGenerator struct {
	students     windowCounter
	certificates windowCounter
	loc          *time.Location
	now          func() time.Time
	random       io.Reader
}

// NewIDGenerator constructs an IDGenerator computing windows in loc.
func NewIDGenerator(students, certificates windowCounter, loc *time.Location) *IDGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &IDGenerator{students: students, certificates: certificates, loc: loc, now: time.Now, random: rand.Reader}
}

// NextStudentID returns MIIT_<YYYY><NNNNN> for the current year.
func (g *IDGenerator) NextStudentID(ctx context.Context) (string, error) {
	now := g.now().In(g.loc)
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, g.loc)
	to := from.AddDate(1, 0, 0)
	count, err := g.students.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("count students for %d: %w", now.Year(), err)
	}
	return fmt.Sprintf("MIIT_%04d%05d", now.Year(), count+1), nil
}

// NextCertificateID returns CERT<YYYY><MM><NNNN> for the current month.
func (g *IDGenerator) NextCertificateID(ctx context.Context) (string, error) {
	now := g.now().In(g.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, g.loc)
	to := from.AddDate(0, 1, 0)
	count, err := g.certificates.CountCreatedBetween(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("count certificates for %04d-%02d: %w", now.Year(), int(now.Month()), err)
	}
	return fmt.Sprintf("CERT%04d%02d%04d", now.Year(), int(now.Month()), count+1), nil
}

// VerificationCode appends a random uppercase base-36 suffix to certificateID.
func (g *IDGenerator) VerificationCode(certificateID string) (string, error) {
	max := big.NewInt(int64(len(verificationAlphabet)))
	suffix := make([]byte, verificationSuffixLength)
	for i := range suffix {
		n, err := rand.Int(g.random, max)
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		suffix[i] = verificationAlphabet[n.Int64()]
	}
	return certificateID + "-" + string(suffix), nil
}
