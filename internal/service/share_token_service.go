package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

const shareTokenIssuer = "miit-portal"

// ShareClaims names the certificate a printed verification link points at.
type ShareClaims struct {
	VerificationCode string `json:"vc,omitempty"`
	jwt.RegisteredClaims
}

// ShareTokenService signs the verification links printed on certificates.
// Tokens carry no expiry; revocation and validity are checked on lookup.
type ShareTokenService struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewShareTokenService constructs a ShareTokenService.
func NewShareTokenService(secret, publicBaseURL string) *ShareTokenService {
	return &ShareTokenService{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
	}
}

// Issue signs a token for the certificate.
func (s *ShareTokenService) Issue(certificateID, verificationCode string) (string, error) {
	if certificateID == "" {
		return "", fmt.Errorf("certificate id required")
	}
	claims := &ShareClaims{
		VerificationCode: verificationCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   shareTokenIssuer,
			Subject:  certificateID,
			IssuedAt: jwt.NewNumericDate(s.now().UTC()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyURL returns the public verification link for the certificate.
func (s *ShareTokenService) VerifyURL(certificateID, verificationCode string) (string, error) {
	token, err := s.Issue(certificateID, verificationCode)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/verify-certificate/" + token, nil
}

// Parse validates a token and returns the certificate id it names.
func (s *ShareTokenService) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(shareTokenIssuer))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification link")
	}
	claims, ok := token.Claims.(*ShareClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid verification link")
	}
	return claims.Subject, nil
}
