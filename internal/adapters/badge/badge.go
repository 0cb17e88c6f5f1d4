// Package badge produces the printable membership badge and the signed
// access token encoded in its QR code.
package badge

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"palestra/internal/domain/member"
)

// Default validity of an access token embedded in a printed badge.
// Badges are reprinted on renewal, so a long horizon is fine.
const DefaultTokenTTL = 365 * 24 * time.Hour

// Errors returned by Verify.
var (
	ErrTokenInvalid = errors.New("badge: access token is invalid")
	ErrTokenExpired = errors.New("badge: access token has expired")
)

// AccessClaims are the claims carried by the QR token. The turnstile
// only needs the member identity and the user code to match against
// the local allow list.
type AccessClaims struct {
	UserCode string `json:"userCode"`
	jwt.RegisteredClaims
}

// Signer issues and verifies the HS256 tokens embedded in badge QR codes.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner builds a Signer around the shared turnstile secret.
// PRE: secret is non-empty.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Signer{secret: secret, ttl: ttl}
}

// Sign issues a token for the given member, valid from now for the
// configured TTL.
func (s *Signer) Sign(m *member.Member, now time.Time) (string, error) {
	claims := AccessClaims{
		UserCode: m.UserCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   m.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks a scanned token and returns its claims.
// POST: on success the returned claims carry the member ID in Subject.
func (s *Signer) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RenderPDF composes the A4 membership badge for m: club header, member
// identity, and the QR code encoding the signed access token.
func RenderPDF(m *member.Member, token string, issuedAt time.Time) ([]byte, error) {
	qrPNG, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode badge qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "Tessera socio")
	pdf.Ln(16)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, m.FullName())
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Numero tessera: %s", m.MemberNumber))
	pdf.Ln(7)
	pdf.Cell(0, 6, fmt.Sprintf("Codice accesso: %s", m.UserCode))
	pdf.Ln(7)
	pdf.Cell(0, 6, fmt.Sprintf("Emessa il: %s", issuedAt.Format("02/01/2006")))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("access-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("access-qr", 20, 70, 60, 60, false, opts, 0, "")

	pdf.SetY(135)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 5, "Presentare il codice QR al tornello di ingresso.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render badge pdf: %w", err)
	}
	return buf.Bytes(), nil
}
