package badge

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"palestra/internal/domain/member"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testMember() *member.Member {
	return &member.Member{
		ID:           "member-001",
		FirstName:    "Giulia",
		LastName:     "Bianchi",
		Email:        "giulia@example.com",
		MemberNumber: "M0001",
		UserCode:     "a1b2c3d4",
		Status:       member.StatusActive,
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	signer := NewSigner([]byte("turnstile-secret"), 24*time.Hour)

	token, err := signer.Sign(testMember(), fixedTime)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "member-001" {
		t.Errorf("subject = %q, want %q", claims.Subject, "member-001")
	}
	if claims.UserCode != "a1b2c3d4" {
		t.Errorf("user code = %q, want %q", claims.UserCode, "a1b2c3d4")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signer := NewSigner([]byte("turnstile-secret"), time.Hour)

	issued := time.Now().Add(-2 * time.Hour)
	token, err := signer.Sign(testMember(), issued)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := signer.Verify(token); err != ErrTokenExpired {
		t.Errorf("Verify error = %v, want %v", err, ErrTokenExpired)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	signer := NewSigner([]byte("turnstile-secret"), 24*time.Hour)

	token, err := signer.Sign(testMember(), time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a 3-part JWT, got %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	if _, err := signer.Verify(tampered); err != ErrTokenInvalid {
		t.Errorf("Verify error = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerifyRejectsTokenFromOtherSecret(t *testing.T) {
	issuer := NewSigner([]byte("secret-a"), 24*time.Hour)
	verifier := NewSigner([]byte("secret-b"), 24*time.Hour)

	token, err := issuer.Sign(testMember(), time.Now())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := verifier.Verify(token); err != ErrTokenInvalid {
		t.Errorf("Verify error = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	signer := NewSigner([]byte("turnstile-secret"), 24*time.Hour)
	if _, err := signer.Verify("not-a-token"); err != ErrTokenInvalid {
		t.Errorf("Verify error = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	signer := NewSigner([]byte("turnstile-secret"), 24*time.Hour)
	m := testMember()

	token, err := signer.Sign(m, fixedTime)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	pdf, err := RenderPDF(m, token, fixedTime)
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("expected a non-empty PDF")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("PDF does not start with %%PDF header, got %q", pdf[:4])
	}
}
