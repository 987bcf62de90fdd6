package dto

import (
	"errors"
	"testing"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

func metaOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected a domain error, got %v", err)
	}
	return de.Meta
}

func TestLoginRequest_Validate(t *testing.T) {
	t.Parallel()

	r := LoginRequest{Username: "  alice  ", Password: "pw"}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", r.Username)
	}

	missing := LoginRequest{Username: "alice"}
	err := missing.Validate()
	if !domain.Is(err, "missing_field") {
		t.Fatalf("expected missing_field, got %v", err)
	}
	if metaOf(t, err)["field"] != "password" {
		t.Fatalf("expected password named, got %v", err)
	}
}

func TestLoginRequest_WhitespaceUsername_IsMissing(t *testing.T) {
	t.Parallel()

	r := LoginRequest{Username: "   ", Password: "pw"}
	err := r.Validate()
	if !domain.Is(err, "missing_field") {
		t.Fatalf("expected missing_field, got %v", err)
	}
	if metaOf(t, err)["field"] != "username" {
		t.Fatalf("expected username named, got %v", err)
	}
}

func TestResetPasswordRequest_ShortPassword_Weak(t *testing.T) {
	t.Parallel()

	r := ResetPasswordRequest{Token: "tok", NewPassword: "short"}
	if err := r.Validate(); !domain.Is(err, "weak_password") {
		t.Fatalf("expected weak_password, got %v", err)
	}

	ok := ResetPasswordRequest{Token: "tok", NewPassword: "LongEnough1"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChangePasswordRequest_FieldNamesAreSnakeCase(t *testing.T) {
	t.Parallel()

	r := ChangePasswordRequest{NewPassword: "LongEnough1"}
	err := r.Validate()
	if !domain.Is(err, "missing_field") {
		t.Fatalf("expected missing_field, got %v", err)
	}
	if metaOf(t, err)["field"] != "current_password" {
		t.Fatalf("expected current_password named, got %v", err)
	}
}

func TestVerifyResetTokenQuery_RequiresToken(t *testing.T) {
	t.Parallel()

	q := VerifyResetTokenQuery{}
	if err := q.Validate(); !domain.Is(err, "missing_field") {
		t.Fatalf("expected missing_field, got %v", err)
	}

	q.Token = "tok"
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
