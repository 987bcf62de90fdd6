package domain

import (
	"testing"
	"time"
)

func TestUser_LockedAt(t *testing.T) {
	t.Parallel()

	now := time.Now()

	u := User{}
	if u.LockedAt(now) {
		t.Fatalf("nil LockUntil must mean unlocked")
	}

	until := now.Add(time.Hour)
	u.LockUntil = &until
	if !u.LockedAt(now) {
		t.Fatalf("expected locked while lock-until is in the future")
	}
	if u.LockedAt(until.Add(time.Second)) {
		t.Fatalf("expected unlocked after lock-until passes")
	}
}

func TestUser_PasswordChangedAfter(t *testing.T) {
	t.Parallel()

	issued := time.Now()

	u := User{}
	if u.PasswordChangedAfter(issued) {
		t.Fatalf("no change timestamp must mean not stale")
	}

	changed := issued.Add(time.Minute)
	u.PasswordChangedAt = &changed
	if !u.PasswordChangedAfter(issued) {
		t.Fatalf("token issued before change must be stale")
	}
	if u.PasswordChangedAfter(changed.Add(time.Second)) {
		t.Fatalf("token issued after change must not be stale")
	}
}

func TestUser_Sanitized_StripsSecrets(t *testing.T) {
	t.Parallel()

	hash := "reset-digest"
	exp := time.Now()
	u := User{
		Username:             "alice",
		PasswordHash:         "bcrypt-hash",
		PasswordResetToken:   &hash,
		PasswordResetExpires: &exp,
	}

	s := u.Sanitized()
	if s.PasswordHash != "" || s.PasswordResetToken != nil || s.PasswordResetExpires != nil {
		t.Fatalf("expected credential material stripped, got %+v", s)
	}
	if s.Username != "alice" {
		t.Fatalf("identity fields must survive")
	}
	if u.PasswordHash == "" {
		t.Fatalf("original must be untouched")
	}
}

func TestIsValidStatus(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"ACTIVE", "PENDING", "DISABLED"} {
		if !IsValidStatus(ok) {
			t.Fatalf("expected %q valid", ok)
		}
	}
	if IsValidStatus("archived") {
		t.Fatalf("unknown status must be invalid")
	}
}
