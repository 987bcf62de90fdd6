package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

func TestLogin_EmptyFields_IncorrectCredentials(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)

	_, err := e.svc.Login(context.Background(), "", "")
	requireErrCode(t, err, "incorrect_credentials")
}

func TestLogin_UnknownUsername_NonEnumerating(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)

	_, err := e.svc.Login(context.Background(), "missing", "pw")
	requireErrCode(t, err, "incorrect_credentials")
}

func TestLogin_InactiveUser_SameErrorAsUnknown(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	u := e.activeUser("u1", "alice", "correct")
	u.IsActive = false
	e.users.put(u)

	_, err := e.svc.Login(context.Background(), "alice", "correct")
	requireErrCode(t, err, "incorrect_credentials")
}

func TestLogin_PendingStatus_AccountPending(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	u := e.activeUser("u1", "alice", "correct")
	u.Status = domain.StatusPending
	e.users.put(u)

	_, err := e.svc.Login(context.Background(), "alice", "correct")
	requireErrCode(t, err, "account_pending")
}

func TestLogin_DisabledStatus_AccountDisabled(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	u := e.activeUser("u1", "alice", "correct")
	u.Status = domain.StatusDisabled
	e.users.put(u)

	_, err := e.svc.Login(context.Background(), "alice", "correct")
	requireErrCode(t, err, "account_disabled")
}

func TestLogin_WrongPassword_RecordsFailure(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	e.activeUser("u1", "bob", "correct")

	_, err := e.svc.Login(context.Background(), "bob", "wrong")
	requireErrCode(t, err, "incorrect_credentials")

	if got := e.users.get("u1").LoginAttempts; got != 1 {
		t.Fatalf("expected 1 failed attempt recorded, got %d", got)
	}
	if e.users.get("u1").LockUntil != nil {
		t.Fatalf("one failure must not lock the account")
	}
}

func TestLogin_UppercaseUsername_Normalized(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	e.activeUser("u1", "alice", "correct")

	res, err := e.svc.Login(context.Background(), "  ALICE ", "correct")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.User.ID != "u1" {
		t.Fatalf("expected u1, got %+v", res.User)
	}
}

func TestLogin_Success_ShapeAndGuardReset(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	u := e.activeUser("u1", "alice", "correct")
	u.LoginAttempts = 3
	e.users.put(u)

	res, err := e.svc.Login(context.Background(), "alice", "correct")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", res.Tokens)
	}
	if res.Tokens.TokenType != "Bearer" {
		t.Fatalf("expected Bearer, got %q", res.Tokens.TokenType)
	}
	if res.User.PasswordHash != "" {
		t.Fatalf("password material must not leave the service")
	}
	if !res.Grants.Permissions.Has("employee_read") {
		t.Fatalf("expected resolved grants, got %v", res.Grants.Permissions.Names())
	}

	stored := e.users.get("u1")
	if stored.LoginAttempts != 0 || stored.LockUntil != nil {
		t.Fatalf("expected guard reset, got attempts=%d lock=%v", stored.LoginAttempts, stored.LockUntil)
	}
	if stored.LastLogin == nil || !stored.LastLogin.Equal(e.clock.Now()) {
		t.Fatalf("expected last-login stamped")
	}
}

func TestLogin_LockoutThreshold_FifthFailureLocks(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	e.activeUser("u1", "bob", "correct")

	for i := 0; i < 4; i++ {
		_, err := e.svc.Login(context.Background(), "bob", "wrong")
		requireErrCode(t, err, "incorrect_credentials")
		if e.users.get("u1").LockUntil != nil {
			t.Fatalf("failure %d must not lock yet", i+1)
		}
	}

	// Fifth consecutive failure is the one that sets lock-until.
	_, err := e.svc.Login(context.Background(), "bob", "wrong")
	requireErrCode(t, err, "incorrect_credentials")

	stored := e.users.get("u1")
	if stored.LoginAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", stored.LoginAttempts)
	}
	if stored.LockUntil == nil {
		t.Fatalf("expected lock-until set on the 5th failure")
	}
	want := e.clock.Now().Add(2 * time.Hour)
	if diff := stored.LockUntil.Sub(want); diff < -time.Second || diff > time.Second {
		t.Fatalf("expected lock-until ~ now+2h, got %v (diff %v)", stored.LockUntil, diff)
	}
}

func TestLogin_WhileLocked_RejectsEvenCorrectPassword(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	e.activeUser("u1", "bob", "correct")

	for i := 0; i < 5; i++ {
		_, _ = e.svc.Login(context.Background(), "bob", "wrong")
	}

	// Lock enforcement is authoritative: the correct password is rejected
	// until the lock window passes.
	_, err := e.svc.Login(context.Background(), "bob", "correct")
	requireErrCode(t, err, "account_locked")

	// After the window the correct password succeeds and resets the guard.
	e.clock.Advance(2*time.Hour + time.Minute)

	res, err := e.svc.Login(context.Background(), "bob", "correct")
	if err != nil {
		t.Fatalf("expected success after lock expiry, got %v", err)
	}
	if res.User.ID != "u1" {
		t.Fatalf("unexpected user %+v", res.User)
	}
	stored := e.users.get("u1")
	if stored.LoginAttempts != 0 || stored.LockUntil != nil {
		t.Fatalf("expected guard reset after successful login")
	}
}

func TestLogin_SuccessAfterFewFailures_ResetsCounter(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	e.activeUser("u1", "bob", "correct")

	for i := 0; i < 3; i++ {
		_, _ = e.svc.Login(context.Background(), "bob", "wrong")
	}

	_, err := e.svc.Login(context.Background(), "bob", "correct")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	stored := e.users.get("u1")
	if stored.LoginAttempts != 0 || stored.LockUntil != nil {
		t.Fatalf("expected counter reset, got attempts=%d lock=%v", stored.LoginAttempts, stored.LockUntil)
	}
}

func TestLogin_GuardWriteFails_PropagatesError(t *testing.T) {
	t.Parallel()

	e := newSvcForTest(t)
	e.activeUser("u1", "bob", "correct")
	e.users.failureErr = domain.ErrDBUnavailable(nil)

	_, err := e.svc.Login(context.Background(), "bob", "wrong")
	requireErrCode(t, err, "db_unavailable")
}
