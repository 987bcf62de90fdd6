package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
	"github.com/bossgrand/garment/services/auth-service/internal/domain"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/memory"
	"github.com/bossgrand/garment/services/auth-service/internal/infrastructure/security"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/middleware"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/response"
	"github.com/bossgrand/garment/services/auth-service/internal/transport/http/router"
)

const (
	testUsername = "alice"
	testPassword = "Password123!"
)

// testStack wires the real service over in-memory infrastructure, so
// handler tests exercise the same path as a dev deployment.
type testStack struct {
	handler http.Handler
	users   *memory.UserRepo
	svc     *auth.Service
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	users := memory.NewUserRepo()
	hasher := security.NewBcryptHasher(4) // low cost for test speed
	codec := security.NewJWTCodec(security.CodecConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Issuer:        "boss-grand-garment-system",
		Audience:      "boss-grand-garment-api",
	})
	blacklist := memory.NewTokenBlacklist()

	svc := auth.NewService(users, hasher, codec, blacklist, memory.NewNoopPublisher(), auth.Config{
		PasswordResetBaseURL: "https://garment.example.com/reset?token=",
		RevealResetToken:     true,
	})

	hash, err := hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	_, err = users.Create(context.Background(), domain.User{
		ID:           "u1",
		Username:     testUsername,
		Email:        "alice@example.com",
		PasswordHash: hash,
		Status:       domain.StatusActive,
		IsActive:     true,
		Role: &domain.Role{
			ID:   "r1",
			Name: "employee",
			Permissions: []domain.Permission{
				{ID: "p1", Name: "employee_read", Category: "employee"},
			},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	authH := NewAuthHandler(svc, 8*time.Hour, 7*24*time.Hour, false)
	healthH := NewHealthHandler(nil)

	h, err := router.New(router.Deps{
		Health: healthH,
		Auth:   authH,
		AuthMW: middleware.Authenticate(svc, response.WriteError),
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	return &testStack{handler: h, users: users, svc: svc}
}

func (s *testStack) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr.Result()
}

func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadData decodes the {"data": ...} envelope into out.
func mustReadData(t *testing.T, res *http.Response, out any) {
	t.Helper()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	wrapped := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Data) == 0 {
		t.Fatalf("decode envelope failed; body=%s", string(raw))
	}
	if err := json.Unmarshal(wrapped.Data, out); err != nil {
		t.Fatalf("decode data failed; body=%s err=%v", string(raw), err)
	}
}

// mustReadErrCode extracts error.code from the error envelope.
func mustReadErrCode(t *testing.T, res *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode error envelope failed; body=%s", string(raw))
	}
	return body.Error.Code
}

func readCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type authBody struct {
	User struct {
		ID          string   `json:"id"`
		Username    string   `json:"username"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int64  `json:"expires_in"`
	} `json:"tokens"`
}

// login performs a successful login and returns the parsed body.
func (s *testStack) login(t *testing.T) authBody {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/v1/login", mustJSONBody(t, map[string]string{
		"username": testUsername,
		"password": testPassword,
	}))
	res := s.do(t, req)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", res.StatusCode)
	}

	var body authBody
	mustReadData(t, res, &body)
	return body
}
