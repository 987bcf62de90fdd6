package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

const (
	typAccess  = "access"
	typRefresh = "refresh"
)

// JWTCodec signs and verifies the two token kinds. Each kind has its own
// secret; both share one issuer/audience pair and carry a typ claim so a
// token of one kind can never stand in for the other.
type JWTCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

type CodecConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewJWTCodec(cfg CodecConfig) *JWTCodec {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 8 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &JWTCodec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// WithClock overrides the time source for tests.
func (c *JWTCodec) WithClock(fn func() time.Time) *JWTCodec {
	if fn != nil {
		c.now = fn
	}
	return c
}

type roleClaim struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type accessTokenClaims struct {
	Username string    `json:"username"`
	Active   bool      `json:"active"`
	Role     roleClaim `json:"role"`
	Typ      string    `json:"typ"`
	jwt.RegisteredClaims
}

type refreshTokenClaims struct {
	Typ string `json:"typ"`
	jwt.RegisteredClaims
}

func (c *JWTCodec) registered(sub string, ttl time.Duration) jwt.RegisteredClaims {
	now := c.now()
	return jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		// iat/exp have second granularity; the jti keeps two tokens
		// issued in the same second distinct, which rotation relies on
		// when it blacklists the consumed token and hands out the next.
		ID: uuid.NewString(),
	}
}

func (c *JWTCodec) IssueAccessToken(u domain.User) (string, error) {
	claims := accessTokenClaims{
		Username:         u.Username,
		Active:           u.IsActive,
		Typ:              typAccess,
		RegisteredClaims: c.registered(u.ID, c.accessTTL),
	}
	if u.Role != nil {
		claims.Role = roleClaim{ID: u.Role.ID, Name: u.Role.Name}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.accessSecret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (c *JWTCodec) IssueRefreshToken(u domain.User) (string, error) {
	claims := refreshTokenClaims{
		Typ:              typRefresh,
		RegisteredClaims: c.registered(u.ID, c.refreshTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.refreshSecret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (c *JWTCodec) VerifyAccessToken(token string) (auth.AccessClaims, error) {
	var claims accessTokenClaims
	if err := c.parse(token, &claims, c.accessSecret, c.refreshSecret); err != nil {
		return auth.AccessClaims{}, err
	}
	if claims.Typ != typAccess {
		return auth.AccessClaims{}, domain.ErrInvalidTokenType()
	}

	out := auth.AccessClaims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Active:   claims.Active,
		RoleID:   claims.Role.ID,
		RoleName: claims.Role.Name,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Time
	}
	return out, nil
}

func (c *JWTCodec) VerifyRefreshToken(token string) (auth.RefreshClaims, error) {
	var claims refreshTokenClaims
	if err := c.parse(token, &claims, c.refreshSecret, c.accessSecret); err != nil {
		return auth.RefreshClaims{}, err
	}
	if claims.Typ != typRefresh {
		return auth.RefreshClaims{}, domain.ErrInvalidTokenType()
	}

	out := auth.RefreshClaims{UserID: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Time
	}
	return out, nil
}

// parse verifies signature, issuer, audience and expiry against the
// expected secret. A token that only verifies under the other kind's
// secret is reported as a type mismatch rather than a forgery, so callers
// presenting the wrong kind get the precise failure.
func (c *JWTCodec) parse(token string, claims jwt.Claims, secret, otherSecret []byte) error {
	err := c.parseWith(token, claims, secret)
	if err == nil {
		return nil
	}
	if domain.Is(err, "token_invalid") {
		if otherErr := c.parseWith(token, otherTypClaims(), otherSecret); otherErr == nil || domain.Is(otherErr, "token_expired") {
			return domain.ErrInvalidTokenType()
		}
	}
	return err
}

func (c *JWTCodec) parseWith(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.ErrTokenExpired()
		}
		return domain.ErrTokenInvalid()
	}
	if !parsed.Valid {
		return domain.ErrTokenInvalid()
	}
	return nil
}

// otherTypClaims is a scratch claims target for the cross-secret check;
// only signature validity matters there, not the payload shape.
func otherTypClaims() jwt.Claims {
	return &jwt.MapClaims{}
}
