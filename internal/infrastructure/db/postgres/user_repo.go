package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

const userColumns = `
u.id, u.username, u.email, u.password_hash, u.status, u.is_active,
u.login_attempts, u.lock_until, u.password_reset_token, u.password_reset_expires,
u.last_login, u.password_changed_at, u.employee_id, u.created_at,
r.id, r.name, r.description, r.requires_account, r.is_default`

func (r *UserRepo) scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Username,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Status,
		&ur.IsActive,
		&ur.LoginAttempts,
		&ur.LockUntil,
		&ur.PasswordResetToken,
		&ur.PasswordResetExpires,
		&ur.LastLogin,
		&ur.PasswordChangedAt,
		&ur.EmployeeID,
		&ur.CreatedAt,
		&ur.RoleID,
		&ur.RoleName,
		&ur.RoleDescription,
		&ur.RoleRequiresAccount,
		&ur.RoleIsDefault,
	)
	return ur, err
}

// hydrate attaches role permissions and the user's custom grants.
func (r *UserRepo) hydrate(ctx context.Context, u domain.User) (domain.User, error) {
	if u.Role != nil {
		perms, err := r.queryPermissions(ctx, `
SELECT p.id, p.name, p.description, p.category
FROM role_permissions rp
JOIN permissions p ON p.id = rp.permission_id
WHERE rp.role_id = $1
ORDER BY p.name;`, u.Role.ID)
		if err != nil {
			return domain.User{}, err
		}
		u.Role.Permissions = perms
	}

	custom, err := r.queryPermissions(ctx, `
SELECT p.id, p.name, p.description, p.category
FROM user_permissions up
JOIN permissions p ON p.id = up.permission_id
WHERE up.user_id = $1
ORDER BY p.name;`, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	u.CustomPermissions = custom
	return u, nil
}

func (r *UserRepo) queryPermissions(ctx context.Context, q string, arg string) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.Permission
	for rows.Next() {
		var p domain.Permission
		var desc, cat sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &desc, &cat); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		p.Description = desc.String
		p.Category = cat.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	q := `
SELECT ` + userColumns + `
FROM users u
LEFT JOIN roles r ON r.id = u.role_id
WHERE ` + where + `
LIMIT 1;`

	ur, err := r.scanUserRow(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return r.hydrate(ctx, ur.toDomain())
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}
	return r.getOne(ctx, "LOWER(u.username) = $1", username)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	return r.getOne(ctx, "u.id = $1", id)
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}

	var roleID any
	if u.Role != nil {
		roleID = u.Role.ID
	}
	var employeeID any
	if u.EmployeeID != nil {
		employeeID = *u.EmployeeID
	}

	const q = `
INSERT INTO users (id, username, email, password_hash, status, is_active, role_id, employee_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id;`

	var id string
	err := r.db.QueryRowContext(ctx, q,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Status), u.IsActive, roleID, employeeID,
	).Scan(&id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return domain.User{}, domain.ErrUsernameAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return r.GetByID(ctx, id)
}

// RecordLoginFailure increments the counter and sets lock-until in the
// same statement, so concurrent failures cannot race past the threshold.
func (r *UserRepo) RecordLoginFailure(ctx context.Context, userID string, threshold int, lockFor time.Duration) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET login_attempts = login_attempts + 1,
    lock_until = CASE
        WHEN login_attempts + 1 >= $2 THEN NOW() + make_interval(secs => $3)
        ELSE lock_until
    END
WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, userID, threshold, lockFor.Seconds())
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) RecordLoginSuccess(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET login_attempts = 0,
    lock_until = NULL,
    last_login = NOW()
WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string, changedAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	// changed-at comes from the caller's clock, not NOW(): staleness
	// checks compare it against token issue times from the same source,
	// and a skewed DB clock would void just-issued sessions.
	const q = `
UPDATE users
SET password_hash = $2,
    password_changed_at = $3
WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, userID, newHash, changedAt)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, userID string, digest string, expires time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if digest == "" {
		return domain.ErrMissingField("reset_token")
	}

	const q = `
UPDATE users
SET password_reset_token = $2,
    password_reset_expires = $3
WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, q, userID, digest, expires)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) GetByResetDigest(ctx context.Context, digest string) (domain.User, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return domain.User{}, domain.ErrMissingField("reset_token")
	}
	return r.getOne(ctx, "u.password_reset_token = $1 AND u.password_reset_expires > NOW()", digest)
}

// ConsumeResetToken swaps the hash and clears both reset fields in one
// statement keyed on an unexpired digest match, which makes the token
// single-use under concurrency.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, digest string, newHash string, changedAt time.Time) (domain.User, error) {
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return domain.User{}, domain.ErrMissingField("reset_token")
	}
	if newHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2,
    password_changed_at = $3,
    password_reset_token = NULL,
    password_reset_expires = NULL,
    login_attempts = 0,
    lock_until = NULL
WHERE password_reset_token = $1
  AND password_reset_expires > NOW()
RETURNING id;`

	var id string
	err := r.db.QueryRowContext(ctx, q, digest, newHash, changedAt).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return r.GetByID(ctx, id)
}
