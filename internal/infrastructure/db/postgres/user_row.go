package postgres

import (
	"database/sql"
	"time"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

type userRow struct {
	ID                   string
	Username             string
	Email                string
	PasswordHash         string
	Status               string
	IsActive             bool
	LoginAttempts        int
	LockUntil            *time.Time
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	LastLogin            *time.Time
	PasswordChangedAt    *time.Time
	EmployeeID           *string
	CreatedAt            time.Time

	RoleID              sql.NullString
	RoleName            sql.NullString
	RoleDescription     sql.NullString
	RoleRequiresAccount sql.NullBool
	RoleIsDefault       sql.NullBool
}

func (ur userRow) toDomain() domain.User {
	u := domain.User{
		ID:                   ur.ID,
		Username:             ur.Username,
		Email:                ur.Email,
		PasswordHash:         ur.PasswordHash,
		Status:               domain.UserStatus(ur.Status),
		IsActive:             ur.IsActive,
		LoginAttempts:        ur.LoginAttempts,
		LockUntil:            ur.LockUntil,
		PasswordResetToken:   ur.PasswordResetToken,
		PasswordResetExpires: ur.PasswordResetExpires,
		LastLogin:            ur.LastLogin,
		PasswordChangedAt:    ur.PasswordChangedAt,
	}
	u.EmployeeID = ur.EmployeeID
	if ur.RoleID.Valid {
		u.Role = &domain.Role{
			ID:              ur.RoleID.String,
			Name:            ur.RoleName.String,
			Description:     ur.RoleDescription.String,
			RequiresAccount: ur.RoleRequiresAccount.Bool,
			IsDefault:       ur.RoleIsDefault.Bool,
		}
	}
	return u
}
