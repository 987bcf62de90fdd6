package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

// Hasher is the minimal surface we need for seeding.
type Hasher interface {
	Hash(password string) (string, error)
}

// SeedUsers creates initial accounts for local development (in-memory
// only). Safe to call multiple times; duplicates are ignored.
func SeedUsers(ctx context.Context, users *UserRepo, hasher Hasher) {
	adminRole := &domain.Role{
		ID:   uuid.NewString(),
		Name: "admin",
		Permissions: []domain.Permission{
			{ID: uuid.NewString(), Name: "employee_read", Category: "employee"},
			{ID: uuid.NewString(), Name: "employee_write", Category: "employee"},
			{ID: uuid.NewString(), Name: "company_manage", Category: "company"},
			{ID: uuid.NewString(), Name: "user_manage", Category: "user"},
		},
		RequiresAccount: true,
	}
	employeeRole := &domain.Role{
		ID:   uuid.NewString(),
		Name: "employee",
		Permissions: []domain.Permission{
			{ID: uuid.NewString(), Name: "employee_read", Category: "employee"},
		},
		RequiresAccount: true,
		IsDefault:       true,
	}

	type seedUser struct {
		Username string
		Email    string
		Pass     string
		Role     *domain.Role
	}
	seeds := []seedUser{
		{Username: "admin", Email: "admin@example.com", Pass: "AdminPassword123!", Role: adminRole},
		{Username: "employee", Email: "employee@example.com", Pass: "EmployeePassword123!", Role: employeeRole},
	}

	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			log.Warn().Err(err).Str("username", s.Username).Msg("seed: hash failed")
			continue
		}

		_, err = users.Create(ctx, domain.User{
			ID:           uuid.NewString(),
			Username:     s.Username,
			Email:        s.Email,
			PasswordHash: hash,
			Status:       domain.StatusActive,
			IsActive:     true,
			Role:         s.Role,
		})
		if err != nil {
			// duplicate on restart, ignore
			continue
		}
	}

	log.Info().Msg("seed: in-memory users ready")
}
