package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

// SeedUsers creates the bootstrap accounts on a fresh database. Roles
// and permissions are expected to exist already (schema migration seeds
// them); this only covers accounts. Restart safe: duplicates are
// ignored.
func SeedUsers(ctx context.Context, repo SeederRepo, hasher SeederHasher, adminRoleID string) {
	type seedUser struct {
		Username string
		Email    string
		Pass     string
	}

	seeds := []seedUser{
		{Username: "admin", Email: "admin@example.com", Pass: "AdminPassword123!"},
	}

	for _, s := range seeds {
		hash, err := hasher.Hash(s.Pass)
		if err != nil {
			log.Warn().Err(err).Str("username", s.Username).Msg("seed: hash failed")
			continue
		}

		u := domain.User{
			ID:           uuid.NewString(),
			Username:     s.Username,
			Email:        s.Email,
			PasswordHash: hash,
			Status:       domain.StatusActive,
			IsActive:     true,
		}
		if adminRoleID != "" {
			u.Role = &domain.Role{ID: adminRoleID}
		}

		if _, err := repo.Create(ctx, u); err != nil {
			// ignore duplicates (restart safe)
			continue
		}
	}

	log.Info().Msg("seed: postgres users seeded")
}
