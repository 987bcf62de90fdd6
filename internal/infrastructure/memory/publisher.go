package memory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
)

// NoopPublisher logs reset events instead of publishing them. Used when
// no broker is configured; the reset URL lands in the service log so a
// developer can follow it by hand.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	log.Info().
		Str("user_id", evt.UserID).
		Str("email", evt.Email).
		Str("url", evt.URL).
		Msg("noop publisher: password reset")
	return nil
}
