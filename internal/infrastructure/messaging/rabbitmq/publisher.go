package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bossgrand/garment/services/auth-service/internal/application/auth"
	"github.com/bossgrand/garment/services/auth-service/internal/domain"
)

const (
	DefaultExchange = "garment.events"

	routingKeyPasswordReset = "auth.password.reset.requested"

	// Minimum window to wait for Return / Confirm.
	publishWait = 2 * time.Second
)

// Publisher pushes auth events onto a durable topic exchange in confirm
// mode. The mail worker binds its queue to auth.password.reset.# and
// owns delivery from there.
type Publisher struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url string) (*Publisher, error) {
	p := &Publisher{
		url:      url,
		exchange: DefaultExchange,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetConn()
	return nil
}

// ---- auth.EventPublisher ----

func (p *Publisher) PublishPasswordReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	return p.publishJSON(ctx, routingKeyPasswordReset, passwordResetPayload{
		UserID:   evt.UserID,
		Username: evt.Username,
		Email:    evt.Email,
		URL:      evt.URL,
		IssuedAt: time.Now().UTC(),
	})
}

// passwordResetPayload is the wire shape consumed by the mail worker.
// Field names are part of the contract with that service.
type passwordResetPayload struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	URL      string    `json:"url"`
	IssuedAt time.Time `json:"issued_at"`
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return domain.ErrRabbitUnavailable(fmt.Errorf("rabbitmq dial: %w", err))
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return domain.ErrRabbitUnavailable(fmt.Errorf("rabbitmq channel: %w", err))
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return domain.ErrRabbitUnavailable(fmt.Errorf("exchange declare: %w", err))
	}

	// Enable confirm mode.
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return domain.ErrRabbitUnavailable(fmt.Errorf("confirm mode: %w", err))
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ErrInternal(fmt.Errorf("marshal payload: %w", err))
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// Drain stale confirm / return frames from a previous publish.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		// Channel or connection level failure; next publish reconnects.
		p.resetConn()
		return domain.ErrRabbitUnavailable(fmt.Errorf("publish failed: %w", err))
	}

	// Wait for Return / Confirm / timeout. With mandatory routing a
	// Return frame arrives before the Ack when no queue is bound.
	select {
	case ret := <-p.returnCh:
		return domain.ErrRabbitUnavailable(fmt.Errorf(
			"unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText))

	case conf := <-p.confirmCh:
		select {
		case ret := <-p.returnCh:
			return domain.ErrRabbitUnavailable(fmt.Errorf(
				"unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText))
		default:
		}
		if !conf.Ack {
			return domain.ErrRabbitUnavailable(fmt.Errorf("nack: key=%s tag=%d", routingKey, conf.DeliveryTag))
		}
		return nil

	case <-time.After(publishWait):
		return domain.ErrRabbitUnavailable(fmt.Errorf("publish timeout: key=%s", routingKey))

	case <-ctx.Done():
		return domain.ErrRabbitUnavailable(ctx.Err())
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
