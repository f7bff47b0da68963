package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"guitarworks/api/internal/events"
)

type SessionSweeper interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Processor handles entries of the auth event stream: account and session
// events are written to the audit log, sweep requests purge expired sessions.
type Processor struct {
	sessions   SessionSweeper
	sessionTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewProcessor(sessions SessionSweeper, sessionTTL time.Duration, logger zerolog.Logger) *Processor {
	return &Processor{
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle acknowledges undecodable entries by returning nil so they do not
// get reclaimed forever.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	event, err := events.Decode(msg.Values)
	if err != nil {
		p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed event")
		return nil
	}

	switch event.Type {
	case events.UserRegistered, events.UserDeleted, events.SessionCreated, events.SessionDeleted:
		p.audit(event)
		return nil
	case events.SessionSweep:
		return p.sweep(ctx)
	default:
		p.logger.Warn().Str("type", string(event.Type)).Msg("unknown event type")
		return nil
	}
}

func (p *Processor) audit(event events.Event) {
	entry := p.logger.Info().
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Time("at", event.At)
	if event.UserID > 0 {
		entry = entry.Int64("user_id", event.UserID)
	}
	if event.SessionFingerprint != "" {
		entry = entry.Str("session", event.SessionFingerprint)
	}
	entry.Msg("audit")
}

func (p *Processor) sweep(ctx context.Context) error {
	if p.sessionTTL <= 0 {
		p.logger.Debug().Msg("session ttl disabled, sweep skipped")
		return nil
	}

	cutoff := p.now().Add(-p.sessionTTL)
	removed, err := p.sessions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep sessions: %w", err)
	}
	p.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("expired sessions swept")
	return nil
}
