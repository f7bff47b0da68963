package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
)

type Type string

const (
	UserRegistered Type = "user.registered"
	UserDeleted    Type = "user.deleted"
	SessionCreated Type = "session.created"
	SessionDeleted Type = "session.deleted"
	SessionSweep   Type = "session.sweep"
)

// Event is a single entry on the auth event stream. Session tokens are
// carried only as fingerprints.
type Event struct {
	ID                 string
	Type               Type
	UserID             int64
	SessionFingerprint string
	At                 time.Time
}

func New(eventType Type, userID int64, sessionFingerprint string) Event {
	return Event{
		ID:                 ksuid.New().String(),
		Type:               eventType,
		UserID:             userID,
		SessionFingerprint: sessionFingerprint,
		At:                 time.Now().UTC(),
	}
}

func (e Event) Values() map[string]any {
	return map[string]any{
		"id":      e.ID,
		"type":    string(e.Type),
		"userId":  strconv.FormatInt(e.UserID, 10),
		"session": e.SessionFingerprint,
		"at":      e.At.Format(time.RFC3339Nano),
	}
}

// Decode rebuilds an event from stream entry values.
func Decode(values map[string]any) (Event, error) {
	str := func(key string) string {
		if v, ok := values[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprint(v)
		}
		return ""
	}

	event := Event{
		ID:                 str("id"),
		Type:               Type(str("type")),
		SessionFingerprint: str("session"),
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event without type")
	}

	if raw := str("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Event{}, fmt.Errorf("parse userId: %w", err)
		}
		event.UserID = id
	}
	if raw := str("at"); raw != "" {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Event{}, fmt.Errorf("parse at: %w", err)
		}
		event.At = at
	}
	return event, nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

const streamMaxLen = 100000

type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: event.Values(),
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
