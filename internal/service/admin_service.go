package service

import (
	"context"

	"github.com/rs/zerolog"

	"guitarworks/api/internal/events"
	"guitarworks/api/internal/models"
	"guitarworks/api/internal/security"
)

type UserAdminStore interface {
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

type SessionAdminStore interface {
	List(ctx context.Context) ([]models.Session, error)
	Delete(ctx context.Context, token string) error
}

// AdminService backs the user and session management pages. Unlike
// AuthService it hands store errors back to the caller.
type AdminService struct {
	users     UserAdminStore
	sessions  SessionAdminStore
	publisher events.Publisher
	log       zerolog.Logger
}

func NewAdminService(users UserAdminStore, sessions SessionAdminStore, publisher events.Publisher, log zerolog.Logger) *AdminService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AdminService{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		log:       log,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted by admin")
	if err := s.publisher.Publish(ctx, events.New(events.UserDeleted, id, "")); err != nil {
		s.log.Warn().Err(err).Msg("publish user.deleted failed")
	}
	return nil
}

func (s *AdminService) ListSessions(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

func (s *AdminService) DeleteSession(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	fingerprint := security.Fingerprint(token)
	s.log.Info().Str("session", fingerprint).Msg("session deleted by admin")
	if err := s.publisher.Publish(ctx, events.New(events.SessionDeleted, 0, fingerprint)); err != nil {
		s.log.Warn().Err(err).Msg("publish session.deleted failed")
	}
	return nil
}
