package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"guitarworks/api/internal/events"
	"guitarworks/api/internal/models"
	"guitarworks/api/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// memStore is an in-memory stand-in for the postgres repositories. The
// *Err fields force the matching operation to fail.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	sessions map[string]models.Session

	createUserErr    error
	findUserErr      error
	createSessionErr error
	findSessionErr   error
	deleteSessionErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]models.User{},
		sessions: map[string]models.Session{},
	}
}

type memUsers struct{ *memStore }

type memSessions struct{ *memStore }

func (s *memStore) userStore() memUsers       { return memUsers{s} }
func (s *memStore) sessionStore() memSessions { return memSessions{s} }

func (u memUsers) Create(_ context.Context, username string, hash []byte) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.createUserErr != nil {
		return models.User{}, u.createUserErr
	}
	for _, existing := range u.users {
		if existing.Username == username {
			return models.User{}, repository.ErrUsernameTaken
		}
	}
	u.nextID++
	now := time.Now()
	user := models.User{ID: u.nextID, Username: username, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	u.users[user.ID] = user
	return user, nil
}

func (u memUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.findUserErr != nil {
		return models.User{}, u.findUserErr
	}
	for _, existing := range u.users {
		if existing.Username == username {
			return existing, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (u memUsers) List(_ context.Context) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.findUserErr != nil {
		return nil, u.findUserErr
	}
	var list []models.User
	for _, user := range u.users {
		list = append(list, user)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (u memUsers) Delete(_ context.Context, id int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(u.users, id)
	for token, session := range u.sessions {
		if session.UserID == id {
			delete(u.sessions, token)
		}
	}
	return nil
}

func (m memSessions) Create(_ context.Context, token string, userID int64) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createSessionErr != nil {
		return models.Session{}, m.createSessionErr
	}
	if _, ok := m.users[userID]; !ok {
		return models.Session{}, errors.New("foreign key violation")
	}
	if _, ok := m.sessions[token]; ok {
		return models.Session{}, errors.New("duplicate session id")
	}
	now := time.Now()
	session := models.Session{ID: token, UserID: userID, CreatedAt: now, UpdatedAt: now}
	m.sessions[token] = session
	return session, nil
}

func (m memSessions) FindWithUser(_ context.Context, token string) (models.SessionWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findSessionErr != nil {
		return models.SessionWithUser{}, m.findSessionErr
	}
	session, ok := m.sessions[token]
	if !ok {
		return models.SessionWithUser{}, repository.ErrSessionNotFound
	}
	return models.SessionWithUser{Session: session, User: m.users[session.UserID]}, nil
}

func (m memSessions) List(_ context.Context) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Session
	for _, session := range m.sessions {
		list = append(list, session)
	}
	return list, nil
}

func (m memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteSessionErr != nil {
		return m.deleteSessionErr
	}
	if _, ok := m.sessions[token]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(m.sessions, token)
	return nil
}

func (s *memStore) setSessionCreatedAt(token string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[token]
	session.CreatedAt = at
	s.sessions[token] = session
}

func (s *memStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
