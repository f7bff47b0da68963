package handlers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"guitarworks/api/internal/models"
	"guitarworks/api/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// fakeStore backs both store roles in handler tests.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	sessions map[string]models.Session

	deleteSessionErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]models.User{},
		sessions: map[string]models.Session{},
	}
}

type fakeUsers struct{ *fakeStore }

type fakeSessions struct{ *fakeStore }

func (u fakeUsers) Create(_ context.Context, username string, hash []byte) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
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

func (u fakeUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Username == username {
			return existing, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (u fakeUsers) List(_ context.Context) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	list := make([]models.User, 0, len(u.users))
	for _, user := range u.users {
		list = append(list, user)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (u fakeUsers) Delete(_ context.Context, id int64) error {
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

func (s fakeSessions) Create(_ context.Context, token string, userID int64) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	session := models.Session{ID: token, UserID: userID, CreatedAt: now, UpdatedAt: now}
	s.sessions[token] = session
	return session, nil
}

func (s fakeSessions) FindWithUser(_ context.Context, token string) (models.SessionWithUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return models.SessionWithUser{}, repository.ErrSessionNotFound
	}
	return models.SessionWithUser{Session: session, User: s.users[session.UserID]}, nil
}

func (s fakeSessions) List(_ context.Context) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, session)
	}
	return list, nil
}

func (s fakeSessions) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteSessionErr != nil {
		return s.deleteSessionErr
	}
	if _, ok := s.sessions[token]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

func (s *fakeStore) setDeleteSessionErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSessionErr = err
}

func (s *fakeStore) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
