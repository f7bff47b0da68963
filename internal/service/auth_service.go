package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"guitarworks/api/internal/config"
	"guitarworks/api/internal/cookies"
	"guitarworks/api/internal/events"
	"guitarworks/api/internal/i18n"
	"guitarworks/api/internal/models"
	"guitarworks/api/internal/repository"
	"guitarworks/api/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, username string, passwordHash []byte) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, token string, userID int64) (models.Session, error)
	FindWithUser(ctx context.Context, token string) (models.SessionWithUser, error)
	Delete(ctx context.Context, token string) error
}

type AuthService struct {
	users     UserStore
	sessions  SessionStore
	publisher events.Publisher
	messages  *i18n.Catalog
	cfg       config.SecurityConfig
	log       zerolog.Logger

	now      func() time.Time
	newToken func() (string, error)
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	publisher events.Publisher,
	messages *i18n.Catalog,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = security.DefaultCost
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		messages:  messages,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		newToken:  security.NewSessionToken,
	}
}

type RegisterResult struct {
	Error    bool     `json:"error"`
	UserID   int64    `json:"userId"`
	Messages []string `json:"formMessages"`
}

func (s *AuthService) Register(ctx context.Context, username string, password string) RegisterResult {
	result := RegisterResult{UserID: models.NoUserID, Messages: []string{}}

	hash, err := security.HashPasswordWithCost(password, s.cfg.BcryptCost)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("password hashing failed")
		result.Error = true
		result.Messages = append(result.Messages, s.messages.Text(i18n.RegisterFailed))
		return result
	}

	user, err := s.users.Create(ctx, username, hash)
	if err != nil {
		result.Error = true
		if errors.Is(err, repository.ErrUsernameTaken) {
			result.Messages = append(result.Messages, s.messages.Text(i18n.UsernameTaken))
		} else {
			s.log.Error().Err(err).Str("username", username).Msg("create user failed")
			result.Messages = append(result.Messages, s.messages.Text(i18n.ConnectionUnstable))
		}
		return result
	}

	result.UserID = user.ID
	s.publish(ctx, events.New(events.UserRegistered, user.ID, ""))
	return result
}

type RegistrationCheck struct {
	Error            bool     `json:"error"`
	UsernameMessages []string `json:"usernameMessages"`
	FormMessages     []string `json:"formMessages"`
}

// CheckUsernameAvailable looks the username up ahead of registration.
func (s *AuthService) CheckUsernameAvailable(ctx context.Context, username string) RegistrationCheck {
	check := RegistrationCheck{UsernameMessages: []string{}, FormMessages: []string{}}

	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
	case err != nil:
		s.log.Error().Err(err).Msg("username lookup failed")
		check.Error = true
		check.FormMessages = append(check.FormMessages, s.messages.Text(i18n.ConnectionUnstable))
	default:
		check.Error = true
		check.UsernameMessages = append(check.UsernameMessages, s.messages.Text(i18n.UsernameTaken))
	}
	return check
}

type CredentialsResult struct {
	Error    bool     `json:"error"`
	UserID   int64    `json:"userId"`
	Messages []string `json:"formMessages"`
}

// ValidateCredentials distinguishes a store failure from bad credentials, but
// an unknown username and a wrong password produce the same message.
func (s *AuthService) ValidateCredentials(ctx context.Context, username string, password string) CredentialsResult {
	result := CredentialsResult{UserID: models.NoUserID, Messages: []string{}}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		result.Error = true
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burnCompare(password)
			result.Messages = append(result.Messages, s.messages.Text(i18n.InvalidCredentials))
		} else {
			s.log.Error().Err(err).Msg("credential lookup failed")
			result.Messages = append(result.Messages, s.messages.Text(i18n.ConnectionUnstable))
		}
		return result
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash unreadable")
	}
	if !ok {
		result.Error = true
		result.Messages = append(result.Messages, s.messages.Text(i18n.InvalidCredentials))
		return result
	}

	result.UserID = user.ID
	return result
}

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// burnCompare spends one bcrypt comparison so unknown usernames take about
// as long as wrong passwords.
func (s *AuthService) burnCompare(password string) {
	decoyOnce.Do(func() {
		decoyHash, _ = security.HashPasswordWithCost("decoy-password", s.cfg.BcryptCost)
	})
	if decoyHash != nil {
		_, _ = security.VerifyPassword(password, decoyHash)
	}
}

type LoginResult struct {
	Error     bool     `json:"error"`
	SessionID string   `json:"sessionId"`
	Messages  []string `json:"formMessages"`
}

// Login issues a fresh session for userID. Earlier sessions of the same user
// stay valid.
func (s *AuthService) Login(ctx context.Context, userID int64) LoginResult {
	result := LoginResult{Messages: []string{}}

	token, err := s.newToken()
	if err != nil {
		s.log.Error().Err(err).Msg("session token generation failed")
		result.Error = true
		result.Messages = append(result.Messages, s.messages.Text(i18n.Unexpected))
		return result
	}

	session, err := s.sessions.Create(ctx, token, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("create session failed")
		result.Error = true
		result.Messages = append(result.Messages, s.messages.Text(i18n.ConnectionUnstable))
		return result
	}

	result.SessionID = session.ID
	s.publish(ctx, events.New(events.SessionCreated, userID, security.Fingerprint(session.ID)))
	return result
}

type LogoutResult struct {
	Error     bool   `json:"error"`
	SessionID string `json:"sessionId"`
	Message   string `json:"logoutMessage"`
}

func (s *AuthService) Logout(ctx context.Context, r *http.Request) LogoutResult {
	var result LogoutResult

	dict, hasHeader := cookies.FromRequest(r)
	if !hasHeader {
		result.Error = true
		result.Message = s.messages.Text(i18n.LogoutNoCookieHeader)
		return result
	}

	token, ok := dict[cookies.SessionName]
	if !ok {
		result.Error = true
		result.Message = s.messages.Text(i18n.LogoutMissingSessionKey)
		return result
	}
	result.SessionID = token

	if err := s.sessions.Delete(ctx, token); err != nil {
		result.Error = true
		if errors.Is(err, repository.ErrSessionNotFound) {
			result.Message = s.messages.Text(i18n.SessionNotFound)
		} else {
			s.log.Error().Err(err).Str("session", security.Fingerprint(token)).Msg("delete session failed")
			result.Message = s.messages.Text(i18n.LogoutConnectionUnstable)
		}
		return result
	}

	s.publish(ctx, events.New(events.SessionDeleted, 0, security.Fingerprint(token)))
	return result
}

// SessionState is where current-user resolution ended up.
type SessionState int

const (
	StateAnonymous SessionState = iota
	StateError
	StateInvalid
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateError:
		return "error"
	case StateInvalid:
		return "invalid"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type SessionInfo struct {
	ID string `json:"id"`
}

type CurrentUser struct {
	Error       bool        `json:"error"`
	UserInfo    UserInfo    `json:"userInfo"`
	SessionInfo SessionInfo `json:"sessionInfo"`
	// SessionExistsOnServer is nil when no lookup answered the question.
	SessionExistsOnServer *bool        `json:"isSessionExistsOnServer,omitempty"`
	State                 SessionState `json:"-"`
	Message               string       `json:"message,omitempty"`
}

func (c CurrentUser) IsGuest() bool {
	return c.UserInfo.ID == models.GuestUserID
}

func Guest() CurrentUser {
	return CurrentUser{
		UserInfo: UserInfo{ID: models.GuestUserID, Username: models.GuestUsername},
		State:    StateAnonymous,
	}
}

func (s *AuthService) GetCurrentUser(ctx context.Context, r *http.Request) CurrentUser {
	current := Guest()

	dict, _ := cookies.FromRequest(r)
	token, ok := dict[cookies.SessionName]
	if !ok {
		return current
	}
	current.SessionInfo.ID = token

	found, err := s.sessions.FindWithUser(ctx, token)
	if err != nil {
		current.Error = true
		if errors.Is(err, repository.ErrSessionNotFound) {
			current.State = StateInvalid
			current.SessionExistsOnServer = boolPtr(false)
			current.Message = s.messages.Text(i18n.SessionNotFound)
		} else {
			s.log.Error().Err(err).Str("session", security.Fingerprint(token)).Msg("session lookup failed")
			current.State = StateError
			current.Message = s.messages.Text(i18n.CurrentUserConnectionUnstable)
		}
		return current
	}

	if s.expired(found.Session) {
		current.Error = true
		current.State = StateInvalid
		current.SessionExistsOnServer = boolPtr(false)
		current.Message = s.messages.Text(i18n.SessionExpired)
		if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			s.log.Warn().Err(err).Str("session", security.Fingerprint(token)).Msg("delete expired session failed")
		}
		return current
	}

	current.State = StateAuthenticated
	current.SessionExistsOnServer = boolPtr(true)
	current.UserInfo = UserInfo{ID: found.User.ID, Username: found.User.Username}
	return current
}

func (s *AuthService) expired(session models.Session) bool {
	if s.cfg.SessionTTL <= 0 {
		return false
	}
	return session.CreatedAt.Before(s.now().Add(-s.cfg.SessionTTL))
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("event", string(event.Type)).Msg("publish auth event failed")
	}
}

func boolPtr(v bool) *bool {
	return &v
}
