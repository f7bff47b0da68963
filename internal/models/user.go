package models

import "time"

// GuestUserID and GuestUsername identify the anonymous visitor.
const (
	GuestUserID   int64 = 0
	GuestUsername       = "Guest"
	NoUserID      int64 = -1
)

type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session rows are keyed by the opaque token handed to the browser.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SessionWithUser struct {
	Session
	User User
}
