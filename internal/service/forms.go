package service

import (
	"regexp"
	"unicode/utf8"

	"guitarworks/api/internal/i18n"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type FormCheck struct {
	Error            bool     `json:"error"`
	UsernameMessages []string `json:"usernameMessages"`
	PasswordMessages []string `json:"passwordMessages"`
}

// CheckRegisterForm applies the format rules for new accounts before any
// store access happens.
func (s *AuthService) CheckRegisterForm(username string, password string) FormCheck {
	check := FormCheck{UsernameMessages: []string{}, PasswordMessages: []string{}}

	check.UsernameMessages = s.fieldMessages(username, minUsernameLength, i18n.UsernameTooShort)
	check.PasswordMessages = s.fieldMessages(password, minPasswordLength, i18n.PasswordTooShort)
	check.Error = len(check.UsernameMessages) > 0 || len(check.PasswordMessages) > 0
	return check
}

func (s *AuthService) fieldMessages(value string, minLength int, tooShort i18n.Key) []string {
	messages := []string{}
	if value == "" {
		return append(messages, s.messages.Text(i18n.Required))
	}
	if utf8.RuneCountInString(value) < minLength {
		messages = append(messages, s.messages.Text(tooShort))
	}
	if !alphanumeric.MatchString(value) {
		messages = append(messages, s.messages.Text(i18n.Alphanumeric))
	}
	return messages
}

func (s *AuthService) CheckLoginForm(username string, password string) FormCheck {
	check := FormCheck{UsernameMessages: []string{}, PasswordMessages: []string{}}
	if username == "" {
		check.UsernameMessages = append(check.UsernameMessages, s.messages.Text(i18n.Required))
	}
	if password == "" {
		check.PasswordMessages = append(check.PasswordMessages, s.messages.Text(i18n.Required))
	}
	check.Error = len(check.UsernameMessages) > 0 || len(check.PasswordMessages) > 0
	return check
}
