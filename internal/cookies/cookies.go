// Package cookies decomposes raw Cookie request headers.
package cookies

import (
	"net/http"
	"strings"
	"time"
)

// Parse splits a "key=value; key=value" header into a map of raw values.
// Later occurrences of a key overwrite earlier ones. Values are not unquoted
// or decoded, and a value may itself contain '='.
func Parse(header string) map[string]string {
	dict := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		dict[name] = strings.TrimSpace(value)
	}
	return dict
}

// FromRequest parses every Cookie header on r. The boolean is false when the
// request carries no Cookie header at all.
func FromRequest(r *http.Request) (map[string]string, bool) {
	values := r.Header.Values("Cookie")
	if len(values) == 0 {
		return map[string]string{}, false
	}
	return Parse(strings.Join(values, "; ")), true
}

// SessionName is the cookie carrying the session token.
const SessionName = "sid"

// SetSession hands the session token to the browser.
func SetSession(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession expires the session cookie immediately.
func ClearSession(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
