// Package flash carries one-shot user-facing messages across a redirect in
// short-lived cookies.
package flash

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"guitarworks/api/internal/cookies"
)

type Kind string

const (
	Success Kind = "success"
	Alert   Kind = "alert"
	Caution Kind = "caution"
)

const (
	MessageCookie = "fmsg"
	KindCookie    = "fmsgtype"
	NonceCookie   = "newfmsgfg"

	maxAge = 5
)

type Info struct {
	Content             string `json:"content"`
	Type                Kind   `json:"type"`
	NewFlashMessageFlag string `json:"newFlashMessageFlag"`
}

// Set queues message for the next page load. The nonce lets the client tell
// two identical consecutive messages apart.
func Set(w http.ResponseWriter, message string, kind Kind) {
	nonce := strconv.FormatInt(time.Now().UnixMilli(), 10)
	for name, value := range map[string]string{
		MessageCookie: Encode(message),
		KindCookie:    string(kind),
		NonceCookie:   nonce,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Read returns the pending message, or nil when there is none.
func Read(r *http.Request) *Info {
	dict, _ := cookies.FromRequest(r)
	raw, ok := dict[MessageCookie]
	if !ok {
		return nil
	}

	content, err := url.PathUnescape(raw)
	if err != nil {
		content = raw
	}

	kind := Kind(dict[KindCookie])
	switch kind {
	case Success, Alert, Caution:
	default:
		kind = Caution
	}

	return &Info{
		Content:             content,
		Type:                kind,
		NewFlashMessageFlag: dict[NonceCookie],
	}
}

// Encode percent-encodes s the way encodeURIComponent does, which keeps the
// value inside the cookie-octet range.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
