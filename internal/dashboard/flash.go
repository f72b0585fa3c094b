// SPDX-License-Identifier: MIT

package dashboard

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

const flashCookie = "sms_flash"

// maxDescription keeps the encoded notice well below the 4 KB cookie limit,
// even when every byte needs JSON escaping.
const maxDescription = 400

// Notification titles shown after a mutation.
const (
	toastCreateFailed   = "Failed to Create Producer"
	toastUpdateFailed   = "Failed to Update Producer"
	toastGenerated      = "Successfully generated new messages"
	toastGenerateFailed = "Failed to generate messages"
	toastSent           = "Successfully sent all pending messages"
	toastActivateFailed = "Failed to activate prodcuer"
	toastDeleted        = "Successfully deleted producer"
	toastDeleteFailed   = "Failed to delete prodcuer"
)

// Kind classifies how a notice is presented.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is a one-time toast carried across a redirect.
type Notice struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func success(title string) Notice { return Notice{Kind: KindSuccess, Title: title} }

func failure(title string, err error) Notice {
	n := Notice{Kind: KindError, Title: title}
	if err != nil {
		n.Description = truncate(err.Error(), maxDescription)
	}
	return n
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	const ellipsis = "..."
	cut := limit - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// writeFlash stores n for the next page render.
func writeFlash(w http.ResponseWriter, n Notice) {
	if strings.TrimSpace(n.Title) == "" {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// readFlash returns the pending notice, if any, and expires the cookie.
func readFlash(w http.ResponseWriter, r *http.Request) *Notice {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(cookie.Value))
	if err != nil {
		return nil
	}
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil || n.Title == "" {
		return nil
	}
	switch n.Kind {
	case KindSuccess, KindError:
		return &n
	default:
		return nil
	}
}
