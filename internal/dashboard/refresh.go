// SPDX-License-Identifier: MIT

package dashboard

import (
	"math"
	"net/http"
	"strconv"
	"strings"
)

const refreshCookie = "sms_refresh_rate"

// DefaultRefreshRate is the live view polling interval in seconds.
const DefaultRefreshRate = 5.0

// Bounds accepted for a refresh rate, in seconds.
const (
	minRefreshRate = 0.5
	maxRefreshRate = 3600
)

// parseRefreshRate accepts a positive number of seconds within bounds.
func parseRefreshRate(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < minRefreshRate || v > maxRefreshRate {
		return 0, false
	}
	return v, true
}

// refreshRate reads the user's rate from its cookie, falling back to def.
func refreshRate(r *http.Request, def float64) float64 {
	if c, err := r.Cookie(refreshCookie); err == nil {
		if v, ok := parseRefreshRate(c.Value); ok {
			return v
		}
	}
	return def
}

func writeRefreshRate(w http.ResponseWriter, v float64) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    formatRate(v),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
