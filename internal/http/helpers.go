package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"mbtidash/internal/core"
)

// maxSelectionLen bounds the raw ?type= value; valid inputs are "all" or a
// four-letter code.
const maxSelectionLen = 16

// parseSelection reads the ?type= query parameter. A missing parameter
// selects every category. Over-long values are rejected whole.
func parseSelection(r *http.Request) (core.Selection, error) {
	raw := sanitizeInput(r.URL.Query().Get("type"))
	if len(raw) > maxSelectionLen {
		return core.Selection{}, fmt.Errorf("%w: %q is too long", core.ErrInvalidSelection, shorten(raw, maxSelectionLen))
	}
	return core.ParseSelection(raw), nil
}

// shorten cuts s to at most n runes for display.
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, errorBody{Error: message})
}
