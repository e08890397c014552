package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtidash/internal/core"
)

func TestFragmentDefaults(t *testing.T) {
	w := httptest.NewRecorder()
	newFragment([]byte("<p>ok</p>")).send(w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>ok</p>", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("HX-Trigger"))
	assert.Empty(t, w.Header().Get("HX-Retarget"))
}

func TestFragmentViewResolvedEvent(t *testing.T) {
	res, err := core.NewViewModel(core.MustDataset()).Resolve(core.Select("INFP"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	newFragment(nil).fireViewResolved(res).withStatus(http.StatusAccepted).send(w)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"view:resolved":{"selection":"INFP","chart":"pie"}}`, w.Header().Get("HX-Trigger"))
}

func TestErrorFragment(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantBody string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input", `<div class="error">Invalid input</div>`},
		{"internal", http.StatusInternalServerError, "Something broke", `<div class="error">Something broke</div>`},
		{
			"escapes html",
			http.StatusBadRequest,
			"<script>alert('xss')</script>",
			`<div class="error">&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;</div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			errorFragment(tt.status, tt.message).retarget("#results").send(w)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "#results", w.Header().Get("HX-Retarget"))
		})
	}
}
