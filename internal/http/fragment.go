package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"mbtidash/internal/core"
)

// EventViewResolved is fired after a selection swap so the page can keep
// its selector and URL in step with the rendered view.
const EventViewResolved = "view:resolved"

// fragment is an HTML response plus the HTMX directives that go with it.
type fragment struct {
	status int
	body   []byte
	header http.Header
	events map[string]any
}

func newFragment(body []byte) *fragment {
	f := &fragment{status: http.StatusOK, body: body, header: http.Header{}}
	f.header.Set("Content-Type", "text/html; charset=utf-8")
	return f
}

// errorFragment renders message escaped inside the page's error box.
func errorFragment(status int, message string) *fragment {
	f := newFragment([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
	f.status = status
	return f
}

func (f *fragment) withStatus(code int) *fragment {
	f.status = code
	return f
}

// fire adds an HX-Trigger event; detail is marshalled as the event payload.
func (f *fragment) fire(event string, detail any) *fragment {
	if f.events == nil {
		f.events = make(map[string]any)
	}
	f.events[event] = detail
	return f
}

func (f *fragment) fireViewResolved(res core.ViewResult) *fragment {
	return f.fire(EventViewResolved, map[string]string{
		"selection": res.Selection.String(),
		"chart":     string(res.Chart.Kind()),
	})
}

// retarget points the swap at selector instead of the requesting element.
func (f *fragment) retarget(selector string) *fragment {
	f.header.Set("HX-Retarget", selector)
	return f
}

func (f *fragment) send(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range f.header {
		h[name] = values
	}
	if len(f.events) > 0 {
		if b, err := json.Marshal(f.events); err == nil {
			h.Set("HX-Trigger", string(b))
		}
	}
	w.WriteHeader(f.status)
	if len(f.body) > 0 {
		_, _ = w.Write(f.body)
	}
}
