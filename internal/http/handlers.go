package http

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"time"

	"mbtidash/internal/core"
	applog "mbtidash/internal/log"
	"mbtidash/internal/render"
)

const resultsSelector = "#results"

// handleIndex renders the full dashboard page for ?type=.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.resolveRequest(r)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	view, err := s.renderView(ctx, res)
	if err != nil {
		s.structured.LogError(ctx, "View render failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		errorFragment(http.StatusInternalServerError, "Could not render view").send(w)
		return
	}

	data := struct {
		Options  []option
		Selected string
		View     template.HTML
	}{
		Options:  selectorOptions(s.vm.ListCategories(), res.Selection),
		Selected: res.Selection.String(),
		View:     template.HTML(view),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.structured.LogError(ctx, "Index template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.NewFields().WithTemplate("index.html"))
		errorFragment(http.StatusInternalServerError, "Could not render page").send(w)
		return
	}
	newFragment(buf.Bytes()).send(w)
}

// handleViewPartial renders the results section for HTMX swaps.
func (s *Server) handleViewPartial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.resolveRequest(r)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	view, err := s.renderView(ctx, res)
	if err != nil {
		s.structured.LogError(ctx, "View render failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		errorFragment(http.StatusInternalServerError, "Could not render view").send(w)
		return
	}

	newFragment(view).fireViewResolved(res).send(w)
}

// writeResolveError maps resolution failures onto an HTML error fragment
// swapped into the results section.
func (s *Server) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrInvalidSelection) {
		s.log(r.Context()).WarnContext(r.Context(), "Invalid selection",
			applog.NewFields().WithError(err).WithOperation(applog.OpResolve).ToSlice()...)
		errorFragment(http.StatusBadRequest, err.Error()).retarget(resultsSelector).send(w)
		return
	}
	s.structured.LogError(r.Context(), "View resolution failed", err, applog.ComponentViewModel, applog.OpResolve, nil)
	errorFragment(http.StatusInternalServerError, "Could not resolve view").retarget(resultsSelector).send(w)
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	cats := s.vm.ListCategories()
	out := make([]string, 0, len(cats)+1)
	out = append(out, core.AllSentinel)
	for _, c := range cats {
		out = append(out, string(c))
	}
	_ = writeJSON(w, http.StatusOK, out)
}

type apiRow struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

type apiBar struct {
	Category  string  `json:"category"`
	Score     int     `json:"score"`
	Intensity float64 `json:"intensity"`
	Fill      string  `json:"fill"`
}

type apiSlice struct {
	Category   string  `json:"category"`
	Score      int     `json:"score"`
	Share      float64 `json:"share"`
	Emphasized bool    `json:"emphasized"`
	Fill       string  `json:"fill"`
}

type apiView struct {
	Selection string     `json:"selection"`
	Chart     string     `json:"chart"`
	Rows      []apiRow   `json:"rows"`
	Bars      []apiBar   `json:"bars,omitempty"`
	Slices    []apiSlice `json:"slices,omitempty"`
	Hole      float64    `json:"hole,omitempty"`
}

func newAPIView(res core.ViewResult) apiView {
	v := apiView{
		Selection: res.Selection.String(),
		Chart:     string(res.Chart.Kind()),
		Rows:      make([]apiRow, 0, len(res.Rows)),
	}
	for _, row := range res.Rows {
		v.Rows = append(v.Rows, apiRow{Category: string(row.Category), Score: row.Score})
	}
	switch c := res.Chart.(type) {
	case core.BarChart:
		for _, b := range c.Bars {
			v.Bars = append(v.Bars, apiBar{
				Category:  string(b.Record.Category),
				Score:     b.Record.Score,
				Intensity: b.Intensity,
				Fill:      render.Plasma(b.Intensity),
			})
		}
	case core.PieChart:
		v.Hole = c.Hole
		for _, sl := range c.Slices {
			v.Slices = append(v.Slices, apiSlice{
				Category:   string(sl.Record.Category),
				Score:      sl.Record.Score,
				Share:      sl.Share,
				Emphasized: sl.Emphasized,
				Fill:       render.SliceFill(sl.Emphasized),
			})
		}
	}
	return v
}

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolveRequest(r)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSelection) {
			_ = writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.structured.LogError(r.Context(), "View resolution failed", err, applog.ComponentViewModel, applog.OpResolve, nil)
		_ = writeJSONError(w, http.StatusInternalServerError, "could not resolve view")
		return
	}
	_ = writeJSON(w, http.StatusOK, newAPIView(res))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports whether templates and the dataset are usable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil || s.templates.Lookup("view.html") == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if n := s.vm.Dataset().Len(); n != core.DatasetSize {
		checks["dataset"] = "failed: unexpected size"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]any{"records": n, "status": "ok"}
	}

	stats := s.viewCache.Stats()
	checks["view_cache"] = map[string]any{
		"entries": s.viewCache.Size(),
		"hits":    stats.Hits,
		"misses":  stats.Misses,
		"status":  "ok",
	}

	if s.rateLimiter != nil {
		checks["rate_limiter"] = map[string]any{
			"active_clients": s.rateLimiter.ActiveClients(),
			"status":         "ok",
		}
	}

	_ = writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
