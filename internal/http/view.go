package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"mbtidash/internal/core"
	applog "mbtidash/internal/log"
	"mbtidash/internal/metrics"
	"mbtidash/internal/middleware/trace"
	"mbtidash/internal/render"
)

// viewData is the input of view.html.
type viewData struct {
	Selection string
	Heading   string
	Chart     string
	Rows      []core.ScoreRecord
	Highlight *core.ScoreRecord
	Bars      *render.BarGeometry
	Pie       *render.PieGeometry
}

func newViewData(res core.ViewResult) viewData {
	d := viewData{
		Selection: res.Selection.String(),
		Heading:   render.Heading(res.Selection),
		Chart:     string(res.Chart.Kind()),
		Rows:      res.Rows,
	}
	switch c := res.Chart.(type) {
	case core.BarChart:
		g := render.LayoutBars(c)
		d.Bars = &g
	case core.PieChart:
		g := render.LayoutPie(c)
		d.Pie = &g
		if len(res.Rows) == 1 {
			d.Highlight = &res.Rows[0]
		}
	}
	return d
}

// option is one entry of the sidebar selector.
type option struct {
	Value    string
	Label    string
	Selected bool
}

func selectorOptions(cats []core.Category, sel core.Selection) []option {
	opts := make([]option, 0, len(cats)+1)
	opts = append(opts, option{Value: core.AllSentinel, Label: "All types", Selected: sel.IsAll()})
	for _, c := range cats {
		opts = append(opts, option{Value: string(c), Label: string(c), Selected: !sel.IsAll() && sel.String() == string(c)})
	}
	return opts
}

// resolveRequest resolves the selection named by r's ?type= parameter.
func (s *Server) resolveRequest(r *http.Request) (core.ViewResult, error) {
	sel, err := parseSelection(r)
	if err != nil {
		s.recorder.ObserveResolve("", metrics.OutcomeInvalid)
		return core.ViewResult{}, err
	}
	return s.resolve(r.Context(), sel)
}

// resolve runs the view model for sel, records the outcome and announces
// successful resolutions. Publishing failures never fail the request.
func (s *Server) resolve(ctx context.Context, sel core.Selection) (core.ViewResult, error) {
	res, err := s.vm.Resolve(sel)
	if err != nil {
		s.recorder.ObserveResolve("", metrics.OutcomeInvalid)
		return core.ViewResult{}, err
	}
	s.recorder.ObserveResolve(string(res.Chart.Kind()), metrics.OutcomeOK)

	if s.events {
		err := s.publisher.PublishViewResolved(ctx, res, trace.GetRequestID(ctx))
		s.recorder.ObserveEvent(err)
		if err != nil {
			s.log(ctx).WarnContext(ctx, "View event not published",
				applog.NewFields().
					WithError(err).
					WithOperation(applog.OpPublish).
					WithComponent(applog.ComponentEvents).
					ToSlice()...)
		}
	}
	return res, nil
}

// renderView returns the view.html fragment for res, cached per selection.
func (s *Server) renderView(ctx context.Context, res core.ViewResult) ([]byte, error) {
	body, hit, err := s.viewCache.GetOrCompute(res.Selection.String(), func() ([]byte, error) {
		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, "view.html", newViewData(res)); err != nil {
			return nil, fmt.Errorf("render view %s: %w", res.Selection, err)
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}
	s.recorder.ObserveCache(hit)
	s.structured.LogViewResolved(ctx, res.Selection.String(), string(res.Chart.Kind()), len(res.Rows), hit)
	return body, nil
}

// log returns the request-scoped logger when the trace middleware set one.
func (s *Server) log(ctx context.Context) *applog.Logger {
	return applog.FromContextOr(ctx, s.logger)
}
