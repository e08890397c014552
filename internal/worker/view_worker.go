// Package worker handles view events consumed from the message broker.
package worker

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"

	"mbtidash/internal/amqp"
	applog "mbtidash/internal/log"
)

var (
	colorSelection = color.New(color.Bold)
	colorMuted     = color.New(color.Faint)
)

// Tally is the number of events seen for one selection.
type Tally struct {
	Selection string
	Count     int
}

// ViewWorker prints each resolved view and keeps per-selection counts.
type ViewWorker struct {
	out    io.Writer
	logger *applog.Logger

	mu     sync.Mutex
	counts map[string]int
	total  int
}

// NewViewWorker writes one line per event to out.
func NewViewWorker(out io.Writer, logger *applog.Logger) *ViewWorker {
	return &ViewWorker{
		out:    out,
		logger: logger.WithComponent(applog.ComponentEvents),
		counts: make(map[string]int),
	}
}

// HandleViewResolved processes a single view event from AMQP.
func (w *ViewWorker) HandleViewResolved(ctx context.Context, msg *amqp.ViewResolvedMessage) error {
	w.logger.DebugContext(ctx, "Processing view event",
		applog.FieldSelection, msg.Selection,
		applog.FieldChartKind, msg.Chart,
		applog.FieldRequestID, msg.RequestID)

	line := fmt.Sprintf("%s %s %s rows=%d",
		colorMuted.Sprint(msg.Timestamp.UTC().Format(time.RFC3339)),
		colorSelection.Sprintf("%-4s", msg.Selection),
		msg.Chart,
		len(msg.Rows))
	if msg.Emphasized != "" {
		line += " emphasized=" + msg.Emphasized
	}
	if msg.RequestID != "" {
		line += " " + colorMuted.Sprint(msg.RequestID)
	}
	if _, err := fmt.Fprintln(w.out, line); err != nil {
		return fmt.Errorf("write view event: %w", err)
	}

	w.mu.Lock()
	w.counts[msg.Selection]++
	w.total++
	w.mu.Unlock()
	return nil
}

// Summary returns the counts, most frequent first and ties by name.
func (w *ViewWorker) Summary() (tallies []Tally, total int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tallies = make([]Tally, 0, len(w.counts))
	for sel, n := range w.counts {
		tallies = append(tallies, Tally{Selection: sel, Count: n})
	}
	slices.SortFunc(tallies, func(a, b Tally) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Selection, b.Selection)
	})
	return tallies, w.total
}

// WriteSummary prints the tallies collected so far.
func (w *ViewWorker) WriteSummary(out io.Writer) error {
	tallies, total := w.Summary()
	if _, err := fmt.Fprintf(out, "%s\n", colorSelection.Sprintf("%d view events", total)); err != nil {
		return err
	}
	for _, t := range tallies {
		if _, err := fmt.Fprintf(out, "%-6s %5d\n", t.Selection, t.Count); err != nil {
			return err
		}
	}
	return nil
}
