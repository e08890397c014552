package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mbtidash/internal/core"
)

const barCells = 40

var (
	colorBold      = color.New(color.Bold)
	colorEmphasis  = color.New(color.FgYellow, color.Bold)
	colorMuted     = color.New(color.Faint)
	intensityScale = []*color.Color{
		color.New(color.FgBlue),
		color.New(color.FgMagenta),
		color.New(color.FgRed),
		color.New(color.FgHiYellow),
	}
)

// IntensityColor picks the terminal colour band for an intensity in [0,1].
func IntensityColor(t float64) *color.Color {
	i := int(t * float64(len(intensityScale)))
	if i < 0 {
		i = 0
	}
	if i >= len(intensityScale) {
		i = len(intensityScale) - 1
	}
	return intensityScale[i]
}

// Text writes res as a table followed by a text chart.
func Text(w io.Writer, res core.ViewResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", colorBold.Sprintf("Results for %s", Heading(res.Selection)))
	fmt.Fprintf(&b, "%-6s %5s\n", "TYPE", "SCORE")
	for _, r := range res.Rows {
		fmt.Fprintf(&b, "%-6s %5d\n", r.Category, r.Score)
	}
	b.WriteString("\n")

	switch c := res.Chart.(type) {
	case core.BarChart:
		writeBars(&b, c)
	case core.PieChart:
		if len(res.Rows) == 1 {
			fmt.Fprintf(&b, "%s scores %s.\n\n", res.Rows[0].Category, colorEmphasis.Sprintf("%d", res.Rows[0].Score))
		}
		writeSlices(&b, c)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Heading names the selection in result titles.
func Heading(sel core.Selection) string {
	if sel.IsAll() {
		return "all types"
	}
	return sel.String()
}

func writeBars(b *strings.Builder, c core.BarChart) {
	b.WriteString(colorBold.Sprint("Score by type") + "\n")
	for _, bar := range c.Bars {
		n := bar.Record.Score * barCells / core.MaxScore
		fill := IntensityColor(bar.Intensity).Sprint(strings.Repeat("█", n))
		fmt.Fprintf(b, "%-4s %s%s %3d\n", bar.Record.Category, fill, strings.Repeat(" ", barCells-n), bar.Record.Score)
	}
}

func writeSlices(b *strings.Builder, c core.PieChart) {
	b.WriteString(colorBold.Sprint("Share of total score") + "\n")
	for _, s := range c.Slices {
		line := fmt.Sprintf("%-4s %5.1f%% %3d", s.Record.Category, s.Share*100, s.Record.Score)
		if s.Emphasized {
			b.WriteString(colorEmphasis.Sprint("◆ "+line) + "\n")
			continue
		}
		b.WriteString(colorMuted.Sprint("  "+line) + "\n")
	}
}

// Categories writes the selector options, one per line.
func Categories(w io.Writer, cats []core.Category) error {
	var b strings.Builder
	b.WriteString(core.AllSentinel + "\n")
	for _, c := range cats {
		b.WriteString(string(c) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
