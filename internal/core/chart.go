package core

// ChartKind names the chart variant of a view.
type ChartKind string

const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// DonutHole is the inner radius of the pie chart as a fraction of its radius.
const DonutHole = 0.3

// ChartSpec describes the chart for a view. It is implemented only by
// BarChart and PieChart.
type ChartSpec interface {
	Kind() ChartKind
	// Len is the number of bars or slices.
	Len() int
	sealed()
}

// Bar is one bar of the aggregate chart. Intensity is in [0,1] and grows
// with the score.
type Bar struct {
	Record    ScoreRecord
	Intensity float64
}

// BarChart covers every record, coloured on a sequential scale by score.
type BarChart struct {
	Bars []Bar
}

func (BarChart) Kind() ChartKind { return ChartBar }
func (c BarChart) Len() int      { return len(c.Bars) }
func (BarChart) sealed()         {}

// Slice is one slice of the single-selection chart. Share is the slice's
// fraction of the total score.
type Slice struct {
	Record     ScoreRecord
	Share      float64
	Emphasized bool
}

// PieChart always carries every record; only the selected one is emphasized.
type PieChart struct {
	Slices []Slice
	Hole   float64
}

func (PieChart) Kind() ChartKind { return ChartPie }
func (c PieChart) Len() int      { return len(c.Slices) }
func (PieChart) sealed()         {}

// Emphasized returns the emphasized slice, if any.
func (c PieChart) Emphasized() (Slice, bool) {
	for _, s := range c.Slices {
		if s.Emphasized {
			return s, true
		}
	}
	return Slice{}, false
}

// intensity maps score linearly onto [0,1] between lo and hi.
func intensity(score, lo, hi int) float64 {
	if hi <= lo {
		return 1
	}
	return float64(score-lo) / float64(hi-lo)
}
