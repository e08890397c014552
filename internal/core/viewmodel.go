package core

import (
	"fmt"
	"strings"
)

// AllSentinel is the textual form of AllCategories.
const AllSentinel = "all"

// Selection is either AllCategories or exactly one category. The zero
// value is AllCategories.
type Selection struct {
	single   bool
	category Category
}

// AllCategories selects the whole table.
var AllCategories = Selection{}

// Select returns a selection of one category. Membership is checked by
// ViewModel.Resolve.
func Select(c Category) Selection {
	return Selection{single: true, category: c}
}

// ParseSelection maps "" and "all" (any case) to AllCategories and anything
// else to a single-category selection. Codes are upper-cased and trimmed.
func ParseSelection(s string) Selection {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllSentinel) {
		return AllCategories
	}
	return Select(Category(strings.ToUpper(s)))
}

func (s Selection) IsAll() bool { return !s.single }

// Category returns the selected category; ok is false for AllCategories.
func (s Selection) Category() (c Category, ok bool) {
	return s.category, s.single
}

func (s Selection) String() string {
	if !s.single {
		return AllSentinel
	}
	return string(s.category)
}

// ViewResult is the render-ready output for one selection.
type ViewResult struct {
	Selection Selection
	Rows      []ScoreRecord
	Chart     ChartSpec
}

// ViewModel maps selections onto table rows and a chart description.
// It holds no per-session state and is safe for concurrent use.
type ViewModel struct {
	data *Dataset
}

// NewViewModel returns a ViewModel over ds.
func NewViewModel(ds *Dataset) *ViewModel {
	return &ViewModel{data: ds}
}

// Dataset returns the underlying table.
func (vm *ViewModel) Dataset() *Dataset {
	return vm.data
}

// ListCategories returns the selectable codes in lexicographic order.
func (vm *ViewModel) ListCategories() []Category {
	return vm.data.Categories()
}

// Resolve builds the view for sel. An unknown category yields
// ErrInvalidSelection and a zero ViewResult.
func (vm *ViewModel) Resolve(sel Selection) (ViewResult, error) {
	if sel.IsAll() {
		return ViewResult{
			Selection: sel,
			Rows:      vm.data.Records(),
			Chart:     vm.barChart(),
		}, nil
	}

	c, _ := sel.Category()
	rec, ok := vm.data.Lookup(c)
	if !ok {
		return ViewResult{}, fmt.Errorf("%w: unknown category %q", ErrInvalidSelection, string(c))
	}
	return ViewResult{
		Selection: sel,
		Rows:      []ScoreRecord{rec},
		Chart:     vm.pieChart(c),
	}, nil
}

func (vm *ViewModel) barChart() BarChart {
	lo, hi := vm.data.Range()
	bars := make([]Bar, 0, vm.data.Len())
	for _, r := range vm.data.records {
		bars = append(bars, Bar{Record: r, Intensity: intensity(r.Score, lo, hi)})
	}
	return BarChart{Bars: bars}
}

func (vm *ViewModel) pieChart(selected Category) PieChart {
	total := float64(vm.data.Total())
	slices := make([]Slice, 0, vm.data.Len())
	for _, r := range vm.data.records {
		share := 0.0
		if total > 0 {
			share = float64(r.Score) / total
		}
		slices = append(slices, Slice{
			Record:     r,
			Share:      share,
			Emphasized: r.Category == selected,
		})
	}
	return PieChart{Slices: slices, Hole: DonutHole}
}
