package core

import (
	"fmt"
	"sort"
)

// Fictional language-achievement scores per MBTI type. Not research data.
var builtinScores = []ScoreRecord{
	{"ISTJ", 85}, {"ISFJ", 90}, {"INFJ", 92}, {"INTJ", 88},
	{"ISTP", 78}, {"ISFP", 82}, {"INFP", 95}, {"INTP", 87},
	{"ESTP", 75}, {"ESFP", 80}, {"ENFP", 93}, {"ENTP", 89},
	{"ESTJ", 83}, {"ESFJ", 91}, {"ENFJ", 94}, {"ENTJ", 90},
}

// DatasetSize is the number of records in the built-in table.
const DatasetSize = 16

// Dataset is the immutable score table. Records are kept in lexicographic
// category order. It is safe for concurrent reads.
type Dataset struct {
	records []ScoreRecord
	index   map[Category]int
	minimum int
	maximum int
	total   int
}

// NewDataset builds the built-in table.
func NewDataset() (*Dataset, error) {
	return newDataset(builtinScores)
}

// MustDataset is like NewDataset but panics on an invalid literal table.
func MustDataset() *Dataset {
	ds, err := NewDataset()
	if err != nil {
		panic(err)
	}
	return ds
}

func newDataset(src []ScoreRecord) (*Dataset, error) {
	if len(src) != DatasetSize {
		return nil, fmt.Errorf("%w: expected %d records, got %d", ErrInvalidDataset, DatasetSize, len(src))
	}

	records := make([]ScoreRecord, len(src))
	copy(records, src)
	sort.Slice(records, func(i, j int) bool { return records[i].Category < records[j].Category })

	ds := &Dataset{
		records: records,
		index:   make(map[Category]int, len(records)),
		minimum: MaxScore,
		maximum: MinScore,
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
		if _, dup := ds.index[r.Category]; dup {
			return nil, fmt.Errorf("%w: duplicate category %s", ErrInvalidDataset, r.Category)
		}
		ds.index[r.Category] = i
		ds.total += r.Score
		ds.minimum = min(ds.minimum, r.Score)
		ds.maximum = max(ds.maximum, r.Score)
	}
	return ds, nil
}

// Records returns a copy of all records in category order.
func (d *Dataset) Records() []ScoreRecord {
	out := make([]ScoreRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Categories returns the category codes in lexicographic order.
func (d *Dataset) Categories() []Category {
	out := make([]Category, len(d.records))
	for i, r := range d.records {
		out[i] = r.Category
	}
	return out
}

// Lookup returns the record for c.
func (d *Dataset) Lookup(c Category) (ScoreRecord, bool) {
	i, ok := d.index[c]
	if !ok {
		return ScoreRecord{}, false
	}
	return d.records[i], true
}

func (d *Dataset) Len() int { return len(d.records) }

// Total is the sum of all scores.
func (d *Dataset) Total() int { return d.total }

// Range returns the lowest and highest score in the table.
func (d *Dataset) Range() (lo, hi int) { return d.minimum, d.maximum }
