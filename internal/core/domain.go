package core

import (
	"errors"
	"fmt"
)

const (
	MinScore = 0
	MaxScore = 100
)

type (
	// Category is a four-letter MBTI type code.
	Category string

	// ScoreRecord pairs a category with its achievement score.
	ScoreRecord struct {
		Category Category
		Score    int
	}
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidDataset   = errors.New("invalid dataset")
	ErrInvalidScore     = errors.New("score out of range")
	ErrEmptyCategory    = errors.New("empty category")
)

func (c Category) String() string {
	return string(c)
}

// Validate checks the code has the shape of an MBTI type: one letter from
// each of the four dichotomies, in order.
func (c Category) Validate() error {
	if c == "" {
		return ErrEmptyCategory
	}
	if len(c) != 4 {
		return fmt.Errorf("category %q: expected 4 letters", string(c))
	}
	axes := [4]string{"EI", "SN", "TF", "JP"}
	for i, axis := range axes {
		if c[i] != axis[0] && c[i] != axis[1] {
			return fmt.Errorf("category %q: letter %d must be one of %q", string(c), i+1, axis)
		}
	}
	return nil
}

func (r ScoreRecord) Validate() error {
	if err := r.Category.Validate(); err != nil {
		return err
	}
	if r.Score < MinScore || r.Score > MaxScore {
		return fmt.Errorf("%w: %s=%d", ErrInvalidScore, r.Category, r.Score)
	}
	return nil
}
