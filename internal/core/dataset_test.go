package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	ds, err := NewDataset()
	require.NoError(t, err)

	assert.Equal(t, DatasetSize, ds.Len())
	assert.Equal(t, 1392, ds.Total())
	lo, hi := ds.Range()
	assert.Equal(t, 75, lo)
	assert.Equal(t, 95, hi)

	rec, ok := ds.Lookup("INFP")
	require.True(t, ok)
	assert.Equal(t, 95, rec.Score)

	_, ok = ds.Lookup("XXXX")
	assert.False(t, ok)
}

func TestNewDatasetRejectsBadTables(t *testing.T) {
	valid := make([]ScoreRecord, len(builtinScores))
	copy(valid, builtinScores)

	tests := []struct {
		name   string
		mutate func([]ScoreRecord) []ScoreRecord
	}{
		{"too few records", func(r []ScoreRecord) []ScoreRecord { return r[:15] }},
		{"duplicate category", func(r []ScoreRecord) []ScoreRecord { r[1].Category = r[0].Category; return r }},
		{"score above range", func(r []ScoreRecord) []ScoreRecord { r[3].Score = 101; return r }},
		{"negative score", func(r []ScoreRecord) []ScoreRecord { r[3].Score = -1; return r }},
		{"malformed code", func(r []ScoreRecord) []ScoreRecord { r[5].Category = "ABCD"; return r }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := make([]ScoreRecord, len(valid))
			copy(src, valid)
			_, err := newDataset(tt.mutate(src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDataset))
		})
	}

	assert.Equal(t, valid, builtinScores, "built-in table must not be modified")
}

func TestCategoryValidate(t *testing.T) {
	tests := []struct {
		code    Category
		wantErr bool
	}{
		{"INFP", false},
		{"ESTJ", false},
		{"", true},
		{"INF", true},
		{"INFPX", true},
		{"XNFP", true},
		{"IXFP", true},
		{"INXP", true},
		{"INFX", true},
		{"infp", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := tt.code.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
