package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtidash/internal/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "personality-type scores")
	for _, sub := range []string{"serve", "show", "categories", "version", "watch"} {
		assert.Contains(t, out, sub)
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"verbose", "quiet", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	v := rootCmd.PersistentFlags().ShorthandLookup("v")
	require.NotNil(t, v)
	assert.Equal(t, "verbose", v.Name)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mbtidash dev\n", out)
}

func TestCategories(t *testing.T) {
	out, err := execute(t, "categories")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 17)
	assert.Equal(t, "all", lines[0])
	assert.Equal(t, "ENFJ", lines[1])
	assert.Equal(t, "ISTP", lines[16])
}

func TestShow(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "no argument shows all",
			args:     []string{"show"},
			contains: []string{"Results for all types", "Score by type", "INFP      95", "ESTP      75"},
		},
		{
			name:     "explicit all",
			args:     []string{"show", "ALL"},
			contains: []string{"Results for all types"},
		},
		{
			name:     "single type is case-insensitive",
			args:     []string{"show", "infp"},
			contains: []string{"Results for INFP", "INFP scores 95.", "Share of total score", "◆ INFP"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestShowInvalidSelection(t *testing.T) {
	_, err := execute(t, "show", "ABCD")
	require.Error(t, err)

	var ece *exitCodeError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, ExitInvalidSelection, ece.code)
	assert.ErrorIs(t, err, core.ErrInvalidSelection)
}

func TestShowTooManyArgs(t *testing.T) {
	_, err := execute(t, "show", "INFP", "INTJ")
	assert.Error(t, err)
}

func TestServeRejectsBadConfig(t *testing.T) {
	t.Setenv("VIEW_CACHE_SIZE", "0")

	_, err := execute(t, "serve")
	require.Error(t, err)

	var ece *exitCodeError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, ExitBadConfig, ece.code)
	assert.Contains(t, err.Error(), "view cache size")
}

func TestWatchRequiresBroker(t *testing.T) {
	t.Setenv("AMQP_URL", "")

	_, err := execute(t, "watch")
	require.Error(t, err)

	var ece *exitCodeError
	require.True(t, errors.As(err, &ece))
	assert.Equal(t, ExitBadConfig, ece.code)
	assert.Contains(t, err.Error(), "AMQP_URL")
}
