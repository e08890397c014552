package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbtidash/internal/core"
)

func resolve(t *testing.T, sel core.Selection) core.ViewResult {
	t.Helper()
	vm := core.NewViewModel(core.MustDataset())
	res, err := vm.Resolve(sel)
	require.NoError(t, err)
	return res
}

func luminance(hex string) float64 {
	c := mustHex(hex)
	return 0.2126*float64(c.r) + 0.7152*float64(c.g) + 0.0722*float64(c.b)
}

func TestPlasmaEndpoints(t *testing.T) {
	assert.Equal(t, "#0d0887", Plasma(0))
	assert.Equal(t, "#f0f921", Plasma(1))
	assert.Equal(t, "#0d0887", Plasma(-3))
	assert.Equal(t, "#f0f921", Plasma(7))
}

func TestPlasmaBrightensWithIntensity(t *testing.T) {
	prev := luminance(Plasma(0))
	for i := 1; i <= 20; i++ {
		cur := luminance(Plasma(float64(i) / 20))
		assert.Greater(t, cur, prev, "step %d", i)
		prev = cur
	}
}

func TestSliceFill(t *testing.T) {
	assert.Equal(t, EmphasisFill, SliceFill(true))
	assert.Equal(t, DeemphasisFill, SliceFill(false))
}

func TestLayoutBars(t *testing.T) {
	res := resolve(t, core.AllCategories)
	g := LayoutBars(res.Chart.(core.BarChart))

	require.Len(t, g.Bars, core.DatasetSize)
	require.Len(t, g.Ticks, 5)
	assert.Equal(t, "100", g.Ticks[4].Label)

	fills := make(map[string]string)
	for _, b := range g.Bars {
		fills[b.Label] = b.Fill
	}
	assert.Equal(t, Plasma(0), fills["ESTP"])
	assert.Equal(t, Plasma(1), fills["INFP"])
}

func TestLayoutPie(t *testing.T) {
	res := resolve(t, core.Select("INFP"))
	g := LayoutPie(res.Chart.(core.PieChart))

	require.Len(t, g.Slices, core.DatasetSize)
	emphasized := 0
	for _, s := range g.Slices {
		assert.True(t, strings.HasPrefix(s.Path, "M"))
		assert.True(t, strings.HasSuffix(s.Path, "Z"))
		if s.Emphasized {
			emphasized++
			assert.Equal(t, "INFP", s.Label)
			assert.Equal(t, EmphasisFill, s.Fill)
			assert.Equal(t, "6.8%", s.Percent)
		} else {
			assert.Equal(t, DeemphasisFill, s.Fill)
		}
	}
	assert.Equal(t, 1, emphasized)
}

func TestText(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	t.Run("all", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Text(&buf, resolve(t, core.AllCategories)))
		out := buf.String()
		assert.Contains(t, out, "Results for all types")
		assert.Contains(t, out, "Score by type")
		assert.Contains(t, out, "ESTP")
		assert.Equal(t, 1, strings.Count(out, "INFP      95"), "table row")
	})

	t.Run("single", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Text(&buf, resolve(t, core.Select("INFP"))))
		out := buf.String()
		assert.Contains(t, out, "Results for INFP")
		assert.Contains(t, out, "INFP scores 95.")
		assert.Contains(t, out, "◆ INFP")
		assert.Contains(t, out, "  ISTJ")
		assert.Equal(t, 1, strings.Count(out, "◆"))
	})
}

func TestCategories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Categories(&buf, core.MustDataset().Categories()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, core.DatasetSize+1)
	assert.Equal(t, "all", lines[0])
	assert.Equal(t, "ENFJ", lines[1])
}
