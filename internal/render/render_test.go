package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gonum/matrix/mat64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var montageOpts = Options{Colormap: "gray", Min: -0.1, Max: 0.1, Title: "Principal Components of Covariance Matrix", Colorbar: true}

func TestColormapEndpoints(t *testing.T) {
	for _, name := range Colormaps() {
		cm, err := LookupColormap(name)
		require.NoError(t, err)
		assert.Equal(t, cm.stops[0], cm.At(0), name)
		assert.Equal(t, cm.stops[0], cm.At(-3), name)
		assert.Equal(t, cm.stops[len(cm.stops)-1], cm.At(1), name)
		assert.Equal(t, cm.stops[len(cm.stops)-1], cm.At(7), name)
	}

	gray, err := LookupColormap("gray")
	require.NoError(t, err)
	r, g, b := gray.At(0.5).RGB255()
	assert.InDelta(t, 128, int(r), 1)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestUnknownColormap(t *testing.T) {
	_, err := LookupColormap("rainbow")
	assert.Error(t, err)
}

func TestGrayImage(t *testing.T) {
	m := mat64.NewDense(1, 3, []float64{-1, 0, 1})
	g := grayImage(m, -0.1, 0.1)
	assert.Equal(t, 3, g.Bounds().Dx())
	assert.Equal(t, 0.0, level(g, 0, 0))
	assert.InDelta(t, 0.5, level(g, 1, 0), 1e-4)
	assert.Equal(t, 1.0, level(g, 2, 0))
}

func imageLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, upperHalf) {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestTerminalRender(t *testing.T) {
	var out bytes.Buffer
	m := mat64.NewDense(5, 6, nil)
	require.NoError(t, Terminal{Out: &out, Width: 120}.Render(m, montageOpts))

	s := out.String()
	assert.Contains(t, s, montageOpts.Title)
	lines := imageLines(s)
	require.Len(t, lines, 3, "5 rows draw as 3 half-block lines")
	for _, l := range lines {
		assert.Equal(t, 6, strings.Count(l, upperHalf))
	}
	assert.Contains(t, s, "-0.1")
	assert.Contains(t, s, "0.1\n")
}

func TestTerminalResamplesWideImages(t *testing.T) {
	var out bytes.Buffer
	m := mat64.NewDense(144, 240, nil)
	require.NoError(t, Terminal{Out: &out, Width: 80}.Render(m, montageOpts))

	lines := imageLines(out.String())
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.Equal(t, 80, strings.Count(l, upperHalf))
	}
}

func TestTerminalWaits(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\n")
	require.NoError(t, Terminal{Out: &out, Width: 10, Wait: in}.Render(mat64.NewDense(2, 2, nil), montageOpts))
	assert.Contains(t, out.String(), "Press Enter")
	assert.Equal(t, 0, in.Len())
}

func TestTerminalRejectsBadOptions(t *testing.T) {
	var out bytes.Buffer
	opts := montageOpts
	opts.Colormap = "nope"
	assert.Error(t, Terminal{Out: &out}.Render(mat64.NewDense(2, 2, nil), opts))

	opts = montageOpts
	opts.Min, opts.Max = 1, 1
	assert.Error(t, Terminal{Out: &out}.Render(mat64.NewDense(2, 2, nil), opts))
}

func TestCSVRender(t *testing.T) {
	var out bytes.Buffer
	m := mat64.NewDense(2, 2, []float64{0.5, -0.05, 0, -2})
	require.NoError(t, CSV{Out: &out}.Render(m, montageOpts))

	want := "# Principal Components of Covariance Matrix\n" +
		"# colormap gray range [-0.1, 0.1]\n" +
		"0.1, -0.05\n" +
		"0, -0.1\n"
	assert.Equal(t, want, out.String())
}

func TestViewerArgs(t *testing.T) {
	args := viewerArgs(144, 240, 42, montageOpts)
	assert.Equal(t, []string{"144", "240", "42", "-0.1", "0.1", "gray", montageOpts.Title, "1"}, args)
}

func TestSharedMemoryNeedsViewer(t *testing.T) {
	assert.Error(t, SharedMemory{}.Render(mat64.NewDense(1, 1, nil), montageOpts))
}
