package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KyungWonPark/eigenpatch/internal/calc"
	"github.com/gonum/matrix/mat64"
	"github.com/pkg/errors"
)

// CSV prints the clamped matrix as comma separated rows, preceded by
// '#' comment lines carrying the title and display settings.
type CSV struct {
	Out io.Writer
}

// Render implements Renderer
func (c CSV) Render(img mat64.Matrix, opts Options) error {
	clamped := calc.Clamp(img, opts.Min, opts.Max)
	rows, cols := clamped.Dims()

	w := bufio.NewWriter(c.Out)
	fmt.Fprintf(w, "# %s\n", opts.Title)
	if opts.Colorbar {
		fmt.Fprintf(w, "# colormap %s range [%g, %g]\n", opts.Colormap, opts.Min, opts.Max)
	}

	nums := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			nums[j] = strconv.FormatFloat(clamped.At(i, j), 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\n", strings.Join(nums, ", "))
	}

	return errors.Wrap(w.Flush(), "write csv")
}
