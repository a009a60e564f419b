package render

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/gonum/matrix/mat64"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Terminal draws the matrix with ANSI truecolor half blocks, two matrix
// rows per text line.
type Terminal struct {
	Out io.Writer
	// Width is the widest image, in columns, drawn without resampling
	Width int
	// Wait, when set, is read up to the next newline after drawing
	Wait io.Reader
}

const (
	upperHalf = "▀"
	ansiReset = "\x1b[0m"
	barHeight = 1
)

// Render implements Renderer
func (t Terminal) Render(img mat64.Matrix, opts Options) error {
	cm, err := LookupColormap(opts.Colormap)
	if err != nil {
		return err
	}
	if !(opts.Min < opts.Max) {
		return errors.Errorf("empty display range [%g, %g]", opts.Min, opts.Max)
	}

	var pic image.Image = grayImage(img, opts.Min, opts.Max)
	if b := pic.Bounds(); t.Width > 0 && b.Dx() > t.Width {
		pic = resize.Resize(uint(t.Width), 0, pic, resize.Bilinear)
	}
	b := pic.Bounds()

	w := bufio.NewWriter(t.Out)
	if opts.Title != "" {
		fmt.Fprintf(w, "\x1b[1m%s\x1b[0m\n", opts.Title)
	}

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl := cm.At(level(pic, x, y)).RGB255()
			fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", r, g, bl)
			if y+1 < b.Max.Y {
				r, g, bl = cm.At(level(pic, x, y+1)).RGB255()
				fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm", r, g, bl)
			}
			w.WriteString(upperHalf)
		}
		w.WriteString(ansiReset + "\n")
	}

	if opts.Colorbar {
		writeColorbar(w, cm, b.Dx(), opts.Min, opts.Max)
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "write terminal image")
	}

	if t.Wait != nil {
		fmt.Fprint(t.Out, "Press Enter to close...")
		if _, err := bufio.NewReader(t.Wait).ReadString('\n'); err != nil && err != io.EOF {
			return errors.Wrap(err, "wait for dismissal")
		}
	}
	return nil
}

// writeColorbar draws a horizontal gradient of the given width with the
// range end points underneath
func writeColorbar(w *bufio.Writer, cm Colormap, width int, lo, hi float64) {
	if width < 2 {
		width = 2
	}
	for line := 0; line < barHeight; line++ {
		for x := 0; x < width; x++ {
			r, g, b := cm.At(float64(x) / float64(width-1)).RGB255()
			fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm ", r, g, b)
		}
		w.WriteString(ansiReset + "\n")
	}

	left := strconv.FormatFloat(lo, 'g', 4, 64)
	right := strconv.FormatFloat(hi, 'g', 4, 64)
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	fmt.Fprintf(w, "%s%*s%s\n", left, pad, "", right)
}
