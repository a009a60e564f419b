package render

import (
	"io"
	"os/exec"
	"strconv"
	"unsafe"

	"github.com/KyungWonPark/eigenpatch/internal/calc"
	"github.com/KyungWonPark/shmtool/shm"
	"github.com/gonum/matrix/mat64"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// SharedMemory hands the clamped matrix to an external viewer through a
// SysV shared memory segment of rows*cols row-major float64 values. The
// viewer is started as
//
//	Viewer rows cols shmid min max colormap title colorbar
//
// and the call blocks until it exits.
type SharedMemory struct {
	Viewer string
	Stdout io.Writer
	Stderr io.Writer
}

// Render implements Renderer
func (s SharedMemory) Render(img mat64.Matrix, opts Options) (err error) {
	if s.Viewer == "" {
		return errors.New("shared memory renderer needs a viewer command")
	}

	clamped := calc.Clamp(img, opts.Min, opts.Max)
	rows, cols := clamped.Dims()

	seg, err := shm.Create(uint64(rows) * uint64(cols) * 8)
	if err != nil {
		return errors.Wrap(err, "create shared memory region")
	}
	defer func() {
		if derr := seg.Destroy(); derr != nil {
			err = multierror.Append(err, errors.Wrap(derr, "destroy shared memory region")).ErrorOrNil()
		}
	}()

	pBuffer, err := seg.Attach()
	if err != nil {
		return errors.Wrap(err, "attach shared memory region")
	}
	defer func() {
		if derr := seg.Detach(pBuffer); derr != nil {
			err = multierror.Append(err, errors.Wrap(derr, "detach shared memory region")).ErrorOrNil()
		}
	}()

	copy(unsafe.Slice((*float64)(pBuffer), rows*cols), clamped.RawMatrix().Data)

	cmd := exec.Command(s.Viewer, viewerArgs(rows, cols, int(seg.Id), opts)...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "viewer %s", s.Viewer)
	}
	return nil
}

func viewerArgs(rows, cols, id int, opts Options) []string {
	colorbar := "0"
	if opts.Colorbar {
		colorbar = "1"
	}
	return []string{
		strconv.Itoa(rows),
		strconv.Itoa(cols),
		strconv.Itoa(id),
		strconv.FormatFloat(opts.Min, 'g', -1, 64),
		strconv.FormatFloat(opts.Max, 'g', -1, 64),
		opts.Colormap,
		opts.Title,
		colorbar,
	}
}
