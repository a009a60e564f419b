package render

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Colormap maps [0, 1] onto colors by blending evenly spaced stops
type Colormap struct {
	Name  string
	stops []colorful.Color
	lab   bool
}

func stops(hex ...string) []colorful.Color {
	cs := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		cs[i] = c
	}
	return cs
}

var colormaps = map[string]Colormap{
	"gray":    {Name: "gray", stops: stops("#000000", "#ffffff")},
	"hot":     {Name: "hot", stops: stops("#0b0000", "#ff0000", "#ffff00", "#ffffff")},
	"jet":     {Name: "jet", stops: stops("#00007f", "#0000ff", "#00ffff", "#ffff00", "#ff0000", "#7f0000")},
	"viridis": {Name: "viridis", stops: stops("#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"), lab: true},
}

// Colormaps lists the known colormap names
func Colormaps() []string {
	names := make([]string, 0, len(colormaps))
	for n := range colormaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupColormap returns the colormap called name
func LookupColormap(name string) (Colormap, error) {
	cm, ok := colormaps[name]
	if !ok {
		return Colormap{}, errors.Errorf("unknown colormap %q (have %v)", name, Colormaps())
	}
	return cm, nil
}

// At returns the color for t, saturating outside [0, 1]
func (c Colormap) At(t float64) colorful.Color {
	if !(t > 0) {
		return c.stops[0]
	}
	if t >= 1 {
		return c.stops[len(c.stops)-1]
	}

	seg := t * float64(len(c.stops)-1)
	i := int(seg)
	frac := seg - float64(i)
	if c.lab {
		return c.stops[i].BlendLab(c.stops[i+1], frac).Clamped()
	}
	return c.stops[i].BlendRgb(c.stops[i+1], frac)
}
