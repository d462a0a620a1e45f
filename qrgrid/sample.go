package qrgrid

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RGB is an 8-bit color with the alpha channel dropped.
type RGB [3]uint8

// RGBOf converts any color to an RGB.
func RGBOf(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

// ParseRGB parses a color of the form "#rrggbb".
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, errors.Errorf("parse color %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, errors.Wrapf(err, "parse color %q", s)
	}
	return RGB{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

func (r RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", r[0], r[1], r[2])
}

// Sample reduces an image to a Grid by reading the pixel at
// the center of every cellSize x cellSize cell.
//
// Sample points start half a cell into the image so that
// they never land on a grid line. A cell is raised when its
// pixel differs from flat.
func Sample(img image.Image, cellSize int, flat RGB) (*Grid, error) {
	if cellSize < 1 {
		return nil, errors.Wrapf(ErrInvalidCellSize, "sample: cell size %d", cellSize)
	}
	bounds := img.Bounds()
	xs := samplePoints(bounds.Min.X, bounds.Max.X, cellSize)
	ys := samplePoints(bounds.Min.Y, bounds.Max.Y, cellSize)
	if len(xs) == 0 || len(ys) == 0 {
		return nil, errors.Wrapf(ErrEmptyGrid, "sample: %dx%d image with cell size %d",
			bounds.Dx(), bounds.Dy(), cellSize)
	}

	values := make([]bool, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			values = append(values, RGBOf(img.At(x, y)) != flat)
		}
	}
	return &Grid{
		Width:  len(xs),
		Height: len(ys),
		values: values,
	}, nil
}

func samplePoints(min, max, cellSize int) []int {
	var res []int
	for x := min + cellSize/2; x < max; x += cellSize {
		res = append(res, x)
	}
	return res
}
