// Package qrgrid reduces two-colour images to boolean
// occupancy grids.
package qrgrid

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

var (
	ErrInvalidCellSize = errors.New("cell size must be at least 1")
	ErrEmptyGrid       = errors.New("grid has zero width or height")
	ErrJaggedGrid      = errors.New("grid rows have unequal lengths")
)

// A Grid is a rectangular, immutable occupancy grid.
//
// Cell (col, row) is raised when it is true. Row 0 is the
// top row of the source image.
type Grid struct {
	Width  int
	Height int

	values []bool
}

// NewGrid creates a Grid from rows of cells, top row first.
// The rows are copied.
func NewGrid(rows [][]bool) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len(rows[0])
	values := make([]bool, 0, width*len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(ErrJaggedGrid, "row %d has %d cells, expected %d",
				i, len(row), width)
		}
		values = append(values, row...)
	}
	return &Grid{
		Width:  width,
		Height: len(rows),
		values: values,
	}, nil
}

// ReadGrid reads a Grid as a JSON array of rows.
func ReadGrid(r io.Reader) (*Grid, error) {
	var rows [][]bool
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, errors.Wrap(err, "read grid")
	}
	g, err := NewGrid(rows)
	if err != nil {
		return nil, errors.Wrap(err, "read grid")
	}
	return g, nil
}

// Get checks if a cell is raised.
// Cells outside of the grid are never raised.
func (g *Grid) Get(col, row int) bool {
	if col < 0 || row < 0 || col >= g.Width || row >= g.Height {
		return false
	}
	return g.values[col+row*g.Width]
}

// Raised counts the raised cells.
func (g *Grid) Raised() int {
	var n int
	for _, v := range g.values {
		if v {
			n++
		}
	}
	return n
}

// Rows copies the grid out as rows, top row first.
func (g *Grid) Rows() [][]bool {
	res := make([][]bool, g.Height)
	for row := range res {
		res[row] = append([]bool{}, g.values[row*g.Width:(row+1)*g.Width]...)
	}
	return res
}

// Validate checks that the grid is non-empty and that its
// storage matches its dimensions.
func (g *Grid) Validate() error {
	if g == nil || g.Width < 1 || g.Height < 1 {
		return ErrEmptyGrid
	}
	if len(g.values) != g.Width*g.Height {
		return errors.Wrapf(ErrJaggedGrid, "%d cells stored for a %dx%d grid",
			len(g.values), g.Width, g.Height)
	}
	return nil
}
