// Package qrmesh turns occupancy grids into closed triangle
// meshes.
package qrmesh

import (
	"github.com/CriticalAngle/QRMeshify/qrgrid"
	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
)

var ErrInvalidOptions = errors.New("invalid mesh options")

// Options control the shape of a generated mesh.
type Options struct {
	// Height is the z coordinate of raised cell tops.
	Height float64

	// BaseThickness, if non-zero, adds a plate beneath the
	// whole grid reaching down to z=-BaseThickness.
	BaseThickness float64

	// Workers is the number of rows meshed concurrently.
	// Values below 2 mesh on the calling goroutine.
	Workers int
}

// DefaultOptions creates options for a unit-height mesh
// with no base plate.
func DefaultOptions() *Options {
	return &Options{Height: 1, Workers: 1}
}

func (o *Options) validate() error {
	if o.Height <= 0 {
		return errors.Wrapf(ErrInvalidOptions, "height %f", o.Height)
	}
	if o.BaseThickness < 0 {
		return errors.Wrapf(ErrInvalidOptions, "base thickness %f", o.BaseThickness)
	}
	return nil
}

// A side of a cell. The corners are offsets from the cell's
// top-left corner, ordered so that the wall quad
// (a@z0, b@z0, b@z1, a@z1) winds around the outward normal.
type side struct {
	DCol, DRow int
	A, B       [2]int
}

var sides = [4]side{
	{DCol: 0, DRow: -1, A: [2]int{1, 0}, B: [2]int{0, 0}}, // north, +Y
	{DCol: 0, DRow: 1, A: [2]int{0, 1}, B: [2]int{1, 1}},  // south, -Y
	{DCol: -1, DRow: 0, A: [2]int{0, 0}, B: [2]int{0, 1}}, // west, -X
	{DCol: 1, DRow: 0, A: [2]int{1, 1}, B: [2]int{1, 0}},  // east, +X
}

// Build creates the triangles of a closed solid from a grid.
//
// Every raised cell gets a top cap and a bottom cap. Walls
// are only emitted on sides where the neighboring cell is
// flat or outside the grid, so adjacent raised cells form
// one continuous solid. The triangles are ordered row by
// row regardless of opts.Workers.
//
// If opts is nil, DefaultOptions() is used.
func Build(grid *qrgrid.Grid, opts *Options) ([]*model3d.Triangle, error) {
	b, err := newBuilder(grid, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]*model3d.Triangle, grid.Height)
	buildRow := func(row int) {
		var tris []*model3d.Triangle
		b.VisitRow(row, func(p0, p1, p2, p3 model3d.Coord3D) {
			tris = append(tris,
				&model3d.Triangle{p0, p1, p2},
				&model3d.Triangle{p0, p2, p3})
		})
		rows[row] = tris
	}
	if b.Workers > 1 {
		essentials.ConcurrentMap(b.Workers, grid.Height, buildRow)
	} else {
		for row := 0; row < grid.Height; row++ {
			buildRow(row)
		}
	}

	var total int
	for _, r := range rows {
		total += len(r)
	}
	res := make([]*model3d.Triangle, 0, total)
	for _, r := range rows {
		res = append(res, r...)
	}
	return res, nil
}

// Count computes the number of triangles Build would
// produce, without producing them.
func Count(grid *qrgrid.Grid, opts *Options) (int, error) {
	b, err := newBuilder(grid, opts)
	if err != nil {
		return 0, err
	}
	var quads int
	for row := 0; row < grid.Height; row++ {
		b.VisitRow(row, func(p0, p1, p2, p3 model3d.Coord3D) {
			quads++
		})
	}
	return quads * 2, nil
}

type builder struct {
	*Options

	Grid *qrgrid.Grid

	// Corners holds the (Width+1) x (Height+1) cell corners
	// at z=0. Every vertex is derived from this table.
	Corners []model3d.Coord3D

	// Levels are the z coordinates that walls are split at,
	// in increasing order.
	Levels []float64
}

func newBuilder(grid *qrgrid.Grid, opts *Options) (*builder, error) {
	if err := grid.Validate(); err != nil {
		return nil, errors.Wrap(err, "build mesh")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "build mesh")
	}

	corners := make([]model3d.Coord3D, 0, (grid.Width+1)*(grid.Height+1))
	for row := 0; row <= grid.Height; row++ {
		y := 0.5 - float64(row)/float64(grid.Height)
		for col := 0; col <= grid.Width; col++ {
			x := float64(col)/float64(grid.Width) - 0.5
			corners = append(corners, model3d.Coord3D{X: x, Y: y})
		}
	}

	levels := []float64{0, opts.Height}
	if opts.BaseThickness > 0 {
		levels = append([]float64{-opts.BaseThickness}, levels...)
	}

	return &builder{
		Options: opts,
		Grid:    grid,
		Corners: corners,
		Levels:  levels,
	}, nil
}

// VisitRow calls f for every quad of the cells in a row.
// Each quad winds counter-clockwise around its outward
// normal.
func (b *builder) VisitRow(row int, f func(p0, p1, p2, p3 model3d.Coord3D)) {
	bottom := b.Levels[0]
	for col := 0; col < b.Grid.Width; col++ {
		top := b.top(col, row)
		if top <= bottom {
			continue
		}

		// Caps, viewed from above: bottom-left, bottom-right,
		// top-right, top-left.
		bl := b.corner(col, row+1, top)
		br := b.corner(col+1, row+1, top)
		tr := b.corner(col+1, row, top)
		tl := b.corner(col, row, top)
		f(bl, br, tr, tl)
		bl.Z, br.Z, tr.Z, tl.Z = bottom, bottom, bottom, bottom
		f(bl, tl, tr, br)

		for _, s := range sides {
			nCol, nRow := col+s.DCol, row+s.DRow
			floor := bottom
			if b.inGrid(nCol, nRow) {
				floor = b.top(nCol, nRow)
			}
			for i := 1; i < len(b.Levels); i++ {
				z0, z1 := b.Levels[i-1], b.Levels[i]
				if z0 < floor || z1 > top {
					continue
				}
				f(
					b.corner(col+s.A[0], row+s.A[1], z0),
					b.corner(col+s.B[0], row+s.B[1], z0),
					b.corner(col+s.B[0], row+s.B[1], z1),
					b.corner(col+s.A[0], row+s.A[1], z1),
				)
			}
		}
	}
}

func (b *builder) top(col, row int) float64 {
	if b.Grid.Get(col, row) {
		return b.Height
	}
	return 0
}

func (b *builder) inGrid(col, row int) bool {
	return col >= 0 && row >= 0 && col < b.Grid.Width && row < b.Grid.Height
}

func (b *builder) corner(col, row int, z float64) model3d.Coord3D {
	c := b.Corners[col+row*(b.Grid.Width+1)]
	c.Z = z
	return c
}
