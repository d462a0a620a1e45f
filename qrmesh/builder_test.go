package qrmesh

import (
	"math"
	"math/rand"
	"testing"

	"github.com/CriticalAngle/QRMeshify/qrgrid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/model3d/model3d"
)

var (
	up    = model3d.Coord3D{Z: 1}
	down  = model3d.Coord3D{Z: -1}
	north = model3d.Coord3D{Y: 1}
	south = model3d.Coord3D{Y: -1}
	west  = model3d.Coord3D{X: -1}
	east  = model3d.Coord3D{X: 1}
)

func mustGrid(t *testing.T, rows ...[]bool) *qrgrid.Grid {
	g, err := qrgrid.NewGrid(rows)
	require.NoError(t, err)
	return g
}

func randomGrid(t *testing.T, rng *rand.Rand, w, h int) *qrgrid.Grid {
	rows := make([][]bool, h)
	for i := range rows {
		rows[i] = make([]bool, w)
		for j := range rows[i] {
			rows[i][j] = rng.Intn(2) == 0
		}
	}
	return mustGrid(t, rows...)
}

func countNormals(tris []*model3d.Triangle) map[model3d.Coord3D]int {
	res := map[model3d.Coord3D]int{}
	for _, tri := range tris {
		n := tri.Normal()
		for _, axis := range []model3d.Coord3D{up, down, north, south, west, east} {
			if n.Dist(axis) < 1e-8 {
				res[axis]++
			}
		}
	}
	return res
}

func centroid(t *model3d.Triangle) model3d.Coord3D {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3)
}

func TestBuildSingleCell(t *testing.T) {
	tris, err := Build(mustGrid(t, []bool{true}), nil)
	require.NoError(t, err)
	require.Len(t, tris, 12)

	normals := countNormals(tris)
	for _, axis := range []model3d.Coord3D{up, down, north, south, west, east} {
		assert.Equal(t, 2, normals[axis], "normal %v", axis)
	}

	assert.Equal(t, 0, EdgeDefects(tris))
	assert.Equal(t, 0, SharedEdges(tris))

	mesh := model3d.NewMeshTriangles(tris)
	assert.False(t, mesh.NeedsRepair())
	assert.InDelta(t, 1.0, mesh.Volume(), 1e-8)
	assert.Equal(t, model3d.Coord3D{X: -0.5, Y: -0.5, Z: 0}, mesh.Min())
	assert.Equal(t, model3d.Coord3D{X: 0.5, Y: 0.5, Z: 1}, mesh.Max())
}

func TestBuildAdjacentCells(t *testing.T) {
	tris, err := Build(mustGrid(t, []bool{true, true}), nil)
	require.NoError(t, err)

	// 8 cap triangles, plus walls on the two long sides and
	// the two short ends. Nothing on the shared edge at x=0.
	require.Len(t, tris, 8+8+4)
	normals := countNormals(tris)
	assert.Equal(t, 4, normals[up])
	assert.Equal(t, 4, normals[down])
	assert.Equal(t, 4, normals[north])
	assert.Equal(t, 4, normals[south])
	assert.Equal(t, 2, normals[west])
	assert.Equal(t, 2, normals[east])

	for _, tri := range tris {
		onSharedEdge := tri[0].X == 0 && tri[1].X == 0 && tri[2].X == 0
		assert.False(t, onSharedEdge, "wall on shared edge: %v", tri)
	}

	assert.Equal(t, 0, EdgeDefects(tris))
	assert.Equal(t, 0, SharedEdges(tris))
	assert.InDelta(t, 1.0, model3d.NewMeshTriangles(tris).Volume(), 1e-8)
}

func TestBuildVerticalNeighbors(t *testing.T) {
	tris, err := Build(mustGrid(t, []bool{true}, []bool{true}), nil)
	require.NoError(t, err)
	require.Len(t, tris, 20)
	for _, tri := range tris {
		onSharedEdge := tri[0].Y == 0 && tri[1].Y == 0 && tri[2].Y == 0
		assert.False(t, onSharedEdge, "wall on shared edge: %v", tri)
	}
	assert.Equal(t, 0, EdgeDefects(tris))
}

func TestBuildAllFlat(t *testing.T) {
	tris, err := Build(mustGrid(t, []bool{false, false}, []bool{false, false}), nil)
	require.NoError(t, err)
	assert.Empty(t, tris)
}

func TestBuildWallAgainstFlatCell(t *testing.T) {
	tris, err := Build(mustGrid(t, []bool{true, false}), nil)
	require.NoError(t, err)
	require.Len(t, tris, 12)

	var shared int
	for _, tri := range tris {
		if tri[0].X == 0 && tri[1].X == 0 && tri[2].X == 0 {
			shared++
			assert.True(t, tri.Normal().Dist(east) < 1e-8)
		}
	}
	assert.Equal(t, 2, shared)
}

func TestBuildBoundaryWalls(t *testing.T) {
	g := mustGrid(t,
		[]bool{true, true, true},
		[]bool{true, false, true},
		[]bool{true, true, true},
	)
	tris, err := Build(g, nil)
	require.NoError(t, err)

	walls := map[model3d.Coord3D]int{}
	for _, tri := range tris {
		n := tri.Normal()
		if math.Abs(n.Z) > 0.5 {
			continue
		}
		allY := func(y float64) bool {
			return tri[0].Y == y && tri[1].Y == y && tri[2].Y == y
		}
		allX := func(x float64) bool {
			return tri[0].X == x && tri[1].X == x && tri[2].X == x
		}
		switch {
		case n.Dist(north) < 1e-8 && allY(0.5):
			walls[north]++
		case n.Dist(south) < 1e-8 && allY(-0.5):
			walls[south]++
		case n.Dist(west) < 1e-8 && allX(-0.5):
			walls[west]++
		case n.Dist(east) < 1e-8 && allX(0.5):
			walls[east]++
		}
	}
	for _, axis := range []model3d.Coord3D{north, south, west, east} {
		assert.Equal(t, 6, walls[axis], "outer walls facing %v", axis)
	}

	// The ring also has four walls around the hole.
	normals := countNormals(tris)
	for _, axis := range []model3d.Coord3D{north, south, west, east} {
		assert.Equal(t, 8, normals[axis], "walls facing %v", axis)
	}
	assert.Equal(t, 0, EdgeDefects(tris))
	assert.Equal(t, 0, SharedEdges(tris))
}

func TestBuildCaps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := randomGrid(t, rng, 9, 7)
	tris, err := Build(g, nil)
	require.NoError(t, err)

	tops := map[[2]int]int{}
	bottoms := map[[2]int]int{}
	for _, tri := range tris {
		c := centroid(tri)
		cell := [2]int{
			int(math.Floor((c.X + 0.5) * float64(g.Width))),
			int(math.Floor((0.5 - c.Y) * float64(g.Height))),
		}
		n := tri.Normal()
		if n.Dist(up) < 1e-8 {
			assert.InDelta(t, 1.0, c.Z, 1e-12)
			tops[cell]++
		} else if n.Dist(down) < 1e-8 {
			assert.InDelta(t, 0.0, c.Z, 1e-12)
			bottoms[cell]++
		}
	}
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			want := 0
			if g.Get(col, row) {
				want = 2
			}
			assert.Equal(t, want, tops[[2]int{col, row}], "top of %d,%d", col, row)
			assert.Equal(t, want, bottoms[[2]int{col, row}], "bottom of %d,%d", col, row)
		}
	}
}

func TestBuildVertexSharing(t *testing.T) {
	rows := make([][]bool, 11)
	for i := range rows {
		rows[i] = make([]bool, 7)
		for j := range rows[i] {
			rows[i][j] = true
		}
	}
	// Knock out diagonal stripes so that cells meet at many
	// corners from different directions.
	for i := range rows {
		for j := range rows[i] {
			if (i+j)%3 == 0 {
				rows[i][j] = false
			}
		}
	}
	tris, err := Build(mustGrid(t, rows...), nil)
	require.NoError(t, err)

	xs := map[float64]bool{}
	ys := map[float64]bool{}
	for _, tri := range tris {
		for _, v := range tri {
			xs[v.X] = true
			ys[v.Y] = true
		}
	}
	assert.Len(t, xs, 8)
	assert.Len(t, ys, 12)
	assert.Equal(t, 0, EdgeDefects(tris))
}

func TestBuildUnitNormals(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tris, err := Build(randomGrid(t, rng, 6, 6), nil)
	require.NoError(t, err)
	for _, tri := range tris {
		n := tri.Normal()
		assert.InDelta(t, 1.0, n.Norm(), 1e-8)
		assert.InDelta(t, 1.0, math.Abs(n.X)+math.Abs(n.Y)+math.Abs(n.Z), 1e-8,
			"normal %v is not axis-aligned", n)
	}
}

func TestBuildWatertight(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		g := randomGrid(t, rng, rng.Intn(12)+1, rng.Intn(12)+1)
		for _, base := range []float64{0, 0.25} {
			opts := &Options{Height: 1, BaseThickness: base}
			tris, err := Build(g, opts)
			require.NoError(t, err)
			assert.Equal(t, 0, EdgeDefects(tris), "grid %v base %f", g.Rows(), base)

			count, err := Count(g, opts)
			require.NoError(t, err)
			assert.Equal(t, len(tris), count)

			if len(tris) > 0 {
				raised := float64(g.Raised()) / float64(g.Width*g.Height)
				assert.InDelta(t, raised+base, model3d.NewMeshTriangles(tris).Volume(), 1e-8)
			}
		}
	}
}

func TestBuildDiagonalContact(t *testing.T) {
	tris, err := Build(mustGrid(t, []bool{true, false}, []bool{false, true}), nil)
	require.NoError(t, err)
	require.Len(t, tris, 24)
	assert.Equal(t, 0, EdgeDefects(tris))

	// The two cubes share the vertical edge through the center.
	assert.Equal(t, 1, SharedEdges(tris))
}

func TestBuildContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := randomGrid(t, rng, 8, 6)
	for _, base := range []float64{0, 0.5} {
		tris, err := Build(g, &Options{Height: 1, BaseThickness: base})
		require.NoError(t, err)
		actual := newMeshSolid(tris)
		expected := &gridSolid{Grid: g, Height: 1, Base: base}
		for row := 0; row < g.Height; row++ {
			for col := 0; col < g.Width; col++ {
				for _, z := range []float64{-0.23, 0.37, 0.81} {
					c := model3d.Coord3D{
						X: (float64(col)+0.43)/float64(g.Width) - 0.5,
						Y: 0.5 - (float64(row)+0.58)/float64(g.Height),
						Z: z,
					}
					assert.Equal(t, expected.Contains(c), actual.Contains(c),
						"cell %d,%d z=%f base=%f", col, row, z, base)
				}
			}
		}
	}
}

func TestBuildBasePlate(t *testing.T) {
	opts := &Options{Height: 1, BaseThickness: 0.5}

	flat, err := Build(mustGrid(t, []bool{false}), opts)
	require.NoError(t, err)
	require.Len(t, flat, 12)
	assert.Equal(t, 0, EdgeDefects(flat))
	mesh := model3d.NewMeshTriangles(flat)
	assert.Equal(t, -0.5, mesh.Min().Z)
	assert.Equal(t, 0.0, mesh.Max().Z)

	raised, err := Build(mustGrid(t, []bool{true}), opts)
	require.NoError(t, err)
	require.Len(t, raised, 20)
	assert.Equal(t, 0, EdgeDefects(raised))
	assert.Equal(t, 0, SharedEdges(raised))
	assert.InDelta(t, 1.5, model3d.NewMeshTriangles(raised).Volume(), 1e-8)

	mixed, err := Build(mustGrid(t, []bool{true, false}), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, EdgeDefects(mixed))
	assert.Equal(t, 0, SharedEdges(mixed))
	assert.False(t, model3d.NewMeshTriangles(mixed).NeedsRepair())
}

func TestBuildWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := randomGrid(t, rng, 13, 17)
	expected, err := Build(g, &Options{Height: 2, Workers: 1})
	require.NoError(t, err)
	for _, workers := range []int{0, 2, 4, 32} {
		actual, err := Build(g, &Options{Height: 2, Workers: workers})
		require.NoError(t, err)
		require.Equal(t, len(expected), len(actual))
		for i := range expected {
			assert.Equal(t, *expected[i], *actual[i], "triangle %d", i)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, nil)
	assert.Equal(t, qrgrid.ErrEmptyGrid, errors.Cause(err))

	_, err = Build(&qrgrid.Grid{}, nil)
	assert.Equal(t, qrgrid.ErrEmptyGrid, errors.Cause(err))

	tris, err := Build(&qrgrid.Grid{Width: 2, Height: 2}, nil)
	assert.Nil(t, tris)
	assert.Equal(t, qrgrid.ErrJaggedGrid, errors.Cause(err))

	g := mustGrid(t, []bool{true})
	for _, opts := range []*Options{
		{Height: 0},
		{Height: -1},
		{Height: 1, BaseThickness: -0.1},
	} {
		tris, err := Build(g, opts)
		assert.Nil(t, tris)
		assert.Equal(t, ErrInvalidOptions, errors.Cause(err))
	}

	_, err = Count(nil, nil)
	assert.Equal(t, qrgrid.ErrEmptyGrid, errors.Cause(err))
}
