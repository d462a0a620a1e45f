package qrmesh

import (
	"github.com/unixpickle/model3d/model3d"
)

type directedEdge [2]model3d.Coord3D

func edgeCounts(tris []*model3d.Triangle) map[directedEdge]int {
	counts := map[directedEdge]int{}
	for _, t := range tris {
		for i := 0; i < 3; i++ {
			counts[directedEdge{t[i], t[(i+1)%3]}]++
		}
	}
	return counts
}

// EdgeDefects counts the directed edges that are not
// matched by the same number of reversed edges.
//
// A closed mesh with consistent winding has no defects.
func EdgeDefects(tris []*model3d.Triangle) int {
	counts := edgeCounts(tris)
	var defects int
	for e, n := range counts {
		if counts[directedEdge{e[1], e[0]}] != n {
			defects++
		}
	}
	return defects
}

// SharedEdges counts the undirected edges used by more
// than two triangles. This happens where two raised cells
// touch only at a corner.
func SharedEdges(tris []*model3d.Triangle) int {
	counts := edgeCounts(tris)
	var shared int
	for e, n := range counts {
		rev := directedEdge{e[1], e[0]}
		if n+counts[rev] > 2 && lessCoord(e[0], e[1]) {
			shared++
		}
	}
	return shared
}

func lessCoord(c1, c2 model3d.Coord3D) bool {
	if c1.X != c2.X {
		return c1.X < c2.X
	}
	if c1.Y != c2.Y {
		return c1.Y < c2.Y
	}
	return c1.Z < c2.Z
}
