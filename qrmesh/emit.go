package qrmesh

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// A Sink receives a finished sequence of triangles.
type Sink interface {
	Emit(tris []*model3d.Triangle) error
}

// STLSink writes triangles to a binary STL stream.
type STLSink struct {
	W io.Writer
}

// Emit writes the triangles in order. Normals are derived
// from the winding of each triangle.
func (s *STLSink) Emit(tris []*model3d.Triangle) error {
	return errors.Wrap(model3d.WriteSTL(s.W, tris), "emit stl")
}

// SaveSTL writes triangles to a binary STL file.
//
// Unless overwrite is set, an existing file is left alone
// and an error is returned.
func SaveSTL(path string, tris []*model3d.Triangle, overwrite bool) (err error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return errors.Wrap(err, "save stl")
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "save stl")
		}
	}()
	return (&STLSink{W: f}).Emit(tris)
}

// Scale maps triangles from the unit square into physical
// units, scaling x and y by size and z by height.
func Scale(tris []*model3d.Triangle, size, height float64) ([]*model3d.Triangle, error) {
	if size <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidOptions, "scale %f x %f", size, height)
	}
	transform := &model3d.Matrix3Transform{
		Matrix: model3d.NewMatrix3Columns(
			model3d.Coord3D{X: size},
			model3d.Coord3D{Y: size},
			model3d.Coord3D{Z: height},
		),
	}
	res := make([]*model3d.Triangle, len(tris))
	for i, t := range tris {
		res[i] = &model3d.Triangle{
			transform.Apply(t[0]),
			transform.Apply(t[1]),
			transform.Apply(t[2]),
		}
	}
	return res, nil
}
