package qrgrid

import (
	"archive/zip"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// SaveNumpy saves the grid to an .npz file containing a
// single boolean array, grid.npy, of shape (height, width).
func (g *Grid) SaveNumpy(path string) (err error) {
	w, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save numpy")
	}
	defer func() {
		if closeErr := w.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "save numpy")
		}
	}()
	zipWriter := zip.NewWriter(w)
	fileWriter, err := zipWriter.Create("grid.npy")
	if err != nil {
		return errors.Wrap(err, "save numpy")
	}
	if _, err := fileWriter.Write(g.EncodeNumpy()); err != nil {
		return errors.Wrap(err, "save numpy")
	}
	return errors.Wrap(zipWriter.Close(), "save numpy")
}

// EncodeNumpy encodes the grid as a version 1.0 .npy file.
func (g *Grid) EncodeNumpy() []byte {
	header := "\x93NUMPY\x01\x00\x76\x00{'descr': '|b1', 'fortran_order': False, 'shape': ("
	header += fmt.Sprintf("%d, %d), }", g.Height, g.Width)
	for len(header) < 0x80-1 {
		header += " "
	}
	header += "\n"

	data := make([]byte, len(g.values))
	for i, v := range g.values {
		if v {
			data[i] = 1
		}
	}
	return append([]byte(header), data...)
}
