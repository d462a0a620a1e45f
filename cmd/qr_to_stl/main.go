// Command qr_to_stl converts an image of a QR code into a
// printable STL model.
//
// The image is reduced to its two dominant colors and
// sampled at the center of every grid cell. Cells of the
// chosen color are raised into solid blocks. Adjacent
// blocks are merged, so the result is one closed mesh.
//
// The color and cell size may be passed as positional
// arguments; otherwise they are asked for on stdin.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/CriticalAngle/QRMeshify/qrgrid"
	"github.com/CriticalAngle/QRMeshify/qrmesh"
	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrOpenMesh = errors.New("mesh is not closed")

func main() {
	var outputPath string
	var gridPath string
	var jsonPath string
	var force bool
	var size float64
	var height float64
	var base float64
	var workers int

	flag.StringVar(&outputPath, "output", "qrcode.stl", "output STL file")
	flag.StringVar(&gridPath, "grid", "", "optional .npz file to save the sampled grid to")
	flag.StringVar(&jsonPath, "json", "", "read the grid from a JSON file instead of an image")
	flag.BoolVar(&force, "force", false, "overwrite the output file if it exists")
	flag.Float64Var(&size, "size", 1, "width of the model")
	flag.Float64Var(&height, "height", 1, "height of the raised cells")
	flag.Float64Var(&base, "base", 0, "thickness of a base plate under the model (0 for none)")
	flag.IntVar(&workers, "workers", 1, "number of rows to mesh concurrently")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:", os.Args[0], "[flags] <image> [color] [cell_size]")
		fmt.Fprintln(os.Stderr, "       "+os.Args[0], "[flags] -json <grid.json>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "The color is a color name or a #rrggbb hex value. The image is")
		fmt.Fprintln(os.Stderr, "made gray before sampling, so hex values are matched against the")
		fmt.Fprintln(os.Stderr, "gray palette; a hex value from the original image is converted")
		fmt.Fprintln(os.Stderr, "to gray first.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()

	var grid *qrgrid.Grid
	var err error
	if jsonPath != "" {
		grid, err = readJSONGrid(jsonPath)
	} else {
		if len(flag.Args()) < 1 || len(flag.Args()) > 3 {
			flag.Usage()
		}
		grid, err = sampleImage(flag.Args(), NewPrompter(os.Stdin, os.Stdout))
	}
	essentials.Must(err)
	log.Printf("Grid is %d x %d cells (%d raised)", grid.Width, grid.Height, grid.Raised())

	if gridPath != "" {
		essentials.Must(grid.SaveNumpy(gridPath))
	}

	if height <= 0 {
		essentials.Die("height must be positive")
	}
	opts := &qrmesh.Options{
		Height:        1,
		BaseThickness: base / height,
		Workers:       workers,
	}
	tris, err := buildMesh(grid, opts)
	essentials.Must(err)
	tris, err = qrmesh.Scale(tris, size, height)
	essentials.Must(err)

	log.Println("Saving", len(tris), "triangles to", outputPath, "...")
	essentials.Must(qrmesh.SaveSTL(outputPath, tris, force))
	fmt.Printf("STL successfully created at %q\n", outputPath)
}

// buildMesh meshes the grid and checks that the result is
// closed before anything is written.
func buildMesh(grid *qrgrid.Grid, opts *qrmesh.Options) ([]*model3d.Triangle, error) {
	expected, err := qrmesh.Count(grid, opts)
	if err != nil {
		return nil, err
	}
	log.Println("Building mesh of", expected, "triangles...")
	tris, err := qrmesh.Build(grid, opts)
	if err != nil {
		return nil, err
	}
	if len(tris) != expected {
		return nil, errors.Wrapf(ErrOpenMesh, "built %d triangles, expected %d",
			len(tris), expected)
	}
	if n := qrmesh.EdgeDefects(tris); n != 0 {
		return nil, errors.Wrapf(ErrOpenMesh, "%d unmatched edges", n)
	}
	return tris, nil
}

func readJSONGrid(path string) (*qrgrid.Grid, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return qrgrid.ReadGrid(r)
}

func sampleImage(args []string, prompter *Prompter) (*qrgrid.Grid, error) {
	imagePath := args[0]
	log.Println("Processing the QR code image at", imagePath, "...")
	img, err := loadImage(imagePath)
	if err != nil {
		return nil, err
	}
	gray := qrgrid.Grayscale(img)
	log.Printf("This image is %dpx by %dpx", gray.Bounds().Dx(), gray.Bounds().Dy())

	palette, err := qrgrid.NewPalette(gray)
	if err != nil {
		return nil, err
	}
	log.Printf("The two colors used are %s and %s", palette.PrimaryName, palette.SecondaryName)

	var flat qrgrid.RGB
	if len(args) > 1 {
		flat, err = palette.FlatFor(args[1])
	} else {
		flat, err = prompter.FlatColor(palette)
	}
	if err != nil {
		return nil, err
	}

	var cellSize int
	if len(args) > 2 {
		cellSize, err = parseCellSize(args[2])
	} else {
		cellSize, err = prompter.CellSize()
	}
	if err != nil {
		return nil, err
	}

	return qrgrid.Sample(gray, cellSize, flat)
}

func loadImage(path string) (image.Image, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load image")
	}
	defer r.Close()
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load image %s", path)
	}
	return img, nil
}
