package qrgrid

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
)

var (
	ErrSingleColor    = errors.New("image has fewer than two colors")
	ErrUnknownColor   = errors.New("color is not one of the image's two colors")
	ErrAmbiguousColor = errors.New("both image colors share this name")
)

// Grayscale converts an image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	res := image.NewGray(img.Bounds())
	draw.Draw(res, res.Bounds(), img, img.Bounds().Min, draw.Src)
	return res
}

// DominantColors finds the two most frequent colors in an
// image, most frequent first.
//
// When counts tie, the color seen last in a column by column
// scan of the image wins.
func DominantColors(img image.Image) (primary, secondary RGB, err error) {
	var colors []RGB
	counts := map[RGB]int{}
	bounds := img.Bounds()
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			c := RGBOf(img.At(x, y))
			if _, ok := counts[c]; !ok {
				colors = append(colors, c)
			}
			counts[c]++
		}
	}
	if len(colors) < 2 {
		return RGB{}, RGB{}, errors.Wrapf(ErrSingleColor, "dominant colors: found %d", len(colors))
	}
	sort.SliceStable(colors, func(i, j int) bool {
		return counts[colors[i]] < counts[colors[j]]
	})
	return colors[len(colors)-1], colors[len(colors)-2], nil
}

// ColorName gets the name of the closest CSS color, as
// measured in CIE L*a*b* space.
//
// Names are tried in alphabetical order, so "gray" is
// preferred over "grey".
func ColorName(c RGB) string {
	target := labColor(c)
	var best string
	bestDist := -1.0
	for _, name := range colornames.Names {
		named := colornames.Map[name]
		d := target.DistanceLab(labColor(RGB{named.R, named.G, named.B}))
		if bestDist < 0 || d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func labColor(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

// A Palette holds the two colors of a QR code image along
// with their human-readable names.
type Palette struct {
	Primary       RGB
	Secondary     RGB
	PrimaryName   string
	SecondaryName string
}

// NewPalette detects the two dominant colors of an image.
func NewPalette(img image.Image) (*Palette, error) {
	primary, secondary, err := DominantColors(img)
	if err != nil {
		return nil, err
	}
	return &Palette{
		Primary:       primary,
		Secondary:     secondary,
		PrimaryName:   ColorName(primary),
		SecondaryName: ColorName(secondary),
	}, nil
}

// FlatFor resolves the color that should carry geometry and
// returns the other color, which stays flat.
//
// The choice may be a color name or a "#rrggbb" value. A
// value that is not in the palette is also tried in
// grayscale, so colors from the image before Grayscale was
// applied still resolve.
func (p *Palette) FlatFor(choice string) (RGB, error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	if strings.HasPrefix(choice, "#") {
		c, err := ParseRGB(choice)
		if err != nil {
			return RGB{}, err
		}
		gray := RGBOf(color.GrayModel.Convert(color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}))
		for _, candidate := range []RGB{c, gray} {
			switch candidate {
			case p.Primary:
				return p.Secondary, nil
			case p.Secondary:
				return p.Primary, nil
			}
		}
		return RGB{}, errors.Wrapf(ErrUnknownColor, "color %s", c)
	}
	isPrimary := choice == p.PrimaryName
	isSecondary := choice == p.SecondaryName
	switch {
	case isPrimary && isSecondary:
		return RGB{}, errors.Wrapf(ErrAmbiguousColor, "color %q (use %s or %s)",
			choice, p.Primary, p.Secondary)
	case isPrimary:
		return p.Secondary, nil
	case isSecondary:
		return p.Primary, nil
	}
	return RGB{}, errors.Wrapf(ErrUnknownColor, "color %q", choice)
}
