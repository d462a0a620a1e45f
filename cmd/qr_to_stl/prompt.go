package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/CriticalAngle/QRMeshify/qrgrid"
	"github.com/pkg/errors"
)

// A Prompter asks questions on a line-oriented terminal
// until it gets a valid answer.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

// FlatColor asks which color should carry geometry and
// returns the other one.
func (p *Prompter) FlatColor(palette *qrgrid.Palette) (qrgrid.RGB, error) {
	for {
		fmt.Fprintf(p.out, "Which color would you like to have the geometry (%s or %s)?\n",
			palette.PrimaryName, palette.SecondaryName)
		line, err := p.readLine()
		if err != nil {
			return qrgrid.RGB{}, err
		}
		flat, err := palette.FlatFor(line)
		if err == nil {
			return flat, nil
		}
		fmt.Fprintf(p.out, "That is not a valid color option (%v). Try again...\n", err)
	}
}

// CellSize asks for the size of a grid cell in pixels.
func (p *Prompter) CellSize() (int, error) {
	for {
		fmt.Fprintln(p.out, "What is the size of a single grid cell in pixels?")
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		size, err := parseCellSize(line)
		if err == nil {
			return size, nil
		}
		fmt.Fprintln(p.out, "That is not a valid whole number. Try again...")
	}
}

func (p *Prompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", errors.Wrap(err, "read answer")
		}
		return "", errors.Wrap(io.ErrUnexpectedEOF, "read answer")
	}
	return p.in.Text(), nil
}

func parseCellSize(s string) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "parse cell size %q", s)
	}
	if size < 1 {
		return 0, errors.Wrapf(qrgrid.ErrInvalidCellSize, "parse cell size %q", s)
	}
	return size, nil
}
