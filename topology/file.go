// seehuhn.de/go/isolate - isolation milling toolpaths for circuit boards
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package topology

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// File is the JSON representation of a board.  Coordinates are in board
// units.  Nets are not stored explicitly; they are recovered with
// Partition, which numbers them deterministically, so that the per-net
// settings in Nets and Merge refer to the partitioned IDs.
type File struct {
	Quantum float64      `json:"quantum,omitempty"`
	Strokes []FileStroke `json:"strokes,omitempty"`
	Pads    []FilePad    `json:"pads,omitempty"`
	Nets    []FileNet    `json:"nets,omitempty"`
	Merge   [][]int      `json:"merge,omitempty"`
}

// FileStroke is a stroke in a board file.  Cap is "round" (the default),
// "square" or "butt".
type FileStroke struct {
	From  [2]float64 `json:"from"`
	To    [2]float64 `json:"to"`
	Width float64    `json:"width"`
	Cap   string     `json:"cap,omitempty"`
}

// FilePad is a pad in a board file.  Shape is "circle", "rect" or
// "obround".
type FilePad struct {
	At    [2]float64 `json:"at"`
	Shape string     `json:"shape"`
	W     float64    `json:"w"`
	H     float64    `json:"h,omitempty"`
}

// FileNet overrides the settings of one net.
type FileNet struct {
	ID       int     `json:"id"`
	Offset   float64 `json:"offset,omitempty"`
	ZCeiling float64 `json:"zceiling,omitempty"`
}

// ErrFormat is returned for board files with invalid content.
var ErrFormat = errors.New("invalid board file")

// ReadFile decodes a board from JSON and partitions it into nets.
func ReadFile(r io.Reader) (*Board, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return f.Board()
}

// Board builds and partitions the board described by f.
func (f *File) Board() (*Board, error) {
	b := NewBoard(f.Quantum)
	for i, s := range f.Strokes {
		cap, err := parseCap(s.Cap)
		if err != nil {
			return nil, fmt.Errorf("%w: stroke %d: %w", ErrFormat, i, err)
		}
		if s.Width <= 0 {
			return nil, fmt.Errorf("%w: stroke %d: width %g", ErrFormat, i, s.Width)
		}
		b.AddStroke(vec2(s.From), vec2(s.To), s.Width, cap)
	}
	for i, p := range f.Pads {
		shape, err := parseShape(p.Shape)
		if err != nil {
			return nil, fmt.Errorf("%w: pad %d: %w", ErrFormat, i, err)
		}
		if p.W <= 0 || shape != PadCircle && p.H <= 0 {
			return nil, fmt.Errorf("%w: pad %d: size %gx%g", ErrFormat, i, p.W, p.H)
		}
		b.AddPad(vec2(p.At), shape, p.W, p.H)
	}

	nets := b.Partition()
	for _, n := range f.Nets {
		if n.ID < 0 || n.ID >= len(nets) {
			return nil, fmt.Errorf("%w: unknown net %d", ErrFormat, n.ID)
		}
		nets[n.ID].Offset = n.Offset
		nets[n.ID].ZCeiling = n.ZCeiling
	}
	for _, ids := range f.Merge {
		for _, id := range ids {
			if id < 0 || id >= len(nets) {
				return nil, fmt.Errorf("%w: unknown net %d", ErrFormat, id)
			}
		}
		b.Merge(ids...)
	}
	return b, nil
}

// File returns the JSON representation of b.  Groups of merged nets and
// per-net settings are included.
func (b *Board) File() *File {
	f := &File{Quantum: b.Quantum}
	for _, s := range b.Strokes {
		from, to := b.Pos(s.From), b.Pos(s.To)
		f.Strokes = append(f.Strokes, FileStroke{
			From:  [2]float64{from.X, from.Y},
			To:    [2]float64{to.X, to.Y},
			Width: s.Width,
			Cap:   capName(s.Cap),
		})
	}
	for _, p := range b.Pads {
		at := b.Pos(p.At)
		fp := FilePad{
			At:    [2]float64{at.X, at.Y},
			Shape: p.Shape.String(),
			W:     p.W,
		}
		if p.Shape != PadCircle {
			fp.H = p.H
		}
		f.Pads = append(f.Pads, fp)
	}

	groups := make(map[int][]int)
	var roots []int
	for _, n := range b.Nets {
		if n.Offset > 0 || n.ZCeiling > 0 {
			f.Nets = append(f.Nets, FileNet{ID: n.ID, Offset: n.Offset, ZCeiling: n.ZCeiling})
		}
		r := b.Groups.Find(n.ID)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], n.ID)
	}
	for _, r := range roots {
		if ids := groups[r]; len(ids) > 1 {
			f.Merge = append(f.Merge, ids)
		}
	}
	return f
}

// WriteFile encodes b as indented JSON.
func (b *Board) WriteFile(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b.File())
}

func vec2(a [2]float64) vec.Vec2 {
	return vec.Vec2{X: a[0], Y: a[1]}
}

func parseCap(s string) (graphics.LineCapStyle, error) {
	switch s {
	case "", "round":
		return graphics.LineCapRound, nil
	case "square":
		return graphics.LineCapSquare, nil
	case "butt":
		return graphics.LineCapButt, nil
	}
	return 0, fmt.Errorf("unknown cap style %q", s)
}

func capName(c graphics.LineCapStyle) string {
	switch c {
	case graphics.LineCapSquare:
		return "square"
	case graphics.LineCapButt:
		return "butt"
	default:
		return "round"
	}
}

func parseShape(s string) (PadShape, error) {
	for _, shape := range []PadShape{PadCircle, PadRect, PadObround} {
		if s == shape.String() {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("unknown pad shape %q", s)
}
