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

// Package topology holds the copper geometry of a board: quantized
// vertices, strokes and pads, their partition into nets, and the closed
// half-edge loops that bound each net.
package topology

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Point is a vertex position in integer multiples of Board.Quantum.
type Point struct {
	X, Y int64
}

// Action is a stroke or pad which is incident on one or more vertices.
type Action interface {
	Vertices() []*Vertex
}

// Vertex is a distinct quantized board position.  A Vertex is created once
// per coordinate by Board.Vertex and shared by all actions touching it.
type Vertex struct {
	At Point

	// Actions lists the strokes and pads incident on this vertex, in the
	// order they were added to the board.
	Actions []Action

	pos    vec.Vec2
	hasPos bool
}

// Stroke is a straight trace segment drawn with a round, square or butt
// ended aperture of the given width.
type Stroke struct {
	From, To *Vertex
	Width    float64
	Cap      graphics.LineCapStyle

	// Net is the index of the owning net in Board.Nets, or -1 before
	// Board.Partition has run.
	Net int
}

// Vertices implements the Action interface.
func (s *Stroke) Vertices() []*Vertex {
	return []*Vertex{s.From, s.To}
}

// PadShape selects the outline of a flashed pad.
type PadShape int

// These are the supported pad shapes.
const (
	PadCircle PadShape = iota
	PadRect
	PadObround
)

func (s PadShape) String() string {
	switch s {
	case PadCircle:
		return "circle"
	case PadRect:
		return "rect"
	case PadObround:
		return "obround"
	default:
		return "unknown"
	}
}

// Pad is a flashed aperture centered on a vertex.  For circles only W is
// used, as the diameter.
type Pad struct {
	At    *Vertex
	Shape PadShape
	W, H  float64

	// Net is the index of the owning net in Board.Nets, or -1 before
	// Board.Partition has run.
	Net int
}

// Vertices implements the Action interface.
func (p *Pad) Vertices() []*Vertex {
	return []*Vertex{p.At}
}

// Board collects the copper geometry of one layer.
//
// A Board is not safe for concurrent use.
type Board struct {
	// Quantum is the size of one integer vertex step, in board units.
	Quantum float64

	Strokes []*Stroke
	Pads    []*Pad
	Nets    []*Net

	// Groups records which nets have been merged into super-nets.
	Groups *Groups

	vertices map[Point]*Vertex
	epoch    uint64
}

// Epoch counts the calls to Partition.  Net IDs from different epochs
// refer to different nets.
func (b *Board) Epoch() uint64 {
	return b.epoch
}

// NewBoard returns an empty board.  Coordinates passed to the board are
// rounded to multiples of quantum.
func NewBoard(quantum float64) *Board {
	if quantum <= 0 {
		quantum = defaultQuantum
	}
	return &Board{
		Quantum:  quantum,
		Groups:   NewGroups(),
		vertices: make(map[Point]*Vertex),
	}
}

// Vertex returns the unique vertex closest to p, creating it if needed.
func (b *Board) Vertex(p vec.Vec2) *Vertex {
	key := Point{
		X: int64(math.Round(p.X / b.Quantum)),
		Y: int64(math.Round(p.Y / b.Quantum)),
	}
	v, ok := b.vertices[key]
	if !ok {
		v = &Vertex{At: key}
		b.vertices[key] = v
	}
	return v
}

// Pos returns the board coordinates of v.  The value is computed once and
// cached on the vertex.
func (b *Board) Pos(v *Vertex) vec.Vec2 {
	if !v.hasPos {
		v.pos = vec.Vec2{
			X: float64(v.At.X) * b.Quantum,
			Y: float64(v.At.Y) * b.Quantum,
		}
		v.hasPos = true
	}
	return v.pos
}

// NumVertices returns the number of distinct vertices on the board.
func (b *Board) NumVertices() int {
	return len(b.vertices)
}

// AddStroke adds a trace segment from a to b.
func (b *Board) AddStroke(from, to vec.Vec2, width float64, cap graphics.LineCapStyle) *Stroke {
	s := &Stroke{
		From:  b.Vertex(from),
		To:    b.Vertex(to),
		Width: width,
		Cap:   cap,
		Net:   -1,
	}
	s.From.Actions = append(s.From.Actions, s)
	if s.To != s.From {
		s.To.Actions = append(s.To.Actions, s)
	}
	b.Strokes = append(b.Strokes, s)
	return s
}

// AddPad adds a flashed pad centered at p.
func (b *Board) AddPad(p vec.Vec2, shape PadShape, w, h float64) *Pad {
	pad := &Pad{
		At:    b.Vertex(p),
		Shape: shape,
		W:     w,
		H:     h,
		Net:   -1,
	}
	if shape == PadCircle {
		pad.H = w
	}
	pad.At.Actions = append(pad.At.Actions, pad)
	b.Pads = append(b.Pads, pad)
	return pad
}

// Bounds returns the bounding box of all copper on the board.
func (b *Board) Bounds() rect.Rect {
	var box rect.Rect
	first := true
	for _, n := range b.Nets {
		nb := b.NetBounds(n)
		if first {
			box = nb
			first = false
			continue
		}
		box = union(box, nb)
	}
	return box
}

// NetBounds returns the bounding box of the copper of n, including stroke
// widths and pad sizes.
func (b *Board) NetBounds(n *Net) rect.Rect {
	var box rect.Rect
	first := true
	add := func(r rect.Rect) {
		if first {
			box = r
			first = false
			return
		}
		box = union(box, r)
	}
	for _, s := range n.Strokes {
		p, q := b.Pos(s.From), b.Pos(s.To)
		// a square cap reaches sqrt(2)*w/2 at the corners
		d := s.Width / 2 * math.Sqrt2
		add(rect.Rect{
			LLx: min(p.X, q.X) - d, LLy: min(p.Y, q.Y) - d,
			URx: max(p.X, q.X) + d, URy: max(p.Y, q.Y) + d,
		})
	}
	for _, pad := range n.Pads {
		c := b.Pos(pad.At)
		add(rect.Rect{
			LLx: c.X - pad.W/2, LLy: c.Y - pad.H/2,
			URx: c.X + pad.W/2, URy: c.Y + pad.H/2,
		})
	}
	return box
}

func union(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: min(a.LLx, b.LLx), LLy: min(a.LLy, b.LLy),
		URx: max(a.URx, b.URx), URy: max(a.URy, b.URy),
	}
}

// defaultQuantum is one micrometre when board units are millimetres.
const defaultQuantum = 1e-3
