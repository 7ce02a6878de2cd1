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

// Package surface turns the copper of each net into a renderable height
// field.  Rendered from above with a depth test, the highest surface at
// each point belongs to the net closest to that point, so the label image
// of the scene approximates a weighted Voronoi partition of the board.
package surface

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Label identifies a net (or super-net) in a rendered image.  Only the low
// 24 bits are used, so that a label survives a round trip through an RGB
// pixel.
type Label uint32

// Background is the label of pixels not covered by any surface.
const Background Label = 0

// LabelFor returns the label of the net group with the given
// representative ID.  Distinct IDs below 2^21 give distinct labels, and no
// label equals Background.
func LabelFor(id int) Label {
	const mult = 0x9e3b7 // odd, so multiplication is invertible mod 2^21
	h := uint32(id+1) * mult & (1<<21 - 1)
	return Label(1<<21 | h)
}

// RGB returns the 8-bit color components of l.
func (l Label) RGB() (r, g, b uint8) {
	return uint8(l >> 16), uint8(l >> 8), uint8(l)
}

// LabelOf packs 8-bit color components into a label.
func LabelOf(r, g, b uint8) Label {
	return Label(r)<<16 | Label(g)<<8 | Label(b)
}

// Vertex3 is a point of a surface together with its height.
type Vertex3 struct {
	P vec.Vec2
	Z float64
}

// Triangle is a planar piece of a cone surface.
type Triangle [3]Vertex3

// Mode selects how surfaces are built.
type Mode int

const (
	// Voronoi builds distance cones around every net, so that the
	// boundaries between labels run half way between neighbouring nets.
	Voronoi Mode = iota

	// Outline renders only the copper, grown by the tool offset.  This is
	// faster, but neighbouring nets closer than two offsets merge.
	Outline
)

func (m Mode) String() string {
	switch m {
	case Voronoi:
		return "voronoi"
	case Outline:
		return "outline"
	default:
		return "unknown"
	}
}

// Surface is the renderable geometry of one net.
type Surface struct {
	Net   int
	Label Label

	// Bias is added to every height of the surface.  Different nets get
	// different biases, so that depth ties are resolved consistently.
	Bias float64

	// Cone holds the sloped triangles around the net.  It is empty in
	// Outline mode.
	Cone []Triangle

	// Fill holds closed counter-clockwise polygons covering copper.
	// The polygons overlap and must be filled with the nonzero rule.
	Fill [][]vec.Vec2

	// Strokes holds copper drawn with a round pen.  Together with Fill
	// it makes up the flat top of the surface.
	Strokes []Stroke

	// FillZ is the height of Fill and Strokes, before Bias is added.
	FillZ float64

	// Bounds encloses all of Cone, Fill and Strokes.
	Bounds rect.Rect
}

// FillPath returns the copper fill as a path.
func (s *Surface) FillPath() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [1]vec.Vec2
		for _, poly := range s.Fill {
			if len(poly) < 3 {
				continue
			}
			buf[0] = poly[0]
			if !yield(path.CmdMoveTo, buf[:]) {
				return
			}
			for _, p := range poly[1:] {
				buf[0] = p
				if !yield(path.CmdLineTo, buf[:]) {
					return
				}
			}
			if !yield(path.CmdClose, nil) {
				return
			}
		}
	}
}

// Stroke is a polyline drawn with a pen of the given width.  Corners
// are always round.
type Stroke struct {
	Points []vec.Vec2
	Closed bool
	Width  float64
	Cap    graphics.LineCapStyle
}

// Path returns the centre line of the stroke.  A single point gives a
// path with a zero-length line.
func (st *Stroke) Path() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if len(st.Points) == 0 {
			return
		}
		buf := []vec.Vec2{st.Points[0]}
		if !yield(path.CmdMoveTo, buf) {
			return
		}
		rest := st.Points[1:]
		if len(rest) == 0 {
			rest = st.Points
		}
		for _, p := range rest {
			buf[0] = p
			if !yield(path.CmdLineTo, buf) {
				return
			}
		}
		if st.Closed {
			yield(path.CmdClose, nil)
		}
	}
}

// reach returns how far the stroke extends beyond its points, in each
// coordinate direction.
func (st *Stroke) reach() float64 {
	d := st.Width / 2
	if st.Cap == graphics.LineCapSquare && !st.Closed {
		d *= math.Sqrt2
	}
	return d
}

// Scene is the set of surfaces for all nets of a board.
type Scene struct {
	Surfaces []*Surface

	// Bounds is the bounding box of the copper of all rendered nets.
	Bounds rect.Rect

	// Skipped lists the errors for nets which could not be built.
	Skipped []error
}

// Camera describes an orthographic top view of the board.
type Camera struct {
	// Center is the board point shown in the middle of the image.
	Center vec.Vec2

	// Size is the width and height of the visible area, in board units.
	Size vec.Vec2

	// Width and Height give the image size in pixels.
	Width, Height int
}
