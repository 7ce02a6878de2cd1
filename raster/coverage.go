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

// Package raster is a software renderer for surface scenes.  It provides
// an anti-aliasing scanline filler for flat copper fills, a depth-buffered
// triangle renderer for cone surfaces, and a frame-driven render loop which
// presents the renderer as a blocking service.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// segment is a non-horizontal polygon edge in device coordinates.
type segment struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // inverse slope
}

func (s *segment) yMin() float64 { return min(s.y0, s.y1) }
func (s *segment) yMax() float64 { return max(s.y0, s.y1) }

// Filler computes the fraction of each pixel covered by a filled path.
// Buffers are kept between calls, so a Filler should be reused.
//
// A Filler is not safe for concurrent use.
type Filler struct {
	// CTM maps board coordinates to device pixels.  Device y grows
	// downwards, so the matrix normally flips the y axis.
	CTM matrix.Matrix

	// Clip restricts the output to this integer-aligned device rectangle.
	Clip rect.Rect

	// Flatness is the largest allowed error, in device pixels, when
	// curves are replaced by straight lines.
	Flatness float64

	// Width, Cap, Join and MiterLimit control Stroke.  Width is given in
	// board units.
	Width      float64
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64

	segs   []segment
	active []int
	cover  []float32
	area   []float32

	bbox   rect.Rect
	noBBox bool

	// stroking buffers
	ssegs     []strokeSegment
	subStart  []int
	subClosed []bool
	dots      []vec.Vec2
	outline   []vec.Vec2
}

// NewFiller returns a Filler with the identity transformation.
func NewFiller(clip rect.Rect) *Filler {
	return &Filler{
		CTM:        matrix.Identity,
		Clip:       clip,
		Flatness:   defaultFlatness,
		Width:      1,
		Cap:        graphics.LineCapRound,
		Join:       graphics.LineJoinRound,
		MiterLimit: 10,
	}
}

// FillNonZero fills p with the nonzero winding rule.  The emit function is
// called once per device row with the coverage of pixels xMin, xMin+1, ...
// Rows and leading or trailing pixels without coverage are skipped.  The
// coverage slice is only valid during the call.
func (f *Filler) FillNonZero(p path.Path, emit func(y, xMin int, coverage []float32)) {
	f.reset()
	var cur, start vec.Vec2
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			if cur != start {
				f.line(cur, start)
			}
			cur, start = pts[0], pts[0]
		case path.CmdLineTo:
			f.line(cur, pts[0])
			cur = pts[0]
		case path.CmdQuadTo:
			// degree elevation to a cubic
			c1 := cur.Add(pts[0].Sub(cur).Mul(2.0 / 3))
			c2 := pts[1].Add(pts[0].Sub(pts[1]).Mul(2.0 / 3))
			f.cubic(cur, c1, c2, pts[1], f.line)
			cur = pts[1]
		case path.CmdCubeTo:
			f.cubic(cur, pts[0], pts[1], pts[2], f.line)
			cur = pts[2]
		case path.CmdClose:
			if cur != start {
				f.line(cur, start)
			}
			cur = start
		}
	}
	if cur != start {
		f.line(cur, start)
	}
	f.scan(emit)
}

// FillPolygon fills the closed polygon with the given vertices, using the
// nonzero winding rule.
func (f *Filler) FillPolygon(poly []vec.Vec2, emit func(y, xMin int, coverage []float32)) {
	f.reset()
	f.polygon(poly)
	f.scan(emit)
}

// polygon records the edges of a closed polygon.
func (f *Filler) polygon(poly []vec.Vec2) {
	for i, p := range poly {
		f.line(p, poly[(i+1)%len(poly)])
	}
}

func (f *Filler) reset() {
	f.segs = f.segs[:0]
	f.noBBox = true
}

// cubic flattens a Bézier curve and passes the pieces to add.  The number
// of pieces follows Wang's formula for the device-space control polygon.
func (f *Filler) cubic(p0, p1, p2, p3 vec.Vec2, add func(a, b vec.Vec2)) {
	d1 := f.linear(p0.Sub(p1.Mul(2)).Add(p2))
	d2 := f.linear(p1.Sub(p2.Mul(2)).Add(p3))
	m := max(d1.Length(), d2.Length())
	n := 1
	if m > 0 {
		n = max(int(math.Ceil(math.Sqrt(3*m/(4*f.Flatness)))), 1)
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		add(prev, q)
		prev = q
	}
}

func (f *Filler) linear(v vec.Vec2) vec.Vec2 {
	m := f.CTM
	return vec.Vec2{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}
}

func (f *Filler) device(v vec.Vec2) vec.Vec2 {
	m := f.CTM
	return vec.Vec2{X: m[0]*v.X + m[2]*v.Y + m[4], Y: m[1]*v.X + m[3]*v.Y + m[5]}
}

// line records the edge from a to b, given in board coordinates.
func (f *Filler) line(a, b vec.Vec2) {
	p, q := f.device(a), f.device(b)
	dy := q.Y - p.Y
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	f.segs = append(f.segs, segment{
		x0: p.X, y0: p.Y,
		x1: q.X, y1: q.Y,
		dxdy: (q.X - p.X) / dy,
	})

	box := rect.Rect{
		LLx: min(p.X, q.X), LLy: min(p.Y, q.Y),
		URx: max(p.X, q.X), URy: max(p.Y, q.Y),
	}
	if f.noBBox {
		f.bbox = box
		f.noBBox = false
	} else {
		f.bbox.LLx = min(f.bbox.LLx, box.LLx)
		f.bbox.LLy = min(f.bbox.LLy, box.LLy)
		f.bbox.URx = max(f.bbox.URx, box.URx)
		f.bbox.URy = max(f.bbox.URy, box.URy)
	}
}

// Coverage model: every edge adds its signed vertical extent within a
// pixel to cover[x] and the part of that extent lying right of the edge to
// area[x].  Summing cover from the left and adding area gives the signed
// area of the path inside each pixel.

// scan converts the collected segments into coverage rows.
func (f *Filler) scan(emit func(y, xMin int, coverage []float32)) {
	if len(f.segs) == 0 {
		return
	}
	xMin := max(int(math.Floor(f.bbox.LLx)), int(f.Clip.LLx))
	xMax := min(int(math.Floor(f.bbox.URx))+1, int(f.Clip.URx))
	yMin := max(int(math.Floor(f.bbox.LLy)), int(f.Clip.LLy))
	yMax := min(int(math.Floor(f.bbox.URy))+1, int(f.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}
	width := xMax - xMin

	f.cover = slices.Grow(f.cover[:0], width)[:width]
	f.area = slices.Grow(f.area[:0], width)[:width]

	slices.SortFunc(f.segs, func(a, b segment) int {
		return cmp.Compare(a.yMin(), b.yMin())
	})
	f.active = f.active[:0]
	next := 0

	// segments above the clip rectangle never become active
	for next < len(f.segs) && f.segs[next].yMax() <= float64(yMin) {
		next++
	}

	for y := yMin; y < yMax; y++ {
		top, bot := float64(y), float64(y+1)
		for next < len(f.segs) && f.segs[next].yMin() < bot {
			f.active = append(f.active, next)
			next++
		}

		touched := false
		for i := 0; i < len(f.active); {
			s := &f.segs[f.active[i]]
			if s.yMax() <= top {
				last := len(f.active) - 1
				f.active[i] = f.active[last]
				f.active = f.active[:last]
				continue
			}
			if !touched {
				clear(f.cover)
				clear(f.area)
				touched = true
			}
			f.accumulate(s, top, bot, xMin, xMax)
			i++
		}
		if !touched {
			continue
		}

		var acc float32
		for i := range f.cover {
			v := acc + f.area[i]
			acc += f.cover[i]
			if v < 0 {
				v = -v
			}
			f.cover[i] = min(v, 1)
		}

		lo, hi := 0, width
		for lo < hi && f.cover[lo] == 0 {
			lo++
		}
		for hi > lo && f.cover[hi-1] == 0 {
			hi--
		}
		if lo < hi {
			emit(y, xMin+lo, f.cover[lo:hi])
		}
	}
}

// accumulate adds the part of s between device rows top and bot.
func (f *Filler) accumulate(s *segment, top, bot float64, xMin, xMax int) {
	top = max(top, s.yMin())
	bot = min(bot, s.yMax())
	if bot <= top {
		return
	}
	sign := float32(1)
	if s.y1 < s.y0 {
		sign = -1
	}

	xa := s.x0 + s.dxdy*(top-s.y0)
	xb := s.x0 + s.dxdy*(bot-s.y0)
	left, right := min(xa, xb), max(xa, xb)
	pl, pr := int(math.Floor(left)), int(math.Floor(right))

	if pl == pr {
		f.deposit(pl, sign*float32(bot-top), (xa+xb)/2, xMin, xMax)
		return
	}

	// split at pixel column boundaries
	dydx := 1 / s.dxdy
	for px := pl; px <= pr; px++ {
		ya := s.y0 + dydx*(float64(px)-s.x0)
		yb := s.y0 + dydx*(float64(px+1)-s.x0)
		lo := max(min(ya, yb), top)
		hi := min(max(ya, yb), bot)
		if hi <= lo {
			continue
		}
		xm := s.x0 + s.dxdy*((lo+hi)/2-s.y0)
		f.deposit(px, sign*float32(hi-lo), xm, xMin, xMax)
	}
}

// deposit adds a piece of edge with vertical extent dy, crossing pixel
// column px at mean position xm.
func (f *Filler) deposit(px int, dy float32, xm float64, xMin, xMax int) {
	switch {
	case px < xMin:
		// left of the clip rectangle: covers everything to the right
		f.cover[0] += dy
		f.area[0] += dy
	case px < xMax:
		i := px - xMin
		frac := float32(xm - float64(px))
		f.cover[i] += dy
		f.area[i] += dy * (1 - frac)
	}
}

const (
	// defaultFlatness is the curve tolerance in device pixels.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the smallest vertical extent of an
	// edge which contributes coverage.
	horizontalEdgeThreshold = 1e-10
)
