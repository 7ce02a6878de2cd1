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

package raster

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment is a straight piece of a flattened path, in board
// coordinates.
type strokeSegment struct {
	A, B vec.Vec2
	T    vec.Vec2 // unit tangent from A to B
	N    vec.Vec2 // T turned counter-clockwise by 90°
}

// Stroke fills the area swept by a pen of diameter Width moving along p.
// Ends are drawn in the Cap style and corners in the Join style.  A
// subpath without extent gives a dot for round caps and nothing
// otherwise.  The emit callback is used as for FillNonZero.
//
// The outline of every subpath is built as a polygon.  Closed subpaths
// give two rings, the left side forward and the right side backward, so
// that the area enclosed by the path stays empty.
func (f *Filler) Stroke(p path.Path, emit func(y, xMin int, coverage []float32)) {
	f.reset()
	if f.Width <= 0 {
		return
	}
	f.flattenStroke(p)
	d := f.Width / 2

	if f.Cap == graphics.LineCapRound {
		for _, c := range f.dots {
			f.outline = f.outline[:0]
			f.addArc(c, d, vec.Vec2{X: 1}, 2*math.Pi, true)
			f.polygon(f.outline)
		}
	}
	for i, start := range f.subStart {
		end := len(f.ssegs)
		if i+1 < len(f.subStart) {
			end = f.subStart[i+1]
		}
		segs := f.ssegs[start:end]
		f.outline = f.outline[:0]
		if f.subClosed[i] {
			f.strokeClosed(segs, d)
		} else {
			f.strokeOpen(segs, d)
		}
		if len(f.outline) >= 3 {
			f.polygon(f.outline)
		}
	}
	f.scan(emit)
}

// flattenStroke splits p into subpaths of straight segments.  Curves are
// flattened in board coordinates, with the piece count taken from the
// device-space control polygon.
func (f *Filler) flattenStroke(p path.Path) {
	f.ssegs = f.ssegs[:0]
	f.subStart = f.subStart[:0]
	f.subClosed = f.subClosed[:0]
	f.dots = f.dots[:0]

	var cur, start vec.Vec2
	first := 0
	open, drawn := false, false
	finish := func(closed bool) {
		switch {
		case len(f.ssegs) > first:
			f.subStart = append(f.subStart, first)
			f.subClosed = append(f.subClosed, closed)
		case drawn || closed:
			f.dots = append(f.dots, start)
		}
		first = len(f.ssegs)
		open, drawn = false, false
	}

	for cmd, pts := range p {
		if cmd != path.CmdMoveTo && !open {
			continue
		}
		switch cmd {
		case path.CmdMoveTo:
			if open {
				finish(false)
			}
			cur, start = pts[0], pts[0]
			open = true
		case path.CmdLineTo:
			drawn = true
			f.addStrokeSegment(cur, pts[0])
			cur = pts[0]
		case path.CmdQuadTo:
			drawn = true
			c1 := cur.Add(pts[0].Sub(cur).Mul(2.0 / 3))
			c2 := pts[1].Add(pts[0].Sub(pts[1]).Mul(2.0 / 3))
			f.cubic(cur, c1, c2, pts[1], f.addStrokeSegment)
			cur = pts[1]
		case path.CmdCubeTo:
			drawn = true
			f.cubic(cur, pts[0], pts[1], pts[2], f.addStrokeSegment)
			cur = pts[2]
		case path.CmdClose:
			if cur != start {
				f.addStrokeSegment(cur, start)
			}
			finish(true)
			cur = start
		}
	}
	if open {
		finish(false)
	}
}

func (f *Filler) addStrokeSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	l := d.Length()
	if l < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / l)
	f.ssegs = append(f.ssegs, strokeSegment{A: a, B: b, T: t, N: vec.Vec2{X: -t.Y, Y: t.X}})
}

// strokeOpen builds the outline of an open subpath: start cap, left side
// forward, end cap, right side backward.
func (f *Filler) strokeOpen(segs []strokeSegment, d float64) {
	first, last := &segs[0], &segs[len(segs)-1]

	f.addCap(first.A, first.T.Mul(-1), d)
	f.outline = append(f.outline, first.A.Add(first.N.Mul(d)))
	for i := 0; i+1 < len(segs); i++ {
		f.joint(&segs[i], &segs[i+1], d, true)
	}
	f.outline = append(f.outline, last.B.Add(last.N.Mul(d)))

	f.addCap(last.B, last.T, d)
	f.outline = append(f.outline, last.B.Sub(last.N.Mul(d)))
	for i := len(segs) - 2; i >= 0; i-- {
		f.joint(&segs[i], &segs[i+1], d, false)
	}
	f.outline = append(f.outline, first.A.Sub(first.N.Mul(d)))
}

// strokeClosed records the left ring of a closed subpath and leaves the
// right ring in f.outline.
func (f *Filler) strokeClosed(segs []strokeSegment, d float64) {
	n := len(segs)
	for i := range n {
		f.joint(&segs[(i+n-1)%n], &segs[i], d, true)
	}
	if len(f.outline) >= 3 {
		f.polygon(f.outline)
	}
	f.outline = f.outline[:0]
	for i := n - 1; i >= 0; i-- {
		f.joint(&segs[i], &segs[(i+1)%n], d, false)
	}
}

// joint adds the outline at the point where segment in meets segment
// out.  The left side is built forward, the right side backward.  On the
// inner side of a turn the two offset lines are cut at their
// intersection; the outer side gets a join.
func (f *Filler) joint(in, out *strokeSegment, d float64, left bool) {
	P := out.A
	sin := in.T.X*out.T.Y - in.T.Y*out.T.X
	a, b := in.B.Add(in.N.Mul(d)), out.A.Add(out.N.Mul(d))
	if !left {
		a, b = out.A.Sub(out.N.Mul(d)), in.B.Sub(in.N.Mul(d))
	}

	switch {
	case math.Abs(sin) < collinearityThreshold:
		f.outline = append(f.outline, a, b)
	case (sin > 0) == left:
		if q, ok := innerPoint(P, in.T, out.T, d, left); ok {
			f.outline = append(f.outline, q)
		} else {
			f.outline = append(f.outline, a, b)
		}
	default:
		f.outline = append(f.outline, a)
		f.addJoin(P, in.T, out.T, d, left)
		f.outline = append(f.outline, b)
	}
}

// innerPoint returns the intersection of the two offset lines on the
// inner side of a corner.
func innerPoint(P, T1, T2 vec.Vec2, d float64, left bool) (vec.Vec2, bool) {
	cos := T1.Dot(T2)
	if cos > 1-1e-9 {
		return vec.Vec2{}, false
	}
	cosHalf := math.Sqrt((1 + cos) / 2)
	if cosHalf < 1e-9 {
		return vec.Vec2{}, false
	}
	dir := vec.Vec2{X: -T1.Y - T2.Y, Y: T1.X + T2.X}
	if !left {
		dir = dir.Mul(-1)
	}
	l := dir.Length()
	if l < 1e-9 {
		return vec.Vec2{}, false
	}
	return P.Add(dir.Mul(d / (cosHalf * l))), true
}

// addCap adds the cap at end point P.  T points away from the stroke.  The
// outline arrives on the left of T and continues on its right.
func (f *Filler) addCap(P, T vec.Vec2, d float64) {
	N := vec.Vec2{X: -T.Y, Y: T.X}
	switch f.Cap {
	case graphics.LineCapSquare:
		ext := P.Add(T.Mul(d))
		f.outline = append(f.outline, ext.Add(N.Mul(d)), ext.Sub(N.Mul(d)))
	case graphics.LineCapRound:
		f.addArc(P, d, N, -math.Pi, true)
	}
}

// addJoin adds the join on the outer side of the corner at P, where the
// tangent turns from T1 to T2.
func (f *Filler) addJoin(P, T1, T2 vec.Vec2, d float64, left bool) {
	cos := T1.Dot(T2)
	sin := T1.X*T2.Y - T1.Y*T2.X
	if math.Abs(sin) < collinearityThreshold {
		return
	}
	if cos < cuspCosineThreshold {
		// the path doubles back, the outline goes round the tip
		f.addCap(P, T1, d)
		return
	}

	switch f.Join {
	case graphics.LineJoinMiter:
		// the miter length relative to d is 1/cos(θ/2)
		cosHalf := math.Sqrt((1 + cos) / 2)
		if cosHalf > 0 && 1/cosHalf <= f.MiterLimit+1e-10 {
			dir := vec.Vec2{X: -T1.Y - T2.Y, Y: T1.X + T2.X}
			if !left {
				dir = dir.Mul(-1)
			}
			if l := dir.Length(); l > zeroLengthThreshold {
				f.outline = append(f.outline, P.Add(dir.Mul(d/(cosHalf*l))))
			}
		}
	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cos)))
		if sin < 0 {
			angle = -angle
		}
		if left {
			f.addArc(P, d, vec.Vec2{X: -T1.Y, Y: T1.X}, angle, false)
		} else {
			f.addArc(P, d, vec.Vec2{X: T2.Y, Y: -T2.X}, -angle, false)
		}
	}
}

// addArc appends points of the arc around center, starting in direction
// startDir and turning by sweep (counter-clockwise if positive).  The
// number of chords follows from the device-space radius and Flatness.
func (f *Filler) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64, includeStart bool) {
	devRadius := max(
		f.linear(vec.Vec2{X: radius}).Length(),
		f.linear(vec.Vec2{Y: radius}).Length())

	n := 1
	if devRadius >= f.Flatness {
		step := 2 * math.Acos(1-f.Flatness/devRadius)
		if step <= 0 || math.IsNaN(step) {
			step = math.Pi / 4
		}
		n = max(int(math.Ceil(math.Abs(sweep)/step)), 1)
	}

	k0 := 1
	if includeStart {
		k0 = 0
	}
	for k := k0; k <= n; k++ {
		sin, cos := math.Sincos(sweep * float64(k) / float64(n))
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		f.outline = append(f.outline, center.Add(dir.Mul(radius)))
	}
}

const (
	// zeroLengthThreshold is the shortest segment kept when stroking.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold is the smallest |sin| of a turn which
	// gets a join.
	collinearityThreshold = 1e-6

	// cuspCosineThreshold marks turns which double back on the path.
	cuspCosineThreshold = -0.9999
)
