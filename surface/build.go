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

package surface

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/isolate/topology"
)

// Params controls surface construction.  Offset and ZCeiling are defaults
// for nets which do not set their own values.
type Params struct {
	Offset   float64 // tool radius, board units
	ZCeiling float64 // largest distance represented by a cone, board units
	Flatness float64 // maximal chord error of arcs, board units
	Mode     Mode
}

// Build creates the surfaces of all nets of b.  Nets whose geometry is
// malformed are left out and reported in Scene.Skipped.  If c is not
// nil, net geometry is memoized there.
func Build(b *topology.Board, p Params, c *Cache) *Scene {
	scene := &Scene{}
	if c != nil {
		c.bind(b)
	}
	first := true
	for i, n := range b.Nets {
		var s *Surface
		var err error
		key := p.keyFor(n)
		if c != nil {
			s = c.get(key)
		}
		if s == nil {
			s, err = BuildNet(b, n, p)
			if err != nil {
				scene.Skipped = append(scene.Skipped, err)
				continue
			}
			if c != nil {
				c.put(key, s)
			}
		}

		// The cached geometry is shared; per pass values go on a copy.
		s2 := *s
		s2.Label = LabelFor(b.Groups.Find(n.ID))
		s2.Bias = float64(i) * biasStep * key.ZCeiling
		scene.Surfaces = append(scene.Surfaces, &s2)

		nb := b.NetBounds(n)
		if first {
			scene.Bounds = nb
			first = false
		} else {
			scene.Bounds = union(scene.Bounds, nb)
		}
	}
	return scene
}

// BuildNet creates the surface of a single net, without label and bias.
func BuildNet(b *topology.Board, n *topology.Net, p Params) (*Surface, error) {
	k := p.keyFor(n)
	g := &builder{
		board:    b,
		offset:   k.Offset,
		zCeiling: k.ZCeiling,
		flatness: k.Flatness,
	}
	s := &Surface{Net: n.ID}

	grow := 0.0
	if k.Mode == Outline {
		grow = k.Offset
		s.FillZ = 0
	} else {
		s.FillZ = k.Offset
	}
	for _, st := range n.Strokes {
		g.addStroke(s, st, grow)
	}
	for _, pad := range n.Pads {
		g.addPad(s, pad, grow)
	}

	if k.Mode == Voronoi {
		ls, err := b.ExtractLoops(n)
		if err != nil {
			return nil, fmt.Errorf("cone surface: %w", err)
		}
		for _, l := range ls.Loops {
			var ring []ringEdge
			for _, e := range ls.Indices(l) {
				ring = append(ring, ringEdge{
					a: b.Pos(ls.Start(e)),
					b: b.Pos(ls.End(e)),
					w: ls.Width(e) / 2,
				})
			}
			s.Cone = g.cone(s.Cone, ring)
		}
		for _, pad := range n.Pads {
			// pad outlines act as extra loops of zero width
			poly := g.padOutline(pad)
			ring := make([]ringEdge, len(poly))
			for i, a := range poly {
				ring[i] = ringEdge{a: a, b: poly[(i+1)%len(poly)]}
			}
			s.Cone = g.cone(s.Cone, ring)
		}
	}

	s.Bounds = s.computeBounds()
	return s, nil
}

// biasStep is the tie-break height difference between consecutive nets,
// relative to ZCeiling.
const biasStep = 1e-6

type builder struct {
	board    *topology.Board
	offset   float64
	zCeiling float64
	flatness float64
}

type ringEdge struct {
	a, b vec.Vec2
	w    float64 // half width of the stroke
}

// cone appends the sloped band and corner fans of one closed ring to tris.
// The band lies to the right of every edge.  At the inner rim (distance w
// from the centre line) the height equals the offset; it drops with slope
// one and reaches -zCeiling at distance w+offset+zCeiling.
func (g *builder) cone(tris []Triangle, ring []ringEdge) []Triangle {
	n := len(ring)
	if n == 0 {
		return tris
	}
	zIn := g.offset
	zOut := -g.zCeiling
	reach := g.offset + g.zCeiling

	for i, e := range ring {
		d := e.b.Sub(e.a)
		l := d.Length()
		if l == 0 {
			continue
		}
		t := d.Mul(1 / l)
		r := vec.Vec2{X: t.Y, Y: -t.X}

		a0 := Vertex3{P: e.a.Add(r.Mul(e.w)), Z: zIn}
		b0 := Vertex3{P: e.b.Add(r.Mul(e.w)), Z: zIn}
		b1 := Vertex3{P: e.b.Add(r.Mul(e.w + reach)), Z: zOut}
		a1 := Vertex3{P: e.a.Add(r.Mul(e.w + reach)), Z: zOut}
		tris = append(tris, Triangle{a0, b0, b1}, Triangle{a0, b1, a1})

		next := ring[(i+1)%n]
		d2 := next.b.Sub(next.a)
		l2 := d2.Length()
		if l2 == 0 {
			continue
		}
		t2 := d2.Mul(1 / l2)
		turn := math.Atan2(t.X*t2.Y-t.Y*t2.X, t.Dot(t2))
		if turn < -math.Pi+angleEpsilon {
			// reversing direction always opens a gap on the right
			turn = math.Pi
		}
		if turn <= angleEpsilon {
			continue
		}
		tris = g.fan(tris, e.b, r, turn, e.w, next.w)
	}
	return tris
}

// fan fills the wedge at corner c between the right normal r of the
// incoming edge and the same normal rotated counter-clockwise by sweep.
// The inner radius changes linearly from w1 to w2.
func (g *builder) fan(tris []Triangle, c, r vec.Vec2, sweep, w1, w2 float64) []Triangle {
	reach := g.offset + g.zCeiling
	steps := arcSteps(max(w1, w2)+reach, sweep, g.flatness)

	point := func(k int) (inner, outer Vertex3) {
		f := float64(k) / float64(steps)
		dir := rotate(r, f*sweep)
		w := w1 + f*(w2-w1)
		inner = Vertex3{P: c.Add(dir.Mul(w)), Z: g.offset}
		outer = Vertex3{P: c.Add(dir.Mul(w + reach)), Z: -g.zCeiling}
		return
	}
	in0, out0 := point(0)
	for k := 1; k <= steps; k++ {
		in1, out1 := point(k)
		if in0.P == in1.P {
			tris = append(tris, Triangle{in0, out0, out1})
		} else {
			tris = append(tris, Triangle{in0, out0, out1}, Triangle{in0, out1, in1})
		}
		in0, out0 = in1, out1
	}
	return tris
}

// addStroke adds the copper of a stroke, grown by grow, to s.
func (g *builder) addStroke(s *Surface, st *topology.Stroke, grow float64) {
	p, q := g.board.Pos(st.From), g.board.Pos(st.To)
	if st.Cap == graphics.LineCapRound || p == q {
		s.Strokes = append(s.Strokes, Stroke{
			Points: []vec.Vec2{p, q},
			Width:  st.Width + 2*grow,
			Cap:    graphics.LineCapRound,
		})
		return
	}
	if grow == 0 {
		s.Strokes = append(s.Strokes, Stroke{
			Points: []vec.Vec2{p, q},
			Width:  st.Width,
			Cap:    st.Cap,
		})
		return
	}

	// Square and butt ends have sharp corners, which must be grown
	// with a round pen.
	d := st.Width / 2
	t := q.Sub(p)
	t = t.Mul(1 / t.Length())
	n := vec.Vec2{X: -t.Y, Y: t.X}
	if st.Cap == graphics.LineCapSquare {
		p, q = p.Sub(t.Mul(d)), q.Add(t.Mul(d))
	}
	g.addGrown(s, []vec.Vec2{
		p.Sub(n.Mul(d)), q.Sub(n.Mul(d)),
		q.Add(n.Mul(d)), p.Add(n.Mul(d)),
	}, grow)
}

// addPad adds the copper of a pad, grown by grow, to s.
func (g *builder) addPad(s *Surface, p *topology.Pad, grow float64) {
	c := g.board.Pos(p.At)
	switch p.Shape {
	case topology.PadRect:
		hw, hh := p.W/2, p.H/2
		g.addGrown(s, []vec.Vec2{
			{X: c.X - hw, Y: c.Y - hh},
			{X: c.X + hw, Y: c.Y - hh},
			{X: c.X + hw, Y: c.Y + hh},
			{X: c.X - hw, Y: c.Y + hh},
		}, grow)
	case topology.PadObround:
		a, b, r := obroundAxis(c, p.W/2, p.H/2)
		s.Strokes = append(s.Strokes, Stroke{
			Points: []vec.Vec2{a, b},
			Width:  2 * (r + grow),
			Cap:    graphics.LineCapRound,
		})
	default:
		s.Strokes = append(s.Strokes, Stroke{
			Points: []vec.Vec2{c},
			Width:  p.W + 2*grow,
			Cap:    graphics.LineCapRound,
		})
	}
}

// addGrown adds a counter-clockwise polygon, grown by grow, to s.
func (g *builder) addGrown(s *Surface, poly []vec.Vec2, grow float64) {
	s.Fill = append(s.Fill, poly)
	if grow > 0 {
		s.Strokes = append(s.Strokes, Stroke{
			Points: poly,
			Closed: true,
			Width:  2 * grow,
			Cap:    graphics.LineCapRound,
		})
	}
}

// obroundAxis returns the end points of the centre line of an obround
// with half sizes hw and hh, and its radius.
func obroundAxis(c vec.Vec2, hw, hh float64) (a, b vec.Vec2, r float64) {
	r = min(hw, hh)
	var axis vec.Vec2
	if hw > hh {
		axis = vec.Vec2{X: hw - r}
	} else {
		axis = vec.Vec2{Y: hh - r}
	}
	return c.Sub(axis), c.Add(axis), r
}

// padOutline returns the outline of a pad as a counter-clockwise polygon.
// The cone of the pad starts there.
func (g *builder) padOutline(p *topology.Pad) []vec.Vec2 {
	c := g.board.Pos(p.At)
	hw, hh := p.W/2, p.H/2
	switch p.Shape {
	case topology.PadRect:
		return []vec.Vec2{
			{X: c.X - hw, Y: c.Y - hh},
			{X: c.X + hw, Y: c.Y - hh},
			{X: c.X + hw, Y: c.Y + hh},
			{X: c.X - hw, Y: c.Y + hh},
		}
	case topology.PadObround:
		a, b, r := obroundAxis(c, hw, hh)
		if a == b {
			return circle(c, r, g.flatness)
		}
		t := b.Sub(a)
		t = t.Mul(1 / t.Length())
		right := vec.Vec2{X: t.Y, Y: -t.X}
		poly := []vec.Vec2{a.Add(right.Mul(r)), b.Add(right.Mul(r))}
		poly = g.halfCircle(poly, b, right, r)
		poly = append(poly, b.Sub(right.Mul(r)), a.Sub(right.Mul(r)))
		return g.halfCircle(poly, a, right.Mul(-1), r)
	default:
		return circle(c, hw, g.flatness)
	}
}

// halfCircle appends the inner points of the counter-clockwise half
// circle around c which starts in direction from.
func (g *builder) halfCircle(poly []vec.Vec2, c, from vec.Vec2, r float64) []vec.Vec2 {
	steps := arcSteps(r, math.Pi, g.flatness)
	for k := 1; k < steps; k++ {
		poly = append(poly, c.Add(rotate(from, math.Pi*float64(k)/float64(steps)).Mul(r)))
	}
	return poly
}

// circle approximates a circle by a counter-clockwise polygon.
func circle(c vec.Vec2, r, flatness float64) []vec.Vec2 {
	steps := max(arcSteps(r, 2*math.Pi, flatness), 8)
	poly := make([]vec.Vec2, steps)
	for k := range poly {
		a := 2 * math.Pi * float64(k) / float64(steps)
		poly[k] = vec.Vec2{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return poly
}

// arcSteps returns the number of chords needed to approximate an arc of
// the given radius and sweep.  A chord spanning angle θ deviates from the
// arc by r(1-cos(θ/2)), so θ = 2*acos(1-ε/r) gives error ε.
func arcSteps(radius, sweep, flatness float64) int {
	if radius <= flatness {
		return 1
	}
	step := 2 * math.Acos(1-flatness/radius)
	if step <= 0 || math.IsNaN(step) {
		step = math.Pi / 4
	}
	return max(int(math.Ceil(math.Abs(sweep)/step)), 1)
}

func rotate(v vec.Vec2, a float64) vec.Vec2 {
	sin, cos := math.Sincos(a)
	return vec.Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func (s *Surface) computeBounds() rect.Rect {
	box := rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
	add := func(p vec.Vec2) {
		box.LLx = min(box.LLx, p.X)
		box.LLy = min(box.LLy, p.Y)
		box.URx = max(box.URx, p.X)
		box.URy = max(box.URy, p.Y)
	}
	for _, t := range s.Cone {
		for _, v := range t {
			add(v.P)
		}
	}
	for _, poly := range s.Fill {
		for _, p := range poly {
			add(p)
		}
	}
	for i := range s.Strokes {
		st := &s.Strokes[i]
		r := st.reach()
		for _, p := range st.Points {
			add(vec.Vec2{X: p.X - r, Y: p.Y - r})
			add(vec.Vec2{X: p.X + r, Y: p.Y + r})
		}
	}
	if box.LLx > box.URx {
		return rect.Rect{}
	}
	return box
}

func union(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: min(a.LLx, b.LLx), LLy: min(a.LLy, b.LLy),
		URx: max(a.URx, b.URx), URy: max(a.URy, b.URy),
	}
}

// angleEpsilon is the smallest turn, in radians, which gets a fan.
const angleEpsilon = 1e-9
