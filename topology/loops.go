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
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// HalfEdge is one traversal direction of a stroke.  Half-edges live in the
// Edges slice of a Loops value: entry 2i traverses stroke i of the net
// from From to To, entry 2i+1 traverses it backwards.
type HalfEdge struct {
	Stroke  int  // index into Net.Strokes
	Reverse bool // traverse from To to From

	// Next is the index of the following half-edge of the same loop.
	Next int
}

// Loop is one closed cycle of half-edges.
type Loop struct {
	First int // index of the first half-edge
	Len   int // number of half-edges

	// Area is the signed area enclosed by the stroke centre lines.
	// The copper lies to the left of every half-edge, so outer
	// boundaries are counter-clockwise with positive area.
	Area float64

	// Hole is set for clockwise loops, which bound a region enclosed by
	// the net.
	Hole bool
}

// Loops holds the half-edge arena and the loops of one net.
type Loops struct {
	Net   *Net
	Edges []HalfEdge
	Loops []Loop
}

// Indices returns the half-edge indices of l, in traversal order.
func (ls *Loops) Indices(l Loop) []int {
	res := make([]int, 0, l.Len)
	e := l.First
	for range l.Len {
		res = append(res, e)
		e = ls.Edges[e].Next
	}
	return res
}

// Start returns the vertex where half-edge e begins.
func (ls *Loops) Start(e int) *Vertex {
	h := ls.Edges[e]
	s := ls.Net.Strokes[h.Stroke]
	if h.Reverse {
		return s.To
	}
	return s.From
}

// End returns the vertex where half-edge e ends.
func (ls *Loops) End(e int) *Vertex {
	h := ls.Edges[e]
	s := ls.Net.Strokes[h.Stroke]
	if h.Reverse {
		return s.From
	}
	return s.To
}

// Width returns the width of the stroke traversed by half-edge e.
func (ls *Loops) Width(e int) float64 {
	return ls.Net.Strokes[ls.Edges[e].Stroke].Width
}

var (
	// ErrZeroLength indicates a stroke whose end points coincide.
	ErrZeroLength = errors.New("zero-length stroke")

	// ErrDeadEnd indicates a loop walk which reached a vertex without
	// unused outgoing half-edges.
	ErrDeadEnd = errors.New("no outgoing half-edge")
)

// MalformedError reports geometry which prevents loop extraction for a net.
type MalformedError struct {
	Net    int
	Stroke int // index into Net.Strokes, or -1
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Stroke < 0 {
		return fmt.Sprintf("net %d: %v", e.Net, e.Err)
	}
	return fmt.Sprintf("net %d, stroke %d: %v", e.Net, e.Stroke, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// ExtractLoops builds the closed boundary loops of net n.
//
// Starting from the lowest unused half-edge, each loop is walked forward.
// At every vertex the next half-edge is the remaining outgoing half-edge
// whose start direction has the smallest counter-clockwise angle, in
// [0, 2π), from the direction pointing back along the incoming half-edge.
// This is the sharpest right turn, so the face traced by a loop lies to its
// right.  Turning back onto the same stroke is only allowed when there is
// no other choice.  A loop ends when the walk is back at its start vertex
// and the first half-edge of the loop would be chosen next.
//
// Malformed geometry results in a *MalformedError.
func (b *Board) ExtractLoops(n *Net) (*Loops, error) {
	ls := &Loops{
		Net:   n,
		Edges: make([]HalfEdge, 2*len(n.Strokes)),
	}
	for i, s := range n.Strokes {
		if s.From == s.To {
			return nil, &MalformedError{Net: n.ID, Stroke: i, Err: ErrZeroLength}
		}
		ls.Edges[2*i] = HalfEdge{Stroke: i, Next: -1}
		ls.Edges[2*i+1] = HalfEdge{Stroke: i, Reverse: true, Next: -1}
	}

	out := make(map[*Vertex][]int)
	for e := range ls.Edges {
		v := ls.Start(e)
		out[v] = append(out[v], e)
	}
	take := func(v *Vertex, e int) {
		list := out[v]
		for k, f := range list {
			if f == e {
				out[v] = append(list[:k], list[k+1:]...)
				return
			}
		}
	}

	used := make([]bool, len(ls.Edges))
	for first := range ls.Edges {
		if used[first] {
			continue
		}
		start := ls.Start(first)
		used[first] = true
		take(start, first)

		cur := first
		count := 1
		for {
			v := ls.End(cur)
			cands := out[v]
			if v == start {
				cands = append(cands[:len(cands):len(cands)], first)
			}
			next := ls.selectNext(b, cur, cands)
			if next < 0 {
				return nil, &MalformedError{Net: n.ID, Stroke: -1, Err: ErrDeadEnd}
			}
			if next == first {
				ls.Edges[cur].Next = first
				break
			}
			used[next] = true
			take(v, next)
			ls.Edges[cur].Next = next
			cur = next
			count++
		}

		area := ls.signedArea(b, first, count)
		ls.Loops = append(ls.Loops, Loop{
			First: first,
			Len:   count,
			Area:  area,
			Hole:  area < 0,
		})
	}
	return ls, nil
}

// selectNext applies the turning rule at the end of half-edge in.
// It returns -1 if cands is empty.
func (ls *Loops) selectNext(b *Board, in int, cands []int) int {
	end := b.Pos(ls.End(in))
	back := angle(b.Pos(ls.Start(in)).Sub(end))
	twin := in ^ 1

	best, bestDiff := -1, math.Inf(1)
	for _, c := range cands {
		if c == twin {
			continue
		}
		dir := angle(b.Pos(ls.End(c)).Sub(end))
		diff := normalize(dir - back)
		if diff < bestDiff || diff == bestDiff && c < best {
			best, bestDiff = c, diff
		}
	}
	if best < 0 {
		for _, c := range cands {
			if c == twin {
				return twin
			}
		}
	}
	return best
}

func (ls *Loops) signedArea(b *Board, first, count int) float64 {
	var sum float64
	e := first
	for range count {
		p, q := b.Pos(ls.Start(e)), b.Pos(ls.End(e))
		sum += p.X*q.Y - q.X*p.Y
		e = ls.Edges[e].Next
	}
	return sum / 2
}

func angle(v vec.Vec2) float64 {
	return math.Atan2(v.Y, v.X)
}

// normalize maps a to the interval [0, 2π).
func normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}
