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

// Package pathopt replaces a chain of raster points by a polyline with as
// few segments as possible, such that every segment passes within a given
// tolerance of the raster points it replaces.  Among all polylines with
// the minimal number of segments, the one which follows the raster points
// most closely is chosen.
//
// The method follows the polygon stage of potrace: straight candidates
// are found by intersecting angular sectors, a shortest path is taken in
// the resulting DAG, and ties are broken by a least-squares penalty
// computed from prefix sums.
package pathopt

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// node holds the per-point state of the optimization.
type node struct {
	p vec.Vec2

	// fwd lists the later points which can be reached by one straight
	// segment.
	fwd []int

	hops  int   // minimal number of segments from point 0
	preds []int // predecessors on minimal-hop paths

	weight float64 // minimal penalty over all minimal-hop paths
	best   int     // predecessor on the best path
}

// Optimize returns the simplified polyline for pts.  The first and last
// points are always kept.  For fewer than two points, the result is
// empty.
func Optimize(pts []vec.Vec2, tolerance float64) []vec.Vec2 {
	idx := Simplify(pts, tolerance)
	res := make([]vec.Vec2, len(idx))
	for k, i := range idx {
		res[k] = pts[i]
	}
	return res
}

// Simplify is like Optimize, but returns indices into pts.
func Simplify(pts []vec.Vec2, tolerance float64) []int {
	n := len(pts)
	if n < 2 {
		return nil
	}
	nodes := make([]node, n)
	for i, p := range pts {
		nodes[i].p = p
	}
	for i := range nodes {
		nodes[i].fwd = visible(pts, i, tolerance)
	}
	minHops(nodes)
	bestWeights(nodes, newSums(pts))

	var idx []int
	for i := n - 1; i != 0; i = nodes[i].best {
		idx = append(idx, i)
	}
	idx = append(idx, 0)
	for a, b := 0, len(idx)-1; a < b; a, b = a+1, b-1 {
		idx[a], idx[b] = idx[b], idx[a]
	}
	return idx
}

// Visibility returns the candidate graph of pts: entry i lists all j > i
// such that the segment from pts[i] to pts[j] passes within tolerance of
// all points strictly between them.
func Visibility(pts []vec.Vec2, tolerance float64) [][]int {
	res := make([][]int, len(pts))
	for i := range pts {
		res[i] = visible(pts, i, tolerance)
	}
	return res
}

// MinHops returns the minimal number of segments needed to reach each
// point from point 0 along the candidate graph adj.  Unreachable points
// get -1.
func MinHops(adj [][]int) []int {
	nodes := make([]node, len(adj))
	for i := range nodes {
		nodes[i].fwd = adj[i]
	}
	minHops(nodes)
	res := make([]int, len(nodes))
	for i, nd := range nodes {
		res[i] = nd.hops
		if nd.hops == unreachable {
			res[i] = -1
		}
	}
	return res
}

// visible computes the forward candidate edges of apex i.
//
// Each later point j constrains the directions of admissible segments to
// the angular interval covered by the square of half-width tolerance
// around pts[j].  The sector is the intersection of these intervals for
// the points passed so far.  Segment i→j is admissible if the direction to
// pts[j] lies in the sector of the points between i and j.  The scan ends
// once the sector is empty.
func visible(pts []vec.Vec2, i int, tolerance float64) []int {
	apex := pts[i]
	var fwd []int
	var s sector
	s.full = true
	for j := i + 1; j < len(pts); j++ {
		d := pts[j].Sub(apex)
		if d.X == 0 && d.Y == 0 {
			// a repeated point has no direction of its own
			if j == i+1 {
				fwd = append(fwd, j)
			}
			continue
		}
		if s.contains(d) {
			fwd = append(fwd, j)
		}
		lo, hi, ok := squareInterval(d, tolerance)
		if !ok {
			continue
		}
		if !s.intersect(d, lo, hi) {
			break
		}
	}
	return fwd
}

// sector is an interval of directions, stored as angles relative to the
// reference direction ref.
type sector struct {
	full   bool
	ref    float64
	lo, hi float64
}

func (s *sector) contains(d vec.Vec2) bool {
	if s.full {
		return true
	}
	a := math.Remainder(math.Atan2(d.Y, d.X)-s.ref, 2*math.Pi)
	return a >= s.lo-angleSlack && a <= s.hi+angleSlack
}

// intersect restricts s to the interval [lo, hi], given relative to the
// direction of c.  It reports whether the result is non-empty.
func (s *sector) intersect(c vec.Vec2, lo, hi float64) bool {
	base := math.Atan2(c.Y, c.X)
	if s.full {
		s.full = false
		s.ref = base
		s.lo, s.hi = lo, hi
		return true
	}
	shift := math.Remainder(base-s.ref, 2*math.Pi)
	s.lo = max(s.lo, shift+lo)
	s.hi = min(s.hi, shift+hi)
	return s.lo <= s.hi+angleSlack
}

// squareInterval returns the angles, relative to the direction of d, under
// which the square of half-width t around d is seen from the origin.  If
// the origin lies inside the square, every direction is possible and ok
// is false.
func squareInterval(d vec.Vec2, t float64) (lo, hi float64, ok bool) {
	if math.Abs(d.X) <= t && math.Abs(d.Y) <= t {
		return 0, 0, false
	}
	base := math.Atan2(d.Y, d.X)
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, sx := range [2]float64{-t, t} {
		for _, sy := range [2]float64{-t, t} {
			a := math.Atan2(d.Y+sy, d.X+sx) - base
			a = math.Remainder(a, 2*math.Pi)
			lo = min(lo, a)
			hi = max(hi, a)
		}
	}
	return lo, hi, true
}

const unreachable = math.MaxInt

// minHops computes hop counts and the sets of predecessors which realize
// them, processing nodes in index order.
func minHops(nodes []node) {
	for i := range nodes {
		nodes[i].hops = unreachable
		nodes[i].preds = nodes[i].preds[:0]
	}
	if len(nodes) == 0 {
		return
	}
	nodes[0].hops = 0
	for i := range nodes {
		if nodes[i].hops == unreachable {
			continue
		}
		h := nodes[i].hops + 1
		for _, j := range nodes[i].fwd {
			switch {
			case h < nodes[j].hops:
				nodes[j].hops = h
				nodes[j].preds = append(nodes[j].preds[:0], i)
			case h == nodes[j].hops:
				nodes[j].preds = append(nodes[j].preds, i)
			}
		}
	}
}

// bestWeights finds, for every node, the minimal-hop path with the
// smallest total penalty.
func bestWeights(nodes []node, s *sums) {
	nodes[0].weight = 0
	nodes[0].best = -1
	for j := 1; j < len(nodes); j++ {
		nodes[j].weight = math.Inf(1)
		nodes[j].best = -1
		for _, i := range nodes[j].preds {
			w := nodes[i].weight + s.penalty(i, j)
			if w < nodes[j].weight {
				nodes[j].weight = w
				nodes[j].best = i
			}
		}
	}
}

// angleSlack absorbs rounding errors in angle comparisons.
const angleSlack = 1e-9
