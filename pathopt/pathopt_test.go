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

package pathopt

import (
	"math"
	"math/rand"
	"testing"

	"seehuhn.de/go/geom/vec"
)

// lattice converts integer coordinate pairs into points.
func lattice(xy ...int) []vec.Vec2 {
	pts := make([]vec.Vec2, len(xy)/2)
	for i := range pts {
		pts[i] = vec.Vec2{X: float64(xy[2*i]), Y: float64(xy[2*i+1])}
	}
	return pts
}

// rectangle returns the closed lattice border of a w×h rectangle, starting
// and ending at the origin.
func rectangle(w, h int) []vec.Vec2 {
	var pts []vec.Vec2
	add := func(x, y int) { pts = append(pts, vec.Vec2{X: float64(x), Y: float64(y)}) }
	for y := 0; y < h; y++ {
		add(0, y)
	}
	for x := 0; x < w; x++ {
		add(x, h)
	}
	for y := h; y > 0; y-- {
		add(w, y)
	}
	for x := w; x >= 0; x-- {
		add(x, 0)
	}
	return pts
}

// randomWalk returns a lattice path without immediate reversals.
func randomWalk(rng *rand.Rand, n int) []vec.Vec2 {
	steps := [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	pts := make([]vec.Vec2, n)
	x, y, last := 0, 0, 0
	for i := range pts {
		pts[i] = vec.Vec2{X: float64(x), Y: float64(y)}
		d := rng.Intn(4)
		if i > 0 && d == (last+2)%4 {
			d = last
		}
		// prefer going straight, to get long runs
		if rng.Intn(3) > 0 {
			d = last
		}
		x, y, last = x+steps[d][0], y+steps[d][1], d
	}
	return pts
}

func TestShortInput(t *testing.T) {
	if res := Optimize(nil, 0.5); len(res) != 0 {
		t.Errorf("empty input: got %v", res)
	}
	if res := Optimize(lattice(3, 4), 0.5); len(res) != 0 {
		t.Errorf("single point: got %v", res)
	}
	res := Optimize(lattice(0, 0, 1, 0), 0.5)
	if len(res) != 2 {
		t.Errorf("two points: got %v", res)
	}
}

func TestCollinear(t *testing.T) {
	cases := [][]vec.Vec2{
		lattice(0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0),
		lattice(0, 0, 0, -1, 0, -2, 0, -3),
		lattice(0, 0, 1, 2, 2, 4, 3, 6, 4, 8, 5, 10, 6, 12),
		{{X: 0.1, Y: 0.3}, {X: 0.4, Y: 0.6}, {X: 0.7, Y: 0.9}, {X: 1.0, Y: 1.2}},
	}
	for k, pts := range cases {
		for _, tol := range []float64{0, 0.1, 0.5} {
			res := Optimize(pts, tol)
			if len(res) != 2 {
				t.Errorf("case %d, tolerance %g: got %d segments, want 1", k, tol, len(res)-1)
				continue
			}
			if res[0] != pts[0] || res[1] != pts[len(pts)-1] {
				t.Errorf("case %d: end points changed", k)
			}
		}
	}
}

func TestStaircase(t *testing.T) {
	var xy []int
	for k := range 6 {
		xy = append(xy, k, k, k+1, k)
	}
	xy = append(xy, 6, 6)
	pts := lattice(xy...)

	if res := Optimize(pts, 0.6); len(res) != 2 {
		t.Errorf("got %d segments, want 1", len(res)-1)
	}
	if res := Optimize(pts, 0.1); len(res) != len(pts) {
		t.Errorf("small tolerance: got %d points, want all %d", len(res), len(pts))
	}
}

func TestRectangle(t *testing.T) {
	pts := rectangle(7, 4)
	res := Optimize(pts, 0.5)
	want := lattice(0, 0, 0, 4, 7, 4, 7, 0, 0, 0)
	if len(res) != len(want) {
		t.Fatalf("got %v, want %v", res, want)
	}
	for i := range want {
		if res[i] != want[i] {
			t.Errorf("vertex %d: got %v, want %v", i, res[i], want[i])
		}
	}

	// the sides one at a time
	sides := [][]vec.Vec2{
		lattice(0, 0, 0, 1, 0, 2, 0, 3, 0, 4),
		lattice(0, 4, 1, 4, 2, 4, 3, 4, 4, 4, 5, 4, 6, 4, 7, 4),
	}
	for k, side := range sides {
		if res := Optimize(side, 0.5); len(res) != 2 {
			t.Errorf("side %d: got %d segments, want 1", k, len(res)-1)
		}
	}
}

func TestVisibilityIsForward(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for range 20 {
		pts := randomWalk(rng, 10+rng.Intn(60))
		adj := Visibility(pts, 0.5)
		for i, fwd := range adj {
			if len(fwd) == 0 && i < len(pts)-1 {
				t.Fatalf("point %d has no successor", i)
			}
			if len(fwd) > 0 && fwd[0] != i+1 {
				t.Fatalf("point %d: first successor %d", i, fwd[0])
			}
			for k, j := range fwd {
				if j <= i || k > 0 && j <= fwd[k-1] {
					t.Fatalf("point %d: bad successor list %v", i, fwd)
				}
			}
		}
	}
}

// TestSegmentsWithinTolerance checks that every chosen segment points
// through the tolerance square of each point it replaces.
func TestSegmentsWithinTolerance(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const tol = 0.5
	for range 20 {
		pts := randomWalk(rng, 80)
		idx := Simplify(pts, tol)
		for k := 1; k < len(idx); k++ {
			a, b := pts[idx[k-1]], pts[idx[k]]
			for i := idx[k-1] + 1; i < idx[k]; i++ {
				if !rayHitsSquare(a, b, pts[i], tol) {
					t.Fatalf("segment %v-%v misses point %v", a, b, pts[i])
				}
			}
		}
	}
}

// rayHitsSquare reports whether the ray from a through b meets the square
// of half-width tol around p.
func rayHitsSquare(a, b, p vec.Vec2, tol float64) bool {
	const eps = 1e-6
	d := b.Sub(a)
	lo, hi := 0.0, math.Inf(1)
	for _, axis := range [2][3]float64{{a.X, d.X, p.X}, {a.Y, d.Y, p.Y}} {
		start, dir, centre := axis[0], axis[1], axis[2]
		left, right := centre-tol-eps, centre+tol+eps
		if dir == 0 {
			if start < left || start > right {
				return false
			}
			continue
		}
		t0, t1 := (left-start)/dir, (right-start)/dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		lo = max(lo, t0)
		hi = min(hi, t1)
	}
	return lo <= hi
}

func TestToleranceMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for range 20 {
		pts := randomWalk(rng, 100)
		prev := math.MaxInt
		for _, tol := range []float64{0, 0.25, 0.5, 0.75, 1, 2} {
			n := len(Simplify(pts, tol)) - 1
			if n > prev {
				t.Fatalf("tolerance %g: %d segments, more than %d", tol, n, prev)
			}
			prev = n
		}
	}
}

// TestMinimalPenalty compares against exhaustive search on small inputs.
func TestMinimalPenalty(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for trial := range 30 {
		pts := randomWalk(rng, 6+rng.Intn(8))
		const tol = 0.5
		adj := Visibility(pts, tol)
		hops := MinHops(adj)
		s := newSums(pts)

		bestHops, bestWeight := math.MaxInt, math.Inf(1)
		var search func(i, h int, w float64)
		search = func(i, h int, w float64) {
			if i == len(pts)-1 {
				if h < bestHops || h == bestHops && w < bestWeight-1e-12 {
					bestHops, bestWeight = h, w
				}
				return
			}
			for _, j := range adj[i] {
				search(j, h+1, w+s.penalty(i, j))
			}
		}
		search(0, 0, 0)

		idx := Simplify(pts, tol)
		if len(idx)-1 != bestHops || hops[len(pts)-1] != bestHops {
			t.Fatalf("trial %d: got %d segments, want %d", trial, len(idx)-1, bestHops)
		}
		w := 0.0
		for k := 1; k < len(idx); k++ {
			w += s.penalty(idx[k-1], idx[k])
		}
		if math.Abs(w-bestWeight) > 1e-9 {
			t.Errorf("trial %d: penalty %g, want %g", trial, w, bestWeight)
		}
	}
}

func TestPenalty(t *testing.T) {
	pts := lattice(0, 0, 1, 1, 2, -1, 3, 0, 3, 0)
	s := newSums(pts)

	// points 0..3 lie at distances 0, 1, 1, 0 from the x-axis
	if got, want := s.penalty(0, 3), math.Sqrt(2.0/4); math.Abs(got-want) > 1e-9 {
		t.Errorf("penalty(0, 3) = %g, want %g", got, want)
	}
	if got := s.penalty(1, 2); got > 1e-6 {
		t.Errorf("penalty of a single segment = %g", got)
	}
	// coinciding end points measure the distance to that point
	if got, want := s.penalty(3, 4), 0.0; got != want {
		t.Errorf("penalty(3, 4) = %g, want %g", got, want)
	}
}

func TestMinHopsUnreachable(t *testing.T) {
	hops := MinHops([][]int{{1}, nil, nil})
	want := []int{0, 1, -1}
	for i := range want {
		if hops[i] != want[i] {
			t.Errorf("hops = %v, want %v", hops, want)
			break
		}
	}
}

func BenchmarkOptimize(b *testing.B) {
	rng := rand.New(rand.NewSource(6))
	pts := randomWalk(rng, 2000)
	for b.Loop() {
		Optimize(pts, 0.5)
	}
}
