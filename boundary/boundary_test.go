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

package boundary

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/isolate/mosaic"
	"seehuhn.de/go/isolate/surface"
)

// rasterFromRows builds a raster from strings, one character per pixel.
// '.' is background, other characters are labels.
func rasterFromRows(rows ...string) *mosaic.Raster {
	r := mosaic.NewRaster(len(rows[0]), len(rows), vec.Vec2{}, 1)
	for y, row := range rows {
		for x, c := range row {
			if c != '.' {
				r.Set(x, y, surface.Label(c))
			}
		}
	}
	return r
}

type edgeKey struct {
	x0, y0, x1, y1 int
}

func keyOf(a, b *Node) edgeKey {
	if a.Y > b.Y || a.Y == b.Y && a.X > b.X {
		a, b = b, a
	}
	return edgeKey{a.X, a.Y, b.X, b.Y}
}

// checkDecomposition verifies that the paths use every edge of the graph
// exactly once, and that consecutive path nodes are lattice neighbours.
func checkDecomposition(t *testing.T, edges int, paths []RawPath) {
	t.Helper()
	seen := make(map[edgeKey]bool)
	total := 0
	for i, p := range paths {
		if len(p) < 2 {
			t.Errorf("path %d has %d nodes", i, len(p))
		}
		total += p.Edges()
		for k := 1; k < len(p); k++ {
			a, b := p[k-1], p[k]
			dx, dy := b.X-a.X, b.Y-a.Y
			if dx*dx+dy*dy != 1 {
				t.Errorf("path %d: nodes (%d,%d) and (%d,%d) are not adjacent", i, a.X, a.Y, b.X, b.Y)
			}
			key := keyOf(a, b)
			if seen[key] {
				t.Errorf("path %d: edge %v used twice", i, key)
			}
			seen[key] = true
		}
	}
	if total != edges {
		t.Errorf("paths use %d edges, graph has %d", total, edges)
	}
}

func TestRectangle(t *testing.T) {
	r := rasterFromRows(
		"......",
		".aaa..",
		".aaa..",
		"......",
		"......",
	)
	g, err := Extract(context.Background(), r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Edges != 10 {
		t.Errorf("got %d edges, want 10", g.Edges)
	}
	if len(g.Nodes) != 10 {
		t.Errorf("got %d nodes, want 10", len(g.Nodes))
	}
	for i := 1; i < len(g.Nodes); i++ {
		a, b := g.Nodes[i-1], g.Nodes[i]
		if a.Y > b.Y || a.Y == b.Y && a.X >= b.X {
			t.Errorf("nodes %d and %d are not in row-major order", i-1, i)
		}
	}
	for _, n := range g.Nodes {
		if n.Locked || n.Degree() != 2 {
			t.Errorf("node (%d,%d): degree %d, locked %t", n.X, n.Y, n.Degree(), n.Locked)
		}
	}

	paths := Decompose(g)
	checkDecomposition(t, 10, paths)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	p := paths[0]
	if !p.Closed() {
		t.Error("rectangle border is not closed")
	}
	if p[0].X != 1 || p[0].Y != 1 {
		t.Errorf("path starts at (%d,%d), want the corner (1,1)", p[0].X, p[0].Y)
	}
	if p[1].X != 1 || p[1].Y != 2 {
		t.Errorf("path leaves the seed towards (%d,%d), want south", p[1].X, p[1].Y)
	}
	for _, n := range g.Nodes {
		if n.Degree() != 0 {
			t.Error("decomposition left edges in the graph")
		}
	}
}

func TestJunctions(t *testing.T) {
	r := rasterFromRows(
		"......",
		".aabb.",
		".aabb.",
		".ccdd.",
		".ccdd.",
		"......",
	)
	g, err := Extract(context.Background(), r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	locked := make(map[[2]int]int)
	for _, n := range g.Nodes {
		if n.Locked {
			locked[[2]int{n.X, n.Y}] = n.Degree()
		}
	}
	want := map[[2]int]int{
		{3, 1}: 3, {1, 3}: 3, {5, 3}: 3, {3, 5}: 3,
		{3, 3}: 4,
	}
	if len(locked) != len(want) {
		t.Errorf("got junctions %v, want %v", locked, want)
	}
	for k, d := range want {
		if locked[k] != d {
			t.Errorf("junction %v: degree %d, want %d", k, locked[k], d)
		}
	}

	edges := g.Edges
	checkDecomposition(t, edges, Decompose(g))
}

func TestIgnore(t *testing.T) {
	r := rasterFromRows(
		"....",
		".n..",
		"..a.",
		"....",
	)
	g, err := Extract(context.Background(), r, Options{Ignore: []surface.Label{'n'}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Edges != 4 {
		t.Errorf("got %d edges, want 4", g.Edges)
	}

	g, err = Extract(context.Background(), r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Edges != 8 {
		t.Errorf("got %d edges, want 8", g.Edges)
	}
}

func TestRandomConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := range 20 {
		w, h := 5+rng.Intn(20), 5+rng.Intn(20)
		r := mosaic.NewRaster(w, h, vec.Vec2{}, 1)
		for i := range r.Pix {
			r.Pix[i] = surface.Label(rng.Intn(4))
		}
		g, err := Extract(context.Background(), r, Options{})
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range g.Nodes {
			for d, m := range n.Nbr {
				if m != nil && m.Nbr[Dir(d).Opposite()] != n {
					t.Fatalf("trial %d: asymmetric link at (%d,%d)", trial, n.X, n.Y)
				}
			}
		}
		checkDecomposition(t, g.Edges, Decompose(g))
	}
}

func TestExtractCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, rasterFromRows("a."), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestDirs(t *testing.T) {
	pairs := [][2]Dir{{North, South}, {West, East}}
	for _, p := range pairs {
		if p[0].Opposite() != p[1] || p[1].Opposite() != p[0] {
			t.Errorf("%v and %v are not opposite", p[0], p[1])
		}
	}
}
