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

// Package boundary finds the borders between differently labelled regions
// of a label raster and splits them into paths.
//
// Borders are represented by a graph on the pixel-corner lattice: lattice
// point (x, y) is the top-left corner of pixel (x, y), and y grows
// downwards as in the raster.
package boundary

import (
	"context"

	"seehuhn.de/go/isolate/mosaic"
	"seehuhn.de/go/isolate/surface"
)

// Dir is a lattice direction.  The numeric order North, South, West, East
// is the priority order used when a choice has to be made.
type Dir int

// These are the four lattice directions.  North points to smaller y.
const (
	North Dir = iota
	South
	West
	East
)

// Opposite returns the reverse direction.
func (d Dir) Opposite() Dir {
	return d ^ 1
}

func (d Dir) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case West:
		return "W"
	case East:
		return "E"
	default:
		return "?"
	}
}

// Node is a lattice point where pixels with different labels meet.
type Node struct {
	X, Y int

	// Nbr holds the lattice neighbours connected by a border edge,
	// indexed by direction.  Links are always symmetric.
	Nbr [4]*Node

	// Locked is set on junctions, where three or four border edges meet.
	// It is informational: Decompose walks straight through a junction
	// where it can and stops there otherwise, with or without the flag.
	Locked bool
}

// Degree returns the number of border edges at n.
func (n *Node) Degree() int {
	k := 0
	for _, m := range n.Nbr {
		if m != nil {
			k++
		}
	}
	return k
}

func link(a, b *Node, d Dir) {
	a.Nbr[d] = b
	b.Nbr[d.Opposite()] = a
}

func unlink(a *Node, d Dir) {
	b := a.Nbr[d]
	a.Nbr[d] = nil
	b.Nbr[d.Opposite()] = nil
}

// Graph is the border graph of a raster.
type Graph struct {
	// Nodes lists all nodes in row-major lattice order.
	Nodes []*Node

	// Edges is the number of border edges.
	Edges int
}

// Options controls border extraction.
type Options struct {
	// Background is the label of unclaimed pixels.
	Background surface.Label

	// Ignore lists further labels which are treated as background.
	Ignore []surface.Label
}

// Extract builds the border graph of r.  A pixel whose label differs from
// its west neighbour gives a vertical edge along its left side; a pixel
// whose label differs from its north neighbour gives a horizontal edge
// along its top side.  Pixels outside the raster count as background, so
// that borders are always closed.
//
// Nodes are kept in two lattice rows, which are recycled as the scan moves
// down.  Cancellation is checked once per row.
func Extract(ctx context.Context, r *mosaic.Raster, opt Options) (*Graph, error) {
	ignore := make(map[surface.Label]bool, len(opt.Ignore))
	for _, l := range opt.Ignore {
		ignore[l] = true
	}
	label := func(x, y int) surface.Label {
		l := r.At(x, y)
		if l == opt.Background || ignore[l] {
			return surface.Background
		}
		return l
	}

	w, h := r.Width, r.Height
	g := &Graph{}
	cur := make([]*Node, w+1) // lattice row y
	nxt := make([]*Node, w+1) // lattice row y+1
	get := func(row []*Node, x, y int) *Node {
		n := row[x]
		if n == nil {
			n = &Node{X: x, Y: y}
			row[x] = n
		}
		return n
	}

	for y := 0; y <= h; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x <= w; x++ {
			l := label(x, y)
			if y < h && l != label(x-1, y) {
				link(get(cur, x, y), get(nxt, x, y+1), South)
				g.Edges++
			}
			if x < w && l != label(x, y-1) {
				link(get(cur, x, y), get(cur, x+1, y), East)
				g.Edges++
			}
		}

		for x, n := range cur {
			if n == nil {
				continue
			}
			n.Locked = n.Degree() >= 3
			g.Nodes = append(g.Nodes, n)
			cur[x] = nil
		}
		cur, nxt = nxt, cur
	}
	return g, nil
}
