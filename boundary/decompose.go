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

import "slices"

// RawPath is a chain of lattice-adjacent border nodes.  A closed path
// starts and ends with the same node.
type RawPath []*Node

// Edges returns the number of border edges along p.
func (p RawPath) Edges() int {
	return max(len(p)-1, 0)
}

// Closed reports whether p returns to its first node.
func (p RawPath) Closed() bool {
	return len(p) > 2 && p[0] == p[len(p)-1]
}

// Decompose splits the border graph into paths, using every edge exactly
// once.  The graph is consumed: all links are removed.
//
// This is a greedy decomposition.  Seeds are taken in row-major order,
// which makes a closed border start at its top-left corner.  From the seed
// the path is grown in both directions.  A walk keeps its direction while
// it can; otherwise it turns to the only remaining neighbour, and it stops
// where no neighbour or more than one remains.  Seeds with three edges
// extend along their straight pair, seeds with four along North/South.
// The result can contain more paths than an optimal decomposition.
func Decompose(g *Graph) []RawPath {
	var paths []RawPath
	next := 0
	for {
		for next < len(g.Nodes) && g.Nodes[next].Degree() == 0 {
			next++
		}
		if next == len(g.Nodes) {
			return paths
		}
		seed := g.Nodes[next]

		fwd, bwd, ok := seedDirs(seed)
		forward := walk(seed, fwd)
		var backward RawPath
		if ok && seed.Nbr[bwd] != nil {
			backward = walk(seed, bwd)
		}

		p := make(RawPath, 0, len(backward)+1+len(forward))
		for _, n := range slices.Backward(backward) {
			p = append(p, n)
		}
		p = append(p, seed)
		p = append(p, forward...)
		paths = append(paths, p)
	}
}

// seedDirs returns the directions in which a path grows from a seed.  If
// ok is false, the path grows in direction fwd only.
func seedDirs(n *Node) (fwd, bwd Dir, ok bool) {
	var dirs []Dir
	for d := North; d <= East; d++ {
		if n.Nbr[d] != nil {
			dirs = append(dirs, d)
		}
	}
	switch len(dirs) {
	case 1:
		return dirs[0], 0, false
	case 2:
		return dirs[0], dirs[1], true
	case 3:
		if n.Nbr[North] != nil && n.Nbr[South] != nil {
			return North, South, true
		}
		return West, East, true
	default:
		return North, South, true
	}
}

// walk follows border edges from start, beginning in direction d, and
// removes them from the graph.  The returned nodes exclude start.
func walk(start *Node, d Dir) RawPath {
	var p RawPath
	cur := start
	for {
		if cur.Nbr[d] == nil {
			var ok bool
			d, ok = onlyDir(cur)
			if !ok {
				return p
			}
		}
		nb := cur.Nbr[d]
		unlink(cur, d)
		p = append(p, nb)
		cur = nb
	}
}

// onlyDir returns the direction of the single remaining edge at n.
func onlyDir(n *Node) (Dir, bool) {
	found := Dir(-1)
	for d := North; d <= East; d++ {
		if n.Nbr[d] == nil {
			continue
		}
		if found >= 0 {
			return 0, false
		}
		found = d
	}
	return found, found >= 0
}
