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

// Groups is a union-find structure over integer IDs.  IDs which were never
// mentioned are singletons.
type Groups struct {
	parent map[int]int
	size   map[int]int
}

// NewGroups returns an empty Groups value where every ID is its own group.
func NewGroups() *Groups {
	return &Groups{
		parent: make(map[int]int),
		size:   make(map[int]int),
	}
}

// Find returns the representative of the group containing id.
func (g *Groups) Find(id int) int {
	root := id
	for {
		p, ok := g.parent[root]
		if !ok || p == root {
			break
		}
		root = p
	}
	// path compression
	for id != root {
		next := g.parent[id]
		g.parent[id] = root
		id = next
	}
	return root
}

// Union merges the groups containing a and b and returns the new
// representative.  The smaller group is attached below the larger one;
// on equal sizes the lower representative wins.
func (g *Groups) Union(a, b int) int {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return ra
	}
	sa, sb := g.groupSize(ra), g.groupSize(rb)
	if sa < sb || (sa == sb && rb < ra) {
		ra, rb = rb, ra
		sa, sb = sb, sa
	}
	g.parent[rb] = ra
	g.parent[ra] = ra
	g.size[ra] = sa + sb
	delete(g.size, rb)
	return ra
}

// Same reports whether a and b are in the same group.
func (g *Groups) Same(a, b int) bool {
	return g.Find(a) == g.Find(b)
}

func (g *Groups) groupSize(root int) int {
	if s, ok := g.size[root]; ok {
		return s
	}
	return 1
}
