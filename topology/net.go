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

// Net is a maximal set of strokes and pads connected through shared
// vertices.
type Net struct {
	// ID is the index of the net in Board.Nets.
	ID int

	Strokes []*Stroke
	Pads    []*Pad

	// Offset is the tool radius used for this net.  Zero selects the
	// default of the toolpath pass.
	Offset float64

	// ZCeiling caps the distance represented by the net's cone surface.
	// Zero selects the default of the toolpath pass.
	ZCeiling float64
}

// Partition splits the strokes and pads of the board into nets, replacing
// any previous partition.  Two actions belong to the same net if they are
// linked by a chain of shared vertices.  Nets are numbered in order of
// their first stroke (or pad, for nets without strokes), so that the
// result does not depend on map iteration order.
//
// Partition resets Board.Groups and advances the board's Epoch.
func (b *Board) Partition() []*Net {
	uf := NewGroups()
	key := make(map[*Vertex]int)
	id := func(v *Vertex) int {
		k, ok := key[v]
		if !ok {
			k = len(key)
			key[v] = k
		}
		return k
	}
	for _, s := range b.Strokes {
		uf.Union(id(s.From), id(s.To))
	}
	for _, p := range b.Pads {
		id(p.At)
	}

	netOf := make(map[int]*Net)
	var nets []*Net
	lookup := func(v *Vertex) *Net {
		root := uf.Find(key[v])
		n, ok := netOf[root]
		if !ok {
			n = &Net{ID: len(nets)}
			netOf[root] = n
			nets = append(nets, n)
		}
		return n
	}
	for _, s := range b.Strokes {
		n := lookup(s.From)
		s.Net = n.ID
		n.Strokes = append(n.Strokes, s)
	}
	for _, p := range b.Pads {
		n := lookup(p.At)
		p.Net = n.ID
		n.Pads = append(n.Pads, p)
	}

	b.Nets = nets
	b.Groups = NewGroups()
	b.epoch++
	return nets
}

// Merge joins the nets with the given IDs into one super-net, which is
// rendered with a single label.  It returns the representative ID.
func (b *Board) Merge(ids ...int) int {
	if len(ids) == 0 {
		return -1
	}
	root := b.Groups.Find(ids[0])
	for _, id := range ids[1:] {
		root = b.Groups.Union(root, id)
	}
	return root
}
