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
	"sync"

	"seehuhn.de/go/isolate/topology"
)

// Key lists everything the geometry of a net surface depends on, apart
// from the net itself.
type Key struct {
	Net      int
	Offset   float64
	ZCeiling float64
	Flatness float64
	Mode     Mode
}

// keyFor resolves the per-net defaults of p for net n.
func (p Params) keyFor(n *topology.Net) Key {
	k := Key{
		Net:      n.ID,
		Offset:   p.Offset,
		ZCeiling: p.ZCeiling,
		Flatness: p.Flatness,
		Mode:     p.Mode,
	}
	if n.Offset > 0 {
		k.Offset = n.Offset
	}
	if n.ZCeiling > 0 {
		k.ZCeiling = n.ZCeiling
	}
	if k.Flatness <= 0 {
		k.Flatness = defaultFlatness
	}
	return k
}

// Cache memoizes net surfaces between passes.  The owner of the board
// must call Invalidate or Reset after changing the geometry of a net.
// The cache empties itself when it is used with a different board, or
// after the board has been partitioned again, since net IDs are then
// reassigned.
//
// A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*Surface
	board   *topology.Board
	epoch   uint64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*Surface)}
}

// bind attaches the cache to the current partition of b.
func (c *Cache) bind(b *topology.Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.board != b || c.epoch != b.Epoch() {
		clear(c.entries)
		c.board = b
		c.epoch = b.Epoch()
	}
}

func (c *Cache) get(k Key) *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[k]
}

func (c *Cache) put(k Key, s *Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = s
}

// Invalidate drops all entries for the given net.
func (c *Cache) Invalidate(netID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Net == netID {
			delete(c.entries, k)
		}
	}
}

// Reset drops all entries.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of cached surfaces.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// defaultFlatness is used when Params.Flatness is not set, in board units.
const defaultFlatness = 0.005
