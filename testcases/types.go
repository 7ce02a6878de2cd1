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

// Package testcases provides example boards for tests, benchmarks and the
// preview tools.  Coordinates are in millimetres.
package testcases

import (
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/isolate/topology"
)

// Case is a named example board.
type Case struct {
	Name string // lowercase a-z and _ only

	// Build returns a new copy of the board, already partitioned into
	// nets.
	Build func() *topology.Board

	// Offset and ZCeiling are suggested pass settings.  Zero means the
	// default.
	Offset   float64
	ZCeiling float64
}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// polyline adds strokes between consecutive points.
func polyline(b *topology.Board, width float64, cap graphics.LineCapStyle, pts ...vec.Vec2) {
	for i := 1; i < len(pts); i++ {
		b.AddStroke(pts[i-1], pts[i], width, cap)
	}
}

// ring is like polyline, but also joins the last point to the first.
func ring(b *topology.Board, width float64, cap graphics.LineCapStyle, pts ...vec.Vec2) {
	polyline(b, width, cap, pts...)
	b.AddStroke(pts[len(pts)-1], pts[0], width, cap)
}

// partitioned finishes a board built by f.
func partitioned(f func(b *topology.Board)) func() *topology.Board {
	return func() *topology.Board {
		b := topology.NewBoard(0)
		f(b)
		b.Partition()
		return b
	}
}
