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

package testcases

import (
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/isolate/topology"
)

// Rectangle is a single closed trace around a 10×6 rectangle, drawn with
// square caps, so that the copper has sharp corners.
var Rectangle = Case{
	Name: "rectangle",
	Build: partitioned(func(b *topology.Board) {
		ring(b, 0.5, graphics.LineCapSquare,
			pt(0, 0), pt(10, 0), pt(10, 6), pt(0, 6))
	}),
	Offset:   0.2,
	ZCeiling: 1,
}

var traceCases = []Case{
	Rectangle,
	{
		Name: "t_junction",
		Build: partitioned(func(b *topology.Board) {
			polyline(b, 0.4, graphics.LineCapRound, pt(0, 0), pt(5, 0), pt(10, 0))
			polyline(b, 0.4, graphics.LineCapRound, pt(5, 0), pt(5, 5))
		}),
	},
	{
		Name: "cross",
		Build: partitioned(func(b *topology.Board) {
			for _, end := range []struct{ x, y float64 }{{5, 0}, {0, 5}, {-5, 0}, {0, -5}} {
				b.AddStroke(pt(0, 0), pt(end.x, end.y), 0.4, graphics.LineCapRound)
			}
		}),
	},
	{
		Name: "zigzag",
		Build: partitioned(func(b *topology.Board) {
			polyline(b, 0.3, graphics.LineCapRound,
				pt(0, 0), pt(3, 2), pt(6, 0), pt(9, 2), pt(12, 0))
		}),
	},
	{
		Name: "parallel",
		Build: partitioned(func(b *topology.Board) {
			polyline(b, 0.3, graphics.LineCapRound, pt(0, 0), pt(10, 0))
			polyline(b, 0.3, graphics.LineCapRound, pt(0, 1), pt(10, 1))
			polyline(b, 0.3, graphics.LineCapButt, pt(0, 2.5), pt(10, 2.5))
		}),
		Offset:   0.3,
		ZCeiling: 1,
	},
	{
		Name: "nested",
		Build: partitioned(func(b *topology.Board) {
			ring(b, 0.4, graphics.LineCapRound,
				pt(0, 0), pt(8, 0), pt(8, 8), pt(0, 8))
			ring(b, 0.4, graphics.LineCapRound,
				pt(3, 3), pt(5, 3), pt(5, 5), pt(3, 5))
		}),
		ZCeiling: 1.5,
	},
}
