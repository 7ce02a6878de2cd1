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

import "seehuhn.de/go/isolate/topology"

// TwoSquares has two square pads of side 1, 0.3 apart.  With the
// suggested offset of 0.2 the gap is smaller than two offsets, so the
// isolation between the pads is a single border half way between them.
var TwoSquares = Case{
	Name: "two_squares",
	Build: partitioned(func(b *topology.Board) {
		b.AddPad(pt(0, 0), topology.PadRect, 1, 1)
		b.AddPad(pt(1.3, 0), topology.PadRect, 1, 1)
	}),
	Offset:   0.2,
	ZCeiling: 0.5,
}

var padCases = []Case{
	TwoSquares,
	{
		Name: "pad_row",
		Build: partitioned(func(b *topology.Board) {
			for i := range 4 {
				b.AddPad(pt(float64(i)*2.54, 0), topology.PadCircle, 1.6, 0)
			}
		}),
	},
	{
		Name: "obround",
		Build: partitioned(func(b *topology.Board) {
			b.AddPad(pt(0, 0), topology.PadObround, 2.4, 1.2)
			b.AddPad(pt(0, 2.2), topology.PadObround, 2.4, 1.2)
			b.AddPad(pt(3, 1.1), topology.PadObround, 1.2, 3.4)
		}),
	},
}
