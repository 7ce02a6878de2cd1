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

var mixedCases = []Case{
	{
		Name: "pads_and_traces",
		Build: partitioned(func(b *topology.Board) {
			b.AddPad(pt(0, 0), topology.PadCircle, 1.6, 0)
			b.AddPad(pt(7.62, 0), topology.PadRect, 1.6, 1.6)
			polyline(b, 0.4, graphics.LineCapRound, pt(0, 0), pt(2, 2), pt(5.62, 2), pt(7.62, 0))
			b.AddPad(pt(3.81, 0), topology.PadCircle, 1.6, 0)
		}),
	},
	{
		Name:  "dip8",
		Build: partitioned(dip8),
	},
	{
		// the same board, with the two supply nets milled as one
		Name: "dip8_merged",
		Build: func() *topology.Board {
			b := topology.NewBoard(0)
			dip8(b)
			nets := b.Partition()
			b.Merge(nets[0].ID, nets[len(nets)-1].ID)
			return b
		},
	},
}

// dip8 is an eight pin DIP footprint with a few traces leaving it.
func dip8(b *topology.Board) {
	const pitch, rows = 2.54, 7.62
	for i := range 4 {
		x := float64(i) * pitch
		shape := topology.PadCircle
		if i == 0 {
			shape = topology.PadRect
		}
		b.AddPad(pt(x, 0), shape, 1.6, 1.6)
		b.AddPad(pt(x, rows), topology.PadCircle, 1.6, 0)
	}
	polyline(b, 0.5, graphics.LineCapRound, pt(0, 0), pt(0, -3), pt(10, -3))
	polyline(b, 0.3, graphics.LineCapRound, pt(pitch, 0), pt(pitch, 1.5), pt(6, 1.5), pt(6, 4), pt(12, 4))
	polyline(b, 0.5, graphics.LineCapRound, pt(3*pitch, rows), pt(3*pitch, rows+3), pt(-2, rows+3))
}
