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

package raster

import (
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func totalCoverage(f *Filler, p path.Path) float64 {
	var sum float64
	f.FillNonZero(p, func(y, xMin int, coverage []float32) {
		for _, c := range coverage {
			sum += float64(c)
		}
	})
	return sum
}

func rectanglePath(x0, y0, x1, y1 float64) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		pts := []vec.Vec2{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
		if !yield(path.CmdMoveTo, pts[:1]) {
			return
		}
		for i := 1; i < 4; i++ {
			if !yield(path.CmdLineTo, pts[i:i+1]) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

func TestFillArea(t *testing.T) {
	clip := rect.Rect{URx: 64, URy: 64}
	cases := []struct {
		name string
		p    path.Path
		ctm  matrix.Matrix
		area float64
		tol  float64
	}{
		{"aligned", rectanglePath(10, 10, 20, 30), matrix.Identity, 200, 1e-3},
		{"fractional", rectanglePath(1.5, 1.5, 5.5, 4.5), matrix.Identity, 12, 1e-3},
		{"clipped", rectanglePath(-10, -10, 10, 10), matrix.Identity, 100, 1e-3},
		{"scaled", rectanglePath(1, 1, 3, 2), matrix.Scale(4, 4), 32, 1e-3},
		{"circle", makeOPath(32, 32, 20, 0), matrix.Identity, math.Pi * 400, 2},
		{"ring", makeOPath(32, 32, 20, 10), matrix.Identity, math.Pi * 300, 2},
	}
	f := NewFiller(clip)
	f.Flatness = 0.01
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.CTM = tc.ctm
			got := totalCoverage(f, tc.p)
			if math.Abs(got-tc.area) > tc.tol {
				t.Errorf("coverage sum = %g, want %g", got, tc.area)
			}
		})
	}
}

func TestFillRows(t *testing.T) {
	f := NewFiller(rect.Rect{URx: 16, URy: 16})
	rows := make(map[int][2]int)
	f.FillNonZero(rectanglePath(2, 3, 7, 5), func(y, xMin int, coverage []float32) {
		rows[y] = [2]int{xMin, len(coverage)}
		for i, c := range coverage {
			if c != 1 {
				t.Errorf("pixel (%d, %d) has coverage %g, want 1", xMin+i, y, c)
			}
		}
	})
	if len(rows) != 2 || rows[3] != [2]int{2, 5} || rows[4] != [2]int{2, 5} {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestFillPolygonOrientation(t *testing.T) {
	f := NewFiller(rect.Rect{URx: 16, URy: 16})
	ccw := []vec.Vec2{{X: 1, Y: 1}, {X: 9, Y: 1}, {X: 9, Y: 5}, {X: 1, Y: 5}}
	cw := []vec.Vec2{{X: 1, Y: 1}, {X: 1, Y: 5}, {X: 9, Y: 5}, {X: 9, Y: 1}}
	for _, poly := range [][]vec.Vec2{ccw, cw} {
		var sum float64
		f.FillPolygon(poly, func(y, xMin int, coverage []float32) {
			for _, c := range coverage {
				sum += float64(c)
			}
		})
		if math.Abs(sum-32) > 1e-3 {
			t.Errorf("coverage sum = %g, want 32", sum)
		}
	}
}
