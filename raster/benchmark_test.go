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
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/isolate/surface"
	"seehuhn.de/go/isolate/topology"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// quarterArcs returns the start point and the control points of the four
// cubic arcs of a circle.  Clockwise circles run through the quadrants in
// reverse order.
func quarterArcs(cx, cy, r float64, clockwise bool) (vec.Vec2, [4][3]vec.Vec2) {
	dirs := [5]vec.Vec2{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}, {X: 1}}
	if clockwise {
		dirs = [5]vec.Vec2{{X: 1}, {Y: -1}, {X: -1}, {Y: 1}, {X: 1}}
	}
	c := vec.Vec2{X: cx, Y: cy}
	var arcs [4][3]vec.Vec2
	for i := range 4 {
		a, b := dirs[i], dirs[i+1]
		arcs[i] = [3]vec.Vec2{
			c.Add(a.Mul(r)).Add(b.Mul(kappa * r)),
			c.Add(b.Mul(r)).Add(a.Mul(kappa * r)),
			c.Add(b.Mul(r)),
		}
	}
	return c.Add(dirs[0].Mul(r)), arcs
}

// makeOPath returns an annulus as a path: the outer circle runs
// counter-clockwise, the inner one clockwise.  An inner radius of zero
// gives a disc.
func makeOPath(cx, cy, outerR, innerR float64) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		circle := func(r float64, clockwise bool) bool {
			start, arcs := quarterArcs(cx, cy, r, clockwise)
			if !yield(path.CmdMoveTo, []vec.Vec2{start}) {
				return false
			}
			for _, a := range arcs {
				if !yield(path.CmdCubeTo, a[:]) {
					return false
				}
			}
			return yield(path.CmdClose, nil)
		}
		if !circle(outerR, false) {
			return
		}
		if innerR > 0 {
			circle(innerR, true)
		}
	}
}

func BenchmarkFillerPad(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			f := NewFiller(rect.Rect{URx: float64(size), URy: float64(size)})
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			c := float64(size) / 2
			pad := makeOPath(c, c, float64(size)*0.45, float64(size)*0.30)

			b.ReportAllocs()
			for b.Loop() {
				f.FillNonZero(pad, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, cov := range coverage {
						row[i] = uint8(cov * 255)
					}
				})
			}
		})
	}
}

func BenchmarkVectorPad(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{A: 255})
			c := float64(size) / 2

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(size, size)
				addCircleToVector(r, c, c, float64(size)*0.45, false)
				addCircleToVector(r, c, c, float64(size)*0.30, true)
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

func addCircleToVector(r *vector.Rasterizer, cx, cy, radius float64, clockwise bool) {
	start, arcs := quarterArcs(cx, cy, radius, clockwise)
	r.MoveTo(float32(start.X), float32(start.Y))
	for _, a := range arcs {
		r.CubeTo(
			float32(a[0].X), float32(a[0].Y),
			float32(a[1].X), float32(a[1].Y),
			float32(a[2].X), float32(a[2].Y))
	}
	r.ClosePath()
}

func BenchmarkRenderCones(b *testing.B) {
	board := topology.NewBoard(0.001)
	for i := range 10 {
		y := float64(i)
		board.AddStroke(vec.Vec2{X: 0, Y: y}, vec.Vec2{X: 8, Y: y + 0.5}, 0.3, graphics.LineCapRound)
	}
	board.Partition()
	scene := surface.Build(board, surface.Params{Offset: 0.2, ZCeiling: 1, Flatness: 0.01}, nil)
	cam := surface.Camera{
		Center: vec.Vec2{X: 4, Y: 5},
		Size:   vec.Vec2{X: 12, Y: 12},
		Width:  600,
		Height: 600,
	}
	r := NewRenderer()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := r.Render(context.Background(), scene, cam); err != nil {
			b.Fatal(err)
		}
	}
}
