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

package pathopt

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// sums holds prefix sums of point coordinates, taken relative to the first
// point to limit cancellation.  Entry k covers points 0, ..., k-1.
type sums struct {
	origin           vec.Vec2
	pts              []vec.Vec2
	x, y, xx, xy, yy []float64
}

func newSums(pts []vec.Vec2) *sums {
	n := len(pts)
	s := &sums{
		pts: pts,
		x:   make([]float64, n+1),
		y:   make([]float64, n+1),
		xx:  make([]float64, n+1),
		xy:  make([]float64, n+1),
		yy:  make([]float64, n+1),
	}
	if n > 0 {
		s.origin = pts[0]
	}
	for k, p := range pts {
		d := p.Sub(s.origin)
		s.x[k+1] = s.x[k] + d.X
		s.y[k+1] = s.y[k] + d.Y
		s.xx[k+1] = s.xx[k] + d.X*d.X
		s.xy[k+1] = s.xy[k] + d.X*d.Y
		s.yy[k+1] = s.yy[k] + d.Y*d.Y
	}
	return s
}

// penalty returns the root mean square distance of points i, ..., j from
// the line through points i and j.  If the two end points coincide, the
// distance from that point is used.
func (s *sums) penalty(i, j int) float64 {
	m := float64(j - i + 1)
	x := s.x[j+1] - s.x[i]
	y := s.y[j+1] - s.y[i]
	xx := s.xx[j+1] - s.xx[i]
	xy := s.xy[j+1] - s.xy[i]
	yy := s.yy[j+1] - s.yy[i]

	a := s.pts[i].Sub(s.origin)
	b := s.pts[j].Sub(s.origin)
	d := b.Sub(a)
	l := d.Length()

	var sq float64
	if l == 0 {
		sq = xx + yy - 2*(a.X*x+a.Y*y) + m*(a.X*a.X+a.Y*a.Y)
	} else {
		nx, ny := -d.Y/l, d.X/l
		c := nx*a.X + ny*a.Y
		sq = nx*nx*xx + 2*nx*ny*xy + ny*ny*yy - 2*c*(nx*x+ny*y) + m*c*c
	}
	return math.Sqrt(max(sq, 0) / m)
}
