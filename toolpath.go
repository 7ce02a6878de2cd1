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

package isolate

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Toolpath is a polyline in board units.  The tool travels to the first
// point with the pen up, and then cuts along the remaining points.
type Toolpath struct {
	Points []vec.Vec2
}

// Path returns the toolpath as a path: a MoveTo for the travel to the
// first point, followed by one LineTo per cut.
func (t Toolpath) Path() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [1]vec.Vec2
		for i, p := range t.Points {
			cmd := path.CmdLineTo
			if i == 0 {
				cmd = path.CmdMoveTo
			}
			buf[0] = p
			if !yield(cmd, buf[:]) {
				return
			}
		}
	}
}

// Closed reports whether the toolpath ends where it starts.
func (t Toolpath) Closed() bool {
	n := len(t.Points)
	return n > 2 && t.Points[0] == t.Points[n-1]
}

// Length returns the cutting length of the toolpath.
func (t Toolpath) Length() float64 {
	var l float64
	for i := 1; i < len(t.Points); i++ {
		l += t.Points[i].Sub(t.Points[i-1]).Length()
	}
	return l
}
