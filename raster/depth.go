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
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/isolate/surface"
)

// ErrViewport is returned for cameras with an empty image or view area.
var ErrViewport = errors.New("invalid viewport")

// Renderer draws surface scenes with a depth test: at every pixel the
// highest surface wins.  Cone triangles are drawn conservatively, so that
// every pixel touched by a triangle receives a height.  Copper fills and
// strokes cover the pixels which are at least half inside.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	fill  *Filler
	depth []float64
}

// NewRenderer returns a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{fill: NewFiller(rect.Rect{})}
}

// Render draws the scene as seen by the camera.  Pixels not covered by
// any surface are set to the background label.  The image is opaque.
func (r *Renderer) Render(ctx context.Context, scene *surface.Scene, cam surface.Camera) (*image.RGBA, error) {
	w, h := cam.Width, cam.Height
	if w <= 0 || h <= 0 || cam.Size.X <= 0 || cam.Size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d pixels for %gx%g units",
			ErrViewport, w, h, cam.Size.X, cam.Size.Y)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := labelColor(surface.Background)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	n := w * h
	if cap(r.depth) < n {
		r.depth = make([]float64, n)
	}
	r.depth = r.depth[:n]
	for i := range r.depth {
		r.depth[i] = math.Inf(-1)
	}

	ctm := cameraMatrix(cam)
	view := rect.Rect{
		LLx: cam.Center.X - cam.Size.X/2, LLy: cam.Center.Y - cam.Size.Y/2,
		URx: cam.Center.X + cam.Size.X/2, URy: cam.Center.Y + cam.Size.Y/2,
	}
	r.fill.CTM = ctm
	r.fill.Clip = rect.Rect{URx: float64(w), URy: float64(h)}

	for _, s := range scene.Surfaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !overlaps(s.Bounds, view) {
			continue
		}
		c := labelColor(s.Label)
		put := func(x, y int, z float64) {
			k := y*w + x
			if z > r.depth[k] {
				r.depth[k] = z
				o := img.PixOffset(x, y)
				img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
			}
		}

		for i := range s.Cone {
			r.triangle(&s.Cone[i], s.Bias, ctm, put)
		}

		z := s.FillZ + s.Bias
		flat := func(y, xMin int, coverage []float32) {
			for i, cov := range coverage {
				if cov >= 0.5 {
					put(xMin+i, y, z)
				}
			}
		}
		r.fill.FillNonZero(s.FillPath(), flat)
		for i := range s.Strokes {
			st := &s.Strokes[i]
			r.fill.Width = st.Width
			r.fill.Cap = st.Cap
			r.fill.Join = graphics.LineJoinRound
			r.fill.Stroke(st.Path(), flat)
		}
	}
	return img, nil
}

// triangle draws one cone triangle.  Heights are taken from the plane
// through the three corners, evaluated at the pixel centre and clamped to
// the height range of the triangle.
func (r *Renderer) triangle(t *surface.Triangle, bias float64, ctm matrix.Matrix, put func(x, y int, z float64)) {
	var p [3]vec.Vec2
	for i, v := range t {
		p[i] = vec.Vec2{
			X: ctm[0]*v.P.X + ctm[2]*v.P.Y + ctm[4],
			Y: ctm[1]*v.P.X + ctm[3]*v.P.Y + ctm[5],
		}
	}
	e1, e2 := p[1].Sub(p[0]), p[2].Sub(p[0])
	det := e1.X*e2.Y - e1.Y*e2.X
	if math.Abs(det) < 1e-12 {
		return
	}
	dz1, dz2 := t[1].Z-t[0].Z, t[2].Z-t[0].Z
	// z = z0 + a*(x-x0) + b*(y-y0)
	a := (dz1*e2.Y - dz2*e1.Y) / det
	b := (e1.X*dz2 - e2.X*dz1) / det
	zLo := min(t[0].Z, t[1].Z, t[2].Z) + bias
	zHi := max(t[0].Z, t[1].Z, t[2].Z) + bias
	z0 := t[0].Z + bias

	// the polygon is given in device coordinates
	saved := r.fill.CTM
	r.fill.CTM = matrix.Identity
	r.fill.FillPolygon(p[:], func(y, xMin int, coverage []float32) {
		cy := float64(y) + 0.5
		for i, cov := range coverage {
			if cov < minCoverage {
				continue
			}
			x := xMin + i
			cx := float64(x) + 0.5
			z := z0 + a*(cx-p[0].X) + b*(cy-p[0].Y)
			put(x, y, max(zLo, min(zHi, z)))
		}
	})
	r.fill.CTM = saved
}

// minCoverage is the coverage below which a pixel counts as untouched by
// a triangle.  It absorbs rounding noise of the coverage sums.
const minCoverage = 1e-6

// cameraMatrix maps board coordinates to device pixels for an orthographic
// top view, with pixel row 0 at the top of the view.
func cameraMatrix(cam surface.Camera) matrix.Matrix {
	sx := float64(cam.Width) / cam.Size.X
	sy := float64(cam.Height) / cam.Size.Y
	left := cam.Center.X - cam.Size.X/2
	top := cam.Center.Y + cam.Size.Y/2
	return matrix.Matrix{sx, 0, 0, -sy, -left * sx, top * sy}
}

func overlaps(a, b rect.Rect) bool {
	return a.LLx <= b.URx && b.LLx <= a.URx && a.LLy <= b.URy && b.LLy <= a.URy
}

func labelColor(l surface.Label) color.RGBA {
	r, g, b := l.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
