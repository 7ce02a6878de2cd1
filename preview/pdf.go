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

// Package preview draws boards and their toolpaths as PDF files.
package preview

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/isolate"
	"seehuhn.de/go/isolate/topology"
)

// Options controls the appearance of a preview.
type Options struct {
	// Scale is the number of PDF points per board unit.
	Scale float64

	// Margin is the space around the drawing, in board units.
	Margin float64

	// PathWidth is the line width used for toolpaths, in points.
	PathWidth float64

	// HideCopper omits the copper from the drawing.
	HideCopper bool
}

var defaultOptions = Options{
	Scale:     72 / 25.4 * 4, // 4:1 for millimetre boards
	Margin:    1,
	PathWidth: 0.5,
}

// WritePDF draws the copper of b and the toolpaths into a single page PDF
// file.  Copper is drawn in light grey, toolpaths in black.
func WritePDF(fname string, b *topology.Board, paths []isolate.Toolpath, opt *Options) error {
	if opt == nil {
		opt = &defaultOptions
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = defaultOptions.Scale
	}

	box := extent(b, paths)
	box.LLx -= opt.Margin
	box.LLy -= opt.Margin
	box.URx += opt.Margin
	box.URy += opt.Margin

	paper := &pdf.Rectangle{
		URx: max(math.Ceil((box.URx-box.LLx)*scale), 1),
		URy: max(math.Ceil((box.URy-box.LLy)*scale), 1),
	}
	page, err := document.CreateSinglePage(fname, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// board coordinates have y pointing up, like PDF
	page.Transform(matrix.Matrix{scale, 0, 0, scale, -box.LLx * scale, -box.LLy * scale})

	if !opt.HideCopper {
		page.SetFillColor(color.DeviceGray(0.75))
		page.SetStrokeColor(color.DeviceGray(0.75))
		for _, s := range b.Strokes {
			p, q := b.Pos(s.From), b.Pos(s.To)
			page.SetLineWidth(s.Width)
			page.SetLineCap(s.Cap)
			page.MoveTo(p.X, p.Y)
			page.LineTo(q.X, q.Y)
			page.Stroke()
		}
		for _, pad := range b.Pads {
			drawPad(page, b.Pos(pad.At), pad)
		}
	}

	width := opt.PathWidth
	if width <= 0 {
		width = defaultOptions.PathWidth
	}
	page.SetStrokeColor(color.DeviceGray(0))
	page.SetLineWidth(width / scale)
	page.SetLineCap(graphics.LineCapRound)
	page.SetLineJoin(graphics.LineJoinRound)
	for _, tp := range paths {
		if len(tp.Points) < 2 {
			continue
		}
		for cmd, pts := range tp.Path() {
			switch cmd {
			case path.CmdMoveTo:
				page.MoveTo(pts[0].X, pts[0].Y)
			case path.CmdLineTo:
				page.LineTo(pts[0].X, pts[0].Y)
			}
		}
		page.Stroke()
	}

	return page.Close()
}

func drawPad(page *document.Page, c vec.Vec2, pad *topology.Pad) {
	switch {
	case pad.Shape == topology.PadRect:
		page.Rectangle(c.X-pad.W/2, c.Y-pad.H/2, pad.W, pad.H)
		page.Fill()
	case pad.Shape == topology.PadObround && pad.W != pad.H:
		// a line with round caps
		r := min(pad.W, pad.H) / 2
		dx, dy := max(pad.W/2-r, 0), max(pad.H/2-r, 0)
		page.SetLineWidth(2 * r)
		page.SetLineCap(graphics.LineCapRound)
		page.MoveTo(c.X-dx, c.Y-dy)
		page.LineTo(c.X+dx, c.Y+dy)
		page.Stroke()
	default:
		circle(page, c, pad.W/2)
		page.Fill()
	}
}

// circle adds a circle, made from four Bézier curves, to the current path.
func circle(page *document.Page, c vec.Vec2, r float64) {
	const k = 0.5522847498 // 4/3 (sqrt(2) - 1)
	page.MoveTo(c.X+r, c.Y)
	page.CurveTo(c.X+r, c.Y+k*r, c.X+k*r, c.Y+r, c.X, c.Y+r)
	page.CurveTo(c.X-k*r, c.Y+r, c.X-r, c.Y+k*r, c.X-r, c.Y)
	page.CurveTo(c.X-r, c.Y-k*r, c.X-k*r, c.Y-r, c.X, c.Y-r)
	page.CurveTo(c.X+k*r, c.Y-r, c.X+r, c.Y-k*r, c.X+r, c.Y)
	page.ClosePath()
}

// extent returns the area covered by the copper and the toolpaths.
func extent(b *topology.Board, paths []isolate.Toolpath) rect.Rect {
	box := b.Bounds()
	empty := len(b.Nets) == 0
	for _, tp := range paths {
		for _, p := range tp.Points {
			if empty {
				box = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				empty = false
				continue
			}
			box.LLx = min(box.LLx, p.X)
			box.LLy = min(box.LLy, p.Y)
			box.URx = max(box.URx, p.X)
			box.URy = max(box.URy, p.Y)
		}
	}
	return box
}
