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

// Package mosaic renders a scene tile by tile and stitches the tiles into
// one label raster covering the whole board.
package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/isolate/surface"
)

// Rasterizer renders a scene from directly above, using an orthographic
// projection and a depth test where the highest surface wins.  The
// returned image must have exactly cam.Width×cam.Height pixels, with row 0
// at the top of the view.  Render blocks until the image is complete.
type Rasterizer interface {
	Render(ctx context.Context, scene *surface.Scene, cam surface.Camera) (*image.RGBA, error)
}

// ErrReadback indicates that a tile could not be rendered or read back.
var ErrReadback = errors.New("tile read back failed")

// Params controls the tiling.
type Params struct {
	// Resolution is the number of pixels per board unit.
	Resolution float64

	// Tile is the edge length of a tile, in pixels.
	Tile int

	// Margin is added around the bounds on all sides, in board units.
	Margin float64

	// Logger receives per-tile debug output.  Nil disables logging.
	Logger *slog.Logger
}

// Raster is a label image of the board.  Pixel (x, y) covers the board
// square with top-left corner Origin + (x, -y)/Resolution.
type Raster struct {
	Width, Height int
	Pix           []surface.Label // row-major, row 0 at the top

	Origin     vec.Vec2
	Resolution float64
}

// NewRaster allocates a raster filled with the background label.
func NewRaster(width, height int, origin vec.Vec2, res float64) *Raster {
	return &Raster{
		Width:      width,
		Height:     height,
		Pix:        make([]surface.Label, width*height),
		Origin:     origin,
		Resolution: res,
	}
}

// At returns the label of pixel (x, y).  Pixels outside the raster are
// background.
func (r *Raster) At(x, y int) surface.Label {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return surface.Background
	}
	return r.Pix[y*r.Width+x]
}

// Set changes the label of pixel (x, y).
func (r *Raster) Set(x, y int, l surface.Label) {
	r.Pix[y*r.Width+x] = l
}

// Point converts raster coordinates to board coordinates.  Integer
// arguments give pixel corners.
func (r *Raster) Point(x, y float64) vec.Vec2 {
	return vec.Vec2{
		X: r.Origin.X + x/r.Resolution,
		Y: r.Origin.Y - y/r.Resolution,
	}
}

// Assemble renders the board area bounds, grown by p.Margin, and returns
// the stitched label raster.  Cancellation is checked between tiles.  Any
// rasterizer failure aborts the assembly with an error wrapping
// ErrReadback.
func Assemble(ctx context.Context, r Rasterizer, scene *surface.Scene, bounds rect.Rect, p Params) (*Raster, error) {
	if p.Resolution <= 0 || p.Tile <= 0 {
		return nil, fmt.Errorf("mosaic: invalid resolution %g or tile size %d", p.Resolution, p.Tile)
	}

	x0, y1 := bounds.LLx-p.Margin, bounds.URy+p.Margin
	w := int(math.Ceil((bounds.URx - bounds.LLx + 2*p.Margin) * p.Resolution))
	h := int(math.Ceil((bounds.URy - bounds.LLy + 2*p.Margin) * p.Resolution))
	w, h = max(w, 1), max(h, 1)
	out := NewRaster(w, h, vec.Vec2{X: x0, Y: y1}, p.Resolution)

	for ty := 0; ty < h; ty += p.Tile {
		for tx := 0; tx < w; tx += p.Tile {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tw, th := min(p.Tile, w-tx), min(p.Tile, h-ty)
			cam := surface.Camera{
				Center: out.Point(float64(tx)+float64(tw)/2, float64(ty)+float64(th)/2),
				Size: vec.Vec2{
					X: float64(tw) / p.Resolution,
					Y: float64(th) / p.Resolution,
				},
				Width:  tw,
				Height: th,
			}
			img, err := r.Render(ctx, scene, cam)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, fmt.Errorf("%w: tile at (%d, %d): %w", ErrReadback, tx, ty, err)
			}
			if img == nil || img.Rect.Dx() != tw || img.Rect.Dy() != th {
				return nil, fmt.Errorf("%w: tile at (%d, %d): expected %dx%d pixels",
					ErrReadback, tx, ty, tw, th)
			}
			copyTile(out, img, tx, ty)
			if p.Logger != nil {
				p.Logger.Debug("tile done", "x", tx, "y", ty, "w", tw, "h", th)
			}
		}
	}
	return out, nil
}

func copyTile(out *Raster, img *image.RGBA, tx, ty int) {
	b := img.Rect
	for y := range b.Dy() {
		row := out.Pix[(ty+y)*out.Width+tx:]
		o := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := range b.Dx() {
			row[x] = surface.LabelOf(img.Pix[o], img.Pix[o+1], img.Pix[o+2])
			o += 4
		}
	}
}
