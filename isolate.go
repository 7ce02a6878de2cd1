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

// Package isolate computes isolation milling toolpaths for circuit boards.
//
// A toolpath pass renders every net of a board as a distance cone, stitches
// the label image of the board together from tiles, extracts the borders
// between differently labelled regions and simplifies them into polylines.
// The subpackages implement the individual stages; this package runs them
// as one pass on a background goroutine.
package isolate

import (
	"errors"
	"fmt"

	"seehuhn.de/go/isolate/surface"
	"seehuhn.de/go/isolate/topology"
)

// Params holds the tunable values of a toolpath pass.  Lengths are in
// board units.
type Params struct {
	// Offset is the tool radius.  Toolpaths keep at least this distance
	// from the copper.
	Offset float64

	// ZCeiling is the distance from the copper at which the cone of a net
	// ends.  Nets further apart than twice this value are separated by
	// background.
	ZCeiling float64

	// DPI is the working resolution, in pixels per inch.
	DPI float64

	// UnitsPerInch is the number of board units in one inch.
	UnitsPerInch float64

	// Tolerance is the largest distance by which a simplified toolpath may
	// deviate from the raster border.  Zero selects half a pixel.
	Tolerance float64

	// Flatness is the largest chord error used when arcs are approximated
	// by polygons.  Zero selects a built-in default.
	Flatness float64

	// Mode selects between distance cones and plain grown copper.
	Mode surface.Mode

	// Tile is the edge length of a rendering tile, in pixels.
	Tile int

	// Margin is the border added around the copper before rendering.  Zero
	// selects the reach of the widest cone plus two pixels.
	Margin float64

	// Raw disables path decomposition and simplification.  Every border
	// edge is returned as a separate two-point toolpath.
	Raw bool

	// Background is the label which the rasterizer writes to pixels not
	// covered by any net.  The zero value matches raster.Renderer.
	Background surface.Label

	// Ignore lists labels which are treated like Background when borders
	// are traced, for example colors drawn by an external rasterizer that
	// do not belong to any net.
	Ignore []surface.Label
}

// DefaultParams returns parameters for a board measured in millimetres.
func DefaultParams() Params {
	return Params{
		Offset:       0.2,
		ZCeiling:     2,
		DPI:          1000,
		UnitsPerInch: 25.4,
		Mode:         surface.Voronoi,
		Tile:         512,
	}
}

// ErrParams is returned if a pass is started with unusable parameters.
var ErrParams = errors.New("invalid toolpath parameters")

func (p Params) check() error {
	switch {
	case p.Offset < 0:
		return fmt.Errorf("%w: negative offset %g", ErrParams, p.Offset)
	case p.ZCeiling <= 0:
		return fmt.Errorf("%w: z ceiling %g", ErrParams, p.ZCeiling)
	case p.DPI <= 0 || p.UnitsPerInch <= 0:
		return fmt.Errorf("%w: resolution %g dpi at %g units per inch",
			ErrParams, p.DPI, p.UnitsPerInch)
	case p.Tile <= 0:
		return fmt.Errorf("%w: tile size %d", ErrParams, p.Tile)
	case p.Mode != surface.Voronoi && p.Mode != surface.Outline:
		return fmt.Errorf("%w: unknown mode %d", ErrParams, p.Mode)
	}
	return nil
}

// Resolution returns the number of pixels per board unit.
func (p Params) Resolution() float64 {
	return p.DPI / p.UnitsPerInch
}

// tolerance returns the simplification tolerance in board units.
func (p Params) tolerance() float64 {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return 0.5 / p.Resolution()
}

// margin returns the border around the copper, taking per-net overrides
// into account.
func (p Params) margin(nets []*topology.Net) float64 {
	if p.Margin > 0 {
		return p.Margin
	}
	reach := p.Offset + p.ZCeiling
	for _, n := range nets {
		o, z := p.Offset, p.ZCeiling
		if n.Offset > 0 {
			o = n.Offset
		}
		if n.ZCeiling > 0 {
			z = n.ZCeiling
		}
		reach = max(reach, o+z)
	}
	return reach + 2/p.Resolution()
}

func (p Params) surface() surface.Params {
	return surface.Params{
		Offset:   p.Offset,
		ZCeiling: p.ZCeiling,
		Flatness: p.Flatness,
		Mode:     p.Mode,
	}
}
