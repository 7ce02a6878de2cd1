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
	"image"
	"testing"
	"time"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/isolate/surface"
	"seehuhn.de/go/isolate/topology"
)

func labelAt(img *image.RGBA, x, y int) surface.Label {
	o := img.PixOffset(x, y)
	return surface.LabelOf(img.Pix[o], img.Pix[o+1], img.Pix[o+2])
}

func square(x0, y0, x1, y1 float64) []vec.Vec2 {
	return []vec.Vec2{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// unitCamera shows the board square [0,10]x[0,10] at 10 pixels per unit.
var unitCamera = surface.Camera{
	Center: vec.Vec2{X: 5, Y: 5},
	Size:   vec.Vec2{X: 10, Y: 10},
	Width:  100,
	Height: 100,
}

func TestRenderFills(t *testing.T) {
	a := &surface.Surface{
		Label:  1,
		Fill:   [][]vec.Vec2{square(1, 1, 6, 6)},
		Bounds: rect.Rect{LLx: 1, LLy: 1, URx: 6, URy: 6},
	}
	b := &surface.Surface{
		Label:  2,
		Bias:   1e-6,
		Fill:   [][]vec.Vec2{square(4, 4, 9, 9)},
		Bounds: rect.Rect{LLx: 4, LLy: 4, URx: 9, URy: 9},
	}
	scene := &surface.Scene{Surfaces: []*surface.Surface{a, b}}

	img, err := NewRenderer().Render(context.Background(), scene, unitCamera)
	if err != nil {
		t.Fatal(err)
	}

	// pixel row 0 is the top of the board
	cases := []struct {
		board vec.Vec2
		want  surface.Label
	}{
		{vec.Vec2{X: 2, Y: 2}, 1},
		{vec.Vec2{X: 8, Y: 8}, 2},
		{vec.Vec2{X: 5, Y: 5}, 2}, // overlap, higher bias wins
		{vec.Vec2{X: 8, Y: 2}, surface.Background},
		{vec.Vec2{X: 0.5, Y: 9.5}, surface.Background},
	}
	for _, tc := range cases {
		x := int(tc.board.X * 10)
		y := int((10 - tc.board.Y) * 10)
		if got := labelAt(img, x, y); got != tc.want {
			t.Errorf("label at %v = %x, want %x", tc.board, got, tc.want)
		}
	}
	if img.Pix[3] != 255 {
		t.Error("background is not opaque")
	}
}

func TestRenderCones(t *testing.T) {
	// Two parallel traces, 3 units apart.  With cones, the label border
	// runs half way between them.
	board := topology.NewBoard(0.001)
	board.AddStroke(vec.Vec2{X: 1, Y: 2}, vec.Vec2{X: 9, Y: 2}, 0.4, graphics.LineCapRound)
	board.AddStroke(vec.Vec2{X: 1, Y: 5}, vec.Vec2{X: 9, Y: 5}, 0.4, graphics.LineCapRound)
	board.Partition()
	scene := surface.Build(board, surface.Params{Offset: 0.2, ZCeiling: 2, Flatness: 0.01}, nil)

	img, err := NewRenderer().Render(context.Background(), scene, unitCamera)
	if err != nil {
		t.Fatal(err)
	}
	l0, l1 := scene.Surfaces[0].Label, scene.Surfaces[1].Label

	// column 50 is half way along the traces
	x := 50
	for row := range 100 {
		y := 10 - (float64(row)+0.5)/10
		var want surface.Label
		switch {
		case y < 3.4:
			want = l0
		case y > 3.6 && y < 7.25:
			want = l1
		case y > 7.6:
			want = surface.Background
		default:
			continue
		}
		if got := labelAt(img, x, row); got != want {
			t.Errorf("row %d (y=%.2f): label %x, want %x", row, y, got, want)
		}
	}
}

func TestRenderOutlineCorners(t *testing.T) {
	// A square-capped trace in outline mode.  The copper corner at
	// (-0.25, -0.25) is grown with a disc of radius 0.2, not a square.
	board := topology.NewBoard(0.001)
	board.AddStroke(vec.Vec2{X: 0, Y: 0}, vec.Vec2{X: 2, Y: 0}, 0.5, graphics.LineCapSquare)
	board.Partition()
	scene := surface.Build(board, surface.Params{Offset: 0.2, ZCeiling: 1, Flatness: 0.001, Mode: surface.Outline}, nil)

	// 50 pixels per unit, centred on the corner region
	cam := surface.Camera{
		Center: vec.Vec2{X: 0, Y: 0},
		Size:   vec.Vec2{X: 2, Y: 2},
		Width:  100,
		Height: 100,
	}
	img, err := NewRenderer().Render(context.Background(), scene, cam)
	if err != nil {
		t.Fatal(err)
	}
	l := scene.Surfaces[0].Label

	cases := []struct {
		board vec.Vec2
		want  surface.Label
	}{
		{vec.Vec2{X: 0.5, Y: 0}, l},
		{vec.Vec2{X: -0.42, Y: 0}, l},
		{vec.Vec2{X: 0.5, Y: -0.42}, l},
		{vec.Vec2{X: -0.36, Y: -0.36}, l},
		{vec.Vec2{X: -0.42, Y: -0.42}, surface.Background},
		{vec.Vec2{X: -0.48, Y: 0}, surface.Background},
		{vec.Vec2{X: 0.5, Y: -0.48}, surface.Background},
	}
	for _, tc := range cases {
		x := int((tc.board.X + 1) * 50)
		y := int((1 - tc.board.Y) * 50)
		if got := labelAt(img, x, y); got != tc.want {
			t.Errorf("label at %v = %x, want %x", tc.board, got, tc.want)
		}
	}
}

func TestRenderViewport(t *testing.T) {
	_, err := NewRenderer().Render(context.Background(), &surface.Scene{}, surface.Camera{Width: 0, Height: 5})
	if !errors.Is(err, ErrViewport) {
		t.Errorf("got %v, want %v", err, ErrViewport)
	}
}

func TestRenderCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	scene := &surface.Scene{Surfaces: []*surface.Surface{{Fill: [][]vec.Vec2{square(1, 1, 2, 2)}}}}
	_, err := NewRenderer().Render(ctx, scene, unitCamera)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want %v", err, context.Canceled)
	}
}

func TestLoop(t *testing.T) {
	scene := &surface.Scene{Surfaces: []*surface.Surface{{
		Label:  7,
		Fill:   [][]vec.Vec2{square(1, 1, 6, 6)},
		Bounds: rect.Rect{LLx: 1, LLy: 1, URx: 6, URy: 6},
	}}}

	l := NewLoop(NewRenderer())
	l.FrameInterval = time.Millisecond
	l.MaxLatency = 10 * time.Second
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- l.Run(ctx) }()

	img, err := l.Render(context.Background(), scene, unitCamera)
	if err != nil {
		t.Fatal(err)
	}
	if got := labelAt(img, 20, 80); got != 7 {
		t.Errorf("label = %x, want 7", got)
	}

	cancel()
	if err := <-stopped; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
	if _, err := l.Render(context.Background(), scene, unitCamera); !errors.Is(err, ErrStopped) {
		t.Errorf("Render after stop returned %v, want %v", err, ErrStopped)
	}
}

func TestLoopTimeout(t *testing.T) {
	// the loop is never started, so no frame ever arrives
	l := NewLoop(NewRenderer())
	l.MaxLatency = 10 * time.Millisecond
	_, err := l.Render(context.Background(), &surface.Scene{}, unitCamera)
	if !errors.Is(err, ErrSettleTimeout) {
		t.Errorf("got %v, want %v", err, ErrSettleTimeout)
	}
}
