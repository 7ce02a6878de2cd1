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
	"context"
	"errors"
	"image"
	"sync/atomic"
	"time"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/isolate/boundary"
	"seehuhn.de/go/isolate/mosaic"
	"seehuhn.de/go/isolate/pathopt"
	"seehuhn.de/go/isolate/raster"
	"seehuhn.de/go/isolate/surface"
	"seehuhn.de/go/isolate/topology"
)

// ErrBusy is returned by Generator.Start while another pass is running.
var ErrBusy = errors.New("a toolpath pass is already running")

// A Toggle is an external on/off setting, for example a display option of
// a viewer, which must be switched on while a pass renders the board.
type Toggle interface {
	Enabled() bool
	SetEnabled(on bool)
}

// Generator runs toolpath passes, one at a time.
type Generator struct {
	// Rasterizer renders the tiles.  If nil, each pass uses a new
	// raster.Renderer.
	Rasterizer mosaic.Rasterizer

	// Cache, if set, keeps net surfaces between passes.
	Cache *surface.Cache

	// Toggles are switched on for the duration of a pass.  Their previous
	// state is restored when the pass ends, also on error or cancellation.
	Toggles []Toggle

	running atomic.Bool
}

// Result is the outcome of a successful pass.
type Result struct {
	Toolpaths []Toolpath

	// Skipped lists the nets which were left out because of malformed
	// geometry.  The errors wrap *topology.MalformedError.
	Skipped []error

	// Raster is the label image the toolpaths were traced from.
	Raster *mosaic.Raster

	Stats Stats
}

// Stats summarizes the work done by a pass.
type Stats struct {
	Nets      int
	Triangles int
	Tiles     int
	Edges     int
	Junctions int
	RawPaths  int
	Segments  int
	Elapsed   time.Duration
}

// Pass is a toolpath computation running in the background.
type Pass struct {
	cancel context.CancelFunc
	done   chan struct{}
	res    *Result
	err    error
}

// Done returns a channel which is closed when the pass has stopped.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

// Cancel asks the pass to stop.  Use Wait to find out when it has.
func (p *Pass) Cancel() {
	p.cancel()
}

// Wait blocks until the pass has stopped and returns its outcome.  After
// an error, including cancellation, no toolpaths are returned.
func (p *Pass) Wait() (*Result, error) {
	<-p.done
	return p.res, p.err
}

// Start begins a pass over the nets of b.  If the board has not been
// partitioned into nets yet, Start does this first.  The board must not
// be modified until the pass has stopped.
func (g *Generator) Start(ctx context.Context, b *topology.Board, p Params) (*Pass, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if !g.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	if b.Nets == nil {
		b.Partition()
	}

	ctx, cancel := context.WithCancel(ctx)
	pass := &Pass{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		res, err := g.run(ctx, b, p)
		if err != nil {
			res = nil
		}
		pass.res, pass.err = res, err
		cancel()

		// A new pass may start as soon as Done is closed.
		g.running.Store(false)
		close(pass.done)
	}()
	return pass, nil
}

// Run is like Start, but waits for the pass to finish.
func (g *Generator) Run(ctx context.Context, b *topology.Board, p Params) (*Result, error) {
	pass, err := g.Start(ctx, b, p)
	if err != nil {
		return nil, err
	}
	return pass.Wait()
}

func (g *Generator) run(ctx context.Context, b *topology.Board, p Params) (*Result, error) {
	log := Logger()
	start := time.Now()

	restore := g.switchToggles()
	defer restore()

	log.Info("toolpath pass started",
		"nets", len(b.Nets),
		"mode", p.Mode,
		"dpi", p.DPI)

	res := &Result{}
	res.Stats.Nets = len(b.Nets)

	t := time.Now()
	scene := surface.Build(b, p.surface(), g.Cache)
	for _, err := range scene.Skipped {
		log.Warn("net skipped", "err", err)
	}
	res.Skipped = scene.Skipped
	for _, s := range scene.Surfaces {
		res.Stats.Triangles += len(s.Cone)
	}
	log.Debug("surfaces built",
		"surfaces", len(scene.Surfaces),
		"triangles", res.Stats.Triangles,
		"elapsed", time.Since(t))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(scene.Surfaces) == 0 {
		res.Stats.Elapsed = time.Since(start)
		return res, nil
	}

	rast := g.Rasterizer
	if rast == nil {
		rast = raster.NewRenderer()
	}
	counter := &tileCounter{Rasterizer: rast}
	t = time.Now()
	img, err := mosaic.Assemble(ctx, counter, scene, scene.Bounds, mosaic.Params{
		Resolution: p.Resolution(),
		Tile:       p.Tile,
		Margin:     p.margin(b.Nets),
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	res.Raster = img
	res.Stats.Tiles = counter.n
	log.Debug("raster assembled",
		"width", img.Width,
		"height", img.Height,
		"tiles", counter.n,
		"elapsed", time.Since(t))

	t = time.Now()
	graph, err := boundary.Extract(ctx, img, boundary.Options{
		Background: p.Background,
		Ignore:     p.Ignore,
	})
	if err != nil {
		return nil, err
	}
	res.Stats.Edges = graph.Edges
	for _, n := range graph.Nodes {
		if n.Locked {
			res.Stats.Junctions++
		}
	}
	log.Debug("border graph extracted",
		"nodes", len(graph.Nodes),
		"edges", graph.Edges,
		"junctions", res.Stats.Junctions,
		"elapsed", time.Since(t))

	if p.Raw {
		res.Toolpaths = rawToolpaths(graph, img)
		res.Stats.Segments = len(res.Toolpaths)
	} else {
		t = time.Now()
		paths := boundary.Decompose(graph)
		res.Stats.RawPaths = len(paths)
		tol := p.tolerance()
		for _, rp := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pts := pathopt.Optimize(boardPoints(rp, img), tol)
			if len(pts) < 2 {
				continue
			}
			res.Toolpaths = append(res.Toolpaths, Toolpath{Points: pts})
			res.Stats.Segments += len(pts) - 1
		}
		log.Debug("paths simplified",
			"raw", len(paths),
			"segments", res.Stats.Segments,
			"elapsed", time.Since(t))
	}

	res.Stats.Elapsed = time.Since(start)
	log.Info("toolpath pass finished",
		"toolpaths", len(res.Toolpaths),
		"skipped", len(res.Skipped),
		"elapsed", res.Stats.Elapsed)
	return res, nil
}

// switchToggles turns all toggles on and returns a function which restores
// their previous state.
func (g *Generator) switchToggles() func() {
	old := make([]bool, len(g.Toggles))
	for i, t := range g.Toggles {
		old[i] = t.Enabled()
		t.SetEnabled(true)
	}
	return func() {
		for i, t := range g.Toggles {
			t.SetEnabled(old[i])
		}
	}
}

// boardPoints converts the lattice nodes of a raw path to board
// coordinates.
func boardPoints(rp boundary.RawPath, r *mosaic.Raster) []vec.Vec2 {
	pts := make([]vec.Vec2, len(rp))
	for i, n := range rp {
		pts[i] = r.Point(float64(n.X), float64(n.Y))
	}
	return pts
}

// rawToolpaths returns every border edge as a separate toolpath.
func rawToolpaths(g *boundary.Graph, r *mosaic.Raster) []Toolpath {
	res := make([]Toolpath, 0, g.Edges)
	for _, n := range g.Nodes {
		for _, d := range []boundary.Dir{boundary.South, boundary.East} {
			m := n.Nbr[d]
			if m == nil {
				continue
			}
			res = append(res, Toolpath{Points: []vec.Vec2{
				r.Point(float64(n.X), float64(n.Y)),
				r.Point(float64(m.X), float64(m.Y)),
			}})
		}
	}
	return res
}

// tileCounter counts the tiles rendered by a pass.
type tileCounter struct {
	mosaic.Rasterizer
	n int
}

func (c *tileCounter) Render(ctx context.Context, scene *surface.Scene, cam surface.Camera) (*image.RGBA, error) {
	c.n++
	return c.Rasterizer.Render(ctx, scene, cam)
}
