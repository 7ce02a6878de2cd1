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
	"log/slog"
	"time"

	"seehuhn.de/go/isolate/surface"
)

var (
	// ErrSettleTimeout is returned by Loop.Render if no frame delivered the
	// requested image within Loop.MaxLatency.
	ErrSettleTimeout = errors.New("render loop did not settle in time")

	// ErrStopped is returned by Loop.Render after the loop has exited.
	ErrStopped = errors.New("render loop stopped")

	// ErrSuperseded is returned by Loop.Render if another request arrived
	// before the frame for this one.
	ErrSuperseded = errors.New("render request superseded")
)

// Loop runs a Renderer on a frame clock, like an interactive viewer does.
// After the view changes, the loop waits SettleFrames frames before the
// image is trusted, and the image is read back during a later frame.
// Render hides this behind a blocking call.
type Loop struct {
	// FrameInterval is the time between two frames.
	FrameInterval time.Duration

	// SettleFrames is the number of frames needed to apply a new view.
	SettleFrames int

	// MaxLatency bounds the time Render waits for its frame.
	MaxLatency time.Duration

	// Logger receives per-frame debug output.  Nil disables logging.
	Logger *slog.Logger

	renderer *Renderer
	requests chan *request
	done     chan struct{}
}

type request struct {
	ctx   context.Context
	scene *surface.Scene
	cam   surface.Camera
	reply chan reply
}

type reply struct {
	img *image.RGBA
	err error
}

// NewLoop returns a loop around r with a 60Hz frame clock.
// The loop does nothing until Run is called.
func NewLoop(r *Renderer) *Loop {
	return &Loop{
		FrameInterval: time.Second / 60,
		SettleFrames:  2,
		MaxLatency:    30 * time.Second,
		renderer:      r,
		requests:      make(chan *request),
		done:          make(chan struct{}),
	}
}

// Run executes frames until ctx is cancelled.  It must be called exactly
// once, usually on its own goroutine.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.FrameInterval)
	defer ticker.Stop()

	var pending *request
	settled := 0
	frame := 0
	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.reply <- reply{err: ErrStopped}
			}
			return ctx.Err()

		case req := <-l.requests:
			if pending != nil {
				pending.reply <- reply{err: ErrSuperseded}
			}
			// a new view: the frames seen so far do not count
			pending = req
			settled = 0

		case <-ticker.C:
			frame++
			if pending == nil {
				continue
			}
			settled++
			if settled <= l.SettleFrames {
				continue
			}
			img, err := l.renderer.Render(pending.ctx, pending.scene, pending.cam)
			if l.Logger != nil {
				l.Logger.Debug("frame read back",
					"frame", frame,
					"width", pending.cam.Width,
					"height", pending.cam.Height)
			}
			pending.reply <- reply{img: img, err: err}
			pending = nil
		}
	}
}

// Render asks the loop for an image of scene as seen by cam and waits for
// the frame which delivers it.
func (l *Loop) Render(ctx context.Context, scene *surface.Scene, cam surface.Camera) (*image.RGBA, error) {
	timer := time.NewTimer(l.MaxLatency)
	defer timer.Stop()

	req := &request{
		ctx:   ctx,
		scene: scene,
		cam:   cam,
		reply: make(chan reply, 1),
	}
	select {
	case l.requests <- req:
	case <-l.done:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrSettleTimeout
	}

	select {
	case rep := <-req.reply:
		return rep.img, rep.err
	case <-l.done:
		// the loop may have answered just before exiting
		select {
		case rep := <-req.reply:
			return rep.img, rep.err
		default:
			return nil, ErrStopped
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrSettleTimeout
	}
}
