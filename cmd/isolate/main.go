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

// Command isolate computes isolation milling toolpaths for a board.
//
// The board is read from a JSON file (see topology.File) or taken from the
// built-in examples.  Toolpaths are written as JSON, and optionally drawn
// into a PDF file together with the copper.
//
// Settings are taken, in order of precedence, from ISOLATE_* environment
// variables, from the configuration file given with -config, and from
// built-in defaults.  For example:
//
//	offset: 0.2
//	zceiling: 2
//	dpi: 1000
//	mode: outline
//	ignore: [0x010101]
//
// The labels listed under ignore, and the label given as background, are
// treated as empty board when borders are traced.  They are 24-bit RGB
// values.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/spf13/viper"

	"seehuhn.de/go/isolate"
	"seehuhn.de/go/isolate/preview"
	"seehuhn.de/go/isolate/raster"
	"seehuhn.de/go/isolate/surface"
	"seehuhn.de/go/isolate/testcases"
	"seehuhn.de/go/isolate/topology"
)

var (
	configFile = flag.String("config", "", "configuration `file` (yaml, toml or json)")
	inFile     = flag.String("in", "", "board `file` in JSON format")
	demo       = flag.String("demo", "", "use the built-in example `board` instead of -in")
	outFile    = flag.String("out", "-", "toolpath output `file`, - for stdout")
	pdfFile    = flag.String("pdf", "", "write a PDF preview to `file`")
	verbose    = flag.Bool("v", false, "log progress to stderr")
	list       = flag.Bool("list", false, "list the built-in example boards")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "isolate:", err)
		os.Exit(1)
	}
}

func run() error {
	if *list {
		for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
			for _, tc := range testcases.All[category] {
				fmt.Println(category + "_" + tc.Name)
			}
		}
		return nil
	}

	v, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *verbose || v.GetBool("verbose") {
		level := slog.LevelInfo
		if v.GetBool("debug") {
			level = slog.LevelDebug
		}
		isolate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	board, err := loadBoard()
	if err != nil {
		return err
	}
	params, err := paramsFrom(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gen := &isolate.Generator{}
	if v.GetBool("frames") {
		// render through a frame clock, like an interactive viewer
		loop := raster.NewLoop(raster.NewRenderer())
		loop.FrameInterval = v.GetDuration("frameinterval")
		loop.Logger = isolate.Logger()
		loopCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go loop.Run(loopCtx)
		gen.Rasterizer = loop
	}

	res, err := gen.Run(ctx, board, params)
	if err != nil {
		return err
	}
	for _, e := range res.Skipped {
		fmt.Fprintln(os.Stderr, "isolate: skipped:", e)
	}

	if err := writeToolpaths(*outFile, res); err != nil {
		return err
	}
	if *pdfFile != "" {
		if err := preview.WritePDF(*pdfFile, board, res.Toolpaths, nil); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the configuration file, if any, on top of the
// built-in defaults.  Environment variables override both.
func loadConfig(fname string) (*viper.Viper, error) {
	def := isolate.DefaultParams()
	v := viper.New()
	v.SetDefault("offset", def.Offset)
	v.SetDefault("zceiling", def.ZCeiling)
	v.SetDefault("dpi", def.DPI)
	v.SetDefault("unitsperinch", def.UnitsPerInch)
	v.SetDefault("tolerance", def.Tolerance)
	v.SetDefault("flatness", def.Flatness)
	v.SetDefault("mode", def.Mode.String())
	v.SetDefault("tile", def.Tile)
	v.SetDefault("margin", def.Margin)
	v.SetDefault("raw", def.Raw)
	v.SetDefault("background", int(def.Background))
	v.SetDefault("ignore", []int{})
	v.SetDefault("frames", false)
	v.SetDefault("frameinterval", time.Second/60)

	v.SetEnvPrefix("isolate")
	v.AutomaticEnv()

	if fname != "" {
		v.SetConfigFile(fname)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading configuration: %w", err)
		}
	}
	return v, nil
}

// paramsFrom converts the configuration into pass parameters.
func paramsFrom(v *viper.Viper) (isolate.Params, error) {
	p := isolate.Params{
		Offset:       v.GetFloat64("offset"),
		ZCeiling:     v.GetFloat64("zceiling"),
		DPI:          v.GetFloat64("dpi"),
		UnitsPerInch: v.GetFloat64("unitsperinch"),
		Tolerance:    v.GetFloat64("tolerance"),
		Flatness:     v.GetFloat64("flatness"),
		Tile:         v.GetInt("tile"),
		Margin:       v.GetFloat64("margin"),
		Raw:          v.GetBool("raw"),
		Background:   surface.Label(v.GetInt("background")),
	}
	for _, l := range v.GetIntSlice("ignore") {
		p.Ignore = append(p.Ignore, surface.Label(l))
	}
	switch m := v.GetString("mode"); m {
	case surface.Voronoi.String():
		p.Mode = surface.Voronoi
	case surface.Outline.String():
		p.Mode = surface.Outline
	default:
		return p, fmt.Errorf("unknown mode %q", m)
	}
	return p, nil
}

func loadBoard() (*topology.Board, error) {
	switch {
	case *demo != "" && *inFile != "":
		return nil, errors.New("-in and -demo cannot be used together")
	case *demo != "":
		tc, ok := testcases.Find(*demo)
		if !ok {
			return nil, fmt.Errorf("unknown example board %q", *demo)
		}
		return tc.Build(), nil
	case *inFile != "":
		f, err := os.Open(*inFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return topology.ReadFile(f)
	default:
		return nil, errors.New("no board given, use -in or -demo")
	}
}

type jsonOutput struct {
	Toolpaths [][][2]float64 `json:"toolpaths"`
	Skipped   []string       `json:"skipped,omitempty"`
}

func writeToolpaths(fname string, res *isolate.Result) error {
	out := jsonOutput{Toolpaths: make([][][2]float64, 0, len(res.Toolpaths))}
	for _, tp := range res.Toolpaths {
		pts := make([][2]float64, len(tp.Points))
		for i, p := range tp.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		out.Toolpaths = append(out.Toolpaths, pts)
	}
	for _, e := range res.Skipped {
		out.Skipped = append(out.Skipped, e.Error())
	}

	if fname == "-" {
		return encodeJSON(os.Stdout, out)
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = encodeJSON(f, out)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return err
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
