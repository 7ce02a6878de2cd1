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

// Command genpdf computes toolpaths for all example boards and draws them
// into preview PDFs.  With -png, the previews are also rendered to PNG
// images using Ghostscript.
// Run from the module root directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"seehuhn.de/go/isolate"
	"seehuhn.de/go/isolate/preview"
	"seehuhn.de/go/isolate/surface"
	"seehuhn.de/go/isolate/testcases"
)

const outDir = "testdata/preview"

var (
	png     = flag.Bool("png", false, "also render PNG images with Ghostscript")
	outline = flag.Bool("outline", false, "use outline mode instead of Voronoi mode")
)

func main() {
	flag.Parse()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	gen := &isolate.Generator{Cache: surface.NewCache()}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			pdfPath := filepath.Join(outDir, name+".pdf")

			if err := generatePDF(gen, tc, pdfPath); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			if *png {
				pngPath := filepath.Join(outDir, name+".png")
				if err := renderPNG(pdfPath, pngPath); err != nil {
					panic(fmt.Errorf("%s: %w", name, err))
				}
			}
		}
	}
}

func generatePDF(gen *isolate.Generator, tc testcases.Case, pdfPath string) error {
	p := isolate.DefaultParams()
	if tc.Offset > 0 {
		p.Offset = tc.Offset
	}
	if tc.ZCeiling > 0 {
		p.ZCeiling = tc.ZCeiling
	}
	if *outline {
		p.Mode = surface.Outline
	}

	b := tc.Build()
	res, err := gen.Run(context.Background(), b, p)
	if err != nil {
		return err
	}
	for _, e := range res.Skipped {
		fmt.Fprintf(os.Stderr, "%s: skipped: %v\n", tc.Name, e)
	}
	return preview.WritePDF(pdfPath, b, res.Toolpaths, nil)
}

func renderPNG(pdfPath, pngPath string) error {
	cmd := exec.Command(
		"gs", "-q",
		"-sDEVICE=pnggray",
		"-r300",
		"-dGraphicsAlphaBits=4",
		"-o", pngPath,
		pdfPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
