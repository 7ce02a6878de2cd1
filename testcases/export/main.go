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

// Command export writes the example boards as JSON board files, which can
// be passed to the isolate command with -in.
// Run from the module root directory.
package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/isolate/testcases"
)

const outDir = "testdata/boards"

func main() {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if err := export(tc, filepath.Join(outDir, name+".json")); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
		}
	}
}

func export(tc testcases.Case, fname string) error {
	b := tc.Build()
	for _, n := range b.Nets {
		if n.Offset == 0 {
			n.Offset = tc.Offset
		}
		if n.ZCeiling == 0 {
			n.ZCeiling = tc.ZCeiling
		}
	}

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = b.WriteFile(f)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return err
}
