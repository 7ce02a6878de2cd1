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

package testcases

import (
	"regexp"
	"testing"
)

var validName = regexp.MustCompile(`^[a-z_0-9]+$`)

func TestCases(t *testing.T) {
	seen := make(map[string]bool)
	for category, cases := range All {
		for _, tc := range cases {
			name := category + "_" + tc.Name
			t.Run(name, func(t *testing.T) {
				if !validName.MatchString(tc.Name) {
					t.Errorf("invalid name %q", tc.Name)
				}
				if seen[name] {
					t.Errorf("duplicate name %q", name)
				}
				seen[name] = true

				b := tc.Build()
				if len(b.Nets) == 0 {
					t.Fatal("board has no nets")
				}
				for _, n := range b.Nets {
					ls, err := b.ExtractLoops(n)
					if err != nil {
						t.Fatalf("net %d: %v", n.ID, err)
					}
					if len(n.Strokes) > 0 && len(ls.Loops) == 0 {
						t.Errorf("net %d has strokes but no loops", n.ID)
					}
				}

				// every call builds a fresh board
				if tc.Build() == b {
					t.Error("Build returned the same board twice")
				}
			})
		}
	}

	if _, ok := Find("pads_two_squares"); !ok {
		t.Error("Find misses pads_two_squares")
	}
	if _, ok := Find("two_squares"); ok {
		t.Error("Find accepts a name without category")
	}
}
