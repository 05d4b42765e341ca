/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"testing"

	"scenecraft/internal/domain"
)

func TestWordWrap_BreaksOnSpaces(t *testing.T) {
	box := WordWrap(BasicProvider{}, FontSpec{}, "Hello world from Go", 50)
	if len(box.Lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(box.Lines))
	}
	for _, l := range box.Lines {
		// Face7x13 advances 7px per glyph; only single long words may exceed.
		if l.Width > 50 && len(l.Text) > 0 && containsSpace(l.Text) {
			t.Fatalf("line %q wider than limit: %v", l.Text, l.Width)
		}
	}
	if box.Width <= 0 || box.Height <= 0 {
		t.Fatalf("expected positive box size: %+v", box)
	}
}

func containsSpace(s string) bool {
	for _, r := range s {
		if r == ' ' {
			return true
		}
	}
	return false
}

func TestWordWrap_NewlinesAndNoLimit(t *testing.T) {
	box := WordWrap(nil, FontSpec{}, "one two\nthree", 0)
	if len(box.Lines) != 2 || box.Lines[0].Text != "one two" || box.Lines[1].Text != "three" {
		t.Fatalf("lines = %+v", box.Lines)
	}
	if box.Height != 2*box.Metrics.LineHeight() {
		t.Fatalf("height = %v", box.Height)
	}
}

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, FontSpec{}, "ABC")
	w2, h2 := Measure(BasicProvider{}, FontSpec{SizePx: 40}, "ABC")
	if w1 != 21 || w1 != w2 || h1 != h2 {
		t.Fatalf("basic face should ignore size: w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestOTProviderFallsBack(t *testing.T) {
	p := OTProvider{Lib: NewFontLibrary()}
	face, _ := p.Resolve(FontSpec{Family: "missing.ttf", SizePx: 30})
	if face == nil {
		t.Fatalf("expected fallback face")
	}
	if n, err := p.Lib.LoadDir(t.TempDir()); err != nil || n != 0 {
		t.Fatalf("empty dir: n=%d err=%v", n, err)
	}
}

func TestItemSpecAndCase(t *testing.T) {
	spec := ItemSpec(domain.TemplateFont(), 0.5)
	if spec.Family != "sans-serif.ttf" || spec.SizePx != 15 || !spec.Bold {
		t.Fatalf("spec = %+v", spec)
	}
	legacy := ItemSpec(domain.ItemFont{FontName: "Roboto", FontSize: "20"}, 1)
	if legacy.Family != "Roboto" || legacy.SizePx != 20 || legacy.Bold {
		t.Fatalf("legacy spec = %+v", legacy)
	}
	cases := map[string]string{
		CaseNone:  "hello big World",
		CaseUpper: "HELLO BIG WORLD",
		CaseLower: "hello big world",
		CaseTitle: "Hello Big World",
	}
	for c, want := range cases {
		if got := ApplyCase("hello big World", c); got != want {
			t.Fatalf("%s: got %q want %q", c, got, want)
		}
	}
}
