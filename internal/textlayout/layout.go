/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement and line breaking for overlay previews. Measurement goes
// through a Provider so tests can use the fixed-width basic face while exports
// can load the renderer's TTF files.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font. Family is the renderer's font file name
// (for example "sans-serif.ttf").
type FontSpec struct {
	Family string
	SizePx float64
	Bold   bool
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is the distance between two baselines.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Line is one laid out line.
type Line struct {
	Text  string
	Width float64
}

// Box is the result of wrapping text into a maximum width.
type Box struct {
	Lines   []Line
	Width   float64
	Height  float64
	Metrics Metrics
	Face    font.Face
}

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider always returns basicfont Face7x13. Deterministic, for tests and
// as the fallback when no font file is available.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// WordWrap breaks text on spaces and newlines so no line exceeds maxWidth pixels,
// except single words wider than maxWidth, which get a line of their own.
// maxWidth <= 0 disables wrapping.
func WordWrap(p Provider, spec FontSpec, text string, maxWidth float64) Box {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	d := &font.Drawer{Face: face}
	box := Box{Metrics: met, Face: face}
	space := advance(d, " ")

	add := func(words []string, w float64) {
		box.Lines = append(box.Lines, Line{Text: strings.Join(words, " "), Width: w})
		if w > box.Width {
			box.Width = w
		}
		box.Height += met.LineHeight()
	}
	for _, para := range strings.Split(text, "\n") {
		var cur []string
		var curW float64
		for _, word := range strings.Fields(para) {
			w := advance(d, word)
			if len(cur) > 0 && maxWidth > 0 && curW+space+w > maxWidth {
				add(cur, curW)
				cur, curW = nil, 0
			}
			if len(cur) > 0 {
				curW += space
			}
			cur = append(cur, word)
			curW += w
		}
		add(cur, curW)
	}
	return box
}

// Measure returns the width of text on one line and the line height.
func Measure(p Provider, spec FontSpec, text string) (w, h float64) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	return advance(&font.Drawer{Face: face}, text), met.Ascent + met.Descent
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}
