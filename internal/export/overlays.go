/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"scenecraft/internal/domain"
	"scenecraft/internal/reflow"
	"scenecraft/internal/textlayout"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// overlay is one block of text placed on the output canvas, in canvas pixels.
// X is the horizontal center, Y the top of the first line.
type overlay struct {
	Lines    []string
	X, Y     float64
	MaxWidth float64
	Spec     textlayout.FontSpec
	Color    color.RGBA
	Back     color.RGBA
	Subtitle bool
}

// sceneOverlays lists what the renderer would draw on top of a resolved scene.
// Display items live in logical space and are mapped onto the canvas; subtitles
// are anchored in canvas space.
func sceneOverlays(sc domain.Scene, w, h int) []overlay {
	if !sc.HasSubScene() {
		return nil
	}
	ss := sc.SubScenes[0]
	cw, ch := float64(w), float64(h)
	itemScale := math.Min(cw/domain.LogicalWidth, ch/domain.LogicalHeight)

	var out []overlay
	for _, d := range ss.DisplayItems {
		if d.Type != domain.ItemText || len(d.TextLines) == 0 {
			continue
		}
		text := textlayout.ApplyCase(reflow.PlainText(d.TextLines[0].Text), d.Font.Case)
		if text == "" {
			continue
		}
		fg := d.Font.FontColor
		if fg == "" {
			fg = d.Font.Color
		}
		out = append(out, overlay{
			Lines:    []string{text},
			X:        d.Location.CenterX / domain.LogicalWidth * cw,
			Y:        d.Location.StartY / domain.LogicalHeight * ch,
			MaxWidth: percentOf(d.Font.ParagraphWidth, cw, 0.9),
			Spec:     textlayout.ItemSpec(d.Font, itemScale),
			Color:    parseColor(fg, white),
			Back:     parseColor(d.Font.TextBackgroundColor, color.RGBA{}),
		})
	}

	var lines []string
	for _, tl := range ss.TextLines {
		if t := reflow.PlainText(tl.Text); t != "" {
			lines = append(lines, t)
		}
	}
	if sc.Subtitle && len(lines) > 0 {
		x, y := ss.Location.CenterX, ss.Location.StartY
		if x == 0 && y == 0 {
			x, y = cw/2, ch*0.8
		}
		spec := textlayout.SubtitleSpec(ss.Font, 1)
		if spec.SizePx == 0 {
			spec.SizePx = 28
		}
		out = append(out, overlay{
			Lines:    lines,
			X:        x,
			Y:        y,
			MaxWidth: percentOf(ss.MaxWidth, cw, 0.8),
			Spec:     spec,
			Color:    parseColor(ss.Font.Color, white),
			Back:     parseColor(ss.Font.BackColor, color.RGBA{}),
			Subtitle: true,
		})
	}
	return out
}

// percentOf reads values like "80%" relative to total.
func percentOf(v string, total, fallback float64) float64 {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
	p, err := strconv.ParseFloat(v, 64)
	if err != nil || p <= 0 {
		return total * fallback
	}
	return total * p / 100
}
