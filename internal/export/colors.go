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
)

// parseColor reads "#RGB", "#RRGGBB", "rgb(r,g,b)" and "rgba(r,g,b,a)" with a in [0,1].
// Anything else yields fallback.
func parseColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(domain.NormalizeColor(s)))
	var body string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		body = s[5 : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		body = s[4 : len(s)-1]
	default:
		return fallback
	}
	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return fallback
	}
	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fallback
		}
		ch[i] = v
	}
	a := math.Max(0, math.Min(1, ch[3]))
	// Premultiplied, as image/color expects.
	c8 := func(v float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(255, v)) * a)) }
	return color.RGBA{R: c8(ch[0]), G: c8(ch[1]), B: c8(ch[2]), A: uint8(math.Round(a * 255))}
}

// straight undoes premultiplication, for APIs that take plain RGB.
func straight(c color.RGBA) (r, g, b int) {
	if c.A == 0 {
		return 0, 0, 0
	}
	f := 255 / float64(c.A)
	return int(math.Round(float64(c.R) * f)), int(math.Round(float64(c.G) * f)), int(math.Round(float64(c.B) * f))
}
