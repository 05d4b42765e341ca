/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"math"

	"scenecraft/internal/domain"
)

// Size is a pixel container size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// ToLogical clamps p to the container and maps it into 1920x1080 space, rounded
// to whole units. ok is false for an empty container.
func ToLogical(p domain.Point, container Size) (x, y float64, ok bool) {
	if !container.Valid() {
		return 0, 0, false
	}
	px := clamp(p.X, 0, container.Width)
	py := clamp(p.Y, 0, container.Height)
	x = math.Round(px / container.Width * domain.LogicalWidth)
	y = math.Round(py / container.Height * domain.LogicalHeight)
	return x, y, true
}

// ToPixel maps a logical point into a container of the given size.
func ToPixel(centerX, startY float64, container Size) domain.Point {
	return domain.Point{
		X: centerX / domain.LogicalWidth * container.Width,
		Y: startY / domain.LogicalHeight * container.Height,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
