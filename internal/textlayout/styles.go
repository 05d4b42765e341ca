/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"scenecraft/internal/domain"
)

// Text case values used by display items.
const (
	CaseNone  = "case-none"
	CaseUpper = "case-upper"
	CaseLower = "case-lower"
	CaseTitle = "case-title"
)

// ItemSpec derives the font of a display item, scaled from logical pixels to
// output pixels.
func ItemSpec(f domain.ItemFont, scale float64) FontSpec {
	size := f.Size
	if size == 0 {
		size, _ = strconv.ParseFloat(f.FontSize, 64)
	}
	name := f.Name
	if name == "" {
		name = f.FontName
	}
	return FontSpec{
		Family: name,
		SizePx: size * scale,
		Bold:   slices.Contains(f.Decoration, domain.DecorBold) || slices.Contains(f.Decoration, "bold"),
		Italic: slices.Contains(f.Decoration, domain.DecorItalic),
	}
}

// SubtitleSpec derives the subtitle font of a sub-scene.
func SubtitleSpec(f domain.Font, scale float64) FontSpec {
	return FontSpec{
		Family: f.Name,
		SizePx: f.Size * scale,
		Bold:   f.Weight == "bold" || f.Weight == "700",
	}
}

// ApplyCase transforms text the way the renderer does for a case value.
// Unknown values leave the text unchanged.
func ApplyCase(text, c string) string {
	switch c {
	case CaseUpper:
		return strings.ToUpper(text)
	case CaseLower:
		return strings.ToLower(text)
	case CaseTitle:
		rs := []rune(text)
		for i, r := range rs {
			if i == 0 || unicode.IsSpace(rs[i-1]) {
				rs[i] = unicode.ToTitle(r)
			}
		}
		return string(rs)
	}
	return text
}
