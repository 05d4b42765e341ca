/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// HexToRGBA converts "#RRGGBB" or "#RGB" into "rgba(r,g,b,1)".
// ok is false for anything else, including colors already in another format.
func HexToRGBA(s string) (rgba string, ok bool) {
	h := strings.TrimSpace(s)
	if !strings.HasPrefix(h, "#") {
		return s, false
	}
	h = h[1:]
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return s, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return s, false
	}
	return fmt.Sprintf("rgba(%d,%d,%d,1)", v>>16&0xff, v>>8&0xff, v&0xff), true
}

// NormalizeColor returns the rgba form of a hex color and any other input unchanged.
func NormalizeColor(s string) string {
	out, _ := HexToRGBA(s)
	return out
}
