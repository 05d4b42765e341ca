/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// AspectRatio is the document-wide output shape.
type AspectRatio string

const (
	Landscape AspectRatio = "16:9"
	Portrait  AspectRatio = "9:16"
	Square    AspectRatio = "1:1"
)

// ErrInvalidAspectRatio is returned by ParseAspectRatio for unknown values.
var ErrInvalidAspectRatio = errors.New("invalid aspect ratio")

// AspectRatios lists every supported ratio.
func AspectRatios() []AspectRatio { return []AspectRatio{Landscape, Portrait, Square} }

// ParseAspectRatio accepts "16:9", "9:16" and "1:1".
func ParseAspectRatio(s string) (AspectRatio, error) {
	ar := AspectRatio(strings.TrimSpace(s))
	if ar.Valid() {
		return ar, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
}

func (a AspectRatio) Valid() bool {
	switch a {
	case Landscape, Portrait, Square:
		return true
	}
	return false
}

func (a AspectRatio) String() string { return string(a) }
