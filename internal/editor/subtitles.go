/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"scenecraft/internal/domain"
)

// ErrUnknownStyleKey is returned for subtitle font keys the renderer does not know.
var ErrUnknownStyleKey = errors.New("unknown subtitle style key")

// ToggleSubtitles switches subtitles on or off for every scene. On restores each
// scene's first text line from its raw subtitle; off blanks it. The choice is
// remembered for the session.
func (e *Editor) ToggleSubtitles(ctx context.Context, on bool) {
	e.doc.UpdateWithToggle(ctx, on, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		for i := range scenes {
			sc := &scenes[i]
			sc.Subtitle = on
			if !sc.HasSubScene() {
				continue
			}
			ss := &sc.SubScenes[0]
			if len(ss.TextLines) == 0 {
				ss.TextLines = []domain.TextLine{{}}
			}
			if on {
				ss.TextLines[0].Text = sc.SubtitleText()
			} else {
				ss.TextLines[0].Text = ""
			}
		}
		return scenes, len(scenes) > 0
	})
}

// UpdateSubtitleStyle sets one subtitle font property on every sub-scene of a scene.
// It reports false when the scene does not exist.
func (e *Editor) UpdateSubtitleStyle(ctx context.Context, index int, key, value string) (bool, error) {
	set, err := subtitleSetter(key, value)
	if err != nil {
		return false, err
	}
	return e.updateScene(ctx, index, func(sc *domain.Scene) {
		for i := range sc.SubScenes {
			set(&sc.SubScenes[i].Font)
		}
	}), nil
}

func subtitleSetter(key, value string) (func(f *domain.Font), error) {
	str := func(dst func(f *domain.Font) *string) func(f *domain.Font) {
		return func(f *domain.Font) { *dst(f) = value }
	}
	num := func(dst func(f *domain.Font) *float64) (func(f *domain.Font), error) {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("subtitle %s: %w", key, err)
		}
		return func(f *domain.Font) { *dst(f) = v }, nil
	}
	switch key {
	case "name":
		return str(func(f *domain.Font) *string { return &f.Name }), nil
	case "weight":
		return str(func(f *domain.Font) *string { return &f.Weight }), nil
	case "color":
		return str(func(f *domain.Font) *string { return &f.Color }), nil
	case "backcolor":
		return str(func(f *domain.Font) *string { return &f.BackColor }), nil
	case "keycolor":
		return str(func(f *domain.Font) *string { return &f.KeyColor }), nil
	case "textShadowColor":
		return str(func(f *domain.Font) *string { return &f.TextShadowColor }), nil
	case "case":
		return func(f *domain.Font) {
			v := value
			f.Case = &v
		}, nil
	case "size":
		return num(func(f *domain.Font) *float64 { return &f.Size })
	case "line_spacing":
		return num(func(f *domain.Font) *float64 { return &f.LineSpacing })
	case "line_height":
		return num(func(f *domain.Font) *float64 { return &f.LineHeight })
	case "textShadowWidthFr":
		return num(func(f *domain.Font) *float64 { return &f.TextShadowWidthFr })
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStyleKey, key)
}
