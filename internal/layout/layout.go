/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout recomputes aspect-ratio dependent fields of a scene list at save time
// and converts positions between pixel and logical space.
package layout

import "scenecraft/internal/domain"

// Profile is the fixed set of layout values for one aspect ratio.
type Profile struct {
	Ratio domain.AspectRatio
	// KeepAnchor leaves the sub-scene anchor untouched.
	KeepAnchor   bool
	Anchor       domain.Anchor
	SubtitleSize float64
	MaxWidth     string
	FullWidth    bool
	MediaMode    string
	Width        int
	Height       int
}

var profiles = map[domain.AspectRatio]Profile{
	domain.Landscape: {
		Ratio: domain.Landscape, KeepAnchor: true,
		SubtitleSize: 28, MaxWidth: "80%", FullWidth: false, MediaMode: "crop",
		Width: 1920, Height: 1080,
	},
	domain.Portrait: {
		Ratio: domain.Portrait, Anchor: domain.Anchor{CenterX: 540, StartY: 1500},
		SubtitleSize: 22, MaxWidth: "50%", FullWidth: true, MediaMode: "crop",
		Width: 1080, Height: 1920,
	},
	domain.Square: {
		Ratio: domain.Square, Anchor: domain.Anchor{CenterX: 540, StartY: 850},
		SubtitleSize: 22, MaxWidth: "80%", FullWidth: true, MediaMode: "fit",
		Width: 1080, Height: 1080,
	},
}

// ProfileFor returns the layout profile of ar. Unknown ratios fall back to the
// square profile, matching the output-size rule "else 1080x1080".
func ProfileFor(ar domain.AspectRatio) Profile {
	if p, ok := profiles[ar]; ok {
		return p
	}
	p := profiles[domain.Square]
	p.Ratio = ar
	return p
}

// OutputSize returns the render canvas size in pixels.
func OutputSize(ar domain.AspectRatio) (width, height int) {
	p := ProfileFor(ar)
	return p.Width, p.Height
}

// Resolve returns a deep copy of scenes with every sub-scene's anchor, subtitle
// font size, full-width flag, max width and every background's media mode set for ar.
// The input is never modified.
func Resolve(scenes []domain.Scene, ar domain.AspectRatio) []domain.Scene {
	p := ProfileFor(ar)
	out := domain.CloneScenes(scenes)
	for i := range out {
		s := &out[i]
		for j := range s.Background.Src {
			s.Background.Src[j].Mode = p.MediaMode
		}
		for j := range s.SubScenes {
			ss := &s.SubScenes[j]
			if !p.KeepAnchor {
				ss.Location = p.Anchor
			}
			ss.Font.Size = p.SubtitleSize
			ss.Font.FullWidth = p.FullWidth
			ss.MaxWidth = p.MaxWidth
		}
	}
	return out
}
