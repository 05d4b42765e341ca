/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns a document snapshot into the render-service payload and
// into offline review artifacts (storyboard PDF, per-scene PNG previews).
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"scenecraft/internal/document"
	"scenecraft/internal/domain"
	"scenecraft/internal/layout"
	"scenecraft/internal/reflow"
)

// DefaultTitle names the video when the caller gives none.
const DefaultTitle = "Generated_Video"

// OutputSettings are the global render settings.
type OutputSettings struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RenderPayload is what the render service receives.
type RenderPayload struct {
	AudioSettings  domain.AudioSettings `json:"audioSettings"`
	OutputSettings OutputSettings       `json:"outputSettings"`
	ScenesSettings []domain.Scene       `json:"scenesSettings"`
}

// Options control payload building.
type Options struct {
	Title         string
	MaxLineLength int // reflow limit, reflow.DefaultMaxLength when <= 0
}

// BuildRenderPayload resolves the snapshot's layout for its aspect ratio, reflows
// subtitle lines and fills the fields the renderer requires. The snapshot is not
// modified.
func BuildRenderPayload(snap document.Snapshot, opt Options) RenderPayload {
	maxLen := opt.MaxLineLength
	if maxLen <= 0 {
		maxLen = reflow.DefaultMaxLength
	}
	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = DefaultTitle
	}

	scenes := layout.Resolve(snap.Scenes, snap.AspectRatio)
	scenes = reflow.SplitScenes(scenes, maxLen)
	for i := range scenes {
		sc := &scenes[i]
		sc.Subtitle = true
		if len(sc.Subtitles) == 0 {
			sc.Subtitles = []domain.Subtitle{{Text: "", Time: 0}}
		}
		if sc.Keywords == nil {
			sc.Keywords = []string{}
		}
		for j := range sc.SubScenes {
			ss := &sc.SubScenes[j]
			ss.Time = sc.Time
			ss.Subtitle = true
			if ss.DisplayItems == nil {
				ss.DisplayItems = []domain.DisplayItem{}
			}
		}
	}
	if scenes == nil {
		scenes = []domain.Scene{}
	}

	w, h := layout.OutputSize(snap.AspectRatio)
	return RenderPayload{
		AudioSettings: snap.Audio.Clone(),
		OutputSettings: OutputSettings{
			Name:   title + ".mp4",
			Format: "mp4",
			Title:  title,
			Width:  w,
			Height: h,
		},
		ScenesSettings: scenes,
	}
}

// AspectRatio infers the aspect ratio from the output canvas.
func (p RenderPayload) AspectRatio() domain.AspectRatio {
	switch w, h := p.OutputSettings.Width, p.OutputSettings.Height; {
	case w > h:
		return domain.Landscape
	case w < h:
		return domain.Portrait
	}
	return domain.Square
}

// WritePayloadJSON writes the payload as indented JSON, creating parent folders.
func WritePayloadJSON(p RenderPayload, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
