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
	"log/slog"

	"github.com/google/uuid"

	"scenecraft/internal/domain"
	applog "scenecraft/internal/log"
)

// DefaultSceneTime is the duration of a manually added scene, in seconds.
const DefaultSceneTime = 5

// SetScenes replaces the whole document with a generated scene list. Scenes are
// normalized and duplicate asset ids reassigned. The cursor returns to scene 0.
func (e *Editor) SetScenes(ctx context.Context, scenes []domain.Scene) {
	e.doc.ReplaceAll(ctx, domain.NormalizeScenes(scenes))
	e.Clear()
}

// AddScene appends a scene with the given background media and selects it.
// The scene gets a fresh asset id and a new session id.
func (e *Editor) AddScene(ctx context.Context, media domain.Media, subtitle string) int {
	idx := 0
	e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		m := media.Clone()
		m.AssetID = domain.NextAssetID(scenes)
		m.SessionID = uuid.NewString()
		if m.Type == "" {
			m.Type = "video"
		}
		sc := domain.NormalizeScene(domain.Scene{
			Background: domain.Background{Src: []domain.Media{m}, Color: "#000000"},
			Time:       DefaultSceneTime,
			TTS:        true,
			Subtitle:   true,
			Subtitles:  []domain.Subtitle{{Text: subtitle}},
			SubScenes:  []domain.SubScene{{Time: DefaultSceneTime, Subtitle: true}},
		})
		scenes = append(scenes, sc)
		idx = len(scenes) - 1
		return scenes, true
	})
	e.mu.Lock()
	e.cur = cursor{scene: idx, text: NoText}
	e.mu.Unlock()
	applog.WithOperation(e.log, "add_scene").Info("scene added", slog.Int("index", idx))
	return idx
}

// DeleteScene removes the scene with the given asset id. Afterwards scene 0 is
// selected, or nothing if the document is empty.
func (e *Editor) DeleteScene(ctx context.Context, assetID int64) bool {
	ok := e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		i := indexOf(scenes, assetID)
		if i < 0 {
			return nil, false
		}
		return append(scenes[:i:i], scenes[i+1:]...), true
	})
	if ok {
		e.Clear()
		applog.WithOperation(e.log, "delete_scene").Info("scene deleted", slog.Int64("asset_id", assetID))
	}
	return ok
}

// MoveScene moves the scene at from to position to. Scenes travel with their
// content; the cursor follows the selected scene.
func (e *Editor) MoveScene(ctx context.Context, from, to int) bool {
	ok := e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		n := len(scenes)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return nil, false
		}
		moved := scenes[from]
		rest := append(scenes[:from:from], scenes[from+1:]...)
		out := make([]domain.Scene, 0, n)
		out = append(out, rest[:to]...)
		out = append(out, moved)
		out = append(out, rest[to:]...)
		return out, true
	})
	if !ok {
		return false
	}
	e.mu.Lock()
	e.cur.scene = movedIndex(e.cur.scene, from, to)
	e.mu.Unlock()
	return true
}

func movedIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < i && i <= to:
		return i - 1
	case to <= i && i < from:
		return i + 1
	}
	return i
}

// ReplaceBackground swaps a scene's background media. Sub-scenes and subtitles
// stay, and so does the scene's asset id; the incoming media's own id is kept as
// its resource id.
func (e *Editor) ReplaceBackground(ctx context.Context, index int, media domain.Media) bool {
	return e.updateScene(ctx, index, func(sc *domain.Scene) {
		m := media.Clone()
		if m.ResourceID == 0 {
			m.ResourceID = m.AssetID
		}
		m.AssetID = sc.AssetID()
		if m.SessionID == "" {
			m.SessionID = uuid.NewString()
		}
		if len(sc.Background.Src) == 0 {
			sc.Background.Src = []domain.Media{m}
		} else {
			sc.Background.Src[0] = m
		}
		sc.Subtitle = true
		sc.Preview = &domain.Preview{URL: m.URL}
	})
}

// UpdateSubtitleText replaces the raw subtitle text of a scene.
func (e *Editor) UpdateSubtitleText(ctx context.Context, index int, text string) bool {
	return e.updateScene(ctx, index, func(sc *domain.Scene) {
		if len(sc.Subtitles) == 0 {
			sc.Subtitles = []domain.Subtitle{{}}
		}
		sc.Subtitles[0].Text = text
	})
}

// SetSceneTime sets a scene's duration and mirrors it into its sub-scenes.
func (e *Editor) SetSceneTime(ctx context.Context, index int, seconds float64) bool {
	if seconds <= 0 {
		return false
	}
	return e.updateScene(ctx, index, func(sc *domain.Scene) {
		sc.Time = seconds
		for i := range sc.SubScenes {
			sc.SubScenes[i].Time = seconds
		}
	})
}

// MergeGeneratedScene replaces the scene at index with a regenerated one while
// keeping the original subtitle text and asset id.
func (e *Editor) MergeGeneratedScene(ctx context.Context, index int, generated domain.Scene) bool {
	return e.updateScene(ctx, index, func(sc *domain.Scene) {
		text, id := sc.SubtitleText(), sc.AssetID()
		next := domain.NormalizeScene(generated)
		if len(next.Background.Src) == 0 {
			next.Background.Src = []domain.Media{{Type: "video"}}
		}
		next.Background.Src[0].AssetID = id
		next.Subtitles[0].Text = text
		*sc = next
	})
}

// ReplaceSceneWithPreview replaces the scene whose asset id matches the preview
// scene. It reports false if no scene matches.
func (e *Editor) ReplaceSceneWithPreview(ctx context.Context, preview domain.Scene) bool {
	id := preview.AssetID()
	return e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		i := indexOf(scenes, id)
		if id == 0 || i < 0 {
			return nil, false
		}
		scenes[i] = domain.NormalizeScene(preview)
		return scenes, true
	})
}

// IndexOf returns the position of the scene with the given asset id, or -1.
func (e *Editor) IndexOf(assetID int64) int { return indexOf(e.doc.Scenes(), assetID) }

// TotalDuration sums the durations of all scenes.
func TotalDuration(scenes []domain.Scene) float64 {
	var total float64
	for _, s := range scenes {
		total += s.Time
	}
	return total
}

func indexOf(scenes []domain.Scene, assetID int64) int {
	for i, s := range scenes {
		if s.AssetID() == assetID {
			return i
		}
	}
	return -1
}

func (e *Editor) updateScene(ctx context.Context, index int, fn func(sc *domain.Scene)) bool {
	return e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		if index < 0 || index >= len(scenes) {
			return nil, false
		}
		fn(&scenes[index])
		return scenes, true
	})
}
