/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"

	"scenecraft/internal/document"
	"scenecraft/internal/layout"
	"scenecraft/internal/storage"
	"scenecraft/internal/textlayout"
)

// DefaultThumbWidth is the timeline thumbnail width in pixels.
const DefaultThumbWidth = 320

// ErrNoScene is returned when a thumbnail is requested for a missing index.
var ErrNoScene = errors.New("no scene at index")

// ThumbKeyFor identifies the thumbnail of scene index at width pixels. The
// digest covers the scene content and the aspect ratio.
func ThumbKeyFor(snap document.Snapshot, index, width int) (storage.ThumbKey, error) {
	if index < 0 || index >= len(snap.Scenes) {
		return storage.ThumbKey{}, ErrNoScene
	}
	if width <= 0 {
		width = DefaultThumbWidth
	}
	sc := snap.Scenes[index]
	b, err := json.Marshal(sc)
	if err != nil {
		return storage.ThumbKey{}, fmt.Errorf("digest scene: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(snap.AspectRatio))
	h.Write(b)
	cw, ch := layout.OutputSize(snap.AspectRatio)
	return storage.ThumbKey{
		AssetID: sc.AssetID(),
		Digest:  hex.EncodeToString(h.Sum(nil)),
		W:       width,
		H:       max(1, width*ch/cw),
	}, nil
}

// SceneThumbnail renders scene index as it will appear in the final render,
// scaled to width pixels, and returns the PNG bytes.
func SceneThumbnail(snap document.Snapshot, index, width, maxLineLength int, fonts textlayout.Provider) ([]byte, error) {
	if index < 0 || index >= len(snap.Scenes) {
		return nil, ErrNoScene
	}
	if width <= 0 {
		width = DefaultThumbWidth
	}
	one := snap
	one.Scenes = snap.Scenes[index : index+1]
	p := BuildRenderPayload(one, Options{MaxLineLength: maxLineLength})
	scale := float64(width) / float64(p.OutputSettings.Width)
	img := renderScene(p.ScenesSettings[0], p.OutputSettings.Width, p.OutputSettings.Height, scale, fonts)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
