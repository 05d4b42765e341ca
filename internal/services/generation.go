/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scenecraft/internal/domain"
	"scenecraft/internal/reflow"
)

const (
	serviceScript     = "script"
	serviceGeneration = "generation"
	servicePreview    = "preview"
)

// ScriptScene is one scene of a generated script outline.
type ScriptScene struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// GenerateScript asks the script service to outline a video from free text.
func (c *Client) GenerateScript(ctx context.Context, input string) ([]ScriptScene, error) {
	data, err := c.callData(ctx, serviceScript, http.MethodPost, "/ai/generate-script", map[string]string{"input": input})
	if err != nil {
		return nil, err
	}
	var out struct {
		Scenes *[]ScriptScene `json:"scenes"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Scenes == nil {
		return nil, fmt.Errorf("%w: script: expected {scenes: [...]}", ErrInvalidPayload)
	}
	return *out.Scenes, nil
}

// ScriptSkeletons turns an outline into editable scenes with empty backgrounds.
// The first three words of each scene become its keyword.
func ScriptSkeletons(outline []ScriptScene) []domain.Scene {
	out := make([]domain.Scene, 0, len(outline))
	for _, s := range outline {
		words := strings.Fields(s.Content)
		if len(words) > 3 {
			words = words[:3]
		}
		sc := domain.Scene{
			Background: domain.Background{
				Src: []domain.Media{{
					AssetID:   s.ID,
					Type:      "video",
					Library:   "default",
					LoopVideo: true,
					Mute:      true,
				}},
				Color: "#000000",
			},
			Time:      5,
			Keywords:  []string{strings.Join(words, " ")},
			SubScenes: []domain.SubScene{{Time: 5, TextLines: []domain.TextLine{{Text: s.Content}}, Subtitle: true}},
			TTS:       true,
			Subtitle:  true,
			Subtitles: []domain.Subtitle{{Text: s.Content}},
		}
		out = append(out, domain.NormalizeScene(sc))
	}
	return out
}

// GenerateVideo turns an expanded script into a full scene batch. Subtitle chunks
// of each scene are merged back into one line; the export step splits them again.
func (c *Client) GenerateVideo(ctx context.Context, expandedScript string) (domain.SceneBatch, error) {
	data, err := c.callData(ctx, serviceGeneration, http.MethodPost, "/generate-video", map[string]string{"expandedScript": expandedScript})
	if err != nil {
		return domain.SceneBatch{}, err
	}
	b, err := decodeBatch(serviceGeneration, data)
	if err != nil {
		return domain.SceneBatch{}, err
	}
	b.ScenesSettings = reflow.MergeScenes(b.ScenesSettings)
	return b, nil
}

// PreviewScene regenerates a single scene from its subtitle text.
func (c *Client) PreviewScene(ctx context.Context, text string) (domain.Scene, error) {
	data, err := c.callData(ctx, servicePreview, http.MethodPost, "/preview-scene", map[string]string{"text": text})
	if err != nil {
		return domain.Scene{}, err
	}
	b, err := decodeBatch(servicePreview, data)
	if err != nil {
		return domain.Scene{}, err
	}
	if len(b.ScenesSettings) == 0 {
		return domain.Scene{}, fmt.Errorf("%w: preview: no scenes", ErrInvalidPayload)
	}
	return reflow.MergeScenes(b.ScenesSettings[:1])[0], nil
}

func decodeBatch(service string, data json.RawMessage) (domain.SceneBatch, error) {
	b, err := domain.DecodeSceneBatch(data)
	if err != nil {
		return domain.SceneBatch{}, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, service, err)
	}
	return b, nil
}
