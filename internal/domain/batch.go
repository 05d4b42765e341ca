/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/scene_batch.schema.json
var sceneBatchSchema []byte

// ErrInvalidBatch is returned when a payload does not match the scene batch schema.
var ErrInvalidBatch = errors.New("invalid scene batch")

// SceneBatch is the validated shape produced by the generation service.
type SceneBatch struct {
	ScenesSettings []Scene         `json:"scenesSettings"`
	AudioSettings  *AudioSettings  `json:"audioSettings,omitempty"`
	Extra          json.RawMessage `json:"-"`
}

var compiledBatchSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(sceneBatchSchema))
})

// SceneBatchSchema returns the raw JSON schema document.
func SceneBatchSchema() []byte { return append([]byte(nil), sceneBatchSchema...) }

// ValidateSceneBatch checks data against the scene batch schema.
func ValidateSceneBatch(data []byte) error {
	schema, err := compiledBatchSchema()
	if err != nil {
		return fmt.Errorf("compile scene batch schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidBatch, strings.Join(msgs, "; "))
	}
	return nil
}

// ValidateScenes checks a bare scene list, as persisted by the document store.
func ValidateScenes(data []byte) error {
	wrapped := make([]byte, 0, len(data)+20)
	wrapped = append(wrapped, `{"scenesSettings":`...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, '}')
	return ValidateSceneBatch(wrapped)
}

// DecodeSceneBatch validates and decodes a generation payload and normalizes its scenes.
// The raw payload is kept in Extra so callers can persist the untouched response.
func DecodeSceneBatch(data []byte) (SceneBatch, error) {
	if err := ValidateSceneBatch(data); err != nil {
		return SceneBatch{}, err
	}
	var b SceneBatch
	if err := json.Unmarshal(data, &b); err != nil {
		return SceneBatch{}, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	b.ScenesSettings = NormalizeScenes(b.ScenesSettings)
	b.Extra = append(json.RawMessage(nil), data...)
	return b, nil
}

// NormalizeScene fills the structural invariants the editor relies on:
// one sub-scene with non-nil display items and at least one text line,
// and a single subtitle entry.
func NormalizeScene(s Scene) Scene {
	out := s.Clone()
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	if len(out.SubScenes) == 0 {
		out.SubScenes = []SubScene{{}}
	}
	ss := &out.SubScenes[0]
	if ss.DisplayItems == nil {
		ss.DisplayItems = []DisplayItem{}
	}
	if len(ss.TextLines) == 0 {
		ss.TextLines = []TextLine{{Text: out.SubtitleText()}}
	}
	if len(out.Subtitles) == 0 {
		out.Subtitles = []Subtitle{{Text: ""}}
	}
	return out
}

// NormalizeScenes normalizes every scene and reassigns missing or duplicate asset ids
// so that identity stays unique across the list.
func NormalizeScenes(in []Scene) []Scene {
	out := make([]Scene, 0, len(in))
	var maxID int64
	for _, s := range in {
		if id := s.AssetID(); id > maxID {
			maxID = id
		}
	}
	seen := make(map[int64]bool, len(in))
	for _, s := range in {
		n := NormalizeScene(s)
		id := n.AssetID()
		if id == 0 || seen[id] {
			maxID++
			id = maxID
			if len(n.Background.Src) == 0 {
				n.Background.Src = []Media{{Type: "video"}}
			}
			n.Background.Src[0].AssetID = id
		}
		seen[id] = true
		out = append(out, n)
	}
	return out
}

// NextAssetID returns an asset id not used by any scene in the list.
func NextAssetID(scenes []Scene) int64 {
	var maxID int64
	for _, s := range scenes {
		if id := s.AssetID(); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}
