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

	"golang.org/x/sync/errgroup"

	"scenecraft/internal/domain"
	"scenecraft/internal/reflow"
)

const (
	serviceVoice = "voice"
	serviceMusic = "music"
)

// Track is one entry of the background music library.
type Track struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	AudioURL    string   `json:"audioUrl"`
	Duration    float64  `json:"duration"`
	Genres      []string `json:"genres,omitempty"`
	Instruments []string `json:"instruments,omitempty"`
	Moods       []string `json:"moods,omitempty"`
	Purposes    []string `json:"purposes,omitempty"`
}

// Voice is one text-to-speech voice offered by the voice service.
type Voice struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Accent   string `json:"accent"`
	Language string `json:"language"`
	Category string `json:"category"`
	Engine   string `json:"engine"`
}

// VoiceSettings are passed to custom voice generation.
type VoiceSettings struct {
	Speaker      string `json:"speaker"`
	Speed        string `json:"speed"`
	AmplifyLevel string `json:"amplifyLevel"`
}

// Voices lists the available voices.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	raw, err := c.call(ctx, serviceVoice, http.MethodGet, "/voiceOverTracks", nil)
	if err != nil {
		return nil, err
	}
	var out []Voice
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: voices: %v", ErrInvalidPayload, err)
	}
	return out, nil
}

// UpdateSceneSpeaker voices the scene list with speaker and returns the audio
// settings the voice service produced.
func (c *Client) UpdateSceneSpeaker(ctx context.Context, scenes []domain.Scene, speaker string) (domain.AudioSettings, error) {
	body := map[string]any{"scenesSettings": scenes, "speaker": speaker}
	data, err := c.callData(ctx, serviceVoice, http.MethodPut, "/update-scene-speaker", body)
	if err != nil {
		return domain.AudioSettings{}, err
	}
	return decodeAudio(data)
}

// CustomVoice voices a free script with the given settings.
func (c *Client) CustomVoice(ctx context.Context, script string, vs VoiceSettings) (domain.AudioSettings, error) {
	if vs.Speed == "" {
		vs.Speed = "100"
	}
	if vs.AmplifyLevel == "" {
		vs.AmplifyLevel = "0"
	}
	data, err := c.callData(ctx, serviceVoice, http.MethodPost, "/custom-preview-scene", map[string]any{"text": script, "voiceSettings": vs})
	if err != nil {
		return domain.AudioSettings{}, err
	}
	var out struct {
		AudioSettings json.RawMessage `json:"audioSettings"`
	}
	if err := json.Unmarshal(data, &out); err != nil || len(out.AudioSettings) == 0 {
		return domain.AudioSettings{}, fmt.Errorf("%w: voice: expected {audioSettings: {...}}", ErrInvalidPayload)
	}
	return decodeAudio(out.AudioSettings)
}

// MusicTracks searches the background music library. An empty term lists everything.
func (c *Client) MusicTracks(ctx context.Context, searchTerm string) ([]Track, error) {
	raw, err := c.call(ctx, serviceMusic, http.MethodPost, "/musicTracks", map[string]string{"searchTerm": searchTerm})
	if err != nil {
		return nil, err
	}
	var out struct {
		Items *[]Track `json:"items"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || out.Items == nil {
		return nil, fmt.Errorf("%w: music: expected {items: [...]}", ErrInvalidPayload)
	}
	return *out.Items, nil
}

// Soundtrack is the combined result of voicing and music lookup.
type Soundtrack struct {
	Audio  domain.AudioSettings
	Tracks []Track
}

// VoiceAndMusic voices the scenes and searches music in parallel. The voice
// request receives the newline-joined subtitles of all scenes.
func (c *Client) VoiceAndMusic(ctx context.Context, scenes []domain.Scene, speaker, searchTerm string) (Soundtrack, error) {
	var out Soundtrack
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := c.CustomVoice(ctx, reflow.FormattedSubtitleText(scenes), VoiceSettings{Speaker: speaker})
		out.Audio = a
		return err
	})
	g.Go(func() error {
		t, err := c.MusicTracks(ctx, searchTerm)
		out.Tracks = t
		return err
	})
	if err := g.Wait(); err != nil {
		return Soundtrack{}, err
	}
	return out, nil
}

func decodeAudio(data json.RawMessage) (domain.AudioSettings, error) {
	wrapped := append([]byte(`{"scenesSettings":[],"audioSettings":`), data...)
	wrapped = append(wrapped, '}')
	b, err := domain.DecodeSceneBatch(wrapped)
	if err != nil {
		return domain.AudioSettings{}, fmt.Errorf("%w: voice: %w", ErrInvalidPayload, err)
	}
	if b.AudioSettings == nil {
		return domain.AudioSettings{}, fmt.Errorf("%w: voice: missing audio settings", ErrInvalidPayload)
	}
	return *b.AudioSettings, nil
}
