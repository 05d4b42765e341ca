/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"scenecraft/internal/audio"
	"scenecraft/internal/domain"
	"scenecraft/internal/storage"
)

// ErrInvalidData is returned by SetData when the bag is not a JSON object.
var ErrInvalidData = errors.New("data must be a JSON object")

// AudioSettings returns a copy of the audio settings.
func (s *Store) AudioSettings() domain.AudioSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audio.Clone()
}

// Data returns the generic data bag with the current audio settings under
// "audioSettings". The bag is derived on every call and never stored separately
// in memory.
func (s *Store) Data() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, _ := s.dataLocked()
	return b
}

func (s *Store) dataLocked() (json.RawMessage, json.RawMessage) {
	ab, _ := json.Marshal(s.audio)
	bag := make(map[string]json.RawMessage, len(s.extra)+1)
	maps.Copy(bag, s.extra)
	bag["audioSettings"] = ab
	b, _ := json.Marshal(bag)
	return b, ab
}

// persistAudioLocked writes the standalone audioSettings key and the data bag.
// Both carry the same serialized audio settings.
func (s *Store) persistAudioLocked(ctx context.Context) {
	data, ab := s.dataLocked()
	errA := s.st.Set(ctx, storage.KeyAudioSettings, string(ab))
	s.recordPersist(storage.KeyAudioSettings, errA)
	errD := s.st.Set(ctx, storage.KeyData, string(data))
	s.recordPersist(storage.KeyData, errD)
	s.persistErr = errors.Join(errA, errD)
}

func (s *Store) updateAudio(ctx context.Context, fn func(a *domain.AudioSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.audio)
	s.persistAudioLocked(ctx)
}

// SetVideoVolume sets the scene-audio volume in [-1, 1] and its amplifyLevel mirror.
func (s *Store) SetVideoVolume(ctx context.Context, v float64) {
	v = audio.Clamp(v)
	s.updateAudio(ctx, func(a *domain.AudioSettings) {
		a.VideoVolume = v
		a.AmplifyLevel = &v
	})
}

// SetTrackVolume sets the background-track volume in [-1, 1] and its
// backGroundMusicVolume mirror.
func (s *Store) SetTrackVolume(ctx context.Context, v float64) {
	v = audio.Clamp(v)
	s.updateAudio(ctx, func(a *domain.AudioSettings) {
		a.TrackVolume = v
		a.BackgroundMusicVolume = &v
	})
}

// SetBackgroundMusic selects a background track. An empty src removes it.
func (s *Store) SetBackgroundMusic(ctx context.Context, src, audioID, library string) {
	s.updateAudio(ctx, func(a *domain.AudioSettings) {
		a.Src = src
		a.AudioID = audioID
		a.AudioLibrary = library
	})
}

// ApplyVoice stores audio settings produced by the voice service, then puts the
// current gain fields back on top of them.
func (s *Store) ApplyVoice(ctx context.Context, in domain.AudioSettings) {
	s.updateAudio(ctx, func(a *domain.AudioSettings) {
		video, track := a.VideoVolume, a.TrackVolume
		*a = in.Clone()
		a.VideoVolume, a.TrackVolume = video, track
		a.AmplifyLevel, a.BackgroundMusicVolume = &video, &track
	})
}

// SetAudioSettings replaces the audio settings as a whole.
func (s *Store) SetAudioSettings(ctx context.Context, in domain.AudioSettings) {
	s.updateAudio(ctx, func(a *domain.AudioSettings) { *a = in.Clone() })
}

// SetData replaces the generic data bag returned by the generation service.
// A nested "audioSettings" object becomes the new audio settings; every other
// key is kept verbatim.
func (s *Store) SetData(ctx context.Context, raw json.RawMessage) error {
	var bag map[string]json.RawMessage
	if err := json.Unmarshal(raw, &bag); err != nil || bag == nil {
		return ErrInvalidData
	}
	var next *domain.AudioSettings
	if nested, ok := bag["audioSettings"]; ok {
		var a domain.AudioSettings
		if err := json.Unmarshal(nested, &a); err != nil {
			return fmt.Errorf("data.audioSettings: %w", err)
		}
		next = &a
		delete(bag, "audioSettings")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extra = bag
	if next != nil {
		s.audio = *next
	}
	s.persistAudioLocked(ctx)
	return nil
}
