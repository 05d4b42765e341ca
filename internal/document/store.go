/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document holds the scene document of one editing session: the scene list,
// aspect ratio, audio settings, selected speaker and subtitle toggle.
//
// Every mutation replaces the affected value in memory and writes it through to
// storage. Persistence is best effort: write failures are logged and remembered
// (see PersistErr) but never returned, so the in-memory document always reflects
// the last mutation.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"scenecraft/internal/domain"
	applog "scenecraft/internal/log"
	"scenecraft/internal/storage"
)

// DefaultSpeaker is the voice used before the user picks one.
const DefaultSpeaker = "Alex"

// Defaults are used for values absent from storage.
type Defaults struct {
	AspectRatio domain.AspectRatio
	Speaker     string
}

// Store is the single owner of the scene document.
type Store struct {
	mu  sync.RWMutex
	st  storage.Storage
	log *slog.Logger

	scenes         []domain.Scene
	aspect         domain.AspectRatio
	speaker        string
	audio          domain.AudioSettings
	extra          map[string]json.RawMessage // data bag without audioSettings
	subtitleToggle bool

	persistErr error
}

// New returns an empty document backed by st.
func New(st storage.Storage) *Store {
	return &Store{
		st:             st,
		log:            applog.WithComponent("document"),
		scenes:         []domain.Scene{},
		aspect:         domain.Landscape,
		speaker:        DefaultSpeaker,
		audio:          domain.DefaultAudioSettings(),
		extra:          map[string]json.RawMessage{},
		subtitleToggle: true,
	}
}

// Load restores every key from st. Missing or malformed values fall back to
// defaults; Load never fails.
func Load(ctx context.Context, st storage.Storage, def Defaults) *Store {
	s := New(st)
	l := applog.WithOperation(s.log, "load")
	if def.AspectRatio.Valid() {
		s.aspect = def.AspectRatio
	}
	if def.Speaker != "" {
		s.speaker = def.Speaker
	}

	var scenes []domain.Scene
	if readJSON(ctx, l, st, storage.KeyScenes, &scenes) && scenes != nil {
		s.scenes = scenes
	}
	var ar string
	if readJSON(ctx, l, st, storage.KeyAspectRatio, &ar) {
		if parsed, err := domain.ParseAspectRatio(ar); err == nil {
			s.aspect = parsed
		} else {
			l.Warn("ignoring stored aspect ratio", slog.String("value", ar))
		}
	}
	var speaker string
	if readJSON(ctx, l, st, storage.KeySpeaker, &speaker) && speaker != "" {
		s.speaker = speaker
	}
	var toggle bool
	if readJSON(ctx, l, st, storage.KeySubtitleToggle, &toggle) {
		s.subtitleToggle = toggle
	}

	var data map[string]json.RawMessage
	if readJSON(ctx, l, st, storage.KeyData, &data) && data != nil {
		nested, hasNested := data["audioSettings"]
		delete(data, "audioSettings")
		s.extra = data
		if hasNested {
			var a domain.AudioSettings
			if err := json.Unmarshal(nested, &a); err == nil {
				s.audio = a
			}
		}
	}
	// The standalone copy wins when both exist.
	var audio domain.AudioSettings
	if readJSON(ctx, l, st, storage.KeyAudioSettings, &audio) {
		s.audio = audio
	}

	l.Info("document loaded", slog.Int("scenes", len(s.scenes)), slog.String("aspect", string(s.aspect)))
	return s
}

func readJSON(ctx context.Context, l *slog.Logger, st storage.Storage, key string, dst any) bool {
	raw, err := st.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		l.Warn("read failed", slog.String("key", key), slog.Any("err", err))
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		l.Warn("malformed stored value", slog.String("key", key), slog.Any("err", err))
		return false
	}
	return true
}

// persist writes one key. Caller holds s.mu.
func (s *Store) persist(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err == nil {
		err = s.st.Set(ctx, key, string(b))
	}
	s.recordPersist(key, err)
}

func (s *Store) recordPersist(key string, err error) {
	s.persistErr = err
	if err != nil {
		applog.WithOperation(s.log, "persist").Error("persist failed",
			slog.String("key", key), slog.Any("err", err))
	}
}

// PersistErr returns the error of the most recent write, or nil if it succeeded.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// Scenes returns a deep copy of the current scene list.
func (s *Store) Scenes() []domain.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneScenes(s.scenes)
}

// Len returns the number of scenes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenes)
}

// Scene returns a copy of the scene at index.
func (s *Store) Scene(index int) (domain.Scene, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.scenes) {
		return domain.Scene{}, false
	}
	return s.scenes[index].Clone(), true
}

// ReplaceAll is the only scene-list mutation. It stores a deep copy of scenes
// and writes the whole list through to storage.
func (s *Store) ReplaceAll(ctx context.Context, scenes []domain.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(ctx, domain.CloneScenes(scenes))
}

func (s *Store) replaceLocked(ctx context.Context, scenes []domain.Scene) {
	if scenes == nil {
		scenes = []domain.Scene{}
	}
	s.scenes = scenes
	s.persist(ctx, storage.KeyScenes, s.scenes)
}

// Update runs fn on a private copy of the scene list and, if fn reports a change,
// replaces the list with its result. Concurrent updates are serialized.
func (s *Store) Update(ctx context.Context, fn func(scenes []domain.Scene) ([]domain.Scene, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := fn(domain.CloneScenes(s.scenes))
	if !changed {
		return false
	}
	s.replaceLocked(ctx, next)
	return true
}

// AspectRatio returns the document-wide aspect ratio.
func (s *Store) AspectRatio() domain.AspectRatio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aspect
}

// SetAspectRatio stores ar; unknown values are rejected with domain.ErrInvalidAspectRatio.
func (s *Store) SetAspectRatio(ctx context.Context, ar domain.AspectRatio) error {
	if !ar.Valid() {
		_, err := domain.ParseAspectRatio(string(ar))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aspect = ar
	s.persist(ctx, storage.KeyAspectRatio, string(ar))
	return nil
}

func (s *Store) Speaker() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speaker
}

func (s *Store) SetSpeaker(ctx context.Context, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaker = name
	s.persist(ctx, storage.KeySpeaker, name)
}

func (s *Store) SubtitleToggle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtitleToggle
}

// UpdateWithToggle applies fn like Update and stores the global subtitle toggle.
func (s *Store) UpdateWithToggle(ctx context.Context, on bool, fn func(scenes []domain.Scene) ([]domain.Scene, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtitleToggle = on
	s.persist(ctx, storage.KeySubtitleToggle, on)
	next, changed := fn(domain.CloneScenes(s.scenes))
	if changed {
		s.replaceLocked(ctx, next)
	}
	return changed
}

// Flush rewrites every key from memory. Unlike mutations it reports write
// failures, since autosave needs to know whether the document reached disk.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := []struct {
		key string
		v   any
	}{
		{storage.KeyScenes, s.scenes},
		{storage.KeyAspectRatio, string(s.aspect)},
		{storage.KeySpeaker, s.speaker},
		{storage.KeySubtitleToggle, s.subtitleToggle},
	}
	var errs []error
	for _, kv := range values {
		s.persist(ctx, kv.key, kv.v)
		errs = append(errs, s.persistErr)
	}
	s.persistAudioLocked(ctx)
	errs = append(errs, s.persistErr)
	s.persistErr = errors.Join(errs...)
	return s.persistErr
}

// RestoreRevision replaces the scene list with a stored revision.
func (s *Store) RestoreRevision(ctx context.Context, h storage.Historian, id int64) error {
	rev, err := h.Revision(ctx, id)
	if err != nil {
		return fmt.Errorf("load revision %d: %w", id, err)
	}
	var scenes []domain.Scene
	if err := json.Unmarshal([]byte(rev.Value), &scenes); err != nil {
		return fmt.Errorf("decode revision %d: %w", id, err)
	}
	s.ReplaceAll(ctx, scenes)
	return nil
}

// Snapshot is a consistent copy of the whole document.
type Snapshot struct {
	Scenes         []domain.Scene
	AspectRatio    domain.AspectRatio
	Audio          domain.AudioSettings
	Speaker        string
	SubtitleToggle bool
}

// Snapshot copies the document under one lock, so later mutations are never
// observed by the copy and no field is taken from a different moment.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Scenes:         domain.CloneScenes(s.scenes),
		AspectRatio:    s.aspect,
		Audio:          s.audio.Clone(),
		Speaker:        s.speaker,
		SubtitleToggle: s.subtitleToggle,
	}
}
