/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"scenecraft/internal/domain"
	"scenecraft/internal/storage"
)

func sampleScenes(ids ...int64) []domain.Scene {
	out := make([]domain.Scene, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.NormalizeScene(domain.Scene{
			Background: domain.Background{Src: []domain.Media{{URL: "https://cdn.example/v.mp4", AssetID: id, Type: "video"}}},
			Time:       5,
			Subtitles:  []domain.Subtitle{{Text: "hello world"}},
		}))
	}
	return out
}

func TestReplaceAllPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := New(st)
	in := sampleScenes(1, 2)
	s.ReplaceAll(ctx, in)

	// Caller-owned slice must not alias the stored document.
	in[0].Time = 99
	if got := s.Scenes()[0].Time; got != 5 {
		t.Fatalf("store aliased caller slice: time=%v", got)
	}
	if err := s.PersistErr(); err != nil {
		t.Fatalf("persist: %v", err)
	}

	re := Load(ctx, st, Defaults{})
	if re.Len() != 2 {
		t.Fatalf("reloaded %d scenes, want 2", re.Len())
	}
	sc, ok := re.Scene(1)
	if !ok || sc.AssetID() != 2 || sc.SubtitleText() != "hello world" {
		t.Fatalf("unexpected reloaded scene: %+v", sc)
	}
	if _, ok := re.Scene(2); ok {
		t.Fatalf("out-of-range index should report false")
	}
}

func TestLoadMalformedStateFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	_ = st.Set(ctx, storage.KeyScenes, "{not json")
	_ = st.Set(ctx, storage.KeyAspectRatio, `"4:3"`)
	_ = st.Set(ctx, storage.KeyAudioSettings, `[1,2]`)
	_ = st.Set(ctx, storage.KeySpeaker, `""`)

	s := Load(ctx, st, Defaults{AspectRatio: domain.Portrait})
	if s.Len() != 0 || s.Scenes() == nil {
		t.Fatalf("expected empty non-nil document, got %v", s.Scenes())
	}
	if s.AspectRatio() != domain.Portrait {
		t.Fatalf("aspect = %s, want configured default", s.AspectRatio())
	}
	if s.Speaker() != DefaultSpeaker {
		t.Fatalf("speaker = %q", s.Speaker())
	}
	if a := s.AudioSettings(); a.VideoVolume != 1 || a.TrackVolume != 1 {
		t.Fatalf("audio defaults not applied: %+v", a)
	}
}

func TestPersistFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := New(st)
	s.ReplaceAll(ctx, sampleScenes(1))

	quota := errors.New("quota exceeded")
	st.FailWrites(quota)
	s.ReplaceAll(ctx, sampleScenes(1, 2, 3))
	if s.Len() != 3 {
		t.Fatalf("in-memory mutation must succeed, len=%d", s.Len())
	}
	if !errors.Is(s.PersistErr(), quota) {
		t.Fatalf("PersistErr = %v", s.PersistErr())
	}
	// Storage still holds the last successful write.
	if re := Load(ctx, st, Defaults{}); re.Len() != 1 {
		t.Fatalf("stored document len=%d, want 1", re.Len())
	}

	st.FailWrites(nil)
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if re := Load(ctx, st, Defaults{}); re.Len() != 3 {
		t.Fatalf("flush did not write the document, len=%d", re.Len())
	}
}

func TestUpdateNoChangeSkipsWrite(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := New(st)
	s.ReplaceAll(ctx, sampleScenes(1))
	before := st.Writes()
	changed := s.Update(ctx, func(sc []domain.Scene) ([]domain.Scene, bool) {
		sc[0].Time = 42 // mutation of the private copy must not leak
		return sc, false
	})
	if changed || st.Writes() != before {
		t.Fatalf("unchanged update wrote to storage")
	}
	if s.Scenes()[0].Time != 5 {
		t.Fatalf("rejected update leaked into document")
	}
}

func TestSnapshotIsStableAcrossLaterMutations(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())
	s.ReplaceAll(ctx, sampleScenes(1, 2))
	snap := s.Scenes()
	s.Update(ctx, func(sc []domain.Scene) ([]domain.Scene, bool) {
		sc[0].SubScenes[0].DisplayItems = append(sc[0].SubScenes[0].DisplayItems, domain.TextItemTemplate())
		return sc[1:], true
	})
	if len(snap) != 2 || len(snap[0].SubScenes[0].DisplayItems) != 0 {
		t.Fatalf("snapshot observed later mutation")
	}
}

func TestSetAspectRatio(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := New(st)
	if err := s.SetAspectRatio(ctx, "2:1"); !errors.Is(err, domain.ErrInvalidAspectRatio) {
		t.Fatalf("expected ErrInvalidAspectRatio, got %v", err)
	}
	if err := s.SetAspectRatio(ctx, domain.Square); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := st.Get(ctx, storage.KeyAspectRatio); v != `"1:1"` {
		t.Fatalf("stored aspect = %s", v)
	}
	if re := Load(ctx, st, Defaults{}); re.AspectRatio() != domain.Square {
		t.Fatalf("reloaded aspect = %s", re.AspectRatio())
	}
}

func TestSpeakerAndToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := New(st)
	s.SetSpeaker(ctx, "Maya")
	s.UpdateWithToggle(ctx, false, func(sc []domain.Scene) ([]domain.Scene, bool) { return sc, false })

	re := Load(ctx, st, Defaults{})
	if re.Speaker() != "Maya" || re.SubtitleToggle() {
		t.Fatalf("speaker=%q toggle=%v", re.Speaker(), re.SubtitleToggle())
	}
}

func nestedAudio(t *testing.T, data string) json.RawMessage {
	t.Helper()
	var bag map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &bag); err != nil {
		t.Fatalf("data bag: %v", err)
	}
	return bag["audioSettings"]
}

func TestAudioCopiesStayIdentical(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := New(st)
	if err := s.SetData(ctx, json.RawMessage(`{"videoId":"abc","audioSettings":{"video_volume":0,"track_volume":0,"tts":"https://cdn.example/tts.mp3"}}`)); err != nil {
		t.Fatalf("set data: %v", err)
	}
	steps := []func(){
		func() { s.SetVideoVolume(ctx, -1) },
		func() { s.SetTrackVolume(ctx, 0.25) },
		func() { s.SetBackgroundMusic(ctx, "https://cdn.example/track.mp3", "t-1", "library") },
		func() { s.ApplyVoice(ctx, domain.AudioSettings{TTS: "https://cdn.example/tts2.mp3", VideoVolume: 0.9}) },
	}
	for i, step := range steps {
		step()
		standalone, _ := st.Get(ctx, storage.KeyAudioSettings)
		data, _ := st.Get(ctx, storage.KeyData)
		if !bytes.Equal([]byte(standalone), nestedAudio(t, data)) {
			t.Fatalf("step %d: copies diverged\n%s\n%s", i, standalone, data)
		}
	}

	a := s.AudioSettings()
	if a.VideoVolume != -1 || a.AmplifyLevel == nil || *a.AmplifyLevel != -1 {
		t.Fatalf("voice must not override gain: %+v", a)
	}
	if a.TrackVolume != 0.25 || a.BackgroundMusicVolume == nil || *a.BackgroundMusicVolume != 0.25 {
		t.Fatalf("track mirror: %+v", a)
	}
	if a.TTS != "https://cdn.example/tts2.mp3" || a.Src != "" {
		t.Fatalf("voice settings should be stored verbatim: %+v", a)
	}
	var bag map[string]any
	_ = json.Unmarshal(s.Data(), &bag)
	if bag["videoId"] != "abc" {
		t.Fatalf("extra data key lost: %v", bag)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	s := New(storage.NewMemoryStore())
	s.SetVideoVolume(context.Background(), 3)
	s.SetTrackVolume(context.Background(), -7)
	a := s.AudioSettings()
	if a.VideoVolume != 1 || a.TrackVolume != -1 {
		t.Fatalf("volumes not clamped: %+v", a)
	}
}

func TestSetDataRejectsNonObject(t *testing.T) {
	s := New(storage.NewMemoryStore())
	if err := s.SetData(context.Background(), json.RawMessage(`[1]`)); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestLoadPrefersStandaloneAudio(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	_ = st.Set(ctx, storage.KeyData, `{"audioSettings":{"video_volume":0.5,"track_volume":0.5},"x":1}`)
	_ = st.Set(ctx, storage.KeyAudioSettings, `{"video_volume":-1,"track_volume":0}`)
	s := Load(ctx, st, Defaults{})
	if a := s.AudioSettings(); a.VideoVolume != -1 {
		t.Fatalf("standalone copy should win: %+v", a)
	}
	st2 := storage.NewMemoryStore()
	_ = st2.Set(ctx, storage.KeyData, `{"audioSettings":{"video_volume":0.5,"track_volume":0.5}}`)
	if a := Load(ctx, st2, Defaults{}).AudioSettings(); a.VideoVolume != 0.5 {
		t.Fatalf("nested copy should be used when standalone is missing: %+v", a)
	}
}

func TestRestoreRevision(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sq, err := storage.OpenSQLite(ctx, t.TempDir(), 10)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer sq.Close()
	s := New(sq)
	s.ReplaceAll(ctx, sampleScenes(1))
	s.ReplaceAll(ctx, sampleScenes(1, 2, 3))

	revs, err := sq.Revisions(ctx, storage.KeyScenes, 10)
	if err != nil || len(revs) != 2 {
		t.Fatalf("revisions = %d, %v", len(revs), err)
	}
	if err := s.RestoreRevision(ctx, sq, revs[1].ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("restored len=%d, want 1", s.Len())
	}
	if err := s.RestoreRevision(ctx, sq, 424242); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
