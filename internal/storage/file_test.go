/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_SetGetAndBackups(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, KeyScenes); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, KeyScenes, `[]`); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := s.Set(ctx, KeyScenes, `[{"time":5}]`); err != nil {
		t.Fatalf("second set: %v", err)
	}
	got, err := s.Get(ctx, KeyScenes)
	if err != nil || got != `[{"time":5}]` {
		t.Fatalf("get = %q, %v", got, err)
	}
	backups, err := s.Backups(KeyScenes)
	if err != nil {
		t.Fatalf("backups: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected one backup of the previous value, got %d", len(backups))
	}
	b, _ := os.ReadFile(backups[0])
	if string(b) != `[]` {
		t.Fatalf("backup content = %q", b)
	}
	// No temp files left behind
	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestFileStore_RecoversCorruptValueFromBackup(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	_ = s.Set(ctx, KeyAspectRatio, `"9:16"`)
	_ = s.Set(ctx, KeyAspectRatio, `"1:1"`)

	if err := os.WriteFile(filepath.Join(dir, KeyAspectRatio+".json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	got, err := s.Get(ctx, KeyAspectRatio)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `"9:16"` {
		t.Fatalf("expected newest backup, got %q", got)
	}
}

func TestFileStore_CorruptWithoutBackupReturnsRaw(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, KeySpeaker+".json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Get(context.Background(), KeySpeaker)
	if err != nil || got != "not json" {
		t.Fatalf("get = %q, %v", got, err)
	}
}

func TestFileStore_PrunesBackups(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	for _, v := range []string{`1`, `2`, `3`, `4`, `5`} {
		if err := s.Set(ctx, KeySpeaker, v); err != nil {
			t.Fatalf("set %s: %v", v, err)
		}
	}
	backups, _ := s.Backups(KeySpeaker)
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups after pruning, got %d", len(backups))
	}
	b, _ := os.ReadFile(backups[len(backups)-1])
	if string(b) != `4` {
		t.Fatalf("newest backup = %q, want 4", b)
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := st.(*MemoryStore); !ok {
		t.Fatalf("expected *MemoryStore, got %T", st)
	}
	st, err = Open(ctx, Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Fatalf("expected *FileStore by default, got %T", st)
	}
	if _, err := Open(ctx, Options{Backend: "redis"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestMemoryStore_FailWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	quota := errors.New("quota exceeded")
	s.FailWrites(quota)
	if err := s.Set(ctx, "k", "w"); !errors.Is(err, quota) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if v, _ := s.Get(ctx, "k"); v != "v" {
		t.Fatalf("failed write must not change value, got %q", v)
	}
	if s.Writes() != 1 {
		t.Fatalf("writes = %d", s.Writes())
	}
}
