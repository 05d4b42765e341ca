/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"scenecraft/internal/config"
	"scenecraft/internal/document"
	"scenecraft/internal/domain"
	"scenecraft/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigFile, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvServicesURL, "")
	t.Setenv(config.EnvLogLevel, "error")
	flagDataDir, flagStorage, flagEnvFile = "", "", ""
	app = session{}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dir, "--env-file", filepath.Join(dir, "none.env")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAspectCommandPersists(t *testing.T) {
	out, err := run(t, "--storage", "sqlite", "aspect", "9:16")
	if err != nil {
		t.Fatalf("aspect: %v", err)
	}
	if strings.TrimSpace(out) != "9:16" {
		t.Fatalf("output = %q", out)
	}
	if _, err := run(t, "aspect", "4:3"); err == nil {
		t.Fatalf("expected error for unknown ratio")
	}
}

func TestVolumeCommandUsesSlider(t *testing.T) {
	out, err := run(t, "--storage", "memory", "volume", "video", "0")
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if strings.TrimSpace(out) != "Mute: -1" {
		t.Fatalf("output = %q", out)
	}
	out, err = run(t, "--storage", "memory", "volume", "music", "7", "--signed")
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if strings.TrimSpace(out) != "TTS: 1.00" {
		t.Fatalf("clamped output = %q", out)
	}
	out, err = run(t, "--storage", "memory", "volume", "video", "--signed", "--", "-1")
	if err != nil {
		t.Fatalf("negative signed level: %v", err)
	}
	if strings.TrimSpace(out) != "Mute: -1" {
		t.Fatalf("negative output = %q", out)
	}
}

func TestRevisionsNeedSQLite(t *testing.T) {
	if _, err := run(t, "--storage", "memory", "revisions"); err == nil || !strings.Contains(err.Error(), "keeps no revisions") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateWithoutServices(t *testing.T) {
	if _, err := run(t, "--storage", "memory", "generate", "a", "video"); err == nil || !strings.Contains(err.Error(), "no services") {
		t.Fatalf("err = %v", err)
	}
}

func TestPrintSnapshotWrapsSubtitles(t *testing.T) {
	doc := document.New(storage.NewMemoryStore())
	doc.ReplaceAll(context.Background(), []domain.Scene{domain.NormalizeScene(domain.Scene{
		Background: domain.Background{Src: []domain.Media{{AssetID: 7, URL: "https://cdn.example/a.mp4"}}},
		Time:       3,
		Subtitles:  []domain.Subtitle{{Text: "<p>one two three four five six seven eight nine ten</p>"}},
	})})
	var buf bytes.Buffer
	printSnapshot(&buf, doc.Snapshot(), 24)
	s := buf.String()
	if !strings.Contains(s, "#1  asset 7  3.0s  https://cdn.example/a.mp4") {
		t.Fatalf("scene header missing:\n%s", s)
	}
	if strings.Contains(s, "<p>") {
		t.Fatalf("html not stripped:\n%s", s)
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "    ") && len(line) > 24 {
			t.Fatalf("line not wrapped: %q", line)
		}
	}
}
