/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenecraft/internal/document"
	"scenecraft/internal/domain"
	"scenecraft/internal/storage"
)

// TestRecoverAutosavesDocument ensures Recover handles a panic, writes a report,
// flushes the document, and does not terminate the test process due to injected exitFn.
func TestRecoverAutosavesDocument(t *testing.T) {
	// Capture stderr temporarily to avoid noisy test logs
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r) // drain pipe
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	mem := storage.NewMemoryStore()
	doc := document.New(mem)
	// The edit itself fails to persist; only the crash flush can save it.
	mem.FailWrites(errors.New("disk full"))
	doc.ReplaceAll(context.Background(), []domain.Scene{domain.NormalizeScene(domain.Scene{
		Background: domain.Background{Src: []domain.Media{{AssetID: 3}}}, Time: 2,
	})})
	mem.FailWrites(nil)
	if _, err := mem.Get(context.Background(), storage.KeyScenes); err == nil {
		t.Fatalf("scenes should not be stored before the crash")
	}

	func() {
		defer Recover(doc, dir)
		panic("boom")
	}()

	var found string
	files, _ := os.ReadDir(filepath.Join(dir, ReportsDirName))
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			found = filepath.Join(dir, ReportsDirName, f.Name())
			break
		}
	}
	if found == "" {
		t.Fatalf("expected crash report file under data dir")
	}
	b, err := os.ReadFile(found)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) || !bytes.Contains(b, []byte("Scenes: 1")) || !bytes.Contains(b, []byte("LastPersistError: disk full")) {
		t.Fatalf("report content: %s", string(b))
	}
	if v, err := mem.Get(context.Background(), storage.KeyScenes); err != nil || !strings.Contains(v, `"asset_id":3`) {
		t.Fatalf("document not flushed: %q %v", v, err)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverFuncResolvesLateDocument(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	var doc *document.Store
	func() {
		defer RecoverFunc(func() (*document.Store, string) { return doc, dir })
		doc = document.New(storage.NewMemoryStore())
		panic("late")
	}()

	files, _ := os.ReadDir(filepath.Join(dir, ReportsDirName))
	if len(files) != 1 {
		t.Fatalf("expected one crash report, got %d", len(files))
	}
	b, _ := os.ReadFile(filepath.Join(dir, ReportsDirName, files[0].Name()))
	if !bytes.Contains(b, []byte("Scenes: 0")) {
		t.Fatalf("late document not reported: %s", b)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}
