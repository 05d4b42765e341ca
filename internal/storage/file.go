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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "scenecraft/internal/log"
)

const (
	BackupsDirName = "backups"
	fileExt        = ".json"
)

// FileStore keeps each key in <dir>/<key>.json.
// Writes go to a temp file that is renamed over the target; the previous value
// is copied to <dir>/backups/<key>.json.<stamp>.bak first. A value that is
// unreadable or not valid JSON on Get is recovered from the newest backup.
type FileStore struct {
	dir         string
	keepBackups int
	mu          sync.Mutex
}

// NewFileStore creates dir (and its backups folder) if needed.
func NewFileStore(dir string, keepBackups int) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, keepBackups: keepBackups}, nil
}

// Dir returns the store's root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string { return filepath.Join(s.dir, key+fileExt) }

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err == nil && json.Valid(b) {
		return string(b), nil
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "file_get").With(slog.String("key", key))
	bv, berr := s.latestBackup(key)
	if berr != nil {
		if err != nil {
			return "", fmt.Errorf("read %s: %w; backup attempt: %v", key, err, berr)
		}
		// Corrupt without a backup: hand back the raw bytes and let the caller decide.
		l.Warn("value is not valid JSON and no backup exists")
		return string(b), nil
	}
	l.Warn("recovered value from backup", slog.Any("err", err))
	return bv, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.path(key)
	bdir := filepath.Join(s.dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	if _, statErr := os.Stat(target); statErr == nil {
		stamp := time.Now().UTC().Format("20060102-150405.000000000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s%s.%s.bak", key, fileExt, stamp))
		if cerr := copyFile(target, bpath); cerr != nil {
			return fmt.Errorf("backup %s: %w", key, cerr)
		}
		s.pruneBackups(key)
	}

	temp := filepath.Join(s.dir, fmt.Sprintf(".%s%s.tmp-%d-%d", key, fileExt, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, []byte(value)); err != nil {
		return fmt.Errorf("write temp %s: %w", key, err)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(target); err == nil {
		_ = os.Remove(target)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Backups returns the backup file paths for key, oldest first.
func (s *FileStore) Backups(key string) ([]string, error) {
	bdir := filepath.Join(s.dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := key + fileExt + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func (s *FileStore) pruneBackups(key string) {
	if s.keepBackups <= 0 {
		return
	}
	list, err := s.Backups(key)
	if err != nil || len(list) <= s.keepBackups {
		return
	}
	for _, p := range list[:len(list)-s.keepBackups] {
		_ = os.Remove(p)
	}
}

func (s *FileStore) latestBackup(key string) (string, error) {
	list, err := s.Backups(key)
	if err != nil {
		return "", err
	}
	for i := len(list) - 1; i >= 0; i-- {
		b, err := os.ReadFile(list[i])
		if err == nil && json.Valid(b) {
			return string(b), nil
		}
	}
	return "", errors.New("no usable backups found")
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
