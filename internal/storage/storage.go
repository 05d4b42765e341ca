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
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is the durable key/value collaborator of the document store.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Revision is one historical value of a key.
type Revision struct {
	ID    int64
	Key   string
	Value string
	At    time.Time
}

// Historian is implemented by backends that keep a revision history.
type Historian interface {
	Revisions(ctx context.Context, key string, limit int) ([]Revision, error)
	Revision(ctx context.Context, id int64) (Revision, error)
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string // file and sqlite backends
	DSN     string // postgres
	Session string // postgres row scope
	// KeepBackups bounds the file backend's backup count per key; 0 keeps all.
	KeepBackups int
	// KeepRevisions bounds the sqlite revision history per key; 0 keeps all.
	KeepRevisions int
}

// Open returns the backend named in opts.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.Dir, opts.KeepBackups)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.Dir, opts.KeepRevisions)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DSN, opts.Session)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
