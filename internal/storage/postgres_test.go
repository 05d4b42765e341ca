/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openPGForTest(t *testing.T, session string) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("SCN_PG_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("SCN_PG_DSN not set; skipping postgres test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := OpenPostgres(ctx, dsn, session)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	return s
}

func TestPostgresStore_SessionsAreIsolated(t *testing.T) {
	a := openPGForTest(t, "test-"+uuid.NewString())
	defer a.Close()
	b := openPGForTest(t, "test-"+uuid.NewString())
	defer b.Close()
	ctx := context.Background()

	if err := a.Set(ctx, KeyAspectRatio, `"9:16"`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := a.Set(ctx, KeyAspectRatio, `"1:1"`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, err := a.Get(ctx, KeyAspectRatio); err != nil || v != `"1:1"` {
		t.Fatalf("get = %q, %v", v, err)
	}
	if _, err := b.Get(ctx, KeyAspectRatio); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other session should not see the value, got %v", err)
	}
}

func TestParseMigrationVersion(t *testing.T) {
	v, err := parseMigrationVersion("migrations/0002_kv_updated_idx.sql")
	if err != nil || v != 2 {
		t.Fatalf("got %d, %v", v, err)
	}
	if _, err := parseMigrationVersion("abc.sql"); err == nil {
		t.Fatalf("expected error for missing numeric prefix")
	}
}
