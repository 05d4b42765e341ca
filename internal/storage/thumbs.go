/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvThumbsMaxBytes caps the thumbnail cache size.
const EnvThumbsMaxBytes = "SCN_THUMBS_MAX_BYTES"

const defaultThumbsMaxBytes = 64 * 1024 * 1024

// accessLayout has a fixed width so last_access sorts chronologically as text.
const accessLayout = "2006-01-02T15:04:05.000000000Z"

// ThumbKey identifies one cached scene thumbnail. Digest changes whenever the
// scene content changes, so stale thumbnails are never returned.
type ThumbKey struct {
	AssetID int64
	Digest  string
	W, H    int
}

// ThumbCache stores rendered scene thumbnails.
type ThumbCache interface {
	GetOrCreateThumb(ctx context.Context, key ThumbKey, gen func(context.Context) ([]byte, error)) ([]byte, error)
}

const thumbsDDL = `CREATE TABLE IF NOT EXISTS thumbs (
	id          INTEGER PRIMARY KEY,
	asset_id    INTEGER NOT NULL,
	digest      TEXT    NOT NULL,
	w           INTEGER NOT NULL,
	h           INTEGER NOT NULL,
	blob        BLOB    NOT NULL,
	size        INTEGER NOT NULL,
	updated_at  TEXT    NOT NULL,
	last_access TEXT    NOT NULL,
	UNIQUE(asset_id, digest, w, h)
);`

const thumbsAccessIdx = `CREATE INDEX IF NOT EXISTS idx_thumbs_access ON thumbs(last_access)`

// GetThumb returns the cached PNG for key and updates its access time.
// A miss returns nil, nil.
func (s *SQLiteStore) GetThumb(ctx context.Context, key ThumbKey) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM thumbs WHERE asset_id=? AND digest=? AND w=? AND h=?`,
		key.AssetID, key.Digest, key.W, key.H).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query thumb: %w", err)
	}
	now := time.Now().UTC().Format(accessLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE thumbs SET last_access=? WHERE asset_id=? AND digest=? AND w=? AND h=?`,
		now, key.AssetID, key.Digest, key.W, key.H)
	return blob, nil
}

// PutThumb upserts a thumbnail, drops older digests of the same asset and
// enforces the cache size cap via LRU eviction.
func (s *SQLiteStore) PutThumb(ctx context.Context, key ThumbKey, blob []byte) error {
	if len(blob) == 0 {
		return errors.New("empty thumbnail")
	}
	now := time.Now().UTC().Format(accessLayout)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put thumb: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM thumbs WHERE asset_id=? AND digest<>?`, key.AssetID, key.Digest); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("drop stale thumbs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO thumbs(asset_id,digest,w,h,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(asset_id,digest,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key.AssetID, key.Digest, key.W, key.H, blob, len(blob), now, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert thumb: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit thumb: %w", err)
	}
	if capBytes := ThumbsMaxBytesFromEnv(); capBytes > 0 {
		return s.EvictThumbsToFit(ctx, capBytes)
	}
	return nil
}

// GetOrCreateThumb fetches a thumbnail or generates and stores it using gen.
func (s *SQLiteStore) GetOrCreateThumb(ctx context.Context, key ThumbKey, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := s.GetThumb(ctx, key); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.PutThumb(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictThumbsToFit deletes least-recently-used rows until total size <= capBytes.
func (s *SQLiteStore) EvictThumbsToFit(ctx context.Context, capBytes int64) error {
	total, err := s.ThumbBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, size FROM thumbs ORDER BY last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() && cur > capBytes {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing; the pool holds a single connection.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM thumbs WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := s.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// ThumbBytes returns the total size of cached thumbnails.
func (s *SQLiteStore) ThumbBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM thumbs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum thumbs size: %w", err)
	}
	return total, nil
}

// ThumbsMaxBytesFromEnv reads SCN_THUMBS_MAX_BYTES, defaulting to 64MB.
func ThumbsMaxBytesFromEnv() int64 {
	n, err := strconv.ParseInt(os.Getenv(EnvThumbsMaxBytes), 10, 64)
	if err != nil || n <= 0 {
		return defaultThumbsMaxBytes
	}
	return n
}
