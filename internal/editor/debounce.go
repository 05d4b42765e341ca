/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"

	"scenecraft/internal/domain"
	"scenecraft/internal/layout"
)

// Debouncer coalesces bursts of edits per key and commits only the last one
// after a quiet period. It only reduces write volume: the committed value is the
// same one an immediate call would have produced.
type Debouncer struct {
	after time.Duration

	mu      sync.Mutex
	timers  map[string]func(func())
	pending map[string]func()

	// runMu serializes commits so Flush returns only after a commit started by a
	// timer has landed.
	runMu sync.Mutex
}

// NewDebouncer returns a debouncer that commits after the given quiet period.
func NewDebouncer(after time.Duration) *Debouncer {
	return &Debouncer{
		after:   after,
		timers:  map[string]func(func()){},
		pending: map[string]func(){},
	}
}

// Submit schedules fn under key, replacing anything pending for that key.
func (d *Debouncer) Submit(key string, fn func()) {
	d.mu.Lock()
	d.pending[key] = fn
	t, ok := d.timers[key]
	if !ok {
		t = debounce.New(d.after)
		d.timers[key] = t
	}
	d.mu.Unlock()
	t(func() { d.run(key) })
}

func (d *Debouncer) run(key string) {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.commit(key)
}

func (d *Debouncer) commit(key string) {
	d.mu.Lock()
	fn := d.pending[key]
	delete(d.pending, key)
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Flush commits every pending edit now, in key order. Timers that fire later
// find nothing to do.
func (d *Debouncer) Flush() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.mu.Unlock()
	sort.Strings(keys)
	for _, k := range keys {
		d.commit(k)
	}
}

// Pending reports how many keys wait for a commit.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// UpdateTextDebounced schedules UpdateText through d.
func (e *Editor) UpdateTextDebounced(ctx context.Context, d *Debouncer, sceneIndex, itemIndex int, text string) {
	ctx = context.WithoutCancel(ctx)
	d.Submit(fmt.Sprintf("text/%d/%d", sceneIndex, itemIndex), func() {
		e.UpdateText(ctx, sceneIndex, itemIndex, text)
	})
}

// RepositionItemDebounced schedules RepositionItem through d.
func (e *Editor) RepositionItemDebounced(ctx context.Context, d *Debouncer, sceneIndex, itemIndex int, pos domain.Point, container layout.Size) {
	ctx = context.WithoutCancel(ctx)
	d.Submit(fmt.Sprintf("pos/%d/%d", sceneIndex, itemIndex), func() {
		e.RepositionItem(ctx, sceneIndex, itemIndex, pos, container)
	})
}

// UpdateSubtitleTextDebounced schedules UpdateSubtitleText through d.
func (e *Editor) UpdateSubtitleTextDebounced(ctx context.Context, d *Debouncer, index int, text string) {
	ctx = context.WithoutCancel(ctx)
	d.Submit(fmt.Sprintf("subtitle/%d", index), func() {
		e.UpdateSubtitleText(ctx, index, text)
	})
}
