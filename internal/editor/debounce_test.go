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
	"sync/atomic"
	"testing"
	"time"

	"scenecraft/internal/domain"
	"scenecraft/internal/layout"
)

func TestDebouncerCommitsLastValueOnce(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Value
	for _, v := range []string{"a", "ab", "abc"} {
		d.Submit("k", func() {
			calls.Add(1)
			last.Store(v)
		})
	}
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 || last.Load() != "abc" {
		t.Fatalf("calls=%d last=%v", calls.Load(), last.Load())
	}
	if d.Pending() != 0 {
		t.Fatalf("pending=%d", d.Pending())
	}
}

func TestDebouncedEditsMatchImmediateEdits(t *testing.T) {
	ctx := context.Background()
	direct, _ := newEditor(t, 1)
	debounced, st := newEditor(t, 1)
	for _, e := range []*Editor{direct, debounced} {
		e.AddTextItem(ctx, 0, "x")
	}
	container := layout.Size{Width: 640, Height: 360}
	keystrokes := []string{"H", "He", "Hel", "Hell", "Hello"}
	drags := []domain.Point{{X: 10, Y: 10}, {X: 100, Y: 50}, {X: 320, Y: 180}}

	for _, k := range keystrokes {
		direct.UpdateText(ctx, 0, 0, k)
	}
	for _, p := range drags {
		direct.RepositionItem(ctx, 0, 0, p, container)
	}

	d := NewDebouncer(time.Hour)
	before := st.Writes()
	for _, k := range keystrokes {
		debounced.UpdateTextDebounced(ctx, d, 0, 0, k)
	}
	for _, p := range drags {
		debounced.RepositionItemDebounced(ctx, d, 0, 0, p, container)
	}
	if st.Writes() != before {
		t.Fatalf("debounced edits wrote before flush")
	}
	if d.Pending() != 2 {
		t.Fatalf("pending=%d, want 2", d.Pending())
	}
	d.Flush()
	if got := st.Writes() - before; got != 2 {
		t.Fatalf("flush wrote %d times, want 2", got)
	}

	a := items(t, direct, 0)[0]
	b := items(t, debounced, 0)[0]
	if a.TextLines[0].Text != b.TextLines[0].Text || a.Location != b.Location {
		t.Fatalf("debounced result differs: %+v vs %+v", a, b)
	}
}
