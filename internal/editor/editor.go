/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor implements the editing operations on a scene document: display
// items, scene-level changes, subtitles and the selection cursor.
//
// Every operation computes a new scene list from a snapshot and hands it to
// document.Store. Operations addressing an index outside the current bounds do
// nothing and report false.
package editor

import (
	"log/slog"
	"sync"

	"scenecraft/internal/document"
	"scenecraft/internal/domain"
	applog "scenecraft/internal/log"
)

// NoText marks an empty text selection.
const NoText = -1

// Selection is the cursor of an editing session. Scene is looked up from the
// document on every read, so it can never go stale.
type Selection struct {
	SceneIndex  int           `json:"selectedSceneIndex"`
	TextIndex   int           `json:"selectedTextIndex"`
	CurrentText string        `json:"currentText"`
	Scene       *domain.Scene `json:"selectedScene"`
}

// HasText reports whether a display item is selected.
func (s Selection) HasText() bool { return s.TextIndex != NoText }

type cursor struct {
	scene int
	text  int
	buf   string
}

// Editor applies editing operations to one document.
type Editor struct {
	doc *document.Store
	log *slog.Logger

	mu  sync.Mutex
	cur cursor
}

// New returns an editor over doc with scene 0 selected and no text selection.
func New(doc *document.Store) *Editor {
	return &Editor{
		doc: doc,
		log: applog.WithComponent("editor"),
		cur: cursor{text: NoText},
	}
}

// Document returns the underlying store.
func (e *Editor) Document() *document.Store { return e.doc }

// Selection returns the cursor together with the currently selected scene.
func (e *Editor) Selection() Selection {
	e.mu.Lock()
	c := e.cur
	e.mu.Unlock()
	sel := Selection{SceneIndex: c.scene, TextIndex: c.text, CurrentText: c.buf}
	if sc, ok := e.doc.Scene(c.scene); ok {
		sel.Scene = &sc
	}
	return sel
}

// SelectedScene returns the scene under the cursor.
func (e *Editor) SelectedScene() (domain.Scene, bool) {
	e.mu.Lock()
	idx := e.cur.scene
	e.mu.Unlock()
	return e.doc.Scene(idx)
}

// SelectScene moves the cursor to a scene and drops the text selection and edit buffer.
func (e *Editor) SelectScene(index int) bool {
	if index < 0 || index >= e.doc.Len() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cur = cursor{scene: index, text: NoText}
	return true
}

// SelectText selects a display item of the current scene; NoText clears the selection.
// The edit buffer is loaded with the item's text.
func (e *Editor) SelectText(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index == NoText {
		e.cur.text, e.cur.buf = NoText, ""
		return true
	}
	sc, ok := e.doc.Scene(e.cur.scene)
	if !ok {
		return false
	}
	item, ok := itemAt(&sc, index)
	if !ok {
		return false
	}
	e.cur.text = index
	e.cur.buf = itemText(*item)
	return true
}

// SetCurrentText replaces the edit buffer without touching the document.
func (e *Editor) SetCurrentText(text string) {
	e.mu.Lock()
	e.cur.buf = text
	e.mu.Unlock()
}

// Clear resets the cursor.
func (e *Editor) Clear() {
	e.mu.Lock()
	e.cur = cursor{text: NoText}
	e.mu.Unlock()
}

func itemAt(sc *domain.Scene, index int) (*domain.DisplayItem, bool) {
	if !sc.HasSubScene() {
		return nil, false
	}
	items := sc.SubScenes[0].DisplayItems
	if index < 0 || index >= len(items) {
		return nil, false
	}
	return &items[index], true
}

func itemText(d domain.DisplayItem) string {
	if len(d.TextLines) == 0 {
		return ""
	}
	return d.TextLines[0].Text
}
