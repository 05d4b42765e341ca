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
	"log/slog"
	"path"
	"strconv"
	"strings"

	"scenecraft/internal/domain"
	"scenecraft/internal/layout"
	applog "scenecraft/internal/log"
)

// EmptyEditorMarkup is what the rich-text editor emits for an empty field.
const EmptyEditorMarkup = "<p><br></p>"

// AddTextItem appends a text overlay cloned from the template to a scene, centered
// on the logical canvas, and selects it. It returns the new item's index.
//
// If the scene has no items, or its first item is a visual placeholder, the item
// list is cleared first, so placeholders never coexist with text.
func (e *Editor) AddTextItem(ctx context.Context, sceneIndex int, text string) (int, bool) {
	if text == "" {
		text = domain.DefaultItemText
	}
	idx := NoText
	ok := e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		if sceneIndex < 0 || sceneIndex >= len(scenes) {
			return nil, false
		}
		sc := &scenes[sceneIndex]
		if !sc.HasSubScene() {
			sc.SubScenes = []domain.SubScene{{}}
		}
		ss := &sc.SubScenes[0]
		if len(ss.DisplayItems) == 0 || ss.DisplayItems[0].Type == domain.ItemVisual {
			ss.DisplayItems = []domain.DisplayItem{}
		}
		item := domain.TextItemTemplate()
		item.Location = domain.Location{
			Preset:  domain.PresetCustom,
			CenterX: domain.LogicalWidth / 2,
			StartY:  domain.LogicalHeight / 2,
		}
		item.TextLines[0].Text = text
		ss.DisplayItems = append(ss.DisplayItems, item)
		idx = len(ss.DisplayItems) - 1
		return scenes, true
	})
	if !ok {
		return NoText, false
	}
	e.mu.Lock()
	e.cur = cursor{scene: sceneIndex, text: idx, buf: text}
	e.mu.Unlock()
	applog.WithOperation(e.log, "add_text").Debug("text item added",
		slog.Int("scene", sceneIndex), slog.Int("item", idx))
	return idx, true
}

// DeleteTextItem removes a display item. If it was selected the text selection
// and edit buffer are cleared; a selection after it shifts down by one.
func (e *Editor) DeleteTextItem(ctx context.Context, sceneIndex, itemIndex int) bool {
	ok := e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		if sceneIndex < 0 || sceneIndex >= len(scenes) {
			return nil, false
		}
		sc := &scenes[sceneIndex]
		if _, ok := itemAt(sc, itemIndex); !ok {
			return nil, false
		}
		items := sc.SubScenes[0].DisplayItems
		sc.SubScenes[0].DisplayItems = append(items[:itemIndex:itemIndex], items[itemIndex+1:]...)
		return scenes, true
	})
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur.scene == sceneIndex && e.cur.text != NoText {
		switch {
		case e.cur.text == itemIndex:
			e.cur.text, e.cur.buf = NoText, ""
		case e.cur.text > itemIndex:
			e.cur.text--
		}
	}
	return true
}

// RepositionItem moves a display item to a pixel position inside a container of
// the given pixel size. The position is clamped to the container and stored in
// logical space.
func (e *Editor) RepositionItem(ctx context.Context, sceneIndex, itemIndex int, pos domain.Point, container layout.Size) bool {
	x, y, valid := layout.ToLogical(pos, container)
	if !valid {
		return false
	}
	return e.updateItem(ctx, sceneIndex, itemIndex, func(d *domain.DisplayItem) {
		d.Location.CenterX = x
		d.Location.StartY = y
		d.Location.Preset = domain.PresetCustom
	})
}

// UpdateText replaces the literal text of a display item. The editor's empty
// markup is stored as "".
func (e *Editor) UpdateText(ctx context.Context, sceneIndex, itemIndex int, text string) bool {
	if text == EmptyEditorMarkup {
		text = ""
	}
	ok := e.updateItem(ctx, sceneIndex, itemIndex, func(d *domain.DisplayItem) {
		if len(d.TextLines) == 0 {
			d.TextLines = []domain.ItemTextLine{{}}
		}
		d.TextLines[0].Text = text
	})
	if ok {
		e.mu.Lock()
		if e.cur.scene == sceneIndex && e.cur.text == itemIndex {
			e.cur.buf = text
		}
		e.mu.Unlock()
	}
	return ok
}

// UpdateStyle merges a partial font into a display item. Precedence is template
// defaults, then the item's font, then the patch. Unset patch fields are zero
// values (nil for Decoration), so zero and false cannot be written through it;
// UpdateStylePatch can. Hex colors in the patch are stored as rgba, and
// dual-encoded fields are mirrored.
func (e *Editor) UpdateStyle(ctx context.Context, sceneIndex, itemIndex int, patch domain.ItemFont) bool {
	return e.UpdateStylePatch(ctx, sceneIndex, itemIndex, domain.FontPatch{ItemFont: patch})
}

// UpdateStylePatch is UpdateStyle for a patch that may set scalars to zero or
// false. A stored zero is indistinguishable from a missing field, so a later
// style edit refills it from the template unless that patch sets it again.
func (e *Editor) UpdateStylePatch(ctx context.Context, sceneIndex, itemIndex int, patch domain.FontPatch) bool {
	if patch.Size != nil {
		patch.ItemFont.Size = *patch.Size
	}
	patch.ItemFont = normalizePatch(patch.ItemFont)
	return e.updateItem(ctx, sceneIndex, itemIndex, func(d *domain.DisplayItem) {
		d.Font = domain.TemplateFont().Overlay(d.Font).Apply(patch)
	})
}

func (e *Editor) updateItem(ctx context.Context, sceneIndex, itemIndex int, fn func(d *domain.DisplayItem)) bool {
	return e.doc.Update(ctx, func(scenes []domain.Scene) ([]domain.Scene, bool) {
		if sceneIndex < 0 || sceneIndex >= len(scenes) {
			return nil, false
		}
		d, ok := itemAt(&scenes[sceneIndex], itemIndex)
		if !ok {
			return nil, false
		}
		fn(d)
		return scenes, true
	})
}

func normalizePatch(p domain.ItemFont) domain.ItemFont {
	out := p.Clone()
	for _, c := range []*string{
		&out.FontColor, &out.Color, &out.TextBackgroundColor, &out.BackColor,
		&out.KeywordColor, &out.KeyColor, &out.TextShadowColor,
	} {
		*c = domain.NormalizeColor(*c)
	}
	mirror(&out.FontColor, &out.Color)
	mirror(&out.TextBackgroundColor, &out.BackColor)

	switch {
	case out.FontName != "" && out.Name == "":
		out.Name = fontFile(out.FontName)
	case out.Name != "" && out.FontName == "":
		out.FontName = strings.TrimSuffix(out.Name, path.Ext(out.Name))
	}

	switch {
	case out.FontSize != "" && out.Size == 0:
		if v, err := strconv.ParseFloat(strings.TrimSuffix(out.FontSize, "px"), 64); err == nil {
			out.Size = v
		}
	case out.Size != 0 && out.FontSize == "":
		out.FontSize = strconv.FormatFloat(out.Size, 'f', -1, 64)
	}
	return out
}

func mirror(a, b *string) {
	switch {
	case *a != "" && *b == "":
		*b = *a
	case *b != "" && *a == "":
		*a = *b
	}
}

// fontFile maps a family name to the font file the renderer loads.
func fontFile(family string) string {
	if path.Ext(family) != "" {
		return family
	}
	return family + ".ttf"
}

// DecorationTags builds the decoration list for the given flags. The result is
// never nil, so it clears decorations when every flag is false.
func DecorationTags(bold, italic, underline, strike bool) []string {
	tags := []string{}
	if bold {
		tags = append(tags, domain.DecorBold)
	}
	if italic {
		tags = append(tags, domain.DecorItalic)
	}
	if underline {
		tags = append(tags, domain.DecorUnderline)
	}
	if strike {
		tags = append(tags, domain.DecorStrike)
	}
	return tags
}
