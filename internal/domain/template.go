/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "maps"

const (
	// TemplateItemText is the literal carried by the canonical template.
	TemplateItemText = "add text "
	// DefaultItemText is what an overlay added without text starts with.
	DefaultItemText = "New Texts"
)

func templateAnimations() []Animation {
	return []Animation{
		{Source: "templates", Type: "start", Speed: 1.5, Animation: "none"},
		{Source: "templates", Type: "end", Speed: 1.05, Animation: "none"},
	}
}

// textItemTemplate is the canonical display item. It is never handed out directly;
// callers get a deep copy through TextItemTemplate.
var textItemTemplate = DisplayItem{
	Type: ItemText,
	Location: Location{
		Preset:  "center-center",
		CenterX: 950.88888888888886,
		StartY:  612.4444444444445,
	},
	Font: ItemFont{
		DisplayText:         &DisplayText{Keywords: []string{}},
		FontName:            "sans-serif",
		TextShadowWidthFr:   0.04,
		TextAlign:           "center",
		KeywordColor:        "rgba(255,255,255,1)",
		TextShadowColor:     "rgba(0,0,0,1)",
		FontSize:            "30",
		Decoration:          []string{"bold"},
		TextBackgroundColor: "rgba(0,0,0,0)",
		Case:                "case-none",
		FontColor:           "#FAFAFA",
		ParagraphWidth:      "90%",
		Preset:              "center-center",
		Animation: &AnimationSet{
			TextAnimation:   templateAnimations(),
			TextBgAnimation: templateAnimations(),
		},
		StyleIDObj:     &StyleID{ID: "e91cd530-d2f2-4e1a-9572-22176bc4b5c0", Scope: "global", Modified: true},
		CustomFontMeta: map[string]any{},
		Size:           30,
		LineHeight:     88,
		LineSpacing:    1.2,
		Name:           "sans-serif.ttf",
		Color:          "#FAFAFA",
		KeyColor:       "rgba(255,255,255,1)",
		BackColor:      "rgba(0,0,0,0)",
	},
	TextLines: []ItemTextLine{{
		Text:            TemplateItemText,
		TextAnimation:   templateAnimations(),
		TextBgAnimation: templateAnimations(),
	}},
}

// TextItemTemplate returns a deep copy of the canonical text display item.
func TextItemTemplate() DisplayItem { return textItemTemplate.Clone() }

// TemplateFont returns a deep copy of the canonical font defaults.
func TemplateFont() ItemFont { return textItemTemplate.Font.Clone() }

func cloneAnimations(in []Animation) []Animation {
	if in == nil {
		return nil
	}
	out := make([]Animation, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// cloneValue copies JSON-shaped values (maps, slices, scalars).
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// Clone returns a deep copy of f.
func (f ItemFont) Clone() ItemFont {
	out := f
	if f.DisplayText != nil {
		dt := *f.DisplayText
		dt.Keywords = cloneStrings(f.DisplayText.Keywords)
		out.DisplayText = &dt
	}
	out.Decoration = cloneStrings(f.Decoration)
	if f.Animation != nil {
		out.Animation = &AnimationSet{
			TextAnimation:   cloneAnimations(f.Animation.TextAnimation),
			TextBgAnimation: cloneAnimations(f.Animation.TextBgAnimation),
		}
	}
	if f.StyleIDObj != nil {
		s := *f.StyleIDObj
		out.StyleIDObj = &s
	}
	if f.CustomFontMeta != nil {
		out.CustomFontMeta = cloneValue(f.CustomFontMeta).(map[string]any)
	}
	return out
}

// Overlay returns f with every field that is set in over replacing f's value.
// Unset means the zero value, or nil for Decoration.
func (f ItemFont) Overlay(over ItemFont) ItemFont {
	out := f.Clone()
	o := over.Clone()
	if o.DisplayText != nil {
		out.DisplayText = o.DisplayText
	}
	setString(&out.FontName, o.FontName)
	setFloat(&out.TextShadowWidthFr, o.TextShadowWidthFr)
	setString(&out.TextAlign, o.TextAlign)
	setString(&out.KeywordColor, o.KeywordColor)
	setString(&out.TextShadowColor, o.TextShadowColor)
	setString(&out.FontSize, o.FontSize)
	if o.Decoration != nil {
		out.Decoration = o.Decoration
	}
	setString(&out.TextBackgroundColor, o.TextBackgroundColor)
	setString(&out.Case, o.Case)
	setString(&out.FontColor, o.FontColor)
	setString(&out.ParagraphWidth, o.ParagraphWidth)
	setString(&out.Preset, o.Preset)
	if o.FullWidth {
		out.FullWidth = true
	}
	if o.Animation != nil {
		out.Animation = o.Animation
	}
	if o.StyleIDObj != nil {
		out.StyleIDObj = o.StyleIDObj
	}
	if o.CustomFontMeta != nil {
		if out.CustomFontMeta == nil {
			out.CustomFontMeta = map[string]any{}
		}
		maps.Copy(out.CustomFontMeta, o.CustomFontMeta)
	}
	setFloat(&out.Size, o.Size)
	setFloat(&out.LineHeight, o.LineHeight)
	setFloat(&out.LineSpacing, o.LineSpacing)
	setString(&out.Name, o.Name)
	setString(&out.Color, o.Color)
	setString(&out.KeyColor, o.KeyColor)
	setString(&out.BackColor, o.BackColor)
	return out
}

// FontPatch is a partial ItemFont for style edits. The scalars whose zero value
// is a real setting are pointers, so a patch can turn fullWidth off or set a
// size to 0. They shadow the embedded fields of the same JSON name.
type FontPatch struct {
	ItemFont
	FullWidth         *bool    `json:"fullWidth,omitempty"`
	TextShadowWidthFr *float64 `json:"textShadowWidthFr,omitempty"`
	Size              *float64 `json:"size,omitempty"`
	LineHeight        *float64 `json:"line_height,omitempty"`
	LineSpacing       *float64 `json:"line_spacing,omitempty"`
}

// Apply overlays p onto f. Pointer fields are applied even when they hold zero.
func (f ItemFont) Apply(p FontPatch) ItemFont {
	out := f.Overlay(p.ItemFont)
	if p.FullWidth != nil {
		out.FullWidth = *p.FullWidth
	}
	for _, v := range []struct {
		dst *float64
		src *float64
	}{
		{&out.TextShadowWidthFr, p.TextShadowWidthFr},
		{&out.Size, p.Size},
		{&out.LineHeight, p.LineHeight},
		{&out.LineSpacing, p.LineSpacing},
	} {
		if v.src != nil {
			*v.dst = *v.src
		}
	}
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// Clone returns a deep copy of d.
func (d DisplayItem) Clone() DisplayItem {
	out := d
	out.Font = d.Font.Clone()
	if d.TextLines != nil {
		out.TextLines = make([]ItemTextLine, len(d.TextLines))
		for i, tl := range d.TextLines {
			out.TextLines[i] = ItemTextLine{
				Text:            tl.Text,
				TextAnimation:   cloneAnimations(tl.TextAnimation),
				TextBgAnimation: cloneAnimations(tl.TextBgAnimation),
			}
		}
	}
	return out
}

// Clone returns a deep copy of t.
func (t TextLine) Clone() TextLine {
	out := t
	out.TextAnimation = cloneAnimations(t.TextAnimation)
	out.TextBgAnimation = cloneAnimations(t.TextBgAnimation)
	if t.Position != nil {
		p := *t.Position
		out.Position = &p
	}
	return out
}

// Clone returns a deep copy of f.
func (f Font) Clone() Font {
	out := f
	if f.Case != nil {
		c := *f.Case
		out.Case = &c
	}
	out.Decoration = cloneStrings(f.Decoration)
	return out
}

// Clone returns a deep copy of s.
func (s SubScene) Clone() SubScene {
	out := s
	if s.DisplayItems != nil {
		out.DisplayItems = make([]DisplayItem, len(s.DisplayItems))
		for i, d := range s.DisplayItems {
			out.DisplayItems[i] = d.Clone()
		}
	}
	if s.TextLines != nil {
		out.TextLines = make([]TextLine, len(s.TextLines))
		for i, tl := range s.TextLines {
			out.TextLines[i] = tl.Clone()
		}
	}
	out.Font = s.Font.Clone()
	return out
}

// Clone returns a deep copy of m.
func (m Media) Clone() Media {
	out := m
	if m.Frame != nil {
		f := *m.Frame
		out.Frame = &f
	}
	return out
}

// Clone returns a deep copy of s.
func (s Scene) Clone() Scene {
	out := s
	if s.Background.Src != nil {
		out.Background.Src = make([]Media, len(s.Background.Src))
		for i, m := range s.Background.Src {
			out.Background.Src[i] = m.Clone()
		}
	}
	out.Keywords = cloneStrings(s.Keywords)
	if s.SubScenes != nil {
		out.SubScenes = make([]SubScene, len(s.SubScenes))
		for i, ss := range s.SubScenes {
			out.SubScenes[i] = ss.Clone()
		}
	}
	if s.Subtitles != nil {
		out.Subtitles = make([]Subtitle, len(s.Subtitles))
		copy(out.Subtitles, s.Subtitles)
	}
	if s.Preview != nil {
		p := *s.Preview
		out.Preview = &p
	}
	return out
}

// CloneScenes deep-copies a scene list. A nil list stays nil.
func CloneScenes(in []Scene) []Scene {
	if in == nil {
		return nil
	}
	out := make([]Scene, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns a copy of a with its pointer mirrors detached.
func (a AudioSettings) Clone() AudioSettings {
	out := a
	if a.AmplifyLevel != nil {
		v := *a.AmplifyLevel
		out.AmplifyLevel = &v
	}
	if a.BackgroundMusicVolume != nil {
		v := *a.BackgroundMusicVolume
		out.BackgroundMusicVolume = &v
	}
	return out
}
