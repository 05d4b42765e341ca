/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the scene document model. JSON field names are part of the
// persisted format and of the render-service contract, so they keep the wire
// spelling (mixed snake_case and camelCase) rather than Go conventions.

// LogicalWidth and LogicalHeight define the render space every persisted
// position is expressed in, independent of on-screen pixel size.
const (
	LogicalWidth  = 1920
	LogicalHeight = 1080
)

// Scene is one timed shot of the composition.
// Scenes are identified by Background.Src[0].AssetID, never by index.
type Scene struct {
	Background Background `json:"background"`
	Time       float64    `json:"time"` // seconds, authoritative
	Keywords   []string   `json:"keywords"`
	// SubScenes always holds exactly one element in current usage.
	SubScenes []SubScene `json:"sub_scenes"`
	Music     bool       `json:"music"`
	TTS       bool       `json:"tts"`
	Subtitle  bool       `json:"subtitle"`
	// Subtitles holds the raw (pre-reflow, HTML-bearing) subtitle text; single element.
	Subtitles []Subtitle `json:"subtitles"`
	Preview   *Preview   `json:"preview,omitempty"`
}

// Background is the scene's media plus a color fallback.
type Background struct {
	Src         []Media     `json:"src"`
	Color       string      `json:"color"`
	BgAnimation BgAnimation `json:"bg_animation"`
}

type BgAnimation struct {
	Animation string `json:"animation"`
}

// Media is a single background asset.
type Media struct {
	URL        string  `json:"url"`
	AssetID    int64   `json:"asset_id"`
	Type       string  `json:"type"` // video or image
	Library    string  `json:"library,omitempty"`
	Mode       string  `json:"mode,omitempty"` // crop or fit, resolved at export
	Frame      *string `json:"frame"`
	LoopVideo  bool    `json:"loop_video"`
	Mute       bool    `json:"mute"`
	ResourceID int64   `json:"resource_id,omitempty"`
	SessionID  string  `json:"sessionId,omitempty"`
}

// Preview is a timeline thumbnail; never used for the final render.
type Preview struct {
	URL string `json:"url"`
}

// Subtitle is the authoritative raw subtitle of a scene.
type Subtitle struct {
	Text      string  `json:"text"`
	Time      float64 `json:"time,omitempty"`
	StartTime float64 `json:"start_time,omitempty"`
	EndTime   float64 `json:"end_time,omitempty"`
}

// SubScene is the scene's container for overlays, reflowed subtitle lines and subtitle font.
type SubScene struct {
	Time            float64       `json:"time"`
	Location        Anchor        `json:"location"`
	DisplayItems    []DisplayItem `json:"displayItems"`
	TextLines       []TextLine    `json:"text_lines"`
	Subtitle        bool          `json:"subtitle"`
	ShowSceneNumber string        `json:"showSceneNumber,omitempty"`
	Font            Font          `json:"font"`
	MaxWidth        string        `json:"max_width,omitempty"`
}

// Anchor is a point in logical space.
type Anchor struct {
	CenterX float64 `json:"center_x"`
	StartY  float64 `json:"start_y"`
}

// Font describes the subtitle font of a sub-scene.
type Font struct {
	Name              string   `json:"name"`
	Size              float64  `json:"size"`
	Weight            string   `json:"weight,omitempty"`
	LineSpacing       float64  `json:"line_spacing,omitempty"`
	LineHeight        float64  `json:"line_height,omitempty"`
	Color             string   `json:"color"`
	BackColor         string   `json:"backcolor,omitempty"`
	KeyColor          string   `json:"keycolor,omitempty"`
	TextShadowColor   string   `json:"textShadowColor,omitempty"`
	TextShadowWidthFr float64  `json:"textShadowWidthFr,omitempty"`
	Case              *string  `json:"case"`
	Decoration        []string `json:"decoration"`
	FullWidth         bool     `json:"fullWidth"`
}

// TextLine is one renderer-sized subtitle chunk.
type TextLine struct {
	Text            string      `json:"text"`
	TextAnimation   []Animation `json:"text_animation,omitempty"`
	TextBgAnimation []Animation `json:"text_bg_animation,omitempty"`
	Position        *Point      `json:"position,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Animation is one side (start or end) of an animation descriptor pair.
type Animation struct {
	Source    string  `json:"source"`
	Type      string  `json:"type"` // start or end
	Speed     float64 `json:"speed"`
	Animation string  `json:"animation"`
}

// Display item types. Only text items are drawn by the overlay renderer.
const (
	ItemText   = "text"
	ItemVisual = "visual"
)

// PresetCustom marks a location the user has dragged.
const PresetCustom = "custom"

// DisplayItem is one positioned text overlay within a scene.
type DisplayItem struct {
	Type      string         `json:"type"`
	Location  Location       `json:"location"`
	Font      ItemFont       `json:"font"`
	TextLines []ItemTextLine `json:"text_lines"`
}

// Location is always in logical 1920x1080 space.
type Location struct {
	Preset  string  `json:"preset,omitempty"`
	CenterX float64 `json:"center_x"`
	StartY  float64 `json:"start_y"`
}

// ItemTextLine holds the literal overlay text, possibly carrying inline HTML.
type ItemTextLine struct {
	Text            string      `json:"text"`
	TextAnimation   []Animation `json:"text_animation,omitempty"`
	TextBgAnimation []Animation `json:"text_bg_animation,omitempty"`
}

// ItemFont is the style descriptor of a display item.
// Several fields are dual-encoded for a legacy consumer and are kept mirrored:
// FontColor/Color, TextBackgroundColor/BackColor, FontName/Name, FontSize/Size.
// A nil Decoration means "not set"; an empty one means "no decoration".
type ItemFont struct {
	DisplayText         *DisplayText   `json:"displayText,omitempty"`
	FontName            string         `json:"fontName,omitempty"`
	TextShadowWidthFr   float64        `json:"textShadowWidthFr,omitempty"`
	TextAlign           string         `json:"textAlign,omitempty"`
	KeywordColor        string         `json:"keywordColor,omitempty"`
	TextShadowColor     string         `json:"textShadowColor,omitempty"`
	FontSize            string         `json:"fontSize,omitempty"`
	Decoration          []string       `json:"decoration"`
	TextBackgroundColor string         `json:"textBackgroundColor,omitempty"`
	Case                string         `json:"case,omitempty"`
	FontColor           string         `json:"fontColor,omitempty"`
	ParagraphWidth      string         `json:"paragraphWidth,omitempty"`
	Preset              string         `json:"preset,omitempty"`
	FullWidth           bool           `json:"fullWidth"`
	Animation           *AnimationSet  `json:"animation,omitempty"`
	StyleIDObj          *StyleID       `json:"styleIdObj,omitempty"`
	CustomFontMeta      map[string]any `json:"customFontMeta,omitempty"`
	Size                float64        `json:"size,omitempty"`
	LineHeight          float64        `json:"line_height,omitempty"`
	LineSpacing         float64        `json:"line_spacing,omitempty"`
	Name                string         `json:"name,omitempty"`
	Color               string         `json:"color,omitempty"`
	KeyColor            string         `json:"keycolor,omitempty"`
	BackColor           string         `json:"backcolor,omitempty"`
}

type DisplayText struct {
	Keywords []string `json:"keywords"`
	HTML     string   `json:"html"`
	Text     string   `json:"text"`
}

type AnimationSet struct {
	TextAnimation   []Animation `json:"text_animation,omitempty"`
	TextBgAnimation []Animation `json:"text_bg_animation,omitempty"`
}

type StyleID struct {
	ID       string `json:"id"`
	Scope    string `json:"scope"`
	Modified bool   `json:"modified"`
}

// Decoration tags understood by the renderer.
const (
	DecorBold      = "decor-bold"
	DecorItalic    = "decor-italics"
	DecorUnderline = "decor-underline"
	DecorStrike    = "decor-linethrough"
)

// AudioSettings holds the composition-wide audio configuration.
// VideoVolume and TrackVolume live in [-1, 1]: -1 is muted, 0 is unity gain,
// (0, 1] is the boosted range.
type AudioSettings struct {
	VideoVolume  float64 `json:"video_volume"`
	TrackVolume  float64 `json:"track_volume"`
	AudioID      string  `json:"audio_id"`
	AudioLibrary string  `json:"audio_library"`
	Src          string  `json:"src"`
	TTS          string  `json:"tts"`
	// Mirrors kept for the render service's older field names.
	AmplifyLevel          *float64 `json:"amplifyLevel,omitempty"`
	BackgroundMusicVolume *float64 `json:"backGroundMusicVolume,omitempty"`
}

// DefaultAudioSettings is used when nothing has been persisted yet.
func DefaultAudioSettings() AudioSettings {
	return AudioSettings{VideoVolume: 1, TrackVolume: 1}
}

// AssetID returns the identity of a scene, or 0 when it has no background media.
func (s Scene) AssetID() int64 {
	if len(s.Background.Src) == 0 {
		return 0
	}
	return s.Background.Src[0].AssetID
}

// HasSubScene reports whether the scene carries its sub-scene container.
func (s Scene) HasSubScene() bool { return len(s.SubScenes) > 0 }

// SubtitleText returns the raw subtitle text or "".
func (s Scene) SubtitleText() string {
	if len(s.Subtitles) == 0 {
		return ""
	}
	return s.Subtitles[0].Text
}
