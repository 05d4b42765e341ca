package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTextItemTemplateIsDeepCopy(t *testing.T) {
	a := TextItemTemplate()
	b := TextItemTemplate()

	a.Font.Decoration[0] = "decor-italics"
	a.Font.Animation.TextAnimation[0].Speed = 9
	a.Font.StyleIDObj.ID = "changed"
	a.Font.CustomFontMeta["k"] = "v"
	a.TextLines[0].Text = "mutated"
	a.TextLines[0].TextAnimation[1].Animation = "fade"

	if b.Font.Decoration[0] != "bold" {
		t.Fatalf("decoration aliased: %v", b.Font.Decoration)
	}
	if b.Font.Animation.TextAnimation[0].Speed != 1.5 {
		t.Fatalf("animation aliased: %+v", b.Font.Animation.TextAnimation[0])
	}
	if b.Font.StyleIDObj.ID == "changed" {
		t.Fatalf("style id aliased")
	}
	if _, ok := b.Font.CustomFontMeta["k"]; ok {
		t.Fatalf("custom font meta aliased")
	}
	if b.TextLines[0].Text != TemplateItemText || b.TextLines[0].TextAnimation[1].Animation != "none" {
		t.Fatalf("text lines aliased: %+v", b.TextLines[0])
	}
	if c := TextItemTemplate(); c.Font.Decoration[0] != "bold" {
		t.Fatalf("canonical template was modified")
	}
}

func TestSceneCloneIsolation(t *testing.T) {
	frame := "f1"
	s := Scene{
		Background: Background{Src: []Media{{AssetID: 7, Frame: &frame}}},
		Keywords:   []string{"sea"},
		SubScenes: []SubScene{{
			DisplayItems: []DisplayItem{TextItemTemplate()},
			TextLines:    []TextLine{{Text: "hello", Position: &Point{X: 1}}},
		}},
		Subtitles: []Subtitle{{Text: "hello"}},
		Preview:   &Preview{URL: "p"},
	}
	c := s.Clone()
	c.Background.Src[0].AssetID = 8
	*c.Background.Src[0].Frame = "f2"
	c.Keywords[0] = "land"
	c.SubScenes[0].DisplayItems[0].Font.FontColor = "red"
	c.SubScenes[0].TextLines[0].Position.X = 5
	c.Subtitles[0].Text = "bye"
	c.Preview.URL = "q"

	if s.AssetID() != 7 || *s.Background.Src[0].Frame != "f1" || s.Keywords[0] != "sea" {
		t.Fatalf("background/keywords aliased: %+v", s)
	}
	if s.SubScenes[0].DisplayItems[0].Font.FontColor != "#FAFAFA" {
		t.Fatalf("display item aliased")
	}
	if s.SubScenes[0].TextLines[0].Position.X != 1 || s.Subtitles[0].Text != "hello" || s.Preview.URL != "p" {
		t.Fatalf("nested values aliased")
	}
}

func TestFontOverlayPrecedence(t *testing.T) {
	base := TemplateFont()
	existing := ItemFont{FontColor: "rgba(1,2,3,1)", Color: "rgba(1,2,3,1)"}
	merged := base.Overlay(existing).Overlay(ItemFont{Decoration: []string{}})

	if merged.FontColor != "rgba(1,2,3,1)" {
		t.Fatalf("existing value lost: %q", merged.FontColor)
	}
	if merged.FontName != "sans-serif" || merged.Size != 30 {
		t.Fatalf("template defaults missing: %+v", merged)
	}
	if merged.Decoration == nil || len(merged.Decoration) != 0 {
		t.Fatalf("explicit empty decoration should win, got %v", merged.Decoration)
	}
}

func TestHexToRGBA(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#FF0000", "rgba(255,0,0,1)", true},
		{"#0f0", "rgba(0,255,0,1)", true},
		{"#FAFAFA", "rgba(250,250,250,1)", true},
		{"rgba(1,2,3,1)", "rgba(1,2,3,1)", false},
		{"#12345", "#12345", false},
		{"#GGGGGG", "#GGGGGG", false},
		{"red", "red", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := HexToRGBA(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("HexToRGBA(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
	if NormalizeColor("#000") != "rgba(0,0,0,1)" {
		t.Fatalf("NormalizeColor did not convert")
	}
}

func TestParseAspectRatio(t *testing.T) {
	for _, ar := range AspectRatios() {
		got, err := ParseAspectRatio(string(ar))
		if err != nil || got != ar {
			t.Fatalf("ParseAspectRatio(%q) = %q, %v", ar, got, err)
		}
	}
	if _, err := ParseAspectRatio("4:3"); !errors.Is(err, ErrInvalidAspectRatio) {
		t.Fatalf("expected ErrInvalidAspectRatio, got %v", err)
	}
}

func TestDecodeSceneBatchNormalizes(t *testing.T) {
	payload := `{
	  "scenesSettings": [
	    {"background": {"src": [{"asset_id": 4, "url": "a.mp4", "type": "video"}]}, "time": 5,
	     "sub_scenes": [{"displayItems": []}], "subtitles": [{"text": "first"}]},
	    {"background": {"src": [{"asset_id": 4, "url": "b.mp4", "type": "video"}]}, "time": 3,
	     "sub_scenes": [{}]}
	  ],
	  "audioSettings": {"video_volume": 0, "track_volume": -1, "audio_id": "", "audio_library": "", "src": "", "tts": ""}
	}`
	b, err := DecodeSceneBatch([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(b.ScenesSettings) != 2 {
		t.Fatalf("scenes: %d", len(b.ScenesSettings))
	}
	if b.ScenesSettings[0].AssetID() != 4 || b.ScenesSettings[1].AssetID() != 5 {
		t.Fatalf("duplicate id not reassigned: %d %d", b.ScenesSettings[0].AssetID(), b.ScenesSettings[1].AssetID())
	}
	second := b.ScenesSettings[1]
	if second.SubScenes[0].DisplayItems == nil || len(second.SubScenes[0].TextLines) != 1 || len(second.Subtitles) != 1 {
		t.Fatalf("invariants not filled: %+v", second)
	}
	if b.ScenesSettings[0].SubScenes[0].TextLines[0].Text != "first" {
		t.Fatalf("text line should default to the subtitle text")
	}
	if b.AudioSettings == nil || b.AudioSettings.TrackVolume != -1 {
		t.Fatalf("audio settings: %+v", b.AudioSettings)
	}
	if len(b.Extra) == 0 {
		t.Fatalf("raw payload not kept")
	}
}

func TestDecodeSceneBatchRejectsMalformed(t *testing.T) {
	cases := []string{
		`{"scenes": []}`,
		`{"scenesSettings": [{"time": 5, "sub_scenes": [{}]}]}`,
		`{"scenesSettings": [{"background": {"src": []}, "time": 5, "sub_scenes": [{}]}]}`,
		`{"scenesSettings": [{"background": {"src": [{"asset_id": "x"}]}, "time": 5, "sub_scenes": [{}]}]}`,
		`not json`,
	}
	for _, c := range cases {
		if _, err := DecodeSceneBatch([]byte(c)); !errors.Is(err, ErrInvalidBatch) {
			t.Fatalf("payload %q: expected ErrInvalidBatch, got %v", c, err)
		}
	}
}

func TestPersistedScenesConformToSchema(t *testing.T) {
	s := NormalizeScene(Scene{
		Background: Background{Src: []Media{{AssetID: 1, URL: "u", Type: "video"}}},
		Time:       5,
	})
	s.SubScenes[0].DisplayItems = append(s.SubScenes[0].DisplayItems, TextItemTemplate())
	data, err := json.Marshal([]Scene{s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateScenes(data); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if !strings.Contains(string(data), `"displayItems"`) || !strings.Contains(string(data), `"asset_id":1`) {
		t.Fatalf("unexpected wire names: %s", data)
	}
}
