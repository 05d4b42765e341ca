/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenecraft/internal/document"
	"scenecraft/internal/domain"
)

const longSubtitle = "Discover how cutting-edge automation tools transform everyday video production into a fast, repeatable and genuinely enjoyable workflow for small teams"

func sampleSnapshot(ar domain.AspectRatio) document.Snapshot {
	item := domain.TextItemTemplate()
	item.Location = domain.Location{Preset: "custom", CenterX: 960, StartY: 540}
	item.TextLines[0].Text = "<p>Hello <b>there</b></p>"
	scenes := []domain.Scene{
		{
			Background: domain.Background{Src: []domain.Media{{URL: "https://cdn.example/a.mp4", AssetID: 1, Type: "video"}}},
			Time:       6,
			Subtitles:  []domain.Subtitle{{Text: longSubtitle}},
			SubScenes: []domain.SubScene{{
				Time:         5,
				Location:     domain.Anchor{CenterX: 960, StartY: 900},
				DisplayItems: []domain.DisplayItem{item},
				TextLines:    []domain.TextLine{{Text: longSubtitle}},
				Font:         domain.Font{Name: "sans-serif.ttf", Size: 40, Color: "#ffffff"},
			}},
			Subtitle: true,
		},
		{
			Background: domain.Background{Src: []domain.Media{{AssetID: 2}}, Color: "#336699"},
			Time:       3,
			SubScenes:  []domain.SubScene{{}},
		},
	}
	return document.Snapshot{
		Scenes:      scenes,
		AspectRatio: ar,
		Audio:       domain.AudioSettings{VideoVolume: -1, TrackVolume: 0.5},
	}
}

func TestBuildRenderPayloadPerAspectRatio(t *testing.T) {
	cases := []struct {
		ar        domain.AspectRatio
		w, h      int
		size      float64
		maxWidth  string
		mode      string
		fullWidth bool
		anchor    domain.Anchor
	}{
		{domain.Landscape, 1920, 1080, 28, "80%", "crop", false, domain.Anchor{CenterX: 960, StartY: 900}},
		{domain.Portrait, 1080, 1920, 22, "50%", "crop", true, domain.Anchor{CenterX: 540, StartY: 1500}},
		{domain.Square, 1080, 1080, 22, "80%", "fit", true, domain.Anchor{CenterX: 540, StartY: 850}},
	}
	for _, tc := range cases {
		t.Run(string(tc.ar), func(t *testing.T) {
			snap := sampleSnapshot(tc.ar)
			p := BuildRenderPayload(snap, Options{})
			if p.OutputSettings != (OutputSettings{Name: "Generated_Video.mp4", Format: "mp4", Title: "Generated_Video", Width: tc.w, Height: tc.h}) {
				t.Fatalf("output settings = %+v", p.OutputSettings)
			}
			if p.AspectRatio() != tc.ar {
				t.Fatalf("aspect from canvas = %s", p.AspectRatio())
			}
			for _, sc := range p.ScenesSettings {
				ss := sc.SubScenes[0]
				if ss.Font.Size != tc.size || ss.MaxWidth != tc.maxWidth || ss.Font.FullWidth != tc.fullWidth {
					t.Fatalf("sub-scene font/width = %+v %q", ss.Font, ss.MaxWidth)
				}
				if sc.Background.Src[0].Mode != tc.mode {
					t.Fatalf("mode = %q", sc.Background.Src[0].Mode)
				}
				if !sc.Subtitle || len(sc.Subtitles) == 0 || ss.Time != sc.Time || ss.DisplayItems == nil {
					t.Fatalf("renderer invariants missing: %+v", sc)
				}
			}
			if got := p.ScenesSettings[0].SubScenes[0].Location; got != tc.anchor {
				t.Fatalf("anchor = %+v", got)
			}
			// The item keeps its logical position for every ratio.
			if loc := p.ScenesSettings[0].SubScenes[0].DisplayItems[0].Location; loc.CenterX != 960 || loc.StartY != 540 {
				t.Fatalf("display item moved: %+v", loc)
			}
			if snap.Scenes[0].SubScenes[0].Font.Size != 40 || snap.Scenes[0].Background.Src[0].Mode != "" {
				t.Fatalf("snapshot mutated")
			}
		})
	}
}

func TestBuildRenderPayloadReflowsAndDefaults(t *testing.T) {
	p := BuildRenderPayload(sampleSnapshot(domain.Landscape), Options{Title: "Launch", MaxLineLength: 40})
	lines := p.ScenesSettings[0].SubScenes[0].TextLines
	if len(lines) < 3 {
		t.Fatalf("expected reflowed subtitle, got %d lines", len(lines))
	}
	var words []string
	for _, l := range lines {
		if len([]rune(l.Text)) > 40 {
			t.Fatalf("chunk %q exceeds limit", l.Text)
		}
		words = append(words, l.Text)
	}
	if strings.Join(words, " ") != longSubtitle {
		t.Fatalf("reflow lost words")
	}
	second := p.ScenesSettings[1]
	if len(second.Subtitles) != 1 || second.Subtitles[0].Text != "" || second.Subtitles[0].Time != 0 {
		t.Fatalf("default subtitles = %+v", second.Subtitles)
	}
	for i, sc := range p.ScenesSettings {
		for j, ss := range sc.SubScenes {
			if !sc.Subtitle || !ss.Subtitle {
				t.Fatalf("scene %d sub-scene %d subtitle flags = %v/%v", i, j, sc.Subtitle, ss.Subtitle)
			}
		}
	}
	normalized := BuildRenderPayload(document.Snapshot{
		Scenes:      domain.NormalizeScenes([]domain.Scene{{Time: 3, Subtitles: []domain.Subtitle{{Text: "hello"}}}}),
		AspectRatio: domain.Landscape,
	}, Options{})
	if ss := normalized.ScenesSettings[0].SubScenes[0]; !ss.Subtitle {
		t.Fatalf("normalized sub-scene subtitle = false")
	}
	if p.OutputSettings.Name != "Launch.mp4" || p.AudioSettings.VideoVolume != -1 {
		t.Fatalf("payload = %+v", p.OutputSettings)
	}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var scenesOnly struct {
		Scenes json.RawMessage `json:"scenesSettings"`
	}
	_ = json.Unmarshal(b, &scenesOnly)
	if err := domain.ValidateScenes(scenesOnly.Scenes); err != nil {
		t.Fatalf("payload scenes do not match the scene schema: %v", err)
	}
}

func TestStoryboardPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sb", "storyboard.pdf")
	p := BuildRenderPayload(sampleSnapshot(domain.Portrait), Options{})
	if err := StoryboardPDF(p, out, PDFOptions{IncludeGuides: true}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
	if err := StoryboardPDF(RenderPayload{}, out, PDFOptions{}); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestScenePNGs(t *testing.T) {
	dir := t.TempDir()
	p := BuildRenderPayload(sampleSnapshot(domain.Landscape), Options{})
	paths, err := ScenePNGs(context.Background(), p, dir, PNGOptions{Scale: 0.25, Workers: 2})
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "scene-002.png" {
		t.Fatalf("paths = %v", paths)
	}
	f, err := os.Open(paths[1])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 480 || b.Dy() != 270 {
		t.Fatalf("size = %v", b)
	}
	got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	if got != (color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}) {
		t.Fatalf("background = %+v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScenePNGs(ctx, p, t.TempDir(), PNGOptions{}); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestBatchReviewPreset(t *testing.T) {
	dir := t.TempDir()
	res, err := Batch(context.Background(), sampleSnapshot(domain.Square), BatchOptions{Preset: PresetReview, OutDir: dir})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	checks := []string{
		filepath.Join(dir, "review", "payload.json"),
		filepath.Join(dir, "review", "storyboard.pdf"),
		filepath.Join(dir, "review", "png", "scene-001.png"),
		filepath.Join(dir, "review", "png", "scene-002.png"),
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
	if len(res.Files) != len(checks) {
		t.Fatalf("files = %v", res.Files)
	}
	if _, err := Batch(context.Background(), sampleSnapshot(domain.Square), BatchOptions{Formats: []string{"gif"}, OutDir: dir}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#fff":                {255, 255, 255, 255},
		"#336699":             {0x33, 0x66, 0x99, 255},
		"rgba(255,0,0,1)":     {255, 0, 0, 255},
		"rgb(0, 128, 0)":      {0, 128, 0, 255},
		"rgba(0,0,0,0)":       {0, 0, 0, 0},
		"rgba(200,100,50,.5)": {100, 50, 25, 128},
	}
	for in, want := range cases {
		if got := parseColor(in, color.RGBA{1, 2, 3, 4}); got != want {
			t.Fatalf("%s: got %+v want %+v", in, got, want)
		}
	}
	if got := parseColor("tomato", black); got != black {
		t.Fatalf("named colors should fall back")
	}
	if r, g, b := straight(color.RGBA{100, 50, 25, 128}); r != 199 || g != 100 || b != 50 {
		t.Fatalf("straight = %d %d %d", r, g, b)
	}
}

func TestSceneThumbnail(t *testing.T) {
	snap := sampleSnapshot(domain.Portrait)
	b, err := SceneThumbnail(snap, 1, 108, 0, nil)
	if err != nil {
		t.Fatalf("SceneThumbnail: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 108 || got.Y != 192 {
		t.Fatalf("size = %v, want 108x192", got)
	}
	if _, err := SceneThumbnail(snap, 5, 108, 0, nil); err != ErrNoScene {
		t.Fatalf("err = %v, want ErrNoScene", err)
	}

	k1, err := ThumbKeyFor(snap, 1, 108)
	if err != nil || k1.W != 108 || k1.H != 192 {
		t.Fatalf("key = %+v %v", k1, err)
	}
	snap.AspectRatio = domain.Square
	k2, _ := ThumbKeyFor(snap, 1, 108)
	if k1.Digest == k2.Digest || k2.H != 108 {
		t.Fatalf("aspect ratio must change the key: %+v %+v", k1, k2)
	}
}
