/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"scenecraft/internal/document"
	applog "scenecraft/internal/log"
	"scenecraft/internal/textlayout"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetRender writes only the render payload.
	PresetRender PresetName = "render"
	// PresetReview adds a storyboard PDF and scene previews for offline review.
	PresetReview PresetName = "review"
)

// BatchOptions controls a batch export of one document snapshot.
//
// Path semantics: files go to <OutDir>/<preset>/ as payload.json, storyboard.pdf
// and png/scene-NNN.png. OutDir defaults to "exports".
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: json, pdf, png; empty means preset defaults
	OutDir        string
	Title         string
	MaxLineLength int
	Scale         float64 // PDF points / PNG pixels per canvas pixel
	IncludeGuides *bool   // when set, overrides the preset's default for PDF guides
	Fonts         textlayout.Provider
}

// BatchResult lists what a batch export produced.
type BatchResult struct {
	Payload RenderPayload
	Files   []string
}

// Batch builds the render payload once and writes every requested format from it.
func Batch(ctx context.Context, snap document.Snapshot, opt BatchOptions) (BatchResult, error) {
	l := applog.WithOperation(applog.WithComponent("export"), "batch")
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.OutDir
	if base == "" {
		base = "exports"
	}
	preset := opt.Preset
	if preset == "" {
		preset = PresetRender
	}
	base = filepath.Join(base, string(preset))

	guides := presetIncludeGuides(preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}

	res := BatchResult{Payload: BuildRenderPayload(snap, Options{Title: opt.Title, MaxLineLength: opt.MaxLineLength})}
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "json":
			out := filepath.Join(base, "payload.json")
			if err := WritePayloadJSON(res.Payload, out); err != nil {
				return res, fmt.Errorf("json: %w", err)
			}
			res.Files = append(res.Files, out)
		case "pdf":
			out := filepath.Join(base, "storyboard.pdf")
			if err := StoryboardPDF(res.Payload, out, PDFOptions{Scale: opt.Scale, IncludeGuides: guides}); err != nil {
				return res, fmt.Errorf("pdf: %w", err)
			}
			res.Files = append(res.Files, out)
		case "png":
			paths, err := ScenePNGs(ctx, res.Payload, filepath.Join(base, "png"), PNGOptions{Scale: opt.Scale, Fonts: opt.Fonts})
			if err != nil {
				return res, fmt.Errorf("png: %w", err)
			}
			res.Files = append(res.Files, paths...)
		default:
			return res, fmt.Errorf("unknown format: %s", f)
		}
	}
	l.Info("export finished", slog.String("preset", string(preset)), slog.Int("files", len(res.Files)))
	return res, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetReview:
		return []string{"json", "pdf", "png"}
	default:
		return []string{"json"}
	}
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetReview
}
