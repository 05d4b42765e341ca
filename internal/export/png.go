/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"scenecraft/internal/domain"
	"scenecraft/internal/textlayout"
)

// PNGOptions controls preview rendering.
//   - Scale: output pixels per canvas pixel, 0.25 when zero.
//   - Fonts: resolves font faces; the fixed basic face when nil.
//   - Workers: parallel renders, GOMAXPROCS when zero.
type PNGOptions struct {
	Scale   float64
	Fonts   textlayout.Provider
	Workers int
}

// ScenePNGs renders one preview per payload scene into outDir as scene-NNN.png and
// returns the written paths in scene order.
func ScenePNGs(ctx context.Context, p RenderPayload, outDir string, opt PNGOptions) ([]string, error) {
	scale := opt.Scale
	if scale <= 0 {
		scale = 0.25
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}

	paths := make([]string, len(p.ScenesSettings))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range p.ScenesSettings {
		name := filepath.Join(outDir, fmt.Sprintf("scene-%03d.png", i+1))
		paths[i] = name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img := renderScene(sc, p.OutputSettings.Width, p.OutputSettings.Height, scale, opt.Fonts)
			return writePNG(name, img)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func renderScene(sc domain.Scene, cw, ch int, scale float64, fonts textlayout.Provider) *image.RGBA {
	pixW := max(1, int(math.Round(float64(cw)*scale)))
	pixH := max(1, int(math.Round(float64(ch)*scale)))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))

	bg := black
	if len(sc.Background.Src) == 0 || sc.Background.Src[0].URL == "" {
		bg = parseColor(sc.Background.Color, black)
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for _, o := range sceneOverlays(sc, cw, ch) {
		drawOverlay(img, o, scale, fonts)
	}
	return img
}

func drawOverlay(img *image.RGBA, o overlay, scale float64, fonts textlayout.Provider) {
	spec := o.Spec
	spec.SizePx *= scale
	maxW := o.MaxWidth * scale

	var lines []textlayout.Line
	var box textlayout.Box
	for _, l := range o.Lines {
		box = textlayout.WordWrap(fonts, spec, l, maxW)
		lines = append(lines, box.Lines...)
	}
	if box.Face == nil {
		return
	}
	lineH := box.Metrics.LineHeight()
	x, y := o.X*scale, o.Y*scale

	if o.Back.A > 0 {
		r := image.Rect(int(x-maxW/2), int(y), int(x+maxW/2), int(y+lineH*float64(len(lines))))
		draw.Draw(img, r, image.NewUniform(o.Back), image.Point{}, draw.Over)
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(o.Color), Face: box.Face}
	for i, l := range lines {
		baseline := y + lineH*float64(i) + box.Metrics.Ascent
		d.Dot = fixed.P(int(math.Round(x-l.Width/2)), int(math.Round(baseline)))
		d.DrawString(l.Text)
	}
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
