/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"scenecraft/internal/audio"
)

// PDFOptions controls storyboard export. Units are points.
//
// Each scene gets one page: the output canvas scaled by Scale, plus a footer
// strip with scene number, duration, asset id and the audio gains.
type PDFOptions struct {
	Scale         float64 // points per canvas pixel; 0.25 when zero
	IncludeGuides bool    // outline text blocks and the subtitle width band
	GuideColor    color.RGBA
}

const footerPt = 28

// StoryboardPDF writes one page per payload scene to outPath.
func StoryboardPDF(p RenderPayload, outPath string, opt PDFOptions) error {
	if len(p.ScenesSettings) == 0 {
		return fmt.Errorf("payload has no scenes")
	}
	scale := opt.Scale
	if scale <= 0 {
		scale = 0.25
	}
	guide := opt.GuideColor
	if guide == (color.RGBA{}) {
		guide = color.RGBA{R: 255, A: 255}
	}
	cw, ch := p.OutputSettings.Width, p.OutputSettings.Height
	pageW := float64(cw) * scale
	pageH := float64(ch)*scale + footerPt

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(p.OutputSettings.Title+" storyboard", true)
	pdf.SetAuthor("scenecraft", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, sc := range p.ScenesSettings {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

		bg := black
		if len(sc.Background.Src) == 0 || sc.Background.Src[0].URL == "" {
			bg = parseColor(sc.Background.Color, black)
		}
		setFill(pdf, bg)
		pdf.Rect(0, 0, pageW, float64(ch)*scale, "F")

		for _, o := range sceneOverlays(sc, cw, ch) {
			drawPDFOverlay(pdf, tr, o, scale, opt.IncludeGuides, guide)
		}

		pdf.SetTextColor(40, 40, 40)
		pdf.SetFont("Helvetica", "", 9)
		footer := fmt.Sprintf("Scene %d  |  %.1fs  |  asset %d  |  %s / %s",
			i+1, sc.Time, sc.AssetID(),
			audio.Label(p.AudioSettings.VideoVolume), audio.Label(p.AudioSettings.TrackVolume))
		pdf.Text(6, float64(ch)*scale+footerPt/2+3, tr(footer))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawPDFOverlay(pdf *gofpdf.Fpdf, tr func(string) string, o overlay, scale float64, guides bool, guide color.RGBA) {
	style := ""
	if o.Spec.Bold {
		style += "B"
	}
	if o.Spec.Italic {
		style += "I"
	}
	size := o.Spec.SizePx * scale
	if size < 4 {
		size = 4
	}
	pdf.SetFont("Helvetica", style, size)
	maxW := o.MaxWidth * scale

	var lines []string
	for _, l := range o.Lines {
		lines = append(lines, pdf.SplitText(tr(l), maxW)...)
	}
	lineH := size * 1.2
	x, y := o.X*scale, o.Y*scale
	blockH := lineH * float64(len(lines))

	if o.Back.A > 0 {
		setFill(pdf, o.Back)
		pdf.Rect(x-maxW/2, y, maxW, blockH, "F")
	}
	r, g, b := straight(o.Color)
	pdf.SetTextColor(r, g, b)
	for i, l := range lines {
		w := pdf.GetStringWidth(l)
		pdf.Text(x-w/2, y+lineH*float64(i)+size, l)
	}
	if guides {
		gr, gg, gb := straight(guide)
		pdf.SetDrawColor(gr, gg, gb)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x-maxW/2, y, maxW, blockH, "D")
	}
}

func setFill(pdf *gofpdf.Fpdf, c color.RGBA) {
	r, g, b := straight(c)
	pdf.SetFillColor(r, g, b)
}
