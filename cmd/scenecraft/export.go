/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"scenecraft/internal/export"
	applog "scenecraft/internal/log"
	"scenecraft/internal/textlayout"
)

func newExportCmd() *cobra.Command {
	var (
		preset   string
		formats  []string
		outDir   string
		title    string
		scale    float64
		fontsDir string
		guides   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the render payload and review material",
		Long: `Export builds the render payload for the current aspect ratio and writes the
requested formats to <out>/<preset>/. The "render" preset writes payload.json;
"review" adds storyboard.pdf and per-scene PNG previews.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			opt := export.BatchOptions{
				Preset:        export.PresetName(preset),
				Formats:       formats,
				OutDir:        outDir,
				Title:         title,
				MaxLineLength: app.cfg.Editor.MaxLineLength,
				Scale:         scale,
			}
			if cmd.Flags().Changed("guides") {
				opt.IncludeGuides = &guides
			}
			if fontsDir != "" {
				lib := textlayout.NewFontLibrary()
				n, err := lib.LoadDir(fontsDir)
				if err != nil {
					return err
				}
				applog.WithComponent("cli").Debug("fonts loaded", slog.Int("count", n))
				opt.Fonts = textlayout.OTProvider{Lib: lib}
			}
			res, err := export.Batch(cmd.Context(), doc.Snapshot(), opt)
			if err != nil {
				return err
			}
			for _, f := range res.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", string(export.PresetRender), "Preset: render or review")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Formats to write (json, pdf, png); default per preset")
	cmd.Flags().StringVar(&outDir, "out", "exports", "Output directory")
	cmd.Flags().StringVar(&title, "title", "", "Video title")
	cmd.Flags().Float64Var(&scale, "scale", 0, "Pixels per canvas pixel for PDF and PNG output")
	cmd.Flags().StringVar(&fontsDir, "fonts", "", "Directory of .ttf/.otf fonts for previews")
	cmd.Flags().BoolVar(&guides, "guides", false, "Draw safe-area guides in the storyboard")
	return cmd
}
