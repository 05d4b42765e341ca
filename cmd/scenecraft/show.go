/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"scenecraft/internal/audio"
	"scenecraft/internal/document"
	"scenecraft/internal/editor"
	"scenecraft/internal/reflow"
)

func newShowCmd() *cobra.Command {
	var (
		width      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the scene document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			snap := doc.Snapshot()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			}
			printSnapshot(cmd.OutOrStdout(), snap, width)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "Wrap subtitle text at this column")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the document as JSON")
	return cmd
}

func printSnapshot(w io.Writer, snap document.Snapshot, width int) {
	fmt.Fprintf(w, "Aspect ratio: %s\n", snap.AspectRatio)
	fmt.Fprintf(w, "Speaker:      %s\n", snap.Speaker)
	fmt.Fprintf(w, "Video volume: %s\n", audio.Label(snap.Audio.VideoVolume))
	fmt.Fprintf(w, "Music volume: %s\n", audio.Label(snap.Audio.TrackVolume))
	if snap.Audio.Src != "" {
		fmt.Fprintf(w, "Music:        %s\n", snap.Audio.Src)
	}
	fmt.Fprintf(w, "Subtitles:    %v\n", snap.SubtitleToggle)
	fmt.Fprintf(w, "Scenes:       %d (%.1fs)\n", len(snap.Scenes), editor.TotalDuration(snap.Scenes))

	for i, sc := range snap.Scenes {
		bg := sc.Background.Color
		if len(sc.Background.Src) > 0 && sc.Background.Src[0].URL != "" {
			bg = sc.Background.Src[0].URL
		}
		fmt.Fprintf(w, "\n#%d  asset %d  %.1fs  %s\n", i+1, sc.AssetID(), sc.Time, bg)
		if text := reflow.PlainText(sc.SubtitleText()); text != "" {
			fmt.Fprintln(w, indent.String(wordwrap.String(text, width-4), 4))
		}
		if sc.HasSubScene() {
			for _, it := range sc.SubScenes[0].DisplayItems {
				for _, tl := range it.TextLines {
					fmt.Fprintf(w, "    [%s] %s\n", it.Type, reflow.PlainText(tl.Text))
				}
			}
		}
	}
}
