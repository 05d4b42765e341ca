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
	"strconv"

	"github.com/spf13/cobra"

	"scenecraft/internal/audio"
	"scenecraft/internal/domain"
	"scenecraft/internal/editor"
)

func newVolumeCmd() *cobra.Command {
	var signed bool
	cmd := &cobra.Command{
		Use:   "volume video|music <level>",
		Short: "Set the scene audio or background music volume",
		Long: `Level is a slider position from 0 to 100 (50 is normal gain), or a signed volume in [-1, 1] with --signed.
Negative levels must follow "--" so they are not read as flags.`,
		Example: `  scenecraft volume video 75
  scenecraft volume music --signed 0.5
  scenecraft volume video --signed -- -1`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"video", "music"},
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid level %q: %w", args[1], err)
			}
			v := level
			if !signed {
				v = audio.SliderToVolume(level)
			}
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			switch args[0] {
			case "video":
				doc.SetVideoVolume(cmd.Context(), v)
				v = doc.AudioSettings().VideoVolume
			case "music":
				doc.SetTrackVolume(cmd.Context(), v)
				v = doc.AudioSettings().TrackVolume
			default:
				return fmt.Errorf("unknown channel %q (want video or music)", args[0])
			}
			if err := doc.PersistErr(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), audio.Label(v))
			return nil
		},
	}
	cmd.Flags().BoolVar(&signed, "signed", false, "Interpret level as a signed volume in [-1, 1]")
	return cmd
}

func newAspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aspect [16:9|9:16|1:1]",
		Short: "Show or change the aspect ratio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				ar, err := domain.ParseAspectRatio(args[0])
				if err != nil {
					return err
				}
				if err := doc.SetAspectRatio(cmd.Context(), ar); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.AspectRatio())
			return doc.PersistErr()
		},
	}
}

func newSubtitlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "subtitles on|off",
		Short:     "Show or hide the subtitles of every scene",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch args[0] {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("want on or off, got %q", args[0])
			}
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			editor.New(doc).ToggleSubtitles(cmd.Context(), on)
			return doc.PersistErr()
		},
	}
}
