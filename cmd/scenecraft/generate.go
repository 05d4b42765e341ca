/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scenecraft/internal/editor"
	"scenecraft/internal/export"
	"scenecraft/internal/services"
)

var errNoServices = errors.New("no services configured (set services.base_url or SCN_SERVICES_URL)")

func requireServices() (*services.Client, error) {
	svc := app.services()
	if svc == nil {
		return nil, errNoServices
	}
	return svc, nil
}

func newGenerateCmd() *cobra.Command {
	var (
		outline bool
		music   string
	)
	cmd := &cobra.Command{
		Use:   "generate <script>",
		Short: "Generate scenes from a script and replace the document",
		Long: `Generate sends the script to the generation service and replaces the scene list
with the validated result. With --outline only a script outline is requested and
turned into scenes without backgrounds. With --music the voice-over and a matching
background track are fetched afterwards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := requireServices()
			if err != nil {
				return err
			}
			doc, err := app.open(ctx)
			if err != nil {
				return err
			}
			ed := editor.New(doc)
			script := strings.Join(args, " ")

			if outline {
				parts, err := svc.GenerateScript(ctx, script)
				if err != nil {
					return err
				}
				ed.SetScenes(ctx, services.ScriptSkeletons(parts))
			} else {
				b, err := svc.GenerateVideo(ctx, script)
				if err != nil {
					return err
				}
				ed.SetScenes(ctx, b.ScenesSettings)
				if b.AudioSettings != nil {
					doc.SetAudioSettings(ctx, *b.AudioSettings)
				}
			}

			if music != "" {
				st, err := svc.VoiceAndMusic(ctx, doc.Scenes(), doc.Speaker(), music)
				if err != nil {
					return err
				}
				doc.ApplyVoice(ctx, st.Audio)
				if len(st.Tracks) > 0 {
					t := st.Tracks[0]
					doc.SetBackgroundMusic(ctx, t.AudioURL, strconv.FormatInt(t.ID, 10), "library")
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d scenes (%.1fs)\n", doc.Len(), editor.TotalDuration(doc.Scenes()))
			return doc.PersistErr()
		},
	}
	cmd.Flags().BoolVar(&outline, "outline", false, "Only request a script outline")
	cmd.Flags().StringVar(&music, "music", "", "Search term for a background track; also fetches the voice-over")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Send the render payload to the render service",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := requireServices()
			if err != nil {
				return err
			}
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			p := export.BuildRenderPayload(doc.Snapshot(), export.Options{Title: title, MaxLineLength: app.cfg.Editor.MaxLineLength})
			url, err := svc.Render(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Video title")
	return cmd
}
