/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"scenecraft/internal/config"
	"scenecraft/internal/crash"
	"scenecraft/internal/document"
	"scenecraft/internal/domain"
	applog "scenecraft/internal/log"
	"scenecraft/internal/services"
	"scenecraft/internal/storage"
	"scenecraft/internal/version"
)

// session is the state shared by every subcommand of one invocation.
type session struct {
	cfg   config.AppConfig
	token string
	st    storage.Storage
	doc   *document.Store
}

var app session

var (
	flagDataDir string
	flagStorage string
	flagEnvFile string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scenecraft",
		Short: "Scene editor for generated videos",
		Long: `Scenecraft keeps the scene document of a video composition: backgrounds,
subtitles, overlay texts, audio settings and aspect ratio.

It can serve the editing API over HTTP, export render payloads and storyboards,
and talk to the generation and render services.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default: user config dir)")
	root.PersistentFlags().StringVar(&flagStorage, "storage", "", "Storage backend: file, sqlite, postgres or memory")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Dotenv file read before configuration")

	root.AddCommand(
		newServeCmd(),
		newShowCmd(),
		newExportCmd(),
		newVolumeCmd(),
		newAspectCmd(),
		newSubtitlesCmd(),
		newRevisionsCmd(),
		newRestoreCmd(),
		newGenerateCmd(),
		newRenderCmd(),
	)
	return root
}

func (s *session) init(cmd *cobra.Command) error {
	config.LoadDotEnv(flagEnvFile)
	cfg, token, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagStorage != "" {
		cfg.General.Storage = flagStorage
	}
	s.cfg, s.token = cfg, token

	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	cmd.SetContext(applog.ContextWithSession(cmd.Context(), cfg.General.Session))
	applog.WithComponent("cli").Debug("start",
		slog.String("command", cmd.Name()),
		slog.String("storage", cfg.General.Storage),
		slog.String("session", cfg.General.Session))
	return nil
}

// open returns the session document, opening storage on first use.
func (s *session) open(ctx context.Context) (*document.Store, error) {
	if s.doc != nil {
		return s.doc, nil
	}
	st, err := storage.Open(ctx, s.cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	ar, err := domain.ParseAspectRatio(s.cfg.Editor.AspectRatio)
	if err != nil {
		ar = domain.Landscape
	}
	s.st = st
	s.doc = document.Load(ctx, st, document.Defaults{AspectRatio: ar})
	return s.doc, nil
}

func (s *session) close() error {
	if s.st == nil {
		return nil
	}
	err := s.st.Close()
	s.st, s.doc = nil, nil
	return err
}

// services returns a client for the configured services, or nil when no base URL is set.
func (s *session) services() *services.Client {
	if s.cfg.Services.BaseURL == "" {
		return nil
	}
	opts := []services.Option{services.WithTimeout(s.cfg.Services.Timeout())}
	if s.cfg.Services.TLSInsecure {
		opts = append(opts, services.WithInsecureTLS())
	}
	return services.NewClient(s.cfg.Services.BaseURL, s.token, opts...)
}

func main() {
	defer crash.RecoverFunc(func() (*document.Store, string) { return app.doc, app.cfg.General.DataDir })
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
