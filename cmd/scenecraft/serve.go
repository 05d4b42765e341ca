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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scenecraft/internal/editor"
	applog "scenecraft/internal/log"
	"scenecraft/internal/server"
	"scenecraft/internal/storage"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing API over HTTP",
		Long: `Serve the scene document of the configured session over a JSON API.
Pending debounced edits are committed and the document is flushed on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.open(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			opt := server.Options{
				Debounce:      app.cfg.Editor.Debounce(),
				MaxLineLength: app.cfg.Editor.MaxLineLength,
				Services:      app.services(),
			}
			if tc, ok := app.st.(storage.ThumbCache); ok {
				opt.Thumbs = tc
			}
			srv := server.New(editor.New(doc), opt)
			hs := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			l := applog.WithComponent("cli")
			errChan := make(chan error, 1)
			go func() {
				if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					errChan <- err
				}
			}()
			l.Info("listening", slog.String("addr", addr), slog.Int("scenes", doc.Len()))
			fmt.Printf("Serving on %s\n", addr)

			select {
			case err := <-errChan:
				return fmt.Errorf("listen: %w", err)
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			l.Info("shutting down")
			return errors.Join(hs.Shutdown(shutdownCtx), srv.Close(shutdownCtx))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
