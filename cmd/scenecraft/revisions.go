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
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"scenecraft/internal/domain"
	"scenecraft/internal/storage"
)

func historian(ctx context.Context) (storage.Historian, error) {
	if _, err := app.open(ctx); err != nil {
		return nil, err
	}
	h, ok := app.st.(storage.Historian)
	if !ok {
		return nil, fmt.Errorf("storage backend %q keeps no revisions (use --storage sqlite)", app.cfg.General.Storage)
	}
	return h, nil
}

func newRevisionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "revisions",
		Short: "List stored revisions of the scene list",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := historian(cmd.Context())
			if err != nil {
				return err
			}
			revs, err := h.Revisions(cmd.Context(), storage.KeyScenes, limit)
			if err != nil {
				return err
			}
			for _, r := range revs {
				var scenes []domain.Scene
				n := "?"
				if json.Unmarshal([]byte(r.Value), &scenes) == nil {
					n = strconv.Itoa(len(scenes))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s  %s scenes\n", r.ID, r.At.Local().Format(time.DateTime), n)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of revisions")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <revision-id>",
		Short: "Replace the scene list with a stored revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid revision id %q: %w", args[0], err)
			}
			h, err := historian(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.doc.RestoreRevision(cmd.Context(), h, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored revision %d (%d scenes)\n", id, app.doc.Len())
			return app.doc.PersistErr()
		},
	}
}
