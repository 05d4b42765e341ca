/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"scenecraft/internal/export"
)

const serviceRender = "render"

type renderRequest struct {
	RequestID  string               `json:"requestId"`
	RenderData export.RenderPayload `json:"renderData"`
}

// Render submits a resolved payload to the render service and returns the URL of
// the finished video.
func (c *Client) Render(ctx context.Context, p export.RenderPayload) (string, error) {
	if len(p.ScenesSettings) == 0 {
		return "", &Error{Service: serviceRender, Message: "nothing to render"}
	}
	id := uuid.NewString()
	c.log.Info("render requested", slog.String("request_id", id), slog.Int("scenes", len(p.ScenesSettings)))
	data, err := c.callData(ctx, serviceRender, http.MethodPost, "/download-video", renderRequest{RequestID: id, RenderData: p})
	if err != nil {
		return "", err
	}
	var out struct {
		VideoURL string `json:"videoURL"`
	}
	if err := json.Unmarshal(data, &out); err != nil || strings.TrimSpace(out.VideoURL) == "" {
		return "", fmt.Errorf("%w: render: no video URL in response", ErrInvalidPayload)
	}
	return out.VideoURL, nil
}
