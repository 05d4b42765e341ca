/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package server exposes one editor session as a JSON API for a browser front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"scenecraft/internal/document"
	"scenecraft/internal/editor"
	applog "scenecraft/internal/log"
	"scenecraft/internal/services"
	"scenecraft/internal/storage"
	"scenecraft/internal/version"
)

// errOutOfRange is reported as 404 when an index does not address a scene or item.
var errOutOfRange = errors.New("index out of range")

// Options configures a Server.
type Options struct {
	// Debounce coalesces text and drag edits; zero commits every request immediately.
	Debounce time.Duration
	// MaxLineLength is the subtitle reflow limit used for render payloads.
	MaxLineLength int
	// Services is optional; generation, voice and render endpoints answer 503 without it.
	Services *services.Client
	// Thumbs caches rendered scene thumbnails; thumbnails are rendered on every request without it.
	Thumbs storage.ThumbCache
}

// Server routes HTTP requests to an editor session.
type Server struct {
	ed     *editor.Editor
	doc    *document.Store
	deb    *editor.Debouncer
	svc    *services.Client
	opt    Options
	log    *slog.Logger
	router *mux.Router
}

// New builds the router for ed.
func New(ed *editor.Editor, opt Options) *Server {
	s := &Server{
		ed:  ed,
		doc: ed.Document(),
		svc: opt.Services,
		opt: opt,
		log: applog.WithComponent("server"),
	}
	if opt.Debounce > 0 {
		s.deb = editor.NewDebouncer(opt.Debounce)
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Close commits pending debounced edits and writes the whole document once more.
func (s *Server) Close(ctx context.Context) error {
	if s.deb != nil {
		s.deb.Flush()
	}
	return s.doc.Flush(ctx)
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(version.String()))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/document", s.getDocument).Methods(http.MethodGet)
	api.HandleFunc("/selection", s.getSelection).Methods(http.MethodGet)
	api.HandleFunc("/selection", s.putSelection).Methods(http.MethodPut)

	api.HandleFunc("/scenes", s.settled(s.putScenes)).Methods(http.MethodPut)
	api.HandleFunc("/scenes", s.settled(s.addScene)).Methods(http.MethodPost)
	api.HandleFunc("/scenes/move", s.settled(s.moveScene)).Methods(http.MethodPost)
	api.HandleFunc("/scenes/asset/{assetId:[0-9]+}", s.settled(s.deleteScene)).Methods(http.MethodDelete)
	api.HandleFunc("/scenes/{index:[0-9]+}/background", s.settled(s.putBackground)).Methods(http.MethodPut)
	api.HandleFunc("/scenes/{index:[0-9]+}/subtitle", s.putSubtitleText).Methods(http.MethodPut)
	api.HandleFunc("/scenes/{index:[0-9]+}/subtitle-style", s.settled(s.patchSubtitleStyle)).Methods(http.MethodPatch)
	api.HandleFunc("/scenes/{index:[0-9]+}/time", s.settled(s.putSceneTime)).Methods(http.MethodPut)
	api.HandleFunc("/scenes/{index:[0-9]+}/items", s.settled(s.addItem)).Methods(http.MethodPost)
	api.HandleFunc("/scenes/{index:[0-9]+}/items/{item:[0-9]+}", s.settled(s.deleteItem)).Methods(http.MethodDelete)
	api.HandleFunc("/scenes/{index:[0-9]+}/items/{item:[0-9]+}/text", s.putItemText).Methods(http.MethodPut)
	api.HandleFunc("/scenes/{index:[0-9]+}/items/{item:[0-9]+}/position", s.putItemPosition).Methods(http.MethodPut)
	api.HandleFunc("/scenes/{index:[0-9]+}/items/{item:[0-9]+}/style", s.settled(s.patchItemStyle)).Methods(http.MethodPatch)

	api.HandleFunc("/subtitles", s.settled(s.putSubtitles)).Methods(http.MethodPut)
	api.HandleFunc("/aspect-ratio", s.settled(s.putAspectRatio)).Methods(http.MethodPut)
	api.HandleFunc("/speaker", s.settled(s.putSpeaker)).Methods(http.MethodPut)
	api.HandleFunc("/audio/volume", s.settled(s.putVolume)).Methods(http.MethodPut)
	api.HandleFunc("/audio/music", s.settled(s.putMusic)).Methods(http.MethodPut)
	api.HandleFunc("/export/payload", s.settled(s.getPayload)).Methods(http.MethodGet)
	api.HandleFunc("/scenes/{index:[0-9]+}/thumbnail", s.settled(s.getThumbnail)).Methods(http.MethodGet)

	api.HandleFunc("/generate", s.settled(s.generate)).Methods(http.MethodPost)
	api.HandleFunc("/scenes/{index:[0-9]+}/preview", s.settled(s.previewScene)).Methods(http.MethodPost)
	api.HandleFunc("/voice", s.settled(s.voice)).Methods(http.MethodPost)
	api.HandleFunc("/render", s.settled(s.render)).Methods(http.MethodPost)
	s.router = r
}

// settled commits pending debounced edits before h runs. Pending edits address
// scenes and items by index, so they must land before anything can shift one.
func (s *Server) settled(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deb != nil {
			s.deb.Flush()
		}
		h(w, r)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Duration("took", time.Since(start)))
	})
}

// --- Helpers: decoding and JSON ---

func decode(r *http.Request, dst any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	_ = r.Body.Close()
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func pathInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return -1
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeResult answers 200 with the current document, or 404 when the edit was a no-op.
func (s *Server) writeResult(w http.ResponseWriter, ok bool) {
	if !ok {
		writeError(w, http.StatusNotFound, errOutOfRange)
		return
	}
	writeJSON(w, http.StatusOK, s.documentView())
}

// serviceStatus maps collaborator failures onto HTTP statuses.
func serviceStatus(err error) int {
	var se *services.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrInvalidPayload), errors.As(err, &se):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
