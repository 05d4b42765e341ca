/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"scenecraft/internal/domain"
	"scenecraft/internal/editor"
	"scenecraft/internal/export"
	"scenecraft/internal/layout"
	"scenecraft/internal/storage"
)

var errNoServices = errors.New("no service endpoint configured")

type documentView struct {
	Scenes         []domain.Scene       `json:"scenesSettings"`
	AspectRatio    domain.AspectRatio   `json:"aspectRatio"`
	AudioSettings  domain.AudioSettings `json:"audioSettings"`
	Speaker        string               `json:"speaker"`
	SubtitleToggle bool                 `json:"subtitleToggle"`
	Selection      editor.Selection     `json:"selection"`
	TotalDuration  float64              `json:"totalDuration"`
}

func (s *Server) documentView() documentView {
	snap := s.doc.Snapshot()
	return documentView{
		Scenes:         snap.Scenes,
		AspectRatio:    snap.AspectRatio,
		AudioSettings:  snap.Audio,
		Speaker:        snap.Speaker,
		SubtitleToggle: snap.SubtitleToggle,
		Selection:      s.ed.Selection(),
		TotalDuration:  editor.TotalDuration(snap.Scenes),
	}
}

func (s *Server) getDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.documentView())
}

func (s *Server) getSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ed.Selection())
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SceneIndex int  `json:"sceneIndex"`
		TextIndex  *int `json:"textIndex"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.ed.SelectScene(req.SceneIndex) {
		writeError(w, http.StatusNotFound, errOutOfRange)
		return
	}
	if req.TextIndex != nil && !s.ed.SelectText(*req.TextIndex) {
		writeError(w, http.StatusNotFound, errOutOfRange)
		return
	}
	writeJSON(w, http.StatusOK, s.ed.Selection())
}

// --- scenes ---

func (s *Server) putScenes(w http.ResponseWriter, r *http.Request) {
	var scenes []domain.Scene
	if err := decode(r, &scenes); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.ed.SetScenes(r.Context(), scenes)
	writeJSON(w, http.StatusOK, s.documentView())
}

func (s *Server) addScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Media    domain.Media `json:"media"`
		Subtitle string       `json:"subtitle"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	idx := s.ed.AddScene(r.Context(), req.Media, req.Subtitle)
	writeJSON(w, http.StatusCreated, map[string]any{"index": idx, "document": s.documentView()})
}

func (s *Server) deleteScene(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["assetId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeResult(w, s.ed.DeleteScene(r.Context(), id))
}

func (s *Server) moveScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeResult(w, s.ed.MoveScene(r.Context(), req.From, req.To))
}

func (s *Server) putBackground(w http.ResponseWriter, r *http.Request) {
	var m domain.Media
	if err := decode(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeResult(w, s.ed.ReplaceBackground(r.Context(), pathInt(r, "index"), m))
}

func (s *Server) putSubtitleText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	idx := pathInt(r, "index")
	if s.deb != nil {
		if idx >= s.doc.Len() {
			writeError(w, http.StatusNotFound, errOutOfRange)
			return
		}
		s.ed.UpdateSubtitleTextDebounced(r.Context(), s.deb, idx, req.Text)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeResult(w, s.ed.UpdateSubtitleText(r.Context(), idx, req.Text))
}

func (s *Server) patchSubtitleStyle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := s.ed.UpdateSubtitleStyle(r.Context(), pathInt(r, "index"), req.Key, req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeResult(w, ok)
}

func (s *Server) putSceneTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds float64 `json:"seconds"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Seconds <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("seconds must be positive"))
		return
	}
	s.writeResult(w, s.ed.SetSceneTime(r.Context(), pathInt(r, "index"), req.Seconds))
}

// --- display items ---

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	idx, ok := s.ed.AddTextItem(r.Context(), pathInt(r, "index"), req.Text)
	if !ok {
		writeError(w, http.StatusNotFound, errOutOfRange)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": idx, "document": s.documentView()})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.ed.DeleteTextItem(r.Context(), pathInt(r, "index"), pathInt(r, "item")))
}

func (s *Server) putItemText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	si, ii := pathInt(r, "index"), pathInt(r, "item")
	if s.deb != nil {
		if !s.itemExists(si, ii) {
			writeError(w, http.StatusNotFound, errOutOfRange)
			return
		}
		s.ed.UpdateTextDebounced(r.Context(), s.deb, si, ii, req.Text)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeResult(w, s.ed.UpdateText(r.Context(), si, ii, req.Text))
}

func (s *Server) putItemPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X         float64     `json:"x"`
		Y         float64     `json:"y"`
		Container layout.Size `json:"container"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !req.Container.Valid() {
		writeError(w, http.StatusBadRequest, errors.New("container width and height must be positive"))
		return
	}
	si, ii := pathInt(r, "index"), pathInt(r, "item")
	pos := domain.Point{X: req.X, Y: req.Y}
	if s.deb != nil {
		if !s.itemExists(si, ii) {
			writeError(w, http.StatusNotFound, errOutOfRange)
			return
		}
		s.ed.RepositionItemDebounced(r.Context(), s.deb, si, ii, pos, req.Container)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeResult(w, s.ed.RepositionItem(r.Context(), si, ii, pos, req.Container))
}

func (s *Server) patchItemStyle(w http.ResponseWriter, r *http.Request) {
	var patch domain.FontPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeResult(w, s.ed.UpdateStylePatch(r.Context(), pathInt(r, "index"), pathInt(r, "item"), patch))
}

func (s *Server) itemExists(sceneIndex, itemIndex int) bool {
	sc, ok := s.doc.Scene(sceneIndex)
	return ok && sc.HasSubScene() && itemIndex >= 0 && itemIndex < len(sc.SubScenes[0].DisplayItems)
}

// --- document-wide settings ---

func (s *Server) putSubtitles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.ed.ToggleSubtitles(r.Context(), req.On)
	writeJSON(w, http.StatusOK, s.documentView())
}

func (s *Server) putAspectRatio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AspectRatio string `json:"aspectRatio"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ar, err := domain.ParseAspectRatio(req.AspectRatio)
	if err == nil {
		err = s.doc.SetAspectRatio(r.Context(), ar)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.documentView())
}

func (s *Server) putSpeaker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speaker string `json:"speaker"`
	}
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.Speaker) == "" {
		writeError(w, http.StatusBadRequest, errors.New("speaker is required"))
		return
	}
	s.doc.SetSpeaker(r.Context(), req.Speaker)
	writeJSON(w, http.StatusOK, s.documentView())
}

func (s *Server) putVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Video *float64 `json:"video_volume"`
		Track *float64 `json:"track_volume"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Video != nil {
		s.doc.SetVideoVolume(r.Context(), *req.Video)
	}
	if req.Track != nil {
		s.doc.SetTrackVolume(r.Context(), *req.Track)
	}
	writeJSON(w, http.StatusOK, s.doc.AudioSettings())
}

func (s *Server) putMusic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Src     string `json:"src"`
		AudioID string `json:"audio_id"`
		Library string `json:"audio_library"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.doc.SetBackgroundMusic(r.Context(), req.Src, req.AudioID, req.Library)
	writeJSON(w, http.StatusOK, s.doc.AudioSettings())
}

func (s *Server) getPayload(w http.ResponseWriter, r *http.Request) {
	p := export.BuildRenderPayload(s.doc.Snapshot(), export.Options{
		Title:         r.URL.Query().Get("title"),
		MaxLineLength: s.opt.MaxLineLength,
	})
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getThumbnail(w http.ResponseWriter, r *http.Request) {
	width := export.DefaultThumbWidth
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1920 {
			writeError(w, http.StatusBadRequest, errors.New("width must be between 1 and 1920"))
			return
		}
		width = n
	}
	snap := s.doc.Snapshot()
	idx := pathInt(r, "index")
	gen := func(context.Context) ([]byte, error) {
		return export.SceneThumbnail(snap, idx, width, s.opt.MaxLineLength, nil)
	}
	var (
		b   []byte
		err error
	)
	if s.opt.Thumbs != nil {
		var key storage.ThumbKey
		if key, err = export.ThumbKeyFor(snap, idx, width); err == nil {
			b, err = s.opt.Thumbs.GetOrCreateThumb(r.Context(), key, gen)
		}
	} else {
		b, err = gen(r.Context())
	}
	switch {
	case errors.Is(err, export.ErrNoScene):
		writeError(w, http.StatusNotFound, errOutOfRange)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(b)
	}
}

// --- collaborator services ---

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		writeError(w, http.StatusServiceUnavailable, errNoServices)
		return
	}
	var req struct {
		Script string `json:"script"`
	}
	if err := decode(r, &req); err != nil || strings.TrimSpace(req.Script) == "" {
		writeError(w, http.StatusBadRequest, errors.New("script is required"))
		return
	}
	b, err := s.svc.GenerateVideo(r.Context(), req.Script)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	s.ed.SetScenes(r.Context(), b.ScenesSettings)
	if b.AudioSettings != nil {
		s.doc.SetAudioSettings(r.Context(), *b.AudioSettings)
	}
	writeJSON(w, http.StatusOK, s.documentView())
}

func (s *Server) previewScene(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		writeError(w, http.StatusServiceUnavailable, errNoServices)
		return
	}
	idx := pathInt(r, "index")
	sc, ok := s.doc.Scene(idx)
	if !ok {
		writeError(w, http.StatusNotFound, errOutOfRange)
		return
	}
	gen, err := s.svc.PreviewScene(r.Context(), sc.SubtitleText())
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	s.writeResult(w, s.ed.MergeGeneratedScene(r.Context(), idx, gen))
}

func (s *Server) voice(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		writeError(w, http.StatusServiceUnavailable, errNoServices)
		return
	}
	var req struct {
		Speaker string `json:"speaker"`
	}
	_ = decode(r, &req)
	speaker := strings.TrimSpace(req.Speaker)
	if speaker == "" {
		speaker = s.doc.Speaker()
	}
	a, err := s.svc.UpdateSceneSpeaker(r.Context(), s.doc.Scenes(), speaker)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	s.doc.ApplyVoice(r.Context(), a)
	s.doc.SetSpeaker(r.Context(), speaker)
	writeJSON(w, http.StatusOK, s.doc.AudioSettings())
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		writeError(w, http.StatusServiceUnavailable, errNoServices)
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	_ = decode(r, &req)
	p := export.BuildRenderPayload(s.doc.Snapshot(), export.Options{Title: req.Title, MaxLineLength: s.opt.MaxLineLength})
	url, err := s.svc.Render(r.Context(), p)
	if err != nil {
		writeError(w, serviceStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"videoURL": url})
}
