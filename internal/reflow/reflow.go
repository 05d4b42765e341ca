/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package reflow splits subtitle lines into renderer-sized chunks and merges them back.
//
// SplitLongLine and MergeLines are not exact inverses. A merge keeps only the first
// chunk's animation metadata, and a split collapses runs of whitespace. Animation
// metadata is treated as uniform across a scene's subtitle.
package reflow

import (
	"strings"
	"unicode/utf8"

	"scenecraft/internal/domain"
)

// DefaultMaxLength is the longest subtitle chunk the renderer lays out on one line.
const DefaultMaxLength = 86

// SplitLongLine greedily packs whitespace-separated words into chunks of at most
// maxLength characters. Words are never split; a single word longer than maxLength
// becomes its own chunk. Every chunk carries line's animation metadata. A line
// that already fits is returned unchanged.
func SplitLongLine(line domain.TextLine, maxLength int) []domain.TextLine {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if utf8.RuneCountInString(line.Text) <= maxLength {
		return []domain.TextLine{line.Clone()}
	}
	words := strings.Fields(line.Text)
	if len(words) == 0 {
		return []domain.TextLine{line.Clone()}
	}
	var out []domain.TextLine
	var chunk []string
	cur := 0
	flush := func() {
		c := line.Clone()
		c.Text = strings.Join(chunk, " ")
		out = append(out, c)
		chunk = chunk[:0]
		cur = 0
	}
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if len(chunk) > 0 && cur+1+wl > maxLength {
			flush()
		}
		if len(chunk) > 0 {
			cur++
		}
		chunk = append(chunk, w)
		cur += wl
	}
	if len(chunk) > 0 {
		flush()
	}
	return out
}

// SplitTextLines applies SplitLongLine to every line in order.
func SplitTextLines(lines []domain.TextLine, maxLength int) []domain.TextLine {
	out := make([]domain.TextLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, SplitLongLine(l, maxLength)...)
	}
	return out
}

// MergeLines joins all chunk texts with single spaces and keeps only the first
// chunk's animation metadata. ok is false for an empty input.
func MergeLines(lines []domain.TextLine) (merged domain.TextLine, ok bool) {
	if len(lines) == 0 {
		return domain.TextLine{}, false
	}
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	first := lines[0].Clone()
	return domain.TextLine{
		Text:            strings.Join(texts, " "),
		TextAnimation:   first.TextAnimation,
		TextBgAnimation: first.TextBgAnimation,
	}, true
}

// MergeScenes returns a copy of scenes where each first sub-scene's text lines are
// merged into one.
func MergeScenes(scenes []domain.Scene) []domain.Scene {
	out := domain.CloneScenes(scenes)
	for i := range out {
		if !out[i].HasSubScene() {
			continue
		}
		ss := &out[i].SubScenes[0]
		if m, ok := MergeLines(ss.TextLines); ok {
			ss.TextLines = []domain.TextLine{m}
		}
	}
	return out
}

// SplitScenes returns a copy of scenes with every sub-scene's text lines split.
func SplitScenes(scenes []domain.Scene, maxLength int) []domain.Scene {
	out := domain.CloneScenes(scenes)
	for i := range out {
		for j := range out[i].SubScenes {
			ss := &out[i].SubScenes[j]
			if ss.TextLines == nil {
				ss.TextLines = []domain.TextLine{}
				continue
			}
			ss.TextLines = SplitTextLines(ss.TextLines, maxLength)
		}
	}
	return out
}

// FormattedSubtitleText joins the raw subtitle of every scene with newlines.
// It is the script sent to voice generation.
func FormattedSubtitleText(scenes []domain.Scene) string {
	lines := make([]string, 0, len(scenes))
	for _, s := range scenes {
		lines = append(lines, s.SubtitleText())
	}
	return strings.Join(lines, "\n")
}
