/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package audio maps signed volumes in [-1, 1] to the [0, 100] slider domain and to gain.
package audio

import "fmt"

const (
	// Mute is the signed volume that silences a track.
	Mute = -1.0
	// Unity is the signed volume that leaves a track unchanged.
	Unity = 0.0
)

// SliderToVolume maps a slider position in [0, 100] to a signed volume.
func SliderToVolume(slider float64) float64 { return (slider/100)*2 - 1 }

// VolumeToSlider maps a signed volume in [-1, 1] to a slider position.
func VolumeToSlider(volume float64) float64 { return (volume + 1) / 2 * 100 }

// Gain is the linear amplitude factor a renderer applies for a signed volume:
// 0 at Mute, 1 at Unity, up to 2 at full boost. Out-of-range inputs are clamped.
func Gain(volume float64) float64 {
	g := 1 + volume
	switch {
	case g < 0:
		return 0
	case g > 2:
		return 2
	}
	return g
}

// Clamp limits a signed volume to [-1, 1]. NaN is treated as Unity.
func Clamp(volume float64) float64 {
	switch {
	case volume != volume:
		return Unity
	case volume < Mute:
		return Mute
	case volume > 1:
		return 1
	}
	return volume
}

// Label is the short description shown next to a volume control.
func Label(volume float64) string {
	switch volume {
	case Mute:
		return "Mute: -1"
	case Unity:
		return "Normal: 0"
	}
	return fmt.Sprintf("TTS: %.2f", volume)
}
