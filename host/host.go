// This file is part of Lockstep.
//
// Lockstep is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lockstep is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Lockstep.  If not, see <https://www.gnu.org/licenses/>.

package host

import (
	"fmt"

	"github.com/lockstepgb/lockstep/hardware"
)

// AudioSink receives resampled audio from a session.
type AudioSink interface {
	// Deliver interleaved stereo samples. The frames argument is the number
	// of stereo frames in the samples slice. The return value is the number
	// of frames accepted, which may be less than the number offered.
	Deliver(samples []int16, frames int) int
}

// VideoSink receives the composite video image once per frame.
type VideoSink interface {
	// Present the image. The stride is measured in pixels. The buffer should
	// not be retained after the function returns.
	Present(buf []hardware.Pixel, width int, height int, stride int) error
}

// AVInfo describes the audio and video produced by a session.
type AVInfo struct {
	Width      int
	Height     int
	FrameRate  float64
	SampleRate float64
}

func (av AVInfo) String() string {
	return fmt.Sprintf("%dx%d @ %.4ffps, %.1fHz", av.Width, av.Height, av.FrameRate, av.SampleRate)
}

// AVInfoSink is an optional interface for audio and video sinks. The
// SetAVInfo() function is called whenever the AV information changes.
type AVInfoSink interface {
	SetAVInfo(AVInfo)
}

// Sinks collates the audio and video sinks of a session.
type Sinks struct {
	Audio AudioSink
	Video VideoSink
}

// Null is an implementation of both the AudioSink and VideoSink interfaces.
// All audio is accepted and video is discarded.
type Null struct{}

// Deliver implements the AudioSink interface.
func (Null) Deliver(_ []int16, frames int) int {
	return frames
}

// Present implements the VideoSink interface.
func (Null) Present(_ []hardware.Pixel, _ int, _ int, _ int) error {
	return nil
}

// NullSinks returns a Sinks instance with Null sinks.
func NullSinks() Sinks {
	return Sinks{Audio: Null{}, Video: Null{}}
}

// SetAVInfo calls SetAVInfo() on each sink that implements the AVInfoSink
// interface.
func (s Sinks) SetAVInfo(av AVInfo) {
	if a, ok := s.Audio.(AVInfoSink); ok {
		a.SetAVInfo(av)
	}
	// a single value can be both the audio and video sink
	if any(s.Video) == any(s.Audio) {
		return
	}
	if v, ok := s.Video.(AVInfoSink); ok {
		v.SetAVInfo(av)
	}
}
