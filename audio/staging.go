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

package audio

import "github.com/lockstepgb/lockstep/hardware"

// Staging is a growable buffer of interleaved stereo samples waiting to be
// delivered to the host.
//
// The capacity of the buffer never decreases and the write cursor never
// exceeds the capacity. Samples are never dropped to make room for new
// samples.
type Staging struct {
	buf    []int16
	cursor int
}

// newStaging creates a buffer large enough for a couple of frames of audio at
// the sample rate.
func newStaging(rate float64) *Staging {
	sz := ((int(rate/hardware.RefreshRate) + 1) << 1) << 1
	return &Staging{
		buf: make([]int16, sz),
	}
}

// Capacity of the buffer in stereo frames.
func (s *Staging) Capacity() int {
	return len(s.buf) / 2
}

// Cursor is the number of stereo frames in the buffer.
func (s *Staging) Cursor() int {
	return s.cursor / 2
}

// reserve grows the buffer if there isn't room for the number of frames. the
// buffer grows by the shortfall and then by a further half.
func (s *Staging) reserve(frames int) {
	free := (len(s.buf) - s.cursor) / 2
	if free >= frames {
		return
	}

	sz := len(s.buf) + (frames-free)*2
	sz = sz*2 - sz/2

	buf := make([]int16, sz)
	copy(buf, s.buf[:s.cursor])
	s.buf = buf
}

// Write interleaved stereo samples to the buffer.
func (s *Staging) Write(samples []int16) {
	s.reserve(len(samples) / 2)
	s.cursor += copy(s.buf[s.cursor:], samples)
}

// Frames returns the staged samples. The slice is only valid until the next
// call to Write() or consume().
func (s *Staging) Frames() []int16 {
	return s.buf[:s.cursor]
}

// consume removes the number of frames from the front of the buffer.
func (s *Staging) consume(frames int) {
	n := frames * 2
	copy(s.buf, s.buf[n:s.cursor])
	s.cursor -= n
}
