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

package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// the length of the buffer. samples are added after the previous digest value
const audioBufferLength = 1024 + sha1.Size

// the location of the first sample in the buffer
const audioBufferStart = sha1.Size

// Audio is an implementation of the host.AudioSink interface with an
// implementation of the Digest interface.
type Audio struct {
	digest   [sha1.Size]byte
	buffer   []uint8
	bufferCt int

	frames int
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() *Audio {
	dig := &Audio{}
	dig.buffer = make([]uint8, audioBufferLength)
	dig.bufferCt = audioBufferStart
	return dig
}

func (dig *Audio) String() string {
	return dig.Hash()
}

// Hash implements the Digest interface. Any samples not yet included in the
// hash are flushed first.
func (dig *Audio) Hash() string {
	if dig.bufferCt > audioBufferStart {
		dig.flush()
	}
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Audio) ResetDigest() {
	clear(dig.digest[:])
	dig.bufferCt = audioBufferStart
	dig.frames = 0
}

// Frames returns the number of stereo frames received since the last reset.
func (dig *Audio) Frames() int {
	return dig.frames
}

// Deliver implements the host.AudioSink interface. All frames are accepted.
func (dig *Audio) Deliver(samples []int16, frames int) int {
	for _, s := range samples[:frames*2] {
		if dig.bufferCt+2 > audioBufferLength {
			dig.flush()
		}
		binary.LittleEndian.PutUint16(dig.buffer[dig.bufferCt:], uint16(s))
		dig.bufferCt += 2
	}
	dig.frames += frames
	return frames
}

func (dig *Audio) flush() {
	// the unused part of the buffer is cleared so that a partial buffer hashes
	// the same every time
	clear(dig.buffer[dig.bufferCt:])
	dig.digest = sha1.Sum(dig.buffer)
	copy(dig.buffer, dig.digest[:])
	dig.bufferCt = audioBufferStart
}
