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

	"github.com/lockstepgb/lockstep/hardware"
)

// the number of bytes for each pixel in the hashed data
const pixelDepth = 4

// Video is an implementation of the host.VideoSink interface with an
// implementation of the Digest interface.
type Video struct {
	digest [sha1.Size]byte
	pixels []byte
	frames int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{}
}

func (dig *Video) String() string {
	return dig.Hash()
}

// Hash implements the Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Video) ResetDigest() {
	clear(dig.digest[:])
	dig.frames = 0
}

// Frames returns the number of frames presented since the last reset.
func (dig *Video) Frames() int {
	return dig.frames
}

// Present implements the host.VideoSink interface. Only the visible part of
// each row contributes to the hash.
func (dig *Video) Present(buf []hardware.Pixel, width int, height int, stride int) error {
	// length of pixels array contains enough room for the previous frames
	// digest value
	l := len(dig.digest) + width*height*pixelDepth
	if len(dig.pixels) != l {
		dig.pixels = make([]byte, l)
	}

	// chain fingerprints by copying the value of the last fingerprint
	// to the head of the video data
	copy(dig.pixels, dig.digest[:])

	i := len(dig.digest)
	for y := range height {
		for _, p := range buf[y*stride : y*stride+width] {
			binary.LittleEndian.PutUint32(dig.pixels[i:], uint32(p))
			i += pixelDepth
		}
	}

	dig.digest = sha1.Sum(dig.pixels)
	dig.frames++

	return nil
}
