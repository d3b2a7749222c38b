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

package comparison

import (
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/host"
)

// capture records the most recent frame and all audio delivered to it. If the
// sinks field is not empty then the video and audio is forwarded.
type capture struct {
	sinks host.Sinks

	width  int
	height int
	video  []hardware.Pixel
	audio  []int16
}

func (c *capture) reset() {
	c.width = 0
	c.height = 0
	c.video = c.video[:0]
	c.audio = c.audio[:0]
}

// Present implements the host.VideoSink interface.
func (c *capture) Present(buf []hardware.Pixel, width int, height int, stride int) error {
	c.width = width
	c.height = height
	c.video = c.video[:0]
	for y := range height {
		c.video = append(c.video, buf[y*stride:y*stride+width]...)
	}
	if c.sinks.Video != nil {
		return c.sinks.Video.Present(buf, width, height, stride)
	}
	return nil
}

// Deliver implements the host.AudioSink interface. Only the frames accepted by
// the forwarding sink are recorded.
func (c *capture) Deliver(samples []int16, frames int) int {
	if c.sinks.Audio != nil {
		frames = c.sinks.Audio.Deliver(samples, frames)
	}
	c.audio = append(c.audio, samples[:frames*2]...)
	return frames
}

// SetAVInfo implements the host.AVInfoSink interface.
func (c *capture) SetAVInfo(av host.AVInfo) {
	if c.sinks.Audio != nil || c.sinks.Video != nil {
		c.sinks.SetAVInfo(av)
	}
}

