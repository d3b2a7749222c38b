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

package compositor

import (
	"fmt"
	"strings"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
)

// Sentinal error patterns.
const (
	UnknownPixelFormat = "compositor: unknown pixel format (%s)"
	UnknownBlendMode   = "compositor: unknown blend mode (%s)"
	FrameError         = "compositor: %v"
)

// PixelFormat is the encoding of a Pixel value.
type PixelFormat int

// List of valid PixelFormat values.
const (
	XRGB8888 PixelFormat = iota
	RGB565
	ABGR1555
)

// FormatList is the list of names for each PixelFormat, in order.
var FormatList = []string{"xrgb8888", "rgb565", "abgr1555"}

func (f PixelFormat) String() string {
	if f >= XRGB8888 && int(f) < len(FormatList) {
		return FormatList[f]
	}
	return fmt.Sprintf("unknown pixel format (%d)", int(f))
}

// ParsePixelFormat returns the PixelFormat for the name. Names are not case
// sensitive.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xrgb8888":
		return XRGB8888, nil
	case "rgb565":
		return RGB565, nil
	case "abgr1555", "0rgb1555":
		return ABGR1555, nil
	}
	return XRGB8888, curated.Errorf(UnknownPixelFormat, s)
}

// position and width of a colour channel in a pixel.
type channel struct {
	shift uint
	mask  uint32
}

// the red, green and blue channels of each pixel format.
var channels = [...][3]channel{
	XRGB8888: {{16, 0xff}, {8, 0xff}, {0, 0xff}},
	RGB565:   {{11, 0x1f}, {5, 0x3f}, {0, 0x1f}},
	ABGR1555: {{0, 0x1f}, {5, 0x1f}, {10, 0x1f}},
}

// bits of the pixel that are not part of a colour channel. preserved from the
// current frame when blending.
var extraBits = [...]uint32{
	XRGB8888: 0x00000000,
	RGB565:   0x00000000,
	ABGR1555: 0x00008000,
}

// MixMask is the least significant bit of each colour channel. Used by the mix
// blend to average two pixels without carrying between channels.
func (f PixelFormat) MixMask() uint32 {
	switch f {
	case RGB565:
		return 0x0821
	case ABGR1555:
		return 0x0421
	}
	return 0x10101
}

// Mix returns the average of two pixels, rounded up.
func (f PixelFormat) Mix(cur hardware.Pixel, prev hardware.Pixel) hardware.Pixel {
	c := uint32(cur)
	p := uint32(prev)
	x := extraBits[f]
	m := (c&^x + p&^x + ((c ^ p) & f.MixMask())) >> 1
	return hardware.Pixel(m | c&x)
}

// Unpack a pixel into red, green and blue values.
func (f PixelFormat) Unpack(p hardware.Pixel) (r, g, b uint32) {
	ch := channels[f]
	v := uint32(p)
	return v >> ch[0].shift & ch[0].mask, v >> ch[1].shift & ch[1].mask, v >> ch[2].shift & ch[2].mask
}

// Pack red, green and blue values into a pixel. Values are masked to the width
// of the channel.
func (f PixelFormat) Pack(r, g, b uint32) hardware.Pixel {
	ch := channels[f]
	return hardware.Pixel((r&ch[0].mask)<<ch[0].shift | (g&ch[1].mask)<<ch[1].shift | (b&ch[2].mask)<<ch[2].shift)
}

// Shades returns four greys in the pixel format, lightest first. Suitable for
// use with the hardware.Palette interface.
func (f PixelFormat) Shades() [4]hardware.Pixel {
	var s [4]hardware.Pixel
	ch := channels[f]
	for i := range s {
		lvl := func(c channel) uint32 {
			return c.mask * uint32(3-i) / 3
		}
		s[i] = f.Pack(lvl(ch[0]), lvl(ch[1]), lvl(ch[2]))
	}
	return s
}
