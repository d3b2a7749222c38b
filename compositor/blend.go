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

// BlendMode is the temporal blend applied to the composite image.
type BlendMode int

// List of valid BlendMode values.
const (
	BlendNone BlendMode = iota

	// the current and previous frames are averaged
	BlendMix

	// ghosting with four previous frames
	BlendGhosting

	// ghosting with a running average
	BlendGhostingFast
)

// BlendList is the list of names for each BlendMode, in order.
var BlendList = []string{"none", "mix", "lcd", "lcdfast"}

func (m BlendMode) String() string {
	if m >= BlendNone && int(m) < len(BlendList) {
		return BlendList[m]
	}
	return fmt.Sprintf("unknown blend mode (%d)", int(m))
}

// ParseBlendMode returns the BlendMode for the name. Names are not case
// sensitive.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return BlendNone, nil
	case "mix":
		return BlendMix, nil
	case "lcd", "ghosting":
		return BlendGhosting, nil
	case "lcdfast", "fast":
		return BlendGhostingFast, nil
	}
	return BlendNone, curated.Errorf(UnknownBlendMode, s)
}

// DefaultResponse is the default response time of the ghosting blends.
const DefaultResponse = 0.333

// the number of previous frames used by the ghosting blend
const ghostingFrames = 4

// the weight of the accumulated value in the fast ghosting blend
const fastBlend = 0.5

// blendMix averages each pixel with the pixel of the previous frame.
func (c *Compositor) blendMix() {
	for i, p := range c.composite {
		c.composite[i] = c.format.Mix(p, c.prev[i])
		c.prev[i] = p
	}
}

// blendGhosting blends each pixel with the same pixel in the previous four
// frames. The weight of a previous frame k frames ago is response^k.
func (c *Compositor) blendGhosting() {
	ch := channels[c.format]
	x := extraBits[c.format]

	for i, p := range c.composite {
		r, g, b := c.format.Unpack(p)
		rf, gf, bf := float64(r), float64(g), float64(b)

		for k := range ghostingFrames {
			pr, pg, pb := c.format.Unpack(c.history[k][i])
			w := c.weights[k]
			rf += (float64(pr) - rf) * w
			gf += (float64(pg) - gf) * w
			bf += (float64(pb) - bf) * w
		}

		// the history holds the unblended frames
		for k := ghostingFrames - 1; k > 0; k-- {
			c.history[k][i] = c.history[k-1][i]
		}
		c.history[0][i] = p

		c.composite[i] = c.format.Pack(
			uint32(rf+0.5)&ch[0].mask,
			uint32(gf+0.5)&ch[1].mask,
			uint32(bf+0.5)&ch[2].mask,
		) | hardware.Pixel(uint32(p)&x)
	}
}

// blendGhostingFast keeps a running average of each channel.
func (c *Compositor) blendGhostingFast() {
	ch := channels[c.format]
	x := extraBits[c.format]

	for i, p := range c.composite {
		r, g, b := c.format.Unpack(p)

		c.acc[0][i] = float32(r)*(1.0-fastBlend) + fastBlend*c.acc[0][i]
		c.acc[1][i] = float32(g)*(1.0-fastBlend) + fastBlend*c.acc[1][i]
		c.acc[2][i] = float32(b)*(1.0-fastBlend) + fastBlend*c.acc[2][i]

		c.composite[i] = c.format.Pack(
			uint32(c.acc[0][i]+0.5)&ch[0].mask,
			uint32(c.acc[1][i]+0.5)&ch[1].mask,
			uint32(c.acc[2][i]+0.5)&ch[2].mask,
		) | hardware.Pixel(uint32(p)&x)
	}
}
