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
	"math"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
)

// Compositor creates the composite image for a session.
type Compositor struct {
	format    PixelFormat
	instances int

	composite []hardware.Pixel

	blend    BlendMode
	response float64

	// ghosting weights for frames 1 to 4 frames ago
	weights [ghostingFrames]float64

	// blend buffers. only the buffers required by the current blend mode are
	// allocated
	prev    []hardware.Pixel
	history [ghostingFrames][]hardware.Pixel
	acc     [3][]float32
}

// NewCompositor is the preferred method of initialisation for the Compositor
// type.
func NewCompositor(instances int, format PixelFormat) (*Compositor, error) {
	if instances < 1 {
		return nil, curated.Errorf(FrameError, fmt.Sprintf("compositor requires at least one instance (%d)", instances))
	}
	if format < XRGB8888 || format > ABGR1555 {
		return nil, curated.Errorf(UnknownPixelFormat, format)
	}

	c := &Compositor{
		format:    format,
		instances: instances,
	}
	c.composite = make([]hardware.Pixel, c.Width()*c.Height())
	c.SetResponse(DefaultResponse)

	return c, nil
}

// Width of the composite image in pixels.
func (c *Compositor) Width() int {
	return hardware.ScreenWidth * c.instances
}

// Height of the composite image in pixels.
func (c *Compositor) Height() int {
	return hardware.ScreenHeight
}

// Stride of the composite image in pixels.
func (c *Compositor) Stride() int {
	return c.Width()
}

// Format returns the pixel format of the composite image.
func (c *Compositor) Format() PixelFormat {
	return c.format
}

// Composite returns the composite image. The slice should not be retained.
func (c *Compositor) Composite() []hardware.Pixel {
	return c.composite
}

// InstanceTarget returns the part of the composite image for the instance.
// The instance should draw directly to the returned slice with a stride of
// Stride() pixels.
func (c *Compositor) InstanceTarget(i int) []hardware.Pixel {
	if c.composite == nil || i < 0 || i >= c.instances {
		return nil
	}
	return c.composite[i*hardware.ScreenWidth:]
}

// Compose copies the screen of each instance into the composite image. The
// stride of the source frames is measured in pixels.
func (c *Compositor) Compose(frames [][]hardware.Pixel, stride int) error {
	if len(frames) != c.instances {
		return curated.Errorf(FrameError, fmt.Sprintf("expected %d frames, got %d", c.instances, len(frames)))
	}
	if stride < hardware.ScreenWidth {
		return curated.Errorf(FrameError, fmt.Sprintf("stride too small (%d)", stride))
	}

	w := c.Width()
	for i, f := range frames {
		if len(f) < (hardware.ScreenHeight-1)*stride+hardware.ScreenWidth {
			return curated.Errorf(FrameError, fmt.Sprintf("frame %d too small", i))
		}
		x := i * hardware.ScreenWidth
		for y := range hardware.ScreenHeight {
			copy(c.composite[y*w+x:y*w+x+hardware.ScreenWidth], f[y*stride:])
		}
	}

	return nil
}

// BlendMode returns the current blend mode.
func (c *Compositor) BlendMode() BlendMode {
	return c.blend
}

// SetBlend changes the blend mode. The buffers required by the blend mode are
// allocated and cleared. Buffers not required are released.
func (c *Compositor) SetBlend(mode BlendMode) error {
	if mode < BlendNone || mode > BlendGhostingFast {
		return curated.Errorf(UnknownBlendMode, mode)
	}

	c.blend = mode
	c.prev = nil
	c.history = [ghostingFrames][]hardware.Pixel{}
	c.acc = [3][]float32{}

	n := len(c.composite)

	switch mode {
	case BlendMix:
		c.prev = make([]hardware.Pixel, n)
	case BlendGhosting:
		for k := range c.history {
			c.history[k] = make([]hardware.Pixel, n)
		}
	case BlendGhostingFast:
		for k := range c.acc {
			c.acc[k] = make([]float32, n)
		}
	}

	return nil
}

// Response returns the response time used by the ghosting blend.
func (c *Compositor) Response() float64 {
	return c.response
}

// SetResponse changes the response time used by the ghosting blend. The
// weight of the frame k frames ago is response^k.
func (c *Compositor) SetResponse(response float64) {
	c.response = response
	for k := range c.weights {
		c.weights[k] = math.Pow(response, float64(k+1))
	}
}

// Blend applies the blend mode to the composite image.
func (c *Compositor) Blend() {
	if c.composite == nil {
		return
	}
	switch c.blend {
	case BlendMix:
		c.blendMix()
	case BlendGhosting:
		c.blendGhosting()
	case BlendGhostingFast:
		c.blendGhostingFast()
	}
}

// Clear the composite image and any blend buffers.
func (c *Compositor) Clear() {
	clear(c.composite)
	clear(c.prev)
	for k := range c.history {
		clear(c.history[k])
	}
	for k := range c.acc {
		clear(c.acc[k])
	}
}

// Close releases the composite image and the blend buffers.
func (c *Compositor) Close() {
	c.composite = nil
	c.prev = nil
	c.history = [ghostingFrames][]hardware.Pixel{}
	c.acc = [3][]float32{}
}
