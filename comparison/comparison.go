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
	"fmt"
	"image"
	"image/color"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/notifications"
	"github.com/lockstepgb/lockstep/preferences"
	"github.com/lockstepgb/lockstep/session"
)

const comparisonLabel = environment.Label("comparison")

// FactoryFunc creates the hardware.Factory for a session's environment.
type FactoryFunc func(env *environment.Environment) hardware.Factory

// Runner is the part of the main session used by the comparison.
type Runner interface {
	RunFrame() error
}

// Result of comparing one frame.
type Result struct {
	// number of pixels that differ
	Pixels int

	// audio samples differ
	Audio bool
}

// Differs returns true if either the video or audio of the two sessions
// differs.
func (r Result) Differs() bool {
	return r.Pixels > 0 || r.Audio
}

// Comparison type runs a parallel session with the intention of comparing
// the output with the driver session.
type Comparison struct {
	Session *session.Session
	env     *environment.Environment

	driver capture
	own    capture

	img     *image.RGBA
	diffImg *image.RGBA

	Render     chan *image.RGBA
	DiffRender chan *image.RGBA

	// summary of all frames compared
	frames     int
	videoDiffs int
	audioDiffs int
}

// NewComparison is the preferred method of initialisation for the Comparison
// type.
func NewComparison(prefs *preferences.Preferences, notify notifications.Notify, factory FactoryFunc) (*Comparison, error) {
	cmp := &Comparison{
		Render:     make(chan *image.RGBA, 1),
		DiffRender: make(chan *image.RGBA, 1),
	}

	var err error

	cmp.env, err = environment.NewEnvironment(comparisonLabel, prefs, notify)
	if err != nil {
		return nil, fmt.Errorf("comparison: %w", err)
	}

	cmp.Session, err = session.New(cmp.env, host.Sinks{Audio: &cmp.own, Video: &cmp.own}, factory(cmp.env))
	if err != nil {
		return nil, fmt.Errorf("comparison: %w", err)
	}

	return cmp, nil
}

func (cmp *Comparison) String() string {
	return fmt.Sprintf("%d frames compared: %d video differences, %d audio differences",
		cmp.frames, cmp.videoDiffs, cmp.audioDiffs)
}

// Driver wraps the sinks of the main session so that the output can be
// compared. The returned sinks should be used when creating the main session.
func (cmp *Comparison) Driver(sinks host.Sinks) host.Sinks {
	cmp.driver.sinks = sinks
	return host.Sinks{Audio: &cmp.driver, Video: &cmp.driver}
}

// Load the ROM into the comparison session. The same ROM should be loaded
// into the main session.
func (cmp *Comparison) Load(rom []byte, flags hardware.LoadFlags) error {
	cmp.Reset()
	if err := cmp.Session.Load(rom, flags); err != nil {
		return fmt.Errorf("comparison: %w", err)
	}
	return nil
}

// Reset the comparison counters and buffers.
func (cmp *Comparison) Reset() {
	cmp.driver.reset()
	cmp.own.reset()
	cmp.frames = 0
	cmp.videoDiffs = 0
	cmp.audioDiffs = 0
}

// RunFrame runs one frame of the main session and of the comparison session
// at the same time. The output of the two sessions is then compared.
func (cmp *Comparison) RunFrame(main Runner) (Result, error) {
	var g errgroup.Group
	g.Go(main.RunFrame)
	g.Go(cmp.Session.RunFrame)
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("comparison: %w", err)
	}
	return cmp.compare()
}

func (cmp *Comparison) compare() (Result, error) {
	var res Result

	if cmp.driver.width != cmp.own.width || cmp.driver.height != cmp.own.height {
		return res, fmt.Errorf("comparison: frames are different sizes")
	}

	w, h := cmp.own.width, cmp.own.height
	if cmp.img == nil || cmp.img.Bounds().Dx() != w || cmp.img.Bounds().Dy() != h {
		cmp.img = image.NewRGBA(image.Rect(0, 0, w, h))
		cmp.diffImg = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := range h {
		for x := range w {
			i := y*w + x
			a := cmp.own.video[i]
			b := cmp.driver.video[i]

			cmp.img.SetRGBA(x, y, toRGBA(a))

			if a != b {
				res.Pixels++
				cmp.diffImg.SetRGBA(x, y, color.RGBA{0xff, 0xff, 0xff, 0xff})
			} else {
				cmp.diffImg.SetRGBA(x, y, color.RGBA{0x00, 0x00, 0x00, 0xff})
			}
		}
	}

	// audio is compared as a stream. the main session's sink may not accept
	// everything it is offered so the amount of audio in each frame can differ
	n := min(len(cmp.own.audio), len(cmp.driver.audio))
	res.Audio = !slices.Equal(cmp.own.audio[:n], cmp.driver.audio[:n])
	cmp.own.audio = slices.Delete(cmp.own.audio, 0, n)
	cmp.driver.audio = slices.Delete(cmp.driver.audio, 0, n)

	cmp.frames++
	if res.Pixels > 0 {
		cmp.videoDiffs++
	}
	if res.Audio {
		cmp.audioDiffs++
	}

	img := *cmp.img
	img.Pix = slices.Clone(cmp.img.Pix)
	select {
	case cmp.Render <- &img:
	default:
	}

	diff := *cmp.diffImg
	diff.Pix = slices.Clone(cmp.diffImg.Pix)
	select {
	case cmp.DiffRender <- &diff:
	default:
	}

	return res, nil
}

// toRGBA converts a pixel to a color. the conversion is only used for display
// so the pixel is treated as XRGB8888 whatever the pixel format.
func toRGBA(p hardware.Pixel) color.RGBA {
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: 0xff}
}
