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

package comparison_test

import (
	"path/filepath"
	"testing"

	"github.com/lockstepgb/lockstep/comparison"
	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/hardware/synthetic"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/preferences"
	"github.com/lockstepgb/lockstep/session"
	"github.com/lockstepgb/lockstep/test"
)

func setup(t *testing.T, factory comparison.FactoryFunc) (*comparison.Comparison, *session.Session) {
	t.Helper()

	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	cmp, err := comparison.NewComparison(p, nil, factory)
	test.DemandSuccess(t, err)

	env, err := environment.NewEnvironment(environment.MainSession, p, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	main, err := session.New(env, cmp.Driver(host.NullSinks()), factory(env))
	test.DemandSuccess(t, err)

	rom := synthetic.MakeROM(synthetic.ROMOptions{Title: "COMPARE"})
	test.DemandSuccess(t, main.Load(rom, 0))
	test.DemandSuccess(t, cmp.Load(rom, 0))

	return cmp, main
}

func TestSame(t *testing.T) {
	cmp, main := setup(t, synthetic.NewFactory)

	for range 5 {
		res, err := cmp.RunFrame(main)
		test.DemandSuccess(t, err)
		test.ExpectFailure(t, res.Differs())
	}

	test.ExpectEquality(t, cmp.String(), "5 frames compared: 0 video differences, 0 audio differences")

	select {
	case img := <-cmp.Render:
		test.ExpectEquality(t, img.Bounds().Dx(), hardware.ScreenWidth*2)
		test.ExpectEquality(t, img.Bounds().Dy(), hardware.ScreenHeight)
	default:
		t.Errorf("no image rendered")
	}

	select {
	case img := <-cmp.DiffRender:
		// no differences means a black image
		test.ExpectEquality(t, img.Pix[0], uint8(0))
		test.ExpectEquality(t, img.Pix[3], uint8(0xff))
	default:
		t.Errorf("no difference image rendered")
	}
}

// offset is an instance that produces different video to the synthetic
// instance.
type offset struct {
	hardware.Instance
}

func (o offset) RunFor(video []hardware.Pixel, stride int, sound []uint32, ticks int) (hardware.RunResult, error) {
	r, err := o.Instance.RunFor(video, stride, sound, ticks)
	if len(video) > 0 {
		video[0] = 0x123456
	}
	return r, err
}

func TestDifferent(t *testing.T) {
	// the factory used by the comparison session is the only one that
	// creates offset instances
	var calls int
	factory := func(env *environment.Environment) hardware.Factory {
		calls++
		f := synthetic.NewFactory(env)
		if calls > 1 {
			return f
		}
		return func(id int, canonical bool) (hardware.Instance, error) {
			ins, err := f(id, canonical)
			return offset{Instance: ins}, err
		}
	}

	cmp, main := setup(t, factory)

	res, err := cmp.RunFrame(main)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, res.Differs())
	test.ExpectInequality(t, res.Pixels, 0)
	test.ExpectFailure(t, res.Audio)

	img := <-cmp.DiffRender
	test.ExpectEquality(t, img.Pix[0], uint8(0xff))
}
