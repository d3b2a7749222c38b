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

package session_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/lockstepgb/lockstep/audio"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/hardware/synthetic"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/notifications"
	"github.com/lockstepgb/lockstep/preferences"
	"github.com/lockstepgb/lockstep/scheduler"
	"github.com/lockstepgb/lockstep/session"
	"github.com/lockstepgb/lockstep/test"
)

type notices struct {
	received []notifications.Notice
}

func (n *notices) Notify(notice notifications.Notice) error {
	n.received = append(n.received, notice)
	return nil
}

func (n *notices) count(notice notifications.Notice) int {
	var c int
	for _, r := range n.received {
		if r == notice {
			c++
		}
	}
	return c
}

type sink struct {
	presents int
	frames   int
	av       []host.AVInfo
	last     []hardware.Pixel

	// called from Present()
	onPresent func() error
}

func (s *sink) Present(buf []hardware.Pixel, w, h, stride int) error {
	s.presents++
	s.last = slices.Clone(buf)
	if s.onPresent != nil {
		return s.onPresent()
	}
	return nil
}

func (s *sink) Deliver(samples []int16, frames int) int {
	s.frames += frames
	return frames
}

func (s *sink) SetAVInfo(av host.AVInfo) {
	s.av = append(s.av, av)
}

func newEnvironment(t *testing.T) (*environment.Environment, *notices) {
	t.Helper()
	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	n := &notices{}
	env, err := environment.NewEnvironment("test", p, n)
	test.DemandSuccess(t, err)
	env.Normalise()
	return env, n
}

func newSession(t *testing.T, env *environment.Environment) (*session.Session, *sink) {
	t.Helper()
	snk := &sink{}
	s, err := session.New(env, host.Sinks{Audio: snk, Video: snk}, synthetic.NewFactory(env))
	test.DemandSuccess(t, err)
	return s, snk
}

func TestNew(t *testing.T) {
	env, _ := newEnvironment(t)

	_, err := session.New(nil, host.NullSinks(), synthetic.NewFactory(env))
	test.ExpectSuccess(t, curated.Is(err, session.SetupFailure))

	_, err = session.New(env, host.NullSinks(), nil)
	test.ExpectSuccess(t, curated.Is(err, session.SetupFailure))

	_, err = session.New(env, host.Sinks{}, synthetic.NewFactory(env))
	test.ExpectSuccess(t, curated.Is(err, session.SetupFailure))

	s, _ := newSession(t, env)
	test.ExpectFailure(t, s.Loaded())
	test.ExpectSuccess(t, curated.Is(s.RunFrame(), session.NotLoaded))
	test.ExpectEquality(t, s.StateSize(), 0)

	// information is available before a rom is loaded
	av := s.AVInfo()
	test.ExpectEquality(t, av.Width, hardware.ScreenWidth*2)
	test.ExpectEquality(t, av.Height, hardware.ScreenHeight)
	test.ExpectEquality(t, av.SampleRate, audio.Sinc.SampleRate())
}

func TestLoad(t *testing.T) {
	env, _ := newEnvironment(t)
	s, snk := newSession(t, env)

	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{Title: "LOAD"}), 0))
	test.ExpectSuccess(t, s.Loaded())
	test.ExpectEquality(t, s.Instances(), 2)
	test.ExpectEquality(t, s.LinkMode(), link.LocalPair)

	// the sinks are told about the audio and video
	test.DemandEquality(t, len(snk.av), 1)
	test.ExpectEquality(t, snk.av[0], s.AVInfo())
	test.ExpectEquality(t, snk.av[0].Width, hardware.ScreenWidth*2)

	for range 5 {
		test.DemandSuccess(t, s.RunFrame())
	}
	test.ExpectEquality(t, snk.presents, 5)
	test.ExpectEquality(t, len(snk.last), hardware.ScreenWidth*2*hardware.ScreenHeight)
	test.ExpectInequality(t, snk.frames, 0)
	test.ExpectEquality(t, s.State().Frame, 5)

	// instances have exchanged data over the link
	test.ExpectInequality(t, s.LinkStats().Delivered, 0)
	test.ExpectInequality(t, s.Instance(0).(*synthetic.Canonical).Transfers(), 0)
	test.ExpectInequality(t, s.Instance(1).(*synthetic.Instance).Transfers(), 0)
	test.ExpectEquality(t, s.Instance(2), nil)

	test.ExpectSuccess(t, s.Unload())
	test.ExpectFailure(t, s.Loaded())
	test.ExpectEquality(t, s.LinkMode(), link.None)
}

func TestSingleInstance(t *testing.T) {
	env, _ := newEnvironment(t)
	test.DemandSuccess(t, env.Prefs.Instances.Set(1))
	s, snk := newSession(t, env)

	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))
	test.ExpectEquality(t, s.Instances(), 1)

	// a local link needs two instances
	test.ExpectEquality(t, s.LinkMode(), link.None)

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, len(snk.last), hardware.ScreenWidth*hardware.ScreenHeight)
}

// rejecting is an instance that never accepts a rom.
type rejecting struct {
	hardware.Instance
}

func (rejecting) Load(_ []byte, _ hardware.LoadFlags) error {
	return curated.Errorf(hardware.InvalidROM, "rejected")
}

func TestSetupFailure(t *testing.T) {
	env, _ := newEnvironment(t)
	factory := func(id int, canonical bool) (hardware.Instance, error) {
		ins, err := synthetic.NewFactory(env)(id, canonical)
		if id == 1 {
			return rejecting{Instance: ins}, err
		}
		return ins, err
	}

	s, err := session.New(env, host.NullSinks(), factory)
	test.DemandSuccess(t, err)

	err = s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0)
	test.ExpectSuccess(t, curated.Is(err, session.SetupFailure))
	test.ExpectSuccess(t, curated.Has(err, hardware.InvalidROM))

	// no instances are left behind
	test.ExpectFailure(t, s.Loaded())
	test.ExpectEquality(t, s.Instances(), 0)

	// invalid rom for every instance
	s, _ = newSession(t, env)
	err = s.Load(make([]byte, 0x10), 0)
	test.ExpectSuccess(t, curated.Is(err, session.SetupFailure))
	test.ExpectFailure(t, s.Loaded())

	// factory error
	s, err = session.New(env, host.NullSinks(), func(id int, canonical bool) (hardware.Instance, error) {
		return nil, errors.New("no hardware")
	})
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, curated.Is(s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0), session.SetupFailure))
}

// failing is an instance that returns an error from RunFor() when fail is set.
type failing struct {
	hardware.Instance
	fail *bool
}

func (f failing) RunFor(video []hardware.Pixel, stride int, sound []uint32, ticks int) (hardware.RunResult, error) {
	if *f.fail {
		return hardware.RunResult{}, errors.New("instance failure")
	}
	return f.Instance.RunFor(video, stride, sound, ticks)
}

func TestHalted(t *testing.T) {
	env, _ := newEnvironment(t)

	var fail bool
	factory := func(id int, canonical bool) (hardware.Instance, error) {
		ins, err := synthetic.NewFactory(env)(id, canonical)
		if id == 1 {
			return failing{Instance: ins, fail: &fail}, err
		}
		return ins, err
	}

	snk := &sink{}
	s, err := session.New(env, host.Sinks{Audio: snk, Video: snk}, factory)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))
	test.DemandSuccess(t, s.RunFrame())

	// the second instance fails after the first instance has run part of
	// the frame
	fail = true
	err = s.RunFrame()
	test.ExpectSuccess(t, curated.Has(err, scheduler.RunFailure))

	// the session will not run again even though the failure has gone
	fail = false
	for range 3 {
		err = s.RunFrame()
		test.ExpectSuccess(t, curated.Is(err, session.Halted))
	}
	test.ExpectEquality(t, snk.presents, 1)

	test.DemandSuccess(t, s.Reset())
	test.ExpectSuccess(t, s.RunFrame())
	test.ExpectEquality(t, snk.presents, 2)
}

// a failure to present a frame does not halt the session
func TestPresentFailure(t *testing.T) {
	env, _ := newEnvironment(t)
	s, snk := newSession(t, env)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))

	snk.onPresent = func() error {
		return errors.New("no display")
	}
	test.ExpectSuccess(t, curated.Has(s.RunFrame(), scheduler.PresentFailure))

	snk.onPresent = nil
	test.ExpectSuccess(t, s.RunFrame())
}

func TestSerialization(t *testing.T) {
	env, _ := newEnvironment(t)
	s, _ := newSession(t, env)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{RAM: true}), 0))

	for range 3 {
		test.DemandSuccess(t, s.RunFrame())
	}

	sz := s.StateSize()
	test.DemandInequality(t, sz, 0)

	saved := make([]byte, sz)
	test.DemandSuccess(t, s.Serialize(saved))

	for range 3 {
		test.DemandSuccess(t, s.RunFrame())
	}

	current := make([]byte, sz)
	test.DemandSuccess(t, s.Serialize(current))
	test.ExpectFailure(t, slices.Equal(saved, current))

	// wrong size is rejected and state is untouched
	err := s.Deserialize(saved[:sz-1])
	test.ExpectSuccess(t, curated.Is(err, session.SerializationMismatch))
	after := make([]byte, sz)
	test.DemandSuccess(t, s.Serialize(after))
	test.ExpectSuccess(t, slices.Equal(current, after))

	err = s.Serialize(make([]byte, sz+1))
	test.ExpectSuccess(t, curated.Is(err, session.SerializationMismatch))

	// corrupted state is rejected and state is untouched
	corrupt := slices.Clone(saved)
	corrupt[0] ^= 0xff
	err = s.Deserialize(corrupt)
	test.ExpectSuccess(t, curated.Is(err, session.SerializationMismatch))
	test.DemandSuccess(t, s.Serialize(after))
	test.ExpectSuccess(t, slices.Equal(current, after))

	test.DemandSuccess(t, s.Deserialize(saved))
	test.DemandSuccess(t, s.Serialize(after))
	test.ExpectSuccess(t, slices.Equal(saved, after))
}

func TestResetPreservesSaveData(t *testing.T) {
	env, _ := newEnvironment(t)
	s, snk := newSession(t, env)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{RAM: true, RTC: true}), 0))

	for range 120 {
		test.DemandSuccess(t, s.RunFrame())
	}

	sram := slices.Clone(s.SaveData())
	rtc := slices.Clone(s.RTCData())
	test.DemandInequality(t, len(sram), 0)
	test.DemandInequality(t, len(rtc), 0)
	test.ExpectInequality(t, len(s.MemoryRegions()), 0)

	test.DemandSuccess(t, s.Reset())
	test.ExpectEquality(t, s.State().Frame, 0)
	test.ExpectSuccess(t, slices.Equal(sram, s.SaveData()))
	test.ExpectSuccess(t, slices.Equal(rtc, s.RTCData()))

	// the session still runs after a reset
	presents := snk.presents
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, snk.presents, presents+1)
	test.ExpectEquality(t, s.LinkMode(), link.LocalPair)
}

func TestMidFrame(t *testing.T) {
	env, _ := newEnvironment(t)
	s, snk := newSession(t, env)
	rom := synthetic.MakeROM(synthetic.ROMOptions{})
	test.DemandSuccess(t, s.Load(rom, 0))

	var errs []error
	snk.onPresent = func() error {
		buf := make([]byte, s.StateSize())
		errs = append(errs,
			s.Configure(),
			s.Reset(),
			s.Load(rom, 0),
			s.Unload(),
			s.Serialize(buf),
			s.Deserialize(buf),
		)
		return nil
	}

	test.DemandSuccess(t, s.RunFrame())
	test.DemandEquality(t, len(errs), 6)
	for _, err := range errs {
		test.ExpectSuccess(t, curated.Is(err, session.MidFrame))
	}

	// between frames everything is allowed
	snk.onPresent = nil
	test.ExpectSuccess(t, s.Configure())
	test.ExpectSuccess(t, s.Reset())
	test.ExpectSuccess(t, s.Loaded())
}

func TestConfigure(t *testing.T) {
	env, n := newEnvironment(t)
	s, snk := newSession(t, env)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))
	test.DemandEquality(t, len(snk.av), 1)

	test.DemandSuccess(t, env.Prefs.Resampler.Set("cc"))
	test.DemandSuccess(t, env.Prefs.Blend.Set("mix"))
	test.DemandSuccess(t, env.Prefs.AudioSource.Set("mix"))
	test.DemandSuccess(t, s.Configure())

	test.ExpectEquality(t, s.AudioKind(), audio.Decimation)
	test.ExpectEquality(t, s.AVInfo().SampleRate, audio.Decimation.SampleRate())
	test.ExpectEquality(t, n.count(notifications.NotifySampleRateChanged), 1)
	test.DemandEquality(t, len(snk.av), 2)
	test.ExpectEquality(t, snk.av[1].SampleRate, audio.Decimation.SampleRate())

	// no change
	test.DemandSuccess(t, s.Configure())
	test.ExpectEquality(t, n.count(notifications.NotifySampleRateChanged), 1)

	// link can be changed between frames
	test.DemandSuccess(t, env.Prefs.LinkMode.Set("none"))
	test.DemandSuccess(t, s.Configure())
	test.ExpectEquality(t, s.LinkMode(), link.None)
	// unconnected instances always receive a reply
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectInequality(t, s.LinkStats().Delivered, 0)
	test.ExpectEquality(t, s.LinkStats().NotReady, 0)
}

func TestResamplerFallback(t *testing.T) {
	env, n := newEnvironment(t)
	s, _ := newSession(t, env)
	s.SetSincFactory(func() (audio.Filter, error) {
		return nil, errors.New("no sinc")
	})

	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))
	test.ExpectEquality(t, s.AudioKind(), audio.Decimation)
	test.ExpectEquality(t, n.count(notifications.NotifyResamplerFallback), 1)

	// the preference reflects the resampler in use
	test.ExpectEquality(t, env.Prefs.Resampler.String(), "cc")
	test.ExpectEquality(t, s.AVInfo().SampleRate, audio.Decimation.SampleRate())
}

func TestNetworkUnavailable(t *testing.T) {
	env, _ := newEnvironment(t)
	test.DemandSuccess(t, env.Prefs.LinkMode.Set("server"))
	test.DemandSuccess(t, env.Prefs.LinkAddress.Set("256.256.256.256"))

	s, _ := newSession(t, env)

	// the session runs without a link
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))
	test.ExpectEquality(t, s.LinkMode(), link.None)
	test.DemandSuccess(t, s.RunFrame())
}

func TestDeterminism(t *testing.T) {
	run := func() []hardware.Pixel {
		env, _ := newEnvironment(t)
		s, snk := newSession(t, env)
		test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{Title: "SAME"}), 0))
		for range 10 {
			test.DemandSuccess(t, s.RunFrame())
		}
		return snk.last
	}
	test.ExpectSuccess(t, slices.Equal(run(), run()))
}

func TestCheats(t *testing.T) {
	env, _ := newEnvironment(t)
	s, _ := newSession(t, env)

	test.ExpectSuccess(t, curated.Is(s.SetCheat("01FF10C1"), session.NotLoaded))

	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{}), 0))
	canonical := s.Instance(session.CanonicalSlot).(*synthetic.Canonical)
	other := s.Instance(1).(*synthetic.Instance)
	orig := canonical.Read(0x0150)

	// a plus sign separates codes. codes without a dash are gameshark codes
	test.DemandSuccess(t, s.SetCheat("01FF10C1+01AB11C1"))
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, canonical.Read(0xc110), uint8(0xff))
	test.ExpectEquality(t, canonical.Read(0xc111), uint8(0xab))
	test.ExpectEquality(t, other.Read(0xc110), uint8(0x00))

	// codes with a dash are game genie codes
	test.DemandSuccess(t, s.SetCheat("3C1-50F+771-51F"))
	test.ExpectEquality(t, canonical.Read(0x0150), uint8(0x3c))
	test.ExpectEquality(t, canonical.Read(0x0151), uint8(0x77))
	test.ExpectEquality(t, other.Read(0x0150), orig)

	test.ExpectSuccess(t, curated.Is(s.SetCheat("not a cheat"), hardware.InvalidCheat))
	test.ExpectSuccess(t, curated.Is(s.SetCheat("3C1-50"), hardware.InvalidCheat))

	test.DemandSuccess(t, s.ClearCheats())
	test.ExpectEquality(t, canonical.Read(0x0150), orig)
}

// only an instance created for the canonical slot exposes its memory and
// accepts cheats
func TestCanonicalTag(t *testing.T) {
	env, _ := newEnvironment(t)
	factory := func(id int, _ bool) (hardware.Instance, error) {
		return synthetic.NewInstance(id, env), nil
	}

	s, err := session.New(env, host.NullSinks(), factory)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{RAM: true}), 0))

	_, ok := s.Canonical()
	test.ExpectFailure(t, ok)
	test.ExpectSuccess(t, s.SaveData() == nil)
	test.ExpectSuccess(t, curated.Is(s.SetCheat("01FF10C1"), session.NoCheats))
	test.ExpectSuccess(t, s.ClearCheats())

	s, _ = newSession(t, env)
	test.DemandSuccess(t, s.Load(synthetic.MakeROM(synthetic.ROMOptions{RAM: true}), 0))
	c, ok := s.Canonical()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, len(c.SaveData()), 0x2000)
}
