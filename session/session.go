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

package session

import (
	"fmt"

	"github.com/lockstepgb/lockstep/audio"
	"github.com/lockstepgb/lockstep/compositor"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/notifications"
	"github.com/lockstepgb/lockstep/scheduler"
)

// Sentinal error patterns.
const (
	SetupFailure          = "session: setup failure: %v"
	SerializationMismatch = "session: serialization mismatch: %v"
	NotLoaded             = "session: no rom loaded"
	MidFrame              = "session: %s not allowed during a frame"
	Halted                = "session: halted: %v"
	NoCheats              = "session: cheats not supported"
)

// CanonicalSlot is the index of the instance that is serialized, exposes its
// memory to the host, produces the audio for the Canonical source and accepts
// cheats.
const CanonicalSlot = 0

// Session is a running emulation of one or more instances.
type Session struct {
	env     *environment.Environment
	sinks   host.Sinks
	factory hardware.Factory

	// used when creating the audio pipeline. nil means the default factory
	sincFactory audio.SincFactory

	rom   []byte
	flags hardware.LoadFlags

	instances []hardware.Instance

	// the capabilities of the instance in the canonical slot. nil if the
	// instance does not implement them
	canonical hardware.Canonical
	cheats    hardware.Cheats

	transport link.Transport
	audio     *audio.Pipeline
	video     *compositor.Compositor
	sched     *scheduler.Scheduler

	// a failure that leaves the instances out of step. RunFrame() will not
	// continue until the session is reset or a rom is loaded
	halted error
}

// New is the preferred method of initialisation for the Session type. The
// factory is used to create the instances when a ROM is loaded.
func New(env *environment.Environment, sinks host.Sinks, factory hardware.Factory) (*Session, error) {
	if env == nil {
		return nil, curated.Errorf(SetupFailure, "no environment")
	}
	if factory == nil {
		return nil, curated.Errorf(SetupFailure, "no instance factory")
	}
	if sinks.Audio == nil || sinks.Video == nil {
		return nil, curated.Errorf(SetupFailure, "audio and video sinks are required")
	}

	return &Session{
		env:     env,
		sinks:   sinks,
		factory: factory,
	}, nil
}

func (s *Session) String() string {
	if !s.Loaded() {
		return "no rom loaded"
	}
	return fmt.Sprintf("%d instances, link: %s, audio: %s, blend: %s, %s",
		len(s.instances), s.transport.Mode(), s.audio.Kind(), s.video.BlendMode(), s.sched.State())
}

// Notify implements the notifications.Notify interface. Notices from the
// audio pipeline and link are passed to the environment after the session
// has responded to them.
func (s *Session) Notify(notice notifications.Notice) error {
	switch notice {
	case notifications.NotifyResamplerFallback:
		// the preference is changed so that it reflects the resampler in use
		if err := s.env.Prefs.Resampler.Set(audio.Decimation.String()); err != nil {
			logger.Log(s.env, "session", err)
		}
	case notifications.NotifySampleRateChanged:
		if s.audio != nil && s.video != nil {
			s.sinks.SetAVInfo(s.AVInfo())
		}
	}
	return s.env.Notify.Notify(notice)
}

// SetSincFactory changes how the filters for the sinc resampler are created.
// Takes effect on the next call to Load().
func (s *Session) SetSincFactory(f audio.SincFactory) {
	s.sincFactory = f
}

// inFrame returns an error if a frame is being run.
func (s *Session) inFrame(op string) error {
	if s.sched != nil && s.sched.InFrame() {
		return curated.Errorf(MidFrame, op)
	}
	return nil
}

// Loaded returns true if a ROM has been loaded successfully.
func (s *Session) Loaded() bool {
	return s.sched != nil
}

// Load the ROM into every instance. If any instance rejects the ROM then no
// instances are created and a SetupFailure error is returned. Any previously
// loaded ROM is unloaded first.
func (s *Session) Load(rom []byte, flags hardware.LoadFlags) error {
	if err := s.inFrame("load"); err != nil {
		return err
	}

	s.unload()

	prefs := s.env.Prefs
	n := prefs.Instances.Get().(int)

	instances := make([]hardware.Instance, 0, n)
	for i := range n {
		ins, err := s.factory(i, i == CanonicalSlot)
		if err != nil {
			return curated.Errorf(SetupFailure, err)
		}
		if err := ins.Load(rom, flags); err != nil {
			logger.Logf(s.env, "session", "instance %d rejected rom", i)
			return curated.Errorf(SetupFailure, err)
		}
		instances = append(instances, ins)
	}

	format := prefs.Format()
	for _, ins := range instances {
		if p, ok := ins.(hardware.Palette); ok {
			p.SetPalette(format.Shades())
		}
	}

	var err error

	s.audio, err = audio.NewPipeline(s.env, s, audio.Config{
		Kind:        prefs.ResamplerKind(),
		Source:      prefs.Source(),
		Instances:   n,
		SincFactory: s.sincFactory,
	})
	if err != nil {
		return curated.Errorf(SetupFailure, err)
	}

	s.video, err = compositor.NewCompositor(n, format)
	if err != nil {
		s.audio.Close()
		s.audio = nil
		return curated.Errorf(SetupFailure, err)
	}
	s.video.SetResponse(prefs.Response.Get().(float64))
	if err := s.video.SetBlend(prefs.BlendMode()); err != nil {
		s.audio.Close()
		s.audio = nil
		s.video = nil
		return curated.Errorf(SetupFailure, err)
	}

	s.instances = instances
	s.canonical, _ = instances[CanonicalSlot].(hardware.Canonical)
	s.cheats, _ = instances[CanonicalSlot].(hardware.Cheats)
	s.transport = s.connect(prefs.Link())

	s.sched, err = scheduler.NewScheduler(s.env, scheduler.Config{
		Instances:    s.instances,
		Transport:    s.transport,
		Audio:        s.audio,
		Video:        s.video,
		Sinks:        s.sinks,
		LegacyResume: prefs.LegacyResume.Get().(bool),
	})
	if err != nil {
		s.unload()
		return curated.Errorf(SetupFailure, err)
	}

	s.env.Random.SetSource(s.sched)
	s.rom = rom
	s.flags = flags

	s.sinks.SetAVInfo(s.AVInfo())

	logger.Logf(s.env, "session", "loaded: %s", s)

	return nil
}

// Unload the ROM and release all resources.
func (s *Session) Unload() error {
	if err := s.inFrame("unload"); err != nil {
		return err
	}
	s.unload()
	return nil
}

func (s *Session) unload() {
	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			logger.Log(s.env, "session", err)
		}
	}
	if s.audio != nil {
		s.audio.Close()
	}
	if s.video != nil {
		s.video.Close()
	}
	for _, ins := range s.instances {
		ins.AttachSerial(nil)
	}

	s.instances = nil
	s.canonical = nil
	s.cheats = nil
	s.transport = nil
	s.audio = nil
	s.video = nil
	s.sched = nil
	s.rom = nil
	s.halted = nil

	s.env.Random.SetSource(nil)
}

// Reset every instance. Cartridge RAM and real time clocks are preserved. The
// audio and video buffers are cleared but not reallocated.
func (s *Session) Reset() error {
	if err := s.inFrame("reset"); err != nil {
		return err
	}
	if !s.Loaded() {
		return curated.Errorf(NotLoaded)
	}

	for _, ins := range s.instances {
		ins.Reset()
	}

	s.audio.Reset()
	s.video.Clear()
	if err := s.sched.Reset(); err != nil {
		return err
	}
	s.halted = nil

	// the local link is recreated so that no transfers are left in progress.
	// a network link is left connected
	if !s.transport.Mode().IsNetwork() {
		if err := s.transport.Close(); err != nil {
			logger.Log(s.env, "session", err)
		}
		s.transport = s.connect(s.env.Prefs.Link())
		if err := s.sched.SetTransport(s.transport); err != nil {
			return err
		}
	}

	return nil
}

// RunFrame runs every instance for one frame. If an instance fails part way
// through a frame the session is halted and every subsequent call returns a
// Halted error until Reset() or Load() is called.
func (s *Session) RunFrame() error {
	if !s.Loaded() {
		return curated.Errorf(NotLoaded)
	}
	if s.halted != nil {
		return curated.Errorf(Halted, s.halted)
	}

	err := s.sched.RunFrame()
	if err == nil {
		return nil
	}

	// a failure to present the frame happens after every instance has run
	// the frame and is not fatal
	if curated.Is(err, scheduler.RunFailure) || curated.Is(err, scheduler.Stalled) ||
		curated.Is(err, scheduler.TickMismatch) || curated.Is(err, scheduler.LinkFailure) {
		s.halted = err
		logger.Log(s.env, "session", curated.Errorf(Halted, err))
	}

	return err
}

// Configure applies the current preference values to the running session.
// Changes to the number of instances and to the pixel format take effect when
// the next ROM is loaded.
func (s *Session) Configure() error {
	if err := s.inFrame("configure"); err != nil {
		return err
	}
	if !s.Loaded() {
		return nil
	}

	prefs := s.env.Prefs

	if err := s.audio.SetSource(prefs.Source()); err != nil {
		return err
	}
	if k := prefs.ResamplerKind(); k != s.audio.Kind() {
		if err := s.audio.SetKind(k); err != nil {
			return err
		}
	}

	s.video.SetResponse(prefs.Response.Get().(float64))
	if b := prefs.BlendMode(); b != s.video.BlendMode() {
		if err := s.video.SetBlend(b); err != nil {
			return err
		}
	}

	if m := prefs.Link(); m != s.transport.Mode() || m.IsNetwork() {
		if err := s.relink(m); err != nil {
			return err
		}
	}

	if n := prefs.Instances.Get().(int); n != len(s.instances) {
		logger.Logf(s.env, "session", "number of instances (%d) will change on next load", n)
	}
	if f := prefs.Format(); f != s.video.Format() {
		logger.Logf(s.env, "session", "pixel format (%s) will change on next load", f)
	}

	return nil
}

// relink replaces the link if the mode has changed, or for network modes, if
// the network configuration has changed.
func (s *Session) relink(mode link.Mode) error {
	if g, ok := s.transport.(link.Group); ok && len(g) > 0 && mode.IsNetwork() {
		if nw, ok := g[0].(*link.Network); ok && nw.Config() == s.env.Prefs.NetworkConfig() {
			return nil
		}
	}

	if err := s.transport.Close(); err != nil {
		logger.Log(s.env, "session", err)
	}
	s.transport = s.connect(mode)
	return s.sched.SetTransport(s.transport)
}

// LinkMode returns the mode of the link in use. This may be different to the
// mode requested if a network link could not be created.
func (s *Session) LinkMode() link.Mode {
	if s.transport == nil {
		return link.None
	}
	return s.transport.Mode()
}

// LinkStats returns the statistics of the current link.
func (s *Session) LinkStats() link.Stats {
	if s.transport == nil {
		return link.Stats{}
	}
	return s.transport.Stats()
}

// State returns the state of the scheduler.
func (s *Session) State() scheduler.State {
	if s.sched == nil {
		return scheduler.State{}
	}
	return s.sched.State()
}

// Instances returns the number of instances in the session.
func (s *Session) Instances() int {
	return len(s.instances)
}

// Instance returns the instance with the index. Returns nil if the index is out
// of range.
func (s *Session) Instance(i int) hardware.Instance {
	if i < 0 || i >= len(s.instances) {
		return nil
	}
	return s.instances[i]
}

// AVInfo returns the audio and video information for the session.
func (s *Session) AVInfo() host.AVInfo {
	if !s.Loaded() {
		n := s.env.Prefs.Instances.Get().(int)
		return host.AVInfo{
			Width:      hardware.ScreenWidth * n,
			Height:     hardware.ScreenHeight,
			FrameRate:  hardware.RefreshRate,
			SampleRate: s.env.Prefs.ResamplerKind().SampleRate(),
		}
	}
	return host.AVInfo{
		Width:      s.video.Width(),
		Height:     s.video.Height(),
		FrameRate:  hardware.RefreshRate,
		SampleRate: s.audio.SampleRate(),
	}
}

// AudioKind returns the resampler in use by the audio pipeline.
func (s *Session) AudioKind() audio.Kind {
	if s.audio == nil {
		return s.env.Prefs.ResamplerKind()
	}
	return s.audio.Kind()
}
