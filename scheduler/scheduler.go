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

package scheduler

import (
	"fmt"

	"github.com/lockstepgb/lockstep/audio"
	"github.com/lockstepgb/lockstep/compositor"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/random"
)

// Sentinal error patterns.
const (
	RunFailure     = "scheduler: instance %d: %v"
	Stalled        = "scheduler: instance %d: no progress after %d pauses"
	TickMismatch   = "scheduler: instance %d: %v"
	LinkFailure    = "scheduler: link: %v"
	PresentFailure = "scheduler: present: %v"
	MidFrame       = "scheduler: frame in progress"
)

// the number of consecutive pauses without progress before an instance is
// considered to be stalled
const maxStalls = 8

// State of the scheduler. The Line and tick counts are reset at the start of
// every frame.
type State struct {
	Frame int
	Line  int

	// ticks requested from and consumed by all instances during the frame
	TicksRequested int
	TicksConsumed  int
}

func (st State) String() string {
	return fmt.Sprintf("frame: %d, line: %d, ticks: %d/%d", st.Frame, st.Line, st.TicksConsumed, st.TicksRequested)
}

// Config is used to create a new Scheduler.
type Config struct {
	Instances []hardware.Instance

	// the link between the instances. can be nil
	Transport link.Transport

	Audio *audio.Pipeline
	Video *compositor.Compositor
	Sinks host.Sinks

	// the legacy resume behaviour. instance zero alone decides whether a line
	// is complete. later instances are run for a whole line every time
	// instance zero pauses and then until they complete
	LegacyResume bool
}

// Scheduler runs the instances of a session one frame at a time.
type Scheduler struct {
	perm logger.Permission

	instances []hardware.Instance
	transport link.Transport
	audio     *audio.Pipeline
	video     *compositor.Compositor
	sinks     host.Sinks
	legacy    bool

	// sound buffer for each instance
	sound [][]uint32

	state   State
	inFrame bool
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type.
func NewScheduler(perm logger.Permission, cfg Config) (*Scheduler, error) {
	if len(cfg.Instances) == 0 {
		return nil, curated.Errorf("scheduler: %v", "no instances")
	}
	if cfg.Audio == nil || cfg.Video == nil {
		return nil, curated.Errorf("scheduler: %v", "audio and video are required")
	}
	if cfg.Sinks.Audio == nil || cfg.Sinks.Video == nil {
		return nil, curated.Errorf("scheduler: %v", "audio and video sinks are required")
	}

	s := &Scheduler{
		perm:      perm,
		instances: cfg.Instances,
		transport: cfg.Transport,
		audio:     cfg.Audio,
		video:     cfg.Video,
		sinks:     cfg.Sinks,
		legacy:    cfg.LegacyResume,
		sound:     make([][]uint32, len(cfg.Instances)),
	}

	for i := range s.sound {
		s.sound[i] = make([]uint32, hardware.SoundBufferSize)
	}

	return s, nil
}

// State returns the current state of the scheduler.
func (s *Scheduler) State() State {
	return s.state
}

// GetCoords implements the random.Source interface.
func (s *Scheduler) GetCoords() random.Coords {
	return random.Coords{
		Frame: s.state.Frame,
		Line:  s.state.Line,
		Tick:  s.state.TicksConsumed,
	}
}

// InFrame returns true while RunFrame() is running. Sinks that are called
// during the frame can use this to detect that they are being called from
// the scheduler.
func (s *Scheduler) InFrame() bool {
	return s.inFrame
}

// Reset the frame counter and state of the scheduler. Can not be called during
// a frame.
func (s *Scheduler) Reset() error {
	if s.inFrame {
		return curated.Errorf(MidFrame)
	}
	s.state = State{}
	return nil
}

// SetTransport changes the link between the instances. Can not be called
// during a frame.
func (s *Scheduler) SetTransport(transport link.Transport) error {
	if s.inFrame {
		return curated.Errorf(MidFrame)
	}
	s.transport = transport
	return nil
}

// RunFrame runs every instance for one frame. The composite image is
// presented to the video sink and audio delivered to the audio sink.
func (s *Scheduler) RunFrame() error {
	if s.inFrame {
		return curated.Errorf(MidFrame)
	}

	s.inFrame = true
	defer func() {
		s.inFrame = false
	}()

	s.state.Line = 0
	s.state.TicksRequested = 0
	s.state.TicksConsumed = 0

	for line := range hardware.LinesPerFrame {
		s.state.Line = line

		if s.legacy {
			if err := s.runLineLegacy(); err != nil {
				return err
			}
		} else {
			for i := range s.instances {
				if err := s.runInstance(i); err != nil {
					return err
				}
			}
		}

		// the link is serviced after every instance has run for the line
		if s.transport != nil {
			if err := s.transport.Service(); err != nil {
				return curated.Errorf(LinkFailure, err)
			}
		}
	}

	s.video.Blend()
	err := s.sinks.Video.Present(s.video.Composite(), s.video.Width(), s.video.Height(), s.video.Stride())
	if err != nil {
		return curated.Errorf(PresentFailure, err)
	}

	s.audio.EndFrame()
	s.audio.Deliver(s.sinks.Audio)

	s.state.Frame++

	return nil
}

// call the instance once and push the audio it produces.
func (s *Scheduler) call(i int, ticks int) (hardware.RunResult, error) {
	s.state.TicksRequested += ticks

	r, err := s.instances[i].RunFor(s.video.InstanceTarget(i), s.video.Stride(), s.sound[i], ticks)
	if err != nil {
		return r, curated.Errorf(RunFailure, i, err)
	}
	if r.Ticks < 0 || r.Ticks > ticks {
		return r, curated.Errorf(TickMismatch, i, fmt.Sprintf("ran %d ticks of %d", r.Ticks, ticks))
	}

	s.state.TicksConsumed += r.Ticks

	s.audio.Push(i, s.sound[i][:r.Ticks])
	s.audio.ReadIntermediate()

	return r, nil
}

// runInstance runs the instance until it has completed a line's worth of
// ticks.
func (s *Scheduler) runInstance(i int) error {
	remaining := hardware.TicksPerLine
	var stalls int

	for remaining > 0 {
		r, err := s.call(i, remaining)
		if err != nil {
			return err
		}
		remaining -= r.Ticks

		switch r.Kind {
		case hardware.Completed:
			if remaining != 0 {
				return curated.Errorf(TickMismatch, i, fmt.Sprintf("completed with %d ticks remaining", remaining))
			}
		case hardware.Paused:
			if r.Ticks > 0 {
				stalls = 0
				continue
			}
			stalls++
			if stalls >= maxStalls {
				return curated.Errorf(Stalled, i, stalls)
			}
		default:
			return curated.Errorf(RunFailure, i, r)
		}
	}

	return nil
}

// runLineLegacy runs one line with the legacy resume behaviour.
// instance zero is resumed until it completes and the other instances are run
// for a full line each time instance zero pauses.
func (s *Scheduler) runLineLegacy() error {
	remaining := hardware.TicksPerLine
	var stalls int

	for {
		r, err := s.call(0, remaining)
		if err != nil {
			return err
		}
		remaining -= r.Ticks

		if r.Kind == hardware.Completed {
			break
		}

		if r.Ticks == 0 {
			stalls++
			if stalls >= maxStalls {
				return curated.Errorf(Stalled, 0, stalls)
			}
		} else {
			stalls = 0
		}

		for i := 1; i < len(s.instances); i++ {
			if _, err := s.call(i, hardware.TicksPerLine); err != nil {
				return err
			}
		}
	}

	for i := 1; i < len(s.instances); i++ {
		if err := s.runInstance(i); err != nil {
			return err
		}
	}

	return nil
}
