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

package audio_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/lockstepgb/lockstep/audio"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/notifications"
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

// sink accepts up to limit frames per delivery. a negative limit means
// everything is accepted.
type sink struct {
	limit   int
	batches []int
	samples []int16
}

func (s *sink) Deliver(samples []int16, frames int) int {
	s.batches = append(s.batches, frames)
	n := frames
	if s.limit >= 0 {
		n = min(n, s.limit)
	}
	s.samples = append(s.samples, samples[:n*2]...)
	return n
}

func burst(n int, left, right int16) []uint32 {
	b := make([]uint32, n)
	for i := range b {
		b[i] = hardware.Join(left, right)
	}
	return b
}

func newPipeline(t *testing.T, cfg audio.Config) (*audio.Pipeline, *notices) {
	t.Helper()
	n := &notices{}
	p, err := audio.NewPipeline(logger.Allow, n, cfg)
	test.DemandSuccess(t, err)
	return p, n
}

func TestKinds(t *testing.T) {
	test.ExpectEquality(t, audio.Sinc.SampleRate(), 32768.0)
	test.ExpectEquality(t, audio.Decimation.SampleRate(), 65536.0)

	for i, s := range audio.KindList {
		k, err := audio.ParseKind(s)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, int(k), i)
		test.ExpectEquality(t, k.String(), s)
	}
	_, err := audio.ParseKind("linear")
	test.ExpectSuccess(t, curated.Is(err, audio.UnknownKind))

	for i, s := range audio.SourceList {
		src, err := audio.ParseSource(s)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, int(src), i)
	}
	_, err = audio.ParseSource("third")
	test.ExpectSuccess(t, curated.Is(err, audio.UnknownSource))

	_, err = audio.NewPipeline(logger.Allow, nil, audio.Config{Instances: 0})
	test.ExpectFailure(t, err)
}

func TestDecimation(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Decimation, Instances: 1})

	// output is produced immediately and the remainder is carried over
	p.Push(0, burst(100, 1000, -1000))
	test.ExpectEquality(t, p.Cursor(), 3)
	p.Push(0, burst(28, 1000, -1000))
	test.ExpectEquality(t, p.Cursor(), 4)

	s := &sink{limit: -1}
	test.ExpectEquality(t, p.Deliver(s), 4)
	test.ExpectEquality(t, p.Cursor(), 0)
	test.ExpectEquality(t, len(s.samples), 8)
	test.ExpectEquality(t, s.samples[0], int16(1000))
	test.ExpectEquality(t, s.samples[1], int16(-1000))
}

func TestSinc(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Sinc, Instances: 1})

	// a frame of audio in line sized bursts
	for range hardware.LinesPerFrame {
		p.Push(0, burst(hardware.TicksPerLine, 0x4000, -0x2000))
		p.ReadIntermediate()
	}
	p.EndFrame()

	test.ExpectApproximate(t, p.Cursor(), hardware.TicksPerFrame/audio.SincRatio, 0.01)

	s := &sink{limit: -1}
	n := p.Deliver(s)
	test.ExpectEquality(t, n*2, len(s.samples))

	// once the filter has settled the output matches the input level
	l := s.samples[len(s.samples)-2]
	r := s.samples[len(s.samples)-1]
	test.ExpectApproximate(t, l, 0x4000, 0.01)
	test.ExpectApproximate(t, r, -0x2000, 0.01)
}

func TestIntermediateRead(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Sinc, Instances: 1})

	// not enough output to trigger an intermediate read
	p.Push(0, burst(audio.SincRatio*100, 100, 100))
	p.ReadIntermediate()
	test.ExpectEquality(t, p.Cursor(), 0)

	p.Push(0, burst(audio.SincRatio*audio.SincBufferSize/2, 100, 100))
	p.ReadIntermediate()
	test.ExpectSuccess(t, p.Cursor() >= audio.SincBufferSize/2)
}

func TestStagingGrowth(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Decimation, Instances: 1})

	rnd := rand.New(rand.NewPCG(1, 2))

	capacity := p.Capacity()
	var frames int
	var native int

	// bursts of irregular size with no deliveries. nothing is dropped
	for range 1000 {
		n := rnd.IntN(4000)
		native += n
		p.Push(0, burst(n, 1, 1))
		frames = native / audio.DecimationRatio

		test.DemandSuccess(t, p.Capacity() >= capacity)
		test.DemandSuccess(t, p.Cursor() <= p.Capacity())
		test.DemandEquality(t, p.Cursor(), frames)
		capacity = p.Capacity()
	}

	s := &sink{limit: -1}
	test.ExpectEquality(t, p.Deliver(s), frames)
	test.ExpectEquality(t, p.Capacity(), capacity)
}

func TestBackPressure(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Decimation, Instances: 1})
	test.ExpectEquality(t, p.MaxBatchSize(), audio.InitialMaxBatchSize)

	s := &sink{limit: 100}

	p.Push(0, burst(audio.DecimationRatio*250, 1, 1))
	test.ExpectEquality(t, p.Deliver(s), 250)
	test.ExpectEquality(t, p.MaxBatchSize(), 100)

	// the sink now accepts everything but batches are no larger than the
	// reduced size
	s.limit = -1
	s.batches = s.batches[:0]
	for range 5 {
		p.Push(0, burst(audio.DecimationRatio*333, 1, 1))
		p.Deliver(s)
	}
	for _, b := range s.batches {
		test.ExpectSuccess(t, b <= 100)
	}
	test.ExpectEquality(t, p.MaxBatchSize(), 100)

	p.ResetBatchSize()
	test.ExpectEquality(t, p.MaxBatchSize(), audio.InitialMaxBatchSize)
}

func TestBackPressureRetainsSamples(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Decimation, Instances: 1})

	// the sink accepts nothing. samples stay staged
	s := &sink{limit: 0}
	p.Push(0, burst(audio.DecimationRatio*50, 7, 7))
	test.ExpectEquality(t, p.Deliver(s), 0)
	test.ExpectEquality(t, p.Cursor(), 50)
	test.ExpectEquality(t, p.MaxBatchSize(), audio.InitialMaxBatchSize)

	p.Push(0, burst(audio.DecimationRatio*50, 7, 7))
	s.limit = -1
	test.ExpectEquality(t, p.Deliver(s), 100)
	test.ExpectEquality(t, len(s.samples), 200)
}

func TestFallback(t *testing.T) {
	var calls int
	factory := func() (audio.Filter, error) {
		calls++
		return nil, errors.New("no sinc for you")
	}

	p, n := newPipeline(t, audio.Config{Kind: audio.Sinc, Instances: 1, SincFactory: factory})
	test.ExpectEquality(t, p.Kind(), audio.Decimation)
	test.ExpectEquality(t, p.SampleRate(), audio.Decimation.SampleRate())
	test.ExpectEquality(t, n.count(notifications.NotifyResamplerFallback), 1)
	test.ExpectEquality(t, calls, 1)

	// the sinc resampler is not tried again
	for range 3 {
		test.ExpectSuccess(t, p.SetKind(audio.Sinc))
		test.ExpectEquality(t, p.Kind(), audio.Decimation)
	}
	test.ExpectEquality(t, n.count(notifications.NotifyResamplerFallback), 1)
	test.ExpectEquality(t, n.count(notifications.NotifySampleRateChanged), 0)
	test.ExpectEquality(t, calls, 1)

	// the pipeline still works
	p.Push(0, burst(audio.DecimationRatio*10, 1, 1))
	test.ExpectEquality(t, p.Cursor(), 10)
}

type refusingNotices struct{}

func (refusingNotices) Notify(notice notifications.Notice) error {
	return errors.New("notice refused")
}

// a notification error during a fallback still leaves the pipeline
// consistent with the resampler in use
func TestFallbackNotifyError(t *testing.T) {
	factory := func() (audio.Filter, error) {
		return nil, errors.New("no sinc for you")
	}

	p, err := audio.NewPipeline(logger.Allow, refusingNotices{}, audio.Config{Kind: audio.Decimation, Instances: 1, SincFactory: factory})
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, p.SetKind(audio.Sinc))
	test.ExpectEquality(t, p.Kind(), audio.Decimation)
	test.ExpectEquality(t, p.SampleRate(), audio.Decimation.SampleRate())

	p.Push(0, burst(audio.DecimationRatio*10, 1, 1))
	test.ExpectEquality(t, p.Cursor(), 10)
}

func TestSetKind(t *testing.T) {
	p, n := newPipeline(t, audio.Config{Kind: audio.Sinc, Instances: 1})
	test.ExpectEquality(t, len(n.received), 0)

	for range hardware.LinesPerFrame {
		p.Push(0, burst(hardware.TicksPerLine, 1, 1))
	}
	p.EndFrame()
	test.ExpectSuccess(t, p.Cursor() > 0)

	// switching kind discards everything
	test.ExpectSuccess(t, p.SetKind(audio.Decimation))
	test.ExpectEquality(t, p.Kind(), audio.Decimation)
	test.ExpectEquality(t, p.Cursor(), 0)
	test.ExpectEquality(t, n.count(notifications.NotifySampleRateChanged), 1)

	// no change of rate, no notification
	test.ExpectSuccess(t, p.SetKind(audio.Decimation))
	test.ExpectEquality(t, n.count(notifications.NotifySampleRateChanged), 1)

	test.ExpectSuccess(t, p.SetKind(audio.Sinc))
	test.ExpectEquality(t, p.Kind(), audio.Sinc)
	test.ExpectEquality(t, n.count(notifications.NotifySampleRateChanged), 2)

	test.ExpectFailure(t, p.SetKind(audio.Kind(10)))
}

func TestSource(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Decimation, Source: audio.Second, Instances: 2})

	p.Push(0, burst(audio.DecimationRatio, 100, 100))
	test.ExpectEquality(t, p.Cursor(), 0)
	p.Push(1, burst(audio.DecimationRatio, 300, 300))
	test.ExpectEquality(t, p.Cursor(), 1)

	test.ExpectSuccess(t, p.SetSource(audio.Mix))

	// nothing is produced until every instance has pushed
	p.Push(0, burst(audio.DecimationRatio*2, 100, -100))
	test.ExpectEquality(t, p.Cursor(), 1)
	p.Push(1, burst(audio.DecimationRatio, 300, -300))
	test.ExpectEquality(t, p.Cursor(), 2)
	p.Push(1, burst(audio.DecimationRatio, 300, -300))
	test.ExpectEquality(t, p.Cursor(), 3)

	s := &sink{limit: -1}
	p.Deliver(s)
	test.ExpectEquality(t, s.samples[0], int16(300))
	test.ExpectEquality(t, s.samples[2], int16(200))
	test.ExpectEquality(t, s.samples[3], int16(-200))
	test.ExpectEquality(t, s.samples[4], int16(200))

	test.ExpectFailure(t, p.SetSource(audio.Source(-1)))
}

// an instance that is run for an extra line in every frame, as happens with
// the legacy resume behaviour, must not build an unbounded backlog of samples
func TestMixBacklog(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Decimation, Source: audio.Mix, Instances: 2})
	s := &sink{limit: -1}

	for range 500 {
		for range hardware.LinesPerFrame {
			p.Push(0, burst(hardware.TicksPerLine, 100, 100))
			p.Push(1, burst(hardware.TicksPerLine, 100, 100))
		}
		p.Push(1, burst(hardware.TicksPerLine, 100, 100))
		p.EndFrame()
		p.Deliver(s)

		test.DemandEquality(t, p.Pending(0), 0)
		test.DemandSuccess(t, p.Pending(1) <= audio.MaxPending+hardware.TicksPerLine*2)
	}

	test.ExpectSuccess(t, p.Pending(1) >= audio.MaxPending)
}

func TestClose(t *testing.T) {
	p, _ := newPipeline(t, audio.Config{Kind: audio.Sinc, Instances: 1})
	p.Close()
	p.Push(0, burst(100, 1, 1))
	p.ReadIntermediate()
	p.EndFrame()
	test.ExpectEquality(t, p.Deliver(&sink{limit: -1}), 0)
	test.ExpectEquality(t, p.Cursor(), 0)
}
