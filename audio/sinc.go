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

package audio

import (
	"github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/lockstepgb/lockstep/hardware"
)

// resampler is implemented by the sinc and decimation resamplers. output is
// held by the resampler until it is read.
type resampler interface {
	// push native stereo samples
	push(samples []uint32)

	// number of stereo frames that can be read
	available() int

	// read up to the number of frames into the staging buffer. returns the
	// number of frames read
	read(dst *Staging, frames int) int

	reset()
}

// fifo of interleaved stereo samples. shared by the resampler kinds.
type fifo struct {
	out []int16
}

func (f *fifo) available() int {
	return len(f.out) / 2
}

func (f *fifo) read(dst *Staging, frames int) int {
	frames = min(frames, f.available())
	dst.Write(f.out[:frames*2])
	f.out = append(f.out[:0], f.out[frames*2:]...)
	return frames
}

// Filter is a single channel streaming resampler.
type Filter interface {
	Process(in []float64) []float64
	Reset()
}

// SincFactory creates the Filter for one channel of the sinc resampler.
type SincFactory func() (Filter, error)

// number of filter taps for the sinc resampler. with a ratio of 1:64 there is
// only one phase
const sincTaps = 512

// DefaultSincFactory creates a Kaiser windowed sinc filter with a ratio of
// 1:SincRatio.
func DefaultSincFactory() (Filter, error) {
	r, err := resample.NewRational(1, SincRatio,
		resample.WithQuality(resample.QualityBest),
		resample.WithTapsPerPhase(sincTaps),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type sinc struct {
	fifo
	left  Filter
	right Filter

	// conversion buffers
	l []float64
	r []float64
}

func newSinc(factory SincFactory) (*sinc, error) {
	if factory == nil {
		factory = DefaultSincFactory
	}

	left, err := factory()
	if err != nil {
		return nil, err
	}
	right, err := factory()
	if err != nil {
		return nil, err
	}

	return &sinc{
		left:  left,
		right: right,
	}, nil
}

const sampleScale = 32768.0

func (s *sinc) push(samples []uint32) {
	if len(samples) == 0 {
		return
	}

	s.l = s.l[:0]
	s.r = s.r[:0]
	for _, v := range samples {
		l, r := hardware.Split(v)
		s.l = append(s.l, float64(l)/sampleScale)
		s.r = append(s.r, float64(r)/sampleScale)
	}

	lo := s.left.Process(s.l)
	ro := s.right.Process(s.r)

	// both channels are the same length but there's no harm in making sure
	n := min(len(lo), len(ro))
	for i := range n {
		s.out = append(s.out, clip(lo[i]), clip(ro[i]))
	}
}

func (s *sinc) reset() {
	s.left.Reset()
	s.right.Reset()
	s.out = s.out[:0]
}

func clip(v float64) int16 {
	v *= sampleScale
	if v >= sampleScale-1 {
		return int16(sampleScale - 1)
	}
	if v <= -sampleScale {
		return int16(-sampleScale)
	}
	return int16(v)
}
