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

package otoaudio

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/logger"
)

// SampleRate is the sample rate of the sound system.
const SampleRate = 48000

// number of bytes in one stereo frame of 16bit samples
const frameBytes = 4

// Buffer implements the host.AudioSink and host.AVInfoSink interfaces. It is
// also an io.Reader from which converted audio can be read.
//
// The amount of audio held by the buffer is limited. Audio that would take
// the buffer over the limit is not accepted.
type Buffer struct {
	perm logger.Permission

	crit  sync.Mutex
	data  []byte
	limit int

	// the resamplers are nil if the session sample rate matches the sample
	// rate of the sound system
	inRate float64
	left   *resample.Resampler
	right  *resample.Resampler

	// channel data for the resamplers
	l []float64
	r []float64
}

// NewBuffer is the preferred method of initialisation for the Buffer type.
// The latency argument is the maximum amount of audio held by the buffer.
func NewBuffer(perm logger.Permission, latency time.Duration) *Buffer {
	limit := int(latency.Seconds()*SampleRate) * frameBytes
	return &Buffer{
		perm:  perm,
		limit: max(limit, frameBytes),
	}
}

// SetAVInfo implements the host.AVInfoSink interface.
func (b *Buffer) SetAVInfo(av host.AVInfo) {
	b.crit.Lock()
	defer b.crit.Unlock()

	if av.SampleRate == b.inRate {
		return
	}
	b.inRate = av.SampleRate
	b.left = nil
	b.right = nil

	if b.inRate == SampleRate || b.inRate <= 0 {
		return
	}

	var err error
	b.left, err = resample.NewForRates(b.inRate, SampleRate, resample.WithQuality(resample.QualityBalanced))
	if err == nil {
		b.right, err = resample.NewForRates(b.inRate, SampleRate, resample.WithQuality(resample.QualityBalanced))
	}
	if err != nil {
		logger.Logf(b.perm, "otoaudio", "conversion from %.0fHz not possible: %v", b.inRate, err)
		b.left = nil
		b.right = nil
		return
	}

	up, down := b.left.Ratio()
	logger.Logf(b.perm, "otoaudio", "converting %.0fHz to %dHz (%d/%d)", b.inRate, SampleRate, up, down)
}

// Deliver implements the host.AudioSink interface.
func (b *Buffer) Deliver(samples []int16, frames int) int {
	b.crit.Lock()
	defer b.crit.Unlock()

	// the number of input frames that will fit in the buffer
	space := (b.limit - len(b.data)) / frameBytes
	if b.left != nil {
		space = int(float64(space) * b.inRate / SampleRate)
	}
	frames = min(frames, max(space, 0))
	if frames == 0 {
		return 0
	}

	if b.left == nil {
		for _, s := range samples[:frames*2] {
			b.data = binary.LittleEndian.AppendUint16(b.data, uint16(s))
		}
		return frames
	}

	b.l = b.l[:0]
	b.r = b.r[:0]
	for i := range frames {
		b.l = append(b.l, float64(samples[i*2]))
		b.r = append(b.r, float64(samples[i*2+1]))
	}

	l := b.left.Process(b.l)
	r := b.right.Process(b.r)
	for i := range min(len(l), len(r)) {
		b.data = binary.LittleEndian.AppendUint16(b.data, uint16(clip(l[i])))
		b.data = binary.LittleEndian.AppendUint16(b.data, uint16(clip(r[i])))
	}

	return frames
}

func clip(v float64) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, math.Round(v))))
}

// Buffered returns the number of frames waiting to be read.
func (b *Buffer) Buffered() int {
	b.crit.Lock()
	defer b.crit.Unlock()
	return len(b.data) / frameBytes
}

// Read implements the io.Reader interface. Data is 16bit little-endian stereo
// at SampleRate.
func (b *Buffer) Read(buf []byte) (int, error) {
	b.crit.Lock()
	defer b.crit.Unlock()

	// only whole frames are returned
	n := min(len(b.data), len(buf))
	n -= n % frameBytes
	copy(buf, b.data[:n])
	b.data = b.data[:copy(b.data, b.data[n:])]

	return n, nil
}
