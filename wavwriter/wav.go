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

// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirity, and written to disk
// when the WavWriter is closed. It is therefore probably only suitable for
// testing purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/logger"
)

// the sample rate used if SetAVInfo() is never called
const defaultSampleRate = 32768

// WavWriter implements the host.AudioSink and host.AVInfoSink interfaces.
type WavWriter struct {
	perm       logger.Permission
	filename   string
	sampleRate int
	buffer     []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(perm logger.Permission, filename string) (*WavWriter, error) {
	aw := &WavWriter{
		perm:     perm,
		filename: filename,
		buffer:   make([]int, 0),
	}

	return aw, nil
}

// SetAVInfo implements the host.AVInfoSink interface. The sample rate can only
// be set before any audio has been received.
func (aw *WavWriter) SetAVInfo(av host.AVInfo) {
	rate := int(av.SampleRate)
	if rate == aw.sampleRate {
		return
	}
	if len(aw.buffer) > 0 {
		logger.Logf(aw.perm, "wavwriter", "ignoring sample rate change to %dHz", rate)
		return
	}
	aw.sampleRate = rate
}

// Deliver implements the host.AudioSink interface. All frames are accepted.
func (aw *WavWriter) Deliver(samples []int16, frames int) int {
	for _, s := range samples[:frames*2] {
		aw.buffer = append(aw.buffer, int(s))
	}
	return frames
}

// Frames returns the number of stereo frames buffered.
func (aw *WavWriter) Frames() int {
	return len(aw.buffer) / 2
}

// Close writes the buffered audio to disk.
func (aw *WavWriter) Close() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	rate := aw.sampleRate
	if rate == 0 {
		rate = defaultSampleRate
	}

	enc := wav.NewEncoder(f, rate, 16, 2, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  rate,
		},
		Data:           aw.buffer,
		SourceBitDepth: 16,
	}

	logger.Logf(aw.perm, "wavwriter", "writing audio to %s", aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
