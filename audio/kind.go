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
	"fmt"
	"strings"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
)

// Sentinal error patterns.
const (
	UnknownKind                = "audio: unknown resampler (%s)"
	UnknownSource              = "audio: unknown source (%s)"
	ResamplerAllocationFailure = "audio: resampler allocation failure: %v"
	OutputBackPressure         = "audio: output back pressure: accepted %d of %d frames"
)

// Kind is the type of resampler used by the pipeline.
type Kind int

// List of valid Kind values.
const (
	Sinc Kind = iota
	Decimation
)

// KindList is the list of names for each resampler kind, in order. Suitable
// for use in preference values and command line options.
var KindList = []string{"sinc", "cc"}

func (k Kind) String() string {
	if k >= Sinc && int(k) < len(KindList) {
		return KindList[k]
	}
	return fmt.Sprintf("unknown resampler (%d)", int(k))
}

// Ratio of native rate to output rate.
func (k Kind) Ratio() int {
	if k == Decimation {
		return DecimationRatio
	}
	return SincRatio
}

// SampleRate returns the output sample rate of the resampler kind.
func (k Kind) SampleRate() float64 {
	return hardware.NativeSampleRate / float64(k.Ratio())
}

// ParseKind returns the Kind for the name. Names are not case sensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sinc":
		return Sinc, nil
	case "cc", "decimation":
		return Decimation, nil
	}
	return Sinc, curated.Errorf(UnknownKind, s)
}

// Source selects the instances that are heard by the host.
type Source int

// List of valid Source values.
const (
	// the first instance only
	Canonical Source = iota

	// the second instance only. the same as Canonical for sessions with one
	// instance
	Second

	// all instances are mixed with equal weight
	Mix
)

// SourceList is the list of names for each Source, in order.
var SourceList = []string{"canonical", "second", "mix"}

func (s Source) String() string {
	if s >= Canonical && int(s) < len(SourceList) {
		return SourceList[s]
	}
	return fmt.Sprintf("unknown source (%d)", int(s))
}

// ParseSource returns the Source for the name. Names are not case sensitive.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "canonical", "first":
		return Canonical, nil
	case "second":
		return Second, nil
	case "mix":
		return Mix, nil
	}
	return Canonical, curated.Errorf(UnknownSource, s)
}

const (
	// output rate of the sinc resampler is the native rate divided by this
	// value
	SincRatio = 64

	// output rate of the decimation resampler is the native rate divided by
	// this value
	DecimationRatio = 32

	// the sinc resampler's output is moved to the staging buffer part way
	// through a frame once half this number of frames are available
	SincBufferSize = 1024 + 512

	// the largest number of frames delivered to the host in one call
	InitialMaxBatchSize = 1 << 16
)
