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

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
	"github.com/lockstepgb/lockstep/host"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/notifications"
)

// MaxPending is the largest number of native samples an instance can have
// waiting to be mixed with the other instances.
const MaxPending = hardware.TicksPerFrame

// Config is used to create a new Pipeline.
type Config struct {
	Kind      Kind
	Source    Source
	Instances int

	// creates the filters for the sinc resampler. if nil the
	// DefaultSincFactory is used
	SincFactory SincFactory
}

// Pipeline takes native rate audio from the instances of a session and
// delivers resampled audio to the host.
type Pipeline struct {
	perm   logger.Permission
	notify notifications.Notify

	kind      Kind
	source    Source
	instances int

	sincFactory SincFactory

	// the sinc resampler could not be created. once set it is never unset
	sincDisabled bool

	res     resampler
	staging *Staging

	// native samples waiting to be mixed. only used by the Mix source
	pending [][]uint32
	mixed   []uint32

	maxBatchSize int

	closed bool
}

// NewPipeline is the preferred method of initialisation for the Pipeline
// type. A failure to create the sinc resampler is not an error. The decimation
// resampler is used instead and a notification is sent.
func NewPipeline(perm logger.Permission, notify notifications.Notify, cfg Config) (*Pipeline, error) {
	if cfg.Instances < 1 {
		return nil, curated.Errorf("audio: %v", fmt.Sprintf("pipeline requires at least one instance (%d)", cfg.Instances))
	}
	if cfg.Kind != Sinc && cfg.Kind != Decimation {
		return nil, curated.Errorf(UnknownKind, cfg.Kind)
	}
	if cfg.Source < Canonical || cfg.Source > Mix {
		return nil, curated.Errorf(UnknownSource, cfg.Source)
	}
	if notify == nil {
		notify = notifications.Discard
	}

	p := &Pipeline{
		perm:         perm,
		notify:       notify,
		source:       cfg.Source,
		instances:    cfg.Instances,
		sincFactory:  cfg.SincFactory,
		pending:      make([][]uint32, cfg.Instances),
		maxBatchSize: InitialMaxBatchSize,
	}

	if err := p.init(cfg.Kind); err != nil {
		return nil, err
	}

	return p, nil
}

// init creates the resampler and staging buffer for the kind. any previous
// state is discarded.
func (p *Pipeline) init(kind Kind) error {
	if kind == Sinc && p.sincDisabled {
		kind = Decimation
	}

	var fallback bool

	switch kind {
	case Sinc:
		s, err := newSinc(p.sincFactory)
		if err == nil {
			p.res = s
			break
		}

		// fallback to the decimation resampler. the sinc resampler will not
		// be tried again
		p.sincDisabled = true
		fallback = true
		kind = Decimation
		p.res = newDecimation()

		logger.Log(p.perm, "audio", curated.Errorf(ResamplerAllocationFailure, err))
		logger.Log(p.perm, "audio", "sinc resampler unsupported on this platform: using decimation")
	case Decimation:
		p.res = newDecimation()
	}

	p.kind = kind
	p.staging = newStaging(kind.SampleRate())
	for i := range p.pending {
		p.pending[i] = p.pending[i][:0]
	}

	// the pipeline is complete before the notification is sent
	if fallback {
		return p.notify.Notify(notifications.NotifyResamplerFallback)
	}

	return nil
}

// Kind returns the kind of resampler in use. This may be different to the kind
// requested if the sinc resampler could not be created.
func (p *Pipeline) Kind() Kind {
	return p.kind
}

// SetKind changes the resampler kind. All resampler and buffer state is
// discarded. Requests for the sinc resampler after it has failed are treated
// as requests for the decimation resampler.
//
// A change in sample rate is notified with NotifySampleRateChanged.
func (p *Pipeline) SetKind(kind Kind) error {
	if kind != Sinc && kind != Decimation {
		return curated.Errorf(UnknownKind, kind)
	}

	rate := p.SampleRate()

	if err := p.init(kind); err != nil {
		return err
	}

	if rate != p.SampleRate() {
		logger.Logf(p.perm, "audio", "sample rate changed to %.1fHz", p.SampleRate())
		return p.notify.Notify(notifications.NotifySampleRateChanged)
	}

	return nil
}

// Source returns the current audio source.
func (p *Pipeline) Source() Source {
	return p.source
}

// SetSource changes which instances are heard. Native samples waiting to be
// mixed are discarded.
func (p *Pipeline) SetSource(source Source) error {
	if source < Canonical || source > Mix {
		return curated.Errorf(UnknownSource, source)
	}
	p.source = source
	for i := range p.pending {
		p.pending[i] = p.pending[i][:0]
	}
	return nil
}

// SampleRate returns the output sample rate.
func (p *Pipeline) SampleRate() float64 {
	return p.kind.SampleRate()
}

// MaxBatchSize returns the largest number of frames that will be offered to
// the host in one delivery.
func (p *Pipeline) MaxBatchSize() int {
	return p.maxBatchSize
}

// ResetBatchSize reverts the maximum batch size to its initial value.
func (p *Pipeline) ResetBatchSize() {
	p.maxBatchSize = InitialMaxBatchSize
}

// Capacity returns the capacity of the staging buffer in frames.
func (p *Pipeline) Capacity() int {
	return p.staging.Capacity()
}

// Cursor returns the number of frames in the staging buffer.
func (p *Pipeline) Cursor() int {
	return p.staging.Cursor()
}

// heard returns the instance that is heard for the Canonical and Second
// sources.
func (p *Pipeline) heard() int {
	if p.source == Second && p.instances > 1 {
		return 1
	}
	return 0
}

// Push a burst of native samples produced by an instance.
func (p *Pipeline) Push(instance int, burst []uint32) {
	if p.closed || len(burst) == 0 {
		return
	}

	if p.source != Mix || p.instances == 1 {
		if instance == p.heard() {
			p.resample(burst)
		}
		return
	}

	if instance < 0 || instance >= p.instances {
		return
	}
	p.pending[instance] = append(p.pending[instance], burst...)

	n := len(p.pending[0])
	for _, q := range p.pending[1:] {
		n = min(n, len(q))
	}
	if n == 0 {
		return
	}

	p.mixed = p.mixed[:0]
	for s := range n {
		var l, r int
		for _, q := range p.pending {
			ql, qr := hardware.Split(q[s])
			l += int(ql)
			r += int(qr)
		}
		p.mixed = append(p.mixed, hardware.Join(int16(l/p.instances), int16(r/p.instances)))
	}

	for i, q := range p.pending {
		q = q[n:]

		// an instance that runs ahead of the others (the legacy resume
		// behaviour) must not hold an ever growing backlog. the oldest
		// samples are dropped
		if len(q) > MaxPending {
			logger.Logf(p.perm, "audio", "mix: instance %d is %d samples ahead: dropping surplus", i, len(q)-MaxPending)
			q = q[len(q)-MaxPending:]
		}

		p.pending[i] = append(p.pending[i][:0], q...)
	}

	p.resample(p.mixed)
}

func (p *Pipeline) resample(samples []uint32) {
	p.res.push(samples)

	// the decimation resampler's output is always moved to the staging
	// buffer immediately
	if p.kind == Decimation {
		p.res.read(p.staging, p.res.available())
	}
}

// ReadIntermediate moves the output of the sinc resampler to the staging
// buffer if more than half of SincBufferSize frames are available. Called
// part way through a frame to keep the resampler's output buffer small.
func (p *Pipeline) ReadIntermediate() {
	if p.closed || p.kind != Sinc {
		return
	}
	if p.res.available() >= SincBufferSize/2 {
		p.res.read(p.staging, p.res.available())
	}
}

// EndFrame moves all available resampler output to the staging buffer.
func (p *Pipeline) EndFrame() {
	if p.closed {
		return
	}
	p.res.read(p.staging, p.res.available())
}

// Deliver staged samples to the sink in batches no larger than
// MaxBatchSize(). Returns the number of frames delivered.
//
// If the sink accepts fewer frames than offered, the maximum batch size is
// reduced to the number accepted. If the sink accepts nothing then delivery
// stops and the remaining samples stay in the staging buffer for the next
// call.
func (p *Pipeline) Deliver(sink host.AudioSink) int {
	if p.closed {
		return 0
	}

	var delivered int

	for p.staging.Cursor() > 0 {
		frames := min(p.staging.Cursor(), p.maxBatchSize)

		accepted := sink.Deliver(p.staging.Frames()[:frames*2], frames)
		accepted = max(0, min(accepted, frames))

		if accepted < frames {
			logger.Log(p.perm, "audio", curated.Errorf(OutputBackPressure, accepted, frames))
			if accepted > 0 {
				p.maxBatchSize = accepted
			}
		}

		p.staging.consume(accepted)
		delivered += accepted

		if accepted == 0 {
			break
		}
	}

	return delivered
}

// Reset discards all resampler state and staged samples. The resampler kind,
// staging capacity and maximum batch size are unchanged.
func (p *Pipeline) Reset() {
	if p.closed {
		return
	}
	p.res.reset()
	p.staging.consume(p.staging.Cursor())
	for i := range p.pending {
		p.pending[i] = p.pending[i][:0]
	}
}

// Close releases the resampler and staging buffer. Calls to the pipeline after
// Close() has been called do nothing.
func (p *Pipeline) Close() {
	p.closed = true
	p.res = nil
	p.staging = &Staging{}
	p.pending = nil
}
