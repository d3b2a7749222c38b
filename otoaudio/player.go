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

//go:build !headless

package otoaudio

import (
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/logger"
)

// Player plays audio through the sound system. It implements the
// host.AudioSink and host.AVInfoSink interfaces through the embedded Buffer.
type Player struct {
	*Buffer

	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer is the preferred method of initialisation for the Player type.
func NewPlayer(perm logger.Permission, latency time.Duration) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   latency / 2,
	})
	if err != nil {
		return nil, curated.Errorf("otoaudio: %v", err)
	}
	<-ready

	p := &Player{
		Buffer: NewBuffer(perm, latency),
		ctx:    ctx,
	}
	p.player = ctx.NewPlayer(p.Buffer)
	p.player.Play()

	logger.Logf(perm, "otoaudio", "playing at %dHz", SampleRate)

	return p, nil
}

// Close stops playback.
func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		return curated.Errorf("otoaudio: %v", err)
	}
	return nil
}
