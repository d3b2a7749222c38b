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

//go:build headless

package otoaudio

import (
	"time"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/logger"
)

// Player is not available in headless builds.
type Player struct {
	*Buffer
}

// NewPlayer always returns an error in headless builds.
func NewPlayer(_ logger.Permission, _ time.Duration) (*Player, error) {
	return nil, curated.Errorf("otoaudio: not available in headless build")
}

// Close does nothing in headless builds.
func (p *Player) Close() error {
	return nil
}
