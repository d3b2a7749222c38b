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

// Package limiter provides a rough and ready way of limiting events to a fixed
// rate.
//
// A new FpsLimiter can be created with:
//
//	fps := limiter.NewFPSLimiter(59.73)
//	defer fps.Stop()
//
// Operations can then be stalled with the Wait() function. For example:
//
//	for {
//		fps.Wait()
//		runFrame()
//	}
package limiter

import (
	"time"
)

// FpsLimiter will trigger every frames per second
type FpsLimiter struct {
	secondsPerFrame time.Duration
	ticker          *time.Ticker
}

// NewFPSLimiter is the preferred method of initialisation for FpsLimiter type
func NewFPSLimiter(framesPerSecond float64) *FpsLimiter {
	lim := &FpsLimiter{}
	lim.secondsPerFrame = perFrame(framesPerSecond)
	lim.ticker = time.NewTicker(lim.secondsPerFrame)
	return lim
}

func perFrame(framesPerSecond float64) time.Duration {
	if framesPerSecond <= 0 {
		framesPerSecond = 1
	}
	return time.Duration(float64(time.Second) / framesPerSecond)
}

// SetLimit changes the limit at which the FpsLimiter waits
func (lim *FpsLimiter) SetLimit(framesPerSecond float64) {
	lim.secondsPerFrame = perFrame(framesPerSecond)
	lim.ticker.Reset(lim.secondsPerFrame)
}

// Wait will block until trigger
func (lim *FpsLimiter) Wait() {
	<-lim.ticker.C
}

// HasWaited will return true if time has already elapsed and false it it is
// still yet to happen
func (lim *FpsLimiter) HasWaited() bool {
	select {
	case <-lim.ticker.C:
		return true
	default:
		// default case means that the channel receiving case doesn't block
		return false
	}
}

// Stop the limiter. Wait() must not be called after Stop()
func (lim *FpsLimiter) Stop() {
	lim.ticker.Stop()
}
