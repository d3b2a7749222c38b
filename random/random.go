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

package random

import (
	"math/rand/v2"
	"time"
)

var baseSeed uint64

func init() {
	baseSeed = uint64(time.Now().UnixNano())
}

// Coords is the position of a session's scheduler.
type Coords struct {
	Frame int
	Line  int
	Tick  int
}

// Source of the current scheduler position.
type Source interface {
	GetCoords() Coords
}

// Random is a coordinate derived random number generator.
type Random struct {
	src Source

	// use zero seed rather than the random base seed. only useful for
	// sessions where random numbers must be predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type. A
// nil source is allowed and is treated as a position of zero.
func NewRandom(src Source) *Random {
	return &Random{
		src: src,
	}
}

// SetSource changes the source of the scheduler position.
func (rnd *Random) SetSource(src Source) {
	rnd.src = src
}

func (rnd *Random) rand() *rand.Rand {
	var c Coords
	if rnd.src != nil {
		c = rnd.src.GetCoords()
	}

	seed := uint64(c.Frame)<<32 | uint64(c.Line)<<16 | uint64(c.Tick)
	if rnd.ZeroSeed {
		return rand.New(rand.NewPCG(seed, 0))
	}
	return rand.New(rand.NewPCG(seed, baseSeed))
}

// IntN returns a non-negative pseudo-random number in [0,n). It panics if
// n <= 0.
func (rnd *Random) IntN(n int) int {
	return rnd.rand().IntN(n)
}

// Fill the slice with random bytes.
func (rnd *Random) Fill(b []byte) {
	r := rnd.rand()
	for i := range b {
		b[i] = uint8(r.Uint32())
	}
}
