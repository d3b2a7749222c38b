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

package hardware

// The timing of the emulated hardware.
const (
	// the native clock of the hardware in Hz
	ClockRate = 4194304

	// number of clock cycles in a single video frame
	CyclesPerFrame = 70224

	// the frame rate of the hardware
	RefreshRate = float64(ClockRate) / float64(CyclesPerFrame)

	LinesPerFrame = 154
	TicksPerLine  = 228
	TicksPerFrame = LinesPerFrame * TicksPerLine

	// the rate at which audio is produced by an instance. one stereo sample per
	// tick
	NativeSampleRate = RefreshRate * TicksPerFrame
)

// Dimensions of an instance's screen.
const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// SoundBufferSize is the minimum number of stereo samples that must be
// available in the sound buffer given to RunFor(). An instance can overshoot
// the requested number of ticks by a small amount.
const SoundBufferSize = TicksPerLine + 2064
