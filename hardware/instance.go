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

import (
	"fmt"

	"github.com/lockstepgb/lockstep/link"
)

// Pixel is a single pixel in the video buffer. How the value is interpreted
// depends on the pixel format of the session.
type Pixel uint32

// Sentinal error patterns.
const (
	InvalidROM    = "hardware: invalid rom: %v"
	StateMismatch = "hardware: state size mismatch (want %d, got %d)"
	InvalidState  = "hardware: invalid state: %v"
	RunError      = "hardware: run: %v"
	InvalidCheat  = "hardware: invalid cheat: %v"
)

// LoadFlags change how a ROM is loaded by an instance.
type LoadFlags int

// List of valid LoadFlags. Flags can be combined.
const (
	// treat the ROM as an original model cartridge even if the header
	// indicates colour support
	ForceDMG LoadFlags = 1 << iota

	// treat the ROM as a colour cartridge
	ForceCGB

	// emulate the colour model as it behaves in a GBA
	GBACGB
)

func (f LoadFlags) String() string {
	switch {
	case f&ForceDMG == ForceDMG:
		return "dmg"
	case f&GBACGB == GBACGB:
		return "gba"
	case f&ForceCGB == ForceCGB:
		return "cgb"
	}
	return "auto"
}

// RunKind indicates why a call to RunFor() returned.
type RunKind int

// List of valid RunKind values.
const (
	// the requested number of ticks have been run
	Completed RunKind = iota

	// the instance has completed a video frame before running all the
	// requested ticks. the instance should be called again for the remaining
	// ticks
	Paused
)

func (k RunKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("unknown run kind (%d)", int(k))
}

// RunResult is returned by RunFor(). Ticks is the number of ticks run by the
// call. For a Completed result this is the number of ticks requested. For a
// Paused result it is the number of ticks run before the video frame ended.
type RunResult struct {
	Kind  RunKind
	Ticks int
}

// CompletedResult is a convenience function for creating a Completed result.
func CompletedResult(ticks int) RunResult {
	return RunResult{Kind: Completed, Ticks: ticks}
}

// PausedResult is a convenience function for creating a Paused result.
func PausedResult(ticks int) RunResult {
	return RunResult{Kind: Paused, Ticks: ticks}
}

func (r RunResult) String() string {
	return fmt.Sprintf("%s (%d)", r.Kind, r.Ticks)
}

// Instance is a single emulated unit.
type Instance interface {
	// the index of the instance in the session
	ID() int

	// Load ROM data into the instance. An instance that rejects the ROM should
	// return an InvalidROM error. The instance is reset by a successful load.
	Load(rom []byte, flags LoadFlags) error

	// Reset the instance to its power on state. Cartridge RAM and the real
	// time clock are preserved.
	Reset()

	// RunFor runs the instance for the requested number of ticks. The video
	// buffer is drawn into with the stride given, in pixels. One stereo sample
	// per tick is written to the sound buffer, which must be at least
	// SoundBufferSize in length. Samples are packed with the left channel in
	// the low sixteen bits.
	RunFor(video []Pixel, stride int, sound []uint32, ticks int) (RunResult, error)

	// the number of bytes required by SaveState()
	StateSize() int

	// SaveState writes the state of the instance to the buffer, which must be
	// StateSize() bytes long.
	SaveState(buf []byte) error

	// LoadState restores a state written by SaveState(). The instance state is
	// not changed if the buffer is of the wrong size.
	LoadState(buf []byte) error

	// the rate at which audio is produced by the instance
	NativeSampleRate() float64

	// the serial hardware of the instance
	SerialPort() link.Port

	// AttachSerial connects the instance to a link cable. A nil value
	// disconnects the instance.
	AttachSerial(link.SerialIO)
}

// MemoryRegion describes an area of instance memory that the host is allowed
// to access directly.
type MemoryRegion struct {
	Name    string
	Address uint16
	Data    []byte
}

// Canonical is implemented by the instance created for the canonical slot of
// a session. It exposes persistent memory to the host. Instances created for
// any other slot should not implement it.
type Canonical interface {
	// cartridge RAM. the returned slice is the instance's memory and should
	// be treated as such
	SaveData() []byte

	// the real time clock state of the cartridge. nil if there is no clock
	RTCData() []byte

	// memory regions that are exposed to the host
	MemoryRegions() []MemoryRegion
}

// Palette is implemented by instances that can change the pixel values used
// for the four shades of the original model. Shades are ordered from lightest
// to darkest.
type Palette interface {
	SetPalette(shades [4]Pixel)
}

// Cheats is implemented by instances that accept cheat codes. Like Canonical,
// only the instance in the canonical slot is expected to implement it.
//
// Several codes can be given in one string, separated by semicolons. Codes
// are added to the codes already set.
type Cheats interface {
	// remove all cheat codes
	ClearCheats()

	// Game Genie codes patch the ROM. Format is ABC-DEF or ABC-DEF-GHI
	SetGameGenie(codes string) error

	// GameShark codes patch RAM at the end of every frame. Format is ABCDEFGH
	SetGameShark(codes string) error
}

// Factory creates a new instance. The id is the index of the instance in the
// session. The canonical argument is true for exactly one instance in a
// session, which should then implement the Canonical interface.
type Factory func(id int, canonical bool) (Instance, error)

// Split separates a stereo sample into its left and right channels.
func Split(s uint32) (left int16, right int16) {
	return int16(s), int16(s >> 16)
}

// Join packs left and right channels into a stereo sample.
func Join(left int16, right int16) uint32 {
	return uint32(uint16(left)) | uint32(uint16(right))<<16
}
