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

package synthetic

import (
	"fmt"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
)

// Addresses of the cartridge header.
const (
	headerTitle     = 0x134
	headerCGB       = 0x143
	headerCartType  = 0x147
	headerRAMSize   = 0x149
	headerChecksum  = 0x14d
	headerEnd       = 0x150
	headerTitleSize = 16
)

// cartridge types that include a real time clock.
const (
	cartMBC3TimerBattery    = 0x0f
	cartMBC3TimerRAMBattery = 0x10
)

// HeaderChecksum calculates the checksum of the cartridge header. The
// calculation covers the title to the mask ROM version number.
func HeaderChecksum(rom []byte) uint8 {
	var x uint8
	for _, b := range rom[headerTitle:headerChecksum] {
		x = x - b - 1
	}
	return x
}

// validate returns an error if the ROM data is too short to contain a header
// or if the header checksum is wrong.
func validate(rom []byte) error {
	if len(rom) < headerEnd {
		return curated.Errorf(hardware.InvalidROM, fmt.Sprintf("too short (%d bytes)", len(rom)))
	}
	if c := HeaderChecksum(rom); c != rom[headerChecksum] {
		return curated.Errorf(hardware.InvalidROM, fmt.Sprintf("header checksum (%02x != %02x)", c, rom[headerChecksum]))
	}
	return nil
}

// ROMOptions are used by MakeROM to create the cartridge header.
type ROMOptions struct {
	Title string
	CGB   bool

	// include cartridge RAM and battery
	RAM bool

	// include a real time clock
	RTC bool

	// size of the ROM in bytes. rounded up to the minimum size if necessary
	Size int
}

// MakeROM creates ROM data with a valid header.
func MakeROM(opts ROMOptions) []byte {
	sz := max(opts.Size, 0x8000)
	rom := make([]byte, sz)

	for i := range rom[headerEnd:] {
		rom[headerEnd+i] = uint8(i * 7)
	}

	copy(rom[headerTitle:headerTitle+headerTitleSize], opts.Title)

	if opts.CGB {
		rom[headerCGB] = 0x80
	}

	switch {
	case opts.RTC && opts.RAM:
		rom[headerCartType] = cartMBC3TimerRAMBattery
	case opts.RTC:
		rom[headerCartType] = cartMBC3TimerBattery
	case opts.RAM:
		rom[headerCartType] = 0x03
	}

	if opts.RAM {
		rom[headerRAMSize] = 0x02
	}

	rom[headerChecksum] = HeaderChecksum(rom)

	return rom
}

// Title returns the title from the cartridge header.
func Title(rom []byte) string {
	if len(rom) < headerEnd {
		return ""
	}
	t := rom[headerTitle : headerTitle+headerTitleSize]
	if rom[headerCGB]&0x80 == 0x80 {
		t = t[:headerTitleSize-1]
	}
	for i, b := range t {
		if b == 0x00 {
			return string(t[:i])
		}
	}
	return string(t)
}
