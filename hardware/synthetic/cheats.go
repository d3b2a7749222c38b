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
	"math/bits"
	"strconv"
	"strings"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
)

// a Game Genie code replaces the value read from a ROM address. if compare is
// set the value is only replaced if the ROM holds the old value
type geniePatch struct {
	address uint16
	value   uint8
	compare bool
	old     uint8
}

// a GameShark code writes a value to a RAM address at the end of every frame
type sharkPatch struct {
	address uint16
	value   uint8
}

func splitCodes(codes string) []string {
	var s []string
	for c := range strings.SplitSeq(codes, ";") {
		c = strings.TrimSpace(c)
		if c != "" {
			s = append(s, c)
		}
	}
	return s
}

func hexValue(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 32)
}

// codes are in the form ABC-DEF or ABC-DEF-GHI. AB is the new value. FCDE is
// the address with F inverted. GI is the old value rotated left by two and
// exclusive-ored with 0xba. H is ignored.
func parseGenie(codes string) ([]geniePatch, error) {
	var patches []geniePatch

	for _, code := range splitCodes(codes) {
		d := strings.ReplaceAll(code, "-", "")
		if len(d) != 6 && len(d) != 9 {
			return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("game genie code %q is the wrong length", code))
		}
		v, err := hexValue(d[:6])
		if err != nil {
			return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("game genie code %q is not hexadecimal", code))
		}

		var p geniePatch
		p.value = uint8(v >> 16)
		p.address = uint16((v>>4)&0x0fff) | uint16((v&0x0f)^0x0f)<<12

		if p.address >= 0x8000 {
			return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("game genie code %q does not address rom", code))
		}

		if len(d) == 9 {
			gi, err := hexValue(d[6:7] + d[8:9])
			if err != nil {
				return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("game genie code %q is not hexadecimal", code))
			}
			if _, err := hexValue(d[7:8]); err != nil {
				return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("game genie code %q is not hexadecimal", code))
			}
			p.compare = true
			p.old = bits.RotateLeft8(uint8(gi), -2) ^ 0xba
		}

		patches = append(patches, p)
	}

	return patches, nil
}

// codes are in the form ABCDEFGH. AB is the RAM bank and is ignored. CD is
// the new value. GHEF is the address, which must be in cartridge RAM or work
// RAM.
func parseShark(codes string) ([]sharkPatch, error) {
	var patches []sharkPatch

	for _, code := range splitCodes(codes) {
		if len(code) != 8 {
			return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("gameshark code %q is the wrong length", code))
		}
		v, err := hexValue(code)
		if err != nil {
			return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("gameshark code %q is not hexadecimal", code))
		}

		var p sharkPatch
		p.value = uint8(v >> 16)
		p.address = uint16(v>>8)&0x00ff | uint16(v&0xff)<<8

		if p.address < 0xa000 || p.address >= 0xe000 {
			return nil, curated.Errorf(hardware.InvalidCheat, fmt.Sprintf("gameshark code %q does not address ram", code))
		}

		patches = append(patches, p)
	}

	return patches, nil
}

func (ins *Instance) applyShark() {
	for _, p := range ins.shark {
		switch {
		case p.address >= 0xc000:
			ins.wram[p.address-0xc000] = p.value
		case ins.sram != nil:
			ins.sram[p.address-0xa000] = p.value
		}
	}
}
