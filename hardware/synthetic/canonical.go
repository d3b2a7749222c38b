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
	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/hardware"
)

// Canonical is an Instance placed in the canonical slot of a session. Only a
// Canonical instance exposes its memory and accepts cheat codes.
type Canonical struct {
	*Instance
}

// NewCanonical is the preferred method of initialisation for the Canonical
// type.
func NewCanonical(id int, env *environment.Environment) *Canonical {
	return &Canonical{Instance: NewInstance(id, env)}
}

// SaveData implements the hardware.Canonical interface.
func (c *Canonical) SaveData() []byte {
	return c.sram
}

// RTCData implements the hardware.Canonical interface.
func (c *Canonical) RTCData() []byte {
	return c.rtc
}

// MemoryRegions implements the hardware.Canonical interface.
func (c *Canonical) MemoryRegions() []hardware.MemoryRegion {
	r := []hardware.MemoryRegion{
		{Name: "wram", Address: 0xc000, Data: c.wram},
	}
	if c.sram != nil {
		r = append(r, hardware.MemoryRegion{Name: "sram", Address: 0xa000, Data: c.sram})
	}
	return r
}

// ClearCheats implements the hardware.Cheats interface.
func (c *Canonical) ClearCheats() {
	c.genie = c.genie[:0]
	c.shark = c.shark[:0]
}

// SetGameGenie implements the hardware.Cheats interface. No codes are added if
// any code in the string is invalid.
func (c *Canonical) SetGameGenie(codes string) error {
	p, err := parseGenie(codes)
	if err != nil {
		return err
	}
	c.genie = append(c.genie, p...)
	return nil
}

// SetGameShark implements the hardware.Cheats interface. No codes are added if
// any code in the string is invalid.
func (c *Canonical) SetGameShark(codes string) error {
	p, err := parseShark(codes)
	if err != nil {
		return err
	}
	c.shark = append(c.shark, p...)
	return nil
}
