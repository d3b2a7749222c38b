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

package session

import (
	"fmt"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/hardware"
)

// StateSize returns the number of bytes required to serialize the session.
// Only the canonical instance is serialized. Returns zero if no ROM is loaded.
func (s *Session) StateSize() int {
	if !s.Loaded() {
		return 0
	}
	return s.instances[CanonicalSlot].StateSize()
}

// Serialize the state of the canonical instance into the buffer. The buffer must
// be exactly StateSize() bytes long.
func (s *Session) Serialize(buf []byte) error {
	if err := s.inFrame("serialize"); err != nil {
		return err
	}
	if !s.Loaded() {
		return curated.Errorf(NotLoaded)
	}
	if len(buf) != s.StateSize() {
		return curated.Errorf(SerializationMismatch, fmt.Sprintf("want %d bytes, got %d", s.StateSize(), len(buf)))
	}
	if err := s.instances[CanonicalSlot].SaveState(buf); err != nil {
		return curated.Errorf(SerializationMismatch, err)
	}
	return nil
}

// Deserialize the state of the canonical instance from the buffer. If the buffer
// can not be used the running state is not changed.
func (s *Session) Deserialize(buf []byte) error {
	if err := s.inFrame("deserialize"); err != nil {
		return err
	}
	if !s.Loaded() {
		return curated.Errorf(NotLoaded)
	}
	if len(buf) != s.StateSize() {
		return curated.Errorf(SerializationMismatch, fmt.Sprintf("want %d bytes, got %d", s.StateSize(), len(buf)))
	}
	if err := s.instances[CanonicalSlot].LoadState(buf); err != nil {
		return curated.Errorf(SerializationMismatch, err)
	}
	return nil
}

// Canonical returns the instance in the canonical slot if it implements the
// hardware.Canonical interface.
func (s *Session) Canonical() (hardware.Canonical, bool) {
	return s.canonical, s.canonical != nil
}

// SaveData returns the cartridge RAM of the canonical instance. Returns nil
// if there is no cartridge RAM.
func (s *Session) SaveData() []byte {
	if c, ok := s.Canonical(); ok {
		return c.SaveData()
	}
	return nil
}

// RTCData returns the real time clock data of the canonical instance.
func (s *Session) RTCData() []byte {
	if c, ok := s.Canonical(); ok {
		return c.RTCData()
	}
	return nil
}

// MemoryRegions returns the memory regions of the canonical instance.
func (s *Session) MemoryRegions() []hardware.MemoryRegion {
	if c, ok := s.Canonical(); ok {
		return c.MemoryRegions()
	}
	return nil
}
