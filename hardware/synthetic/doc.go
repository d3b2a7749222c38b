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

// Package synthetic is a deterministic implementation of the
// hardware.Instance interface. It does not emulate a CPU. Instead it renders
// a pattern seeded by the ROM header, produces a square wave and exchanges
// bytes over the serial link at a regular interval.
//
// The instance's video frame does not start at the same time as the frame of
// the session. A call to RunFor() will therefore pause part way through the
// ticks requested once every frame.
package synthetic
