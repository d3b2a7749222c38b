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

// Package hardware defines the contract between the session core and an
// emulated Game Boy-class unit. The instruction level emulation of the unit is
// not part of this package. It is reached only through the Instance interface.
//
// Timing is measured in ticks. One tick produces one stereo sample of native
// rate audio. A video frame is LinesPerFrame lines of TicksPerLine ticks.
//
// The synthetic sub-package is a deterministic implementation of the Instance
// interface.
package hardware
