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

// Package scheduler runs the instances of a session in lockstep.
//
// A frame is divided into hardware.LinesPerFrame lines. For each line every
// instance is run for hardware.TicksPerLine ticks, in instance order. An
// instance that pauses before running all the ticks, because it has reached
// the end of its own video frame, is run again for the remaining ticks. The
// link between the instances is serviced once all instances have run for the
// line.
//
// Audio is pushed to the audio pipeline after every call to an instance. Once
// the final line has been run, the composite image is blended and presented,
// and the audio is delivered to the host.
package scheduler
