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

// Package otoaudio plays the audio of a session through the host's sound
// system using the oto library.
//
// The sample rate of the sound system is fixed at SampleRate. Audio from the
// session is converted to that rate as it is delivered.
//
// The Buffer type sits between the session and the sound system. It is
// available in all builds. The Player type is not available when the headless
// build constraint is present.
package otoaudio
