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

// Package notifications allow communication from a session to the host
// application. The host application implements the Notify interface and
// decides how to present each Notice to the user.
//
// Notices are for events that the user should know about but which are not
// errors. For example, falling back from the sinc resampler to the decimation
// resampler is recoverable but changes the sample rate of the audio output.
package notifications
