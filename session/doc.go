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

// Package session ties together the instances, link, scheduler, audio pipeline
// and compositor of a running session. All state is owned by the Session type
// so more than one session can exist at the same time.
//
// Changes to the session can only be made between frames. Attempting to
// change the session from a sink called during RunFrame() results in a
// MidFrame error.
package session
