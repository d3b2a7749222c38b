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

// Package logger is the central log of the application. Entries are kept in
// memory and can be written to an io.Writer on demand, or echoed as they
// arrive.
//
// The Log() and Logf() functions take a Permission argument. Code that runs
// inside a session should pass the session's environment. The environment
// decides whether it is allowed to log, which keeps comparison or
// verification sessions quiet. Code that is not tied to a session can use
// logger.Allow.
//
// Repeated entries with the same tag and detail are folded into one entry
// with a repeat count.
package logger
