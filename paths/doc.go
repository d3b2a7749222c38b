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

// Package paths contains functions to prepare paths for Lockstep resources.
//
// The ResourcePath() function returns the path of a resource inside the
// configuration directory. The location of the directory depends on how the
// program was built. The default (development) build uses a ".lockstep"
// directory in the current working directory. Building with the "release"
// tag places the directory in the user's configuration directory, as
// reported by os.UserConfigDir().
//
// In both cases the directory is created if it does not exist.
package paths
