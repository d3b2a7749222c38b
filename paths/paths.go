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

package paths

import (
	"path/filepath"
)

// ResourcePath returns the resource string (representing the resource to be
// loaded) prepended with the OS/build specific configuration directory.
//
// The subPth argument is created as a directory if it doesn't already exist.
// The file argument is never created. Either argument can be the empty string.
func ResourcePath(subPth string, file string) (string, error) {
	pth, err := getBasePath(subPth)
	if err != nil {
		return "", err
	}
	return filepath.Join(pth, file), nil
}
