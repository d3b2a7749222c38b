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

//go:build !release

package paths_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lockstepgb/lockstep/paths"
	"github.com/lockstepgb/lockstep/test"
)

func TestPaths(t *testing.T) {
	t.Chdir(t.TempDir())

	pth, err := paths.ResourcePath("link/logs", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".lockstep", "link", "logs", "baz"))

	// sub-path should have been created
	_, err = os.Stat(filepath.Join(".lockstep", "link", "logs"))
	test.ExpectSuccess(t, err)

	pth, err = paths.ResourcePath("", "baz")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, filepath.Join(".lockstep", "baz"))

	pth, err = paths.ResourcePath("", "")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pth, ".lockstep")
}

func TestUniqueFilename(t *testing.T) {
	fn := paths.UniqueFilename("wav", "  tetris ")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "wav_tetris_"))

	fn = paths.UniqueFilename("wav", "")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "wav_"))
	test.ExpectFailure(t, strings.Contains(fn, "__"))
}
