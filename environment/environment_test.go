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

package environment_test

import (
	"path/filepath"
	"testing"

	"github.com/lockstepgb/lockstep/environment"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/preferences"
	"github.com/lockstepgb/lockstep/test"
)

func TestEnvironment(t *testing.T) {
	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	main, err := environment.NewEnvironment(environment.MainSession, p, nil)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, main.IsMainSession())
	test.ExpectSuccess(t, main.AllowLogging())
	test.ExpectSuccess(t, main.Notify != nil)

	cmp, err := environment.NewEnvironment("comparison", p, nil)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, cmp.IsMainSession())
	test.ExpectFailure(t, cmp.AllowLogging())
	test.ExpectSuccess(t, cmp.IsSession("comparison"))

	// the two environments share preferences
	test.DemandSuccess(t, main.Prefs.Instances.Set(1))
	test.ExpectEquality(t, cmp.Prefs.Instances.Get().(int), 1)

	// non-main environments do not add to the log
	logger.Clear()
	logger.Log(cmp, "test", "quiet")
	w := &test.CompareWriter{}
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "")
	logger.Log(main, "test", "loud")
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "test: loud\n")
	logger.Clear()
}

func TestNormalise(t *testing.T) {
	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	env, err := environment.NewEnvironment(environment.MainSession, p, nil)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, env.Prefs.Blend.Set("lcd"))
	env.Normalise()
	test.ExpectSuccess(t, env.Random.ZeroSeed)
	test.ExpectEquality(t, env.Prefs.Blend.String(), "none")

	// zero seeded random numbers are the same for every environment
	other, err := environment.NewEnvironment("other", p, nil)
	test.DemandSuccess(t, err)
	other.Normalise()
	test.ExpectEquality(t, env.Random.IntN(1000000), other.Random.IntN(1000000))
}
