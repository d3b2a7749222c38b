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

package performance_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lockstepgb/lockstep/performance"
	"github.com/lockstepgb/lockstep/test"
)

type runner struct {
	frames int
	err    error
}

func (r *runner) RunFrame() error {
	r.frames++
	return r.err
}

func TestCalcFPS(t *testing.T) {
	fps, accuracy := performance.CalcFPS(600, 10)
	test.ExpectEquality(t, fps, 60.0)
	test.ExpectApproximate(t, accuracy, 100.5, 0.01)

	fps, accuracy = performance.CalcFPS(100, 0)
	test.ExpectEquality(t, fps, 0.0)
	test.ExpectEquality(t, accuracy, 0.0)
}

func TestParseProfile(t *testing.T) {
	p, err := performance.ParseProfile("cpu,TRACE")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileCPU|performance.ProfileTrace)
	test.ExpectEquality(t, p.String(), "cpu,trace")

	p, err = performance.ParseProfile("none")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileNone)

	p, err = performance.ParseProfile("all")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p.String(), "cpu,mem,trace")

	_, err = performance.ParseProfile("disk")
	test.ExpectFailure(t, err)
}

func TestCheck(t *testing.T) {
	r := &runner{}
	var out strings.Builder
	err := performance.CheckFor(&out, r, true, 10*time.Millisecond, 50*time.Millisecond)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, r.frames, 0)
	test.ExpectSuccess(t, strings.Contains(out.String(), "fps"))

	// errors from the runner are returned
	r = &runner{err: errors.New("broken")}
	out.Reset()
	err = performance.CheckFor(&out, r, true, time.Millisecond, time.Millisecond)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, r.frames, 1)

	_, err = performance.ParseProfile("")
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, performance.Check(&out, performance.ProfileNone, r, true, "forever"))
}
