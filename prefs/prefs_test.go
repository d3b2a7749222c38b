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

package prefs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/prefs"
	"github.com/lockstepgb/lockstep/test"
)

func tmpPrefFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "lockstep_prefs_test")
}

func cmpTmpFile(t *testing.T, fn string, expected string) {
	t.Helper()

	data, err := os.ReadFile(fn)
	if err != nil {
		t.Errorf("error reading tmp file: %v", err)
		return
	}

	expected = fmt.Sprintf("%s\n%s", prefs.WarningBoilerPlate, expected)
	test.ExpectEquality(t, string(data), expected)
}

func TestBool(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v, w, x prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))
	test.ExpectSuccess(t, dsk.Add("testC", &x))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectSuccess(t, x.Set("true"))
	test.ExpectFailure(t, x.Set(1))

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "test :: true\ntestB :: false\ntestC :: true\n")
}

func TestDuplicateKey(t *testing.T) {
	dsk, err := prefs.NewDisk(tmpPrefFile(t))
	test.DemandSuccess(t, err)

	var v, w prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	err = dsk.Add("test", &w)
	test.ExpectSuccess(t, curated.Is(err, prefs.DuplicatePrefsKey))
}

func TestInt(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v, w prefs.Int
	test.ExpectSuccess(t, dsk.Add("number", &v))
	test.ExpectSuccess(t, dsk.Add("numberB", &w))

	test.ExpectSuccess(t, v.Set(10))
	test.ExpectSuccess(t, w.Set("99"))

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "number :: 10\nnumberB :: 99\n")

	test.ExpectFailure(t, v.Set("---"))
	test.ExpectFailure(t, v.Set(1.0))
	test.ExpectEquality(t, v.Get().(int), 10)
}

func TestFloat(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Float
	test.ExpectSuccess(t, dsk.Add("response", &v))
	test.ExpectSuccess(t, v.Set("0.333"))
	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "response :: 0.333\n")
}

func TestGeneric(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var addr string
	var port int

	v := prefs.NewGeneric(
		func(s prefs.Value) error {
			_, err := fmt.Sscanf(s.(string), "%s %d", &addr, &port)
			return err
		},
		func() prefs.Value {
			return fmt.Sprintf("%s %d", addr, port)
		},
	)
	test.ExpectSuccess(t, dsk.Add("peer", v))

	addr = "localhost"
	port = 12345
	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "peer :: localhost 12345\n")

	addr = ""
	port = 0
	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, addr, "localhost")
	test.ExpectEquality(t, port, 12345)
}

func TestSharedFile(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, v.Set(true))
	test.DemandSuccess(t, dsk.Save())

	// a second disk using the same file should preserve the entries of the
	// first disk
	dsk, err = prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("foo", &s))
	test.ExpectSuccess(t, s.Set("bar"))
	test.DemandSuccess(t, dsk.Save())

	cmpTmpFile(t, fn, "foo :: bar\ntest :: true\n")
}

func TestDefunctKeys(t *testing.T) {
	fn := tmpPrefFile(t)

	err := os.WriteFile(fn, []byte(fmt.Sprintf("%s\naudio.stereo :: true\nfoo :: bar\n", prefs.WarningBoilerPlate)), 0o600)
	test.DemandSuccess(t, err)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("foo", &s))
	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, s.String(), "bar")

	test.DemandSuccess(t, dsk.Save())
	cmpTmpFile(t, fn, "foo :: bar\n")
}

func TestMissingFile(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var v prefs.Int
	test.ExpectSuccess(t, dsk.Add("session.instances", &v))
	test.ExpectSuccess(t, v.Set(2))

	err = dsk.Load(false)
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))
	_, err = os.Stat(fn)
	test.ExpectFailure(t, err)

	// save on fail creates the file
	err = dsk.Load(true)
	test.ExpectSuccess(t, curated.Is(err, prefs.NoPrefsFile))
	cmpTmpFile(t, fn, "session.instances :: 2\n")
}

func TestCommandLineOverride(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("audio.resampler", &s))
	test.ExpectSuccess(t, s.Set("sinc"))
	test.DemandSuccess(t, dsk.Save())

	prefs.PushCommandLineStack("audio.resampler::cc")
	defer prefs.PopCommandLineStack()

	test.DemandSuccess(t, dsk.Load(false))
	test.ExpectEquality(t, s.String(), "cc")
}

func TestHooks(t *testing.T) {
	var v prefs.Int
	var applied int

	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int) < 1 || nv.(int) > 2 {
			return fmt.Errorf("out of range")
		}
		return nil
	})
	v.SetHookPost(func(nv prefs.Value) error {
		applied = nv.(int)
		return nil
	})

	test.ExpectSuccess(t, v.Set(2))
	test.ExpectEquality(t, applied, 2)
	test.ExpectFailure(t, v.Set(3))
	test.ExpectEquality(t, applied, 2)
	test.ExpectEquality(t, v.Get().(int), 2)
}

func TestMaxStringLength(t *testing.T) {
	var s prefs.String
	test.ExpectSuccess(t, s.Set("123456789"))
	test.ExpectEquality(t, s.String(), "123456789")

	s.SetMaxLen(5)
	test.ExpectEquality(t, s.String(), "12345")

	s.SetMaxLen(0)
	test.ExpectEquality(t, s.String(), "12345")

	s.SetMaxLen(3)
	test.ExpectSuccess(t, s.Set("abcdefghi"))
	test.ExpectEquality(t, s.String(), "abc")
}
