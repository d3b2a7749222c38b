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

package prefs

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lockstepgb/lockstep/curated"
)

// DefaultPrefsFile is the default filename of the global preferences file.
const DefaultPrefsFile = "preferences"

// WarningBoilerPlate is added to the beginning of the preferences file.
const WarningBoilerPlate = "*** do not edit this file while lockstep is running ***"

// the separator between a key and its value in the preferences file.
const keySep = " :: "

// Sentinal error patterns.
const (
	NoPrefsFile       = "prefs: no prefs file (%s)"
	DuplicatePrefsKey = "prefs: duplicate key (%s)"
	PrefsFileError    = "prefs: %v"
)

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]Pref
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k]))
	}
	return s.String()
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	dsk := &Disk{
		path:    path,
		entries: make(map[string]Pref),
	}
	return dsk, nil
}

// sorted list of keys.
func (dsk *Disk) keys() []string {
	k := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		k = append(k, key)
	}
	sort.Strings(k)
	return k
}

// Add preference value to list of values to store/load from Disk. The key
// value is used to identify the value in the file and must not contain the
// key separator.
func (dsk *Disk) Add(key string, p Pref) error {
	key = strings.TrimSpace(key)
	if strings.Contains(key, strings.TrimSpace(keySep)) {
		return curated.Errorf(PrefsFileError, fmt.Sprintf("illegal key (%s)", key))
	}
	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf(DuplicatePrefsKey, key)
	}
	dsk.entries[key] = p
	return nil
}

// Reset all preference values to their zero value.
func (dsk *Disk) Reset() error {
	for _, k := range dsk.keys() {
		if err := dsk.entries[k].Reset(); err != nil {
			return curated.Errorf(PrefsFileError, err)
		}
	}
	return nil
}

// read the file and return the key/value pairs. returns a NoPrefsFile error
// if the file does not exist.
func (dsk *Disk) read() (map[string]string, error) {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return nil, curated.Errorf(PrefsFileError, err)
	}
	defer f.Close()

	data := make(map[string]string)

	scanner := bufio.NewScanner(f)

	// the first line must be the boilerplate
	if scanner.Scan() && scanner.Text() != WarningBoilerPlate {
		return nil, curated.Errorf(PrefsFileError, fmt.Sprintf("not a valid prefs file (%s)", dsk.path))
	}

	for scanner.Scan() {
		k, v, ok := strings.Cut(scanner.Text(), keySep)
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if isDefunct(k) {
			continue
		}
		data[k] = strings.TrimSpace(v)
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf(PrefsFileError, err)
	}

	return data, nil
}

// Save current preference values to disk. Entries in the file that are not
// known to this Disk instance are preserved.
func (dsk *Disk) Save() error {
	data, err := dsk.read()
	if err != nil {
		if !curated.Is(err, NoPrefsFile) {
			return err
		}
		data = make(map[string]string)
	}

	for k, p := range dsk.entries {
		data[k] = p.String()
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f, err := os.Create(dsk.path)
	if err != nil {
		return curated.Errorf(PrefsFileError, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%s\n", WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, keySep, data[k])
	}

	if err := w.Flush(); err != nil {
		return curated.Errorf(PrefsFileError, err)
	}

	return nil
}

// Load preference values from disk. Values on the top of the command line
// stack take priority over the values on disk.
//
// If saveOnFail is true and the file does not exist then the current values
// are saved, creating the file. A NoPrefsFile error is returned in either
// case.
func (dsk *Disk) Load(saveOnFail bool) error {
	data, err := dsk.read()
	if err != nil {
		if curated.Is(err, NoPrefsFile) && saveOnFail {
			if serr := dsk.Save(); serr != nil {
				return serr
			}
		}
		if !curated.Is(err, NoPrefsFile) {
			return err
		}
		data = make(map[string]string)
	}

	for _, k := range dsk.keys() {
		if ok, v := GetCommandLinePref(k); ok {
			data[k] = fmt.Sprintf("%v", v)
		}
		if v, ok := data[k]; ok {
			if serr := dsk.entries[k].Set(v); serr != nil {
				return curated.Errorf(PrefsFileError, serr)
			}
		}
	}

	return err
}
