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

// Package prefs facilitates the storage of preferential values. Preference
// values are typed (Bool, String, Int, Float) and are stored on disk by
// adding them to a Disk instance with a key.
//
//	dsk, err := prefs.NewDisk(pth)
//	err = dsk.Add("audio.resampler", &p.Resampler)
//
// The Generic type is for values that are not one of the basic types. It
// takes a pair of functions which set and get the value from a string.
//
// Pre and post hooks can be attached to the basic types. Hooks are called
// when the value is Set(). A pre hook that returns an error prevents the new
// value from being stored. A post hook is the place to apply the new value to
// the rest of the program.
//
// Values can also be specified on the command line and pushed onto a stack
// with PushCommandLineStack(). Values on the top of the stack override the
// values loaded from disk for the keys they name, but they are never saved.
//
// The file format is simple. The first line is WarningBoilerPlate and every
// subsequent line is a key/value pair separated by " :: ". Keys are written in
// sorted order. A Disk preserves lines in the file that it doesn't have a
// key for, so several Disk instances can share a single file, unless the key
// has been marked as defunct in which case it is dropped on the next Save().
package prefs
