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

// Package test contains helper functions for the package tests in this
// module. The Expect*() functions report a test failure and carry on. The
// Demand*() functions stop the test immediately.
//
// Every function accepts optional tags which are printed at the beginning of
// the failure message. Tags are useful when the expectation is made inside a
// loop:
//
//	for i := range frames {
//		test.ExpectEquality(t, digest[i], want[i], "frame", i)
//	}
package test
