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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface and are created with the
// Errorf() function, which takes a pattern and placeholder values in the same
// way as fmt.Errorf().
//
// The pattern is what identifies a curated error. Patterns are usually stored
// as an exported const string in the package that raises the error, so that
// callers can test for them:
//
//	const SetupFailure = "setup: %v"
//
//	err := curated.Errorf(SetupFailure, "instance 1 rejected rom")
//	if curated.Is(err, SetupFailure) {
//		...
//	}
//
// Is() only checks the outermost error. Has() searches the whole chain of
// curated errors passed as placeholder values:
//
//	e := curated.Errorf("link: %v", curated.Errorf(TransportUnavailable))
//	curated.Has(e, TransportUnavailable) // true
//	curated.Is(e, TransportUnavailable)  // false
//
// The Error() function normalises the message so that duplicate adjacent parts
// of the chain are removed. Parts are separated by the sub-string ": ". This
// means that a function can wrap an error with its own prefix without worrying
// about whether the callee has already done so:
//
//	session: session: instance count out of range
//
// becomes
//
//	session: instance count out of range
//
// Curated errors also implement Unwrap() so a plain error value (for example
// io.EOF or a net.OpError) passed as a placeholder value can still be found
// with errors.Is() and errors.As() from the standard library.
package curated
