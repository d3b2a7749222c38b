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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It adds the concept of modes to command line parsing. A mode is a
// keyword that selects a different set of flags and a different behaviour:
//
//	lockstep RUN -instances 2 -link local tetris.gb
//	lockstep PERFORMANCE -duration 10s tetris.gb
//	lockstep DIGEST -frames 600 tetris.gb
//
// Modes are case insensitive. The first mode added with AddSubModes() is the
// default mode and is selected if the first argument is not a mode keyword.
//
// The pattern of use is: initialise with NewArgs(), add flags and sub-modes,
// call Parse(), then check Mode(). If the selected mode has flags of its own
// then call NewMode(), add the new flags and call Parse() again. The mode path
// (returned by Path()) records every mode selected in this way.
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "PERFORMANCE", "DIGEST")
//	p, err := md.Parse()
//	...
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		instances := md.AddInt("instances", 1, "number of instances")
//		p, err = md.Parse()
//		...
//	}
//
// Help is printed to Output if the -help or -h flag is found. The help
// message lists flags and available sub-modes for the current mode.
package modalflag
