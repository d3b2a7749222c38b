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

// Package version reports the version of the application. The version number
// is set by the linker when building a release. Otherwise the version is
// derived from the build information.
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "Lockstep"

// set with -ldflags "-X github.com/lockstepgb/lockstep/version.number=v0.1.0"
var number string

// Info about the build.
type Info struct {
	// "unreleased" if the project was built from a vcs checkout without a
	// version number. "local" if there is no vcs information either
	Version string

	// vcs revision. suffixed with "+dirty" if the source was modified
	Revision string

	// the version of Go used to build the application
	GoVersion string
}

// Release returns true if this is a numbered release.
func (i Info) Release() bool {
	return number != "" && i.Version == number
}

func (i Info) String() string {
	if i.Release() {
		return fmt.Sprintf("%s %s", ApplicationName, i.Version)
	}
	return fmt.Sprintf("%s %s (%s) %s", ApplicationName, i.Version, i.Revision, i.GoVersion)
}

// Version returns information about the build.
func Version() Info {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fromSettings(nil, "")
	}
	return fromSettings(info.Settings, info.GoVersion)
}

func fromSettings(settings []debug.BuildSetting, goVersion string) Info {
	var vcs bool
	var modified bool

	inf := Info{GoVersion: goVersion}

	for _, v := range settings {
		switch v.Key {
		case "vcs":
			vcs = true
		case "vcs.revision":
			inf.Revision = v.Value
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if inf.Revision == "" {
		inf.Revision = "no revision information"
	} else if modified {
		inf.Revision = fmt.Sprintf("%s+dirty", inf.Revision)
	}

	switch {
	case number != "":
		inf.Version = number
	case vcs:
		inf.Version = "unreleased"
	default:
		inf.Version = "local"
	}

	return inf
}
