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

package environment

import (
	"github.com/lockstepgb/lockstep/notifications"
	"github.com/lockstepgb/lockstep/preferences"
	"github.com/lockstepgb/lockstep/random"
)

// Label is used to name the environment.
type Label string

// MainSession is the label of the main session.
const MainSession Label = ""

// Environment is used to provide context for a session.
type Environment struct {
	Label Label

	// any randomisation required by the session should be retrieved through
	// this field
	Random *random.Random

	// the session preferences
	Prefs *preferences.Preferences

	// notices that require the attention of the user
	Notify notifications.Notify
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// The prefs argument can be nil, in which case a new Preferences instance is
// created. Providing a non-nil value allows the preferences of more than one
// session to be synchronised. A nil notify argument means that notices are
// discarded.
func NewEnvironment(label Label, prefs *preferences.Preferences, notify notifications.Notify) (*Environment, error) {
	env := &Environment{
		Label:  label,
		Random: random.NewRandom(nil),
		Notify: notify,
	}

	if env.Notify == nil {
		env.Notify = notifications.Discard
	}

	var err error

	if prefs == nil {
		prefs, err = preferences.NewPreferences()
		if err != nil {
			return nil, err
		}
	}

	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in a known default state. Useful for
// regression testing where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Random.ZeroSeed = true
	env.Prefs.SetDefaults()
}

// AllowLogging implements the logger.Permission interface. Only the main
// session is allowed to create log entries.
func (env *Environment) AllowLogging() bool {
	return env.IsMainSession()
}

// IsMainSession returns true if the environment is for the main session.
func (env *Environment) IsMainSession() bool {
	return env.Label == MainSession
}

// IsSession checks the environment label and returns true if it matches.
func (env *Environment) IsSession(label Label) bool {
	return env.Label == label
}
