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

package session

import (
	"strings"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/logger"
)

// SetCheat adds a cheat code to the canonical instance. Several codes can be
// joined with a plus sign or a semicolon. Codes containing a dash are Game
// Genie codes and all other codes are GameShark codes.
func (s *Session) SetCheat(code string) error {
	if err := s.inFrame("cheat"); err != nil {
		return err
	}
	if !s.Loaded() {
		return curated.Errorf(NotLoaded)
	}
	if s.cheats == nil {
		return curated.Errorf(NoCheats)
	}

	code = strings.ReplaceAll(code, "+", ";")

	var err error
	if strings.Contains(code, "-") {
		err = s.cheats.SetGameGenie(code)
	} else {
		err = s.cheats.SetGameShark(code)
	}
	if err != nil {
		return err
	}

	logger.Logf(s.env, "session", "cheat: %s", code)

	return nil
}

// ClearCheats removes all cheat codes from the canonical instance.
func (s *Session) ClearCheats() error {
	if err := s.inFrame("cheat"); err != nil {
		return err
	}
	if !s.Loaded() {
		return curated.Errorf(NotLoaded)
	}
	if s.cheats != nil {
		s.cheats.ClearCheats()
	}
	return nil
}
