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

package link

import "errors"

// Group is a collection of transports that are serviced and closed together.
// Used when each instance has a transport of its own.
type Group []Transport

// Mode implements the Transport interface. The mode of the first transport in
// the group is returned.
func (g Group) Mode() Mode {
	if len(g) == 0 {
		return None
	}
	return g[0].Mode()
}

// Service implements the Transport interface.
func (g Group) Service() error {
	for _, t := range g {
		if err := t.Service(); err != nil {
			return err
		}
	}
	return nil
}

// Close implements the Transport interface.
func (g Group) Close() error {
	var errs []error
	for _, t := range g {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

// Stats implements the Transport interface. The stats are summed.
func (g Group) Stats() Stats {
	var s Stats
	for _, t := range g {
		ts := t.Stats()
		s.Sent += ts.Sent
		s.Delivered += ts.Delivered
		s.NotReady += ts.NotReady
		s.Unavailable += ts.Unavailable
	}
	return s
}
