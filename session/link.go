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
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/logger"
)

// connect creates the link for the mode. A network link that can not be
// created is not an error. Instances are left unconnected instead.
func (s *Session) connect(mode link.Mode) link.Transport {
	unconnected := func(from int) link.Group {
		var g link.Group
		for _, ins := range s.instances[from:] {
			u := link.NewUnconnected(ins.SerialPort())
			ins.AttachSerial(u.Endpoint())
			g = append(g, u)
		}
		return g
	}

	switch mode {
	case link.LocalPair:
		if len(s.instances) < 2 {
			logger.Log(s.env, "link", "local link requires two instances")
			break
		}
		c, err := link.NewLocalPair(s.env, s.instances[0].SerialPort(), s.instances[1].SerialPort(), 0)
		if err != nil {
			logger.Log(s.env, "link", err)
			break
		}
		c.SetTrafficLog(s.env.Prefs.LinkLog.Get().(bool))
		s.instances[0].AttachSerial(c.Endpoint(0))
		s.instances[1].AttachSerial(c.Endpoint(1))
		return append(link.Group{c}, unconnected(2)...)

	case link.NetworkServer, link.NetworkClient:
		cfg := s.env.Prefs.NetworkConfig()
		cfg.Mode = mode
		nw, err := link.NewNetwork(s.env, s, cfg, s.instances[0].SerialPort())
		if err != nil {
			logger.Log(s.env, "link", err)
			break
		}
		s.instances[0].AttachSerial(nw.Endpoint())
		return append(link.Group{nw}, unconnected(1)...)
	}

	return unconnected(0)
}
