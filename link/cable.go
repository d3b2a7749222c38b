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

import (
	"fmt"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/logger"
)

// Cable connects two local instances.
type Cable struct {
	perm   logger.Permission
	ends   [2]*Endpoint
	master int

	// log every exchanged pair of bytes
	logTraffic bool

	stats Stats
}

// NewLocalPair creates a cable between two ports. The master argument selects
// which port (zero or one) is attached to the Master endpoint. The other port
// is attached to the Slave endpoint.
func NewLocalPair(perm logger.Permission, a Port, b Port, master int) (*Cable, error) {
	if master != 0 && master != 1 {
		return nil, curated.Errorf("link: %v", fmt.Sprintf("master must be zero or one (%d)", master))
	}
	if a == nil || b == nil {
		return nil, curated.Errorf("link: %v", "cable requires two ports")
	}

	c := &Cable{
		perm:   perm,
		master: master,
	}

	if master == 0 {
		c.ends[0] = newEndpoint(Master, a)
		c.ends[1] = newEndpoint(Slave, b)
	} else {
		c.ends[0] = newEndpoint(Slave, a)
		c.ends[1] = newEndpoint(Master, b)
	}

	return c, nil
}

// Endpoint returns the endpoint for port zero or port one.
func (c *Cable) Endpoint(i int) *Endpoint {
	return c.ends[i]
}

// SetTrafficLog turns logging of exchanged bytes on or off.
func (c *Cable) SetTrafficLog(log bool) {
	c.logTraffic = log
}

// Mode implements the Transport interface.
func (c *Cable) Mode() Mode {
	return LocalPair
}

// Stats implements the Transport interface.
func (c *Cable) Stats() Stats {
	return c.stats
}

// Service implements the Transport interface.
func (c *Cable) Service() error {
	m := c.ends[c.master]
	s := c.ends[1-c.master]

	data, speed, ok := m.pending()
	if !ok {
		return nil
	}

	// the slave has been detached. the pending transfer is dropped and the
	// master endpoint is closed so that further sends fail
	if s.closed {
		m.close()
		return nil
	}

	if !s.port.IsReady() {
		c.stats.NotReady++
		return nil
	}

	c.stats.Sent++

	reply := s.port.ReceiveFromLink(data)
	s.receive(data, speed)
	m.deliver(reply, speed)

	c.stats.Delivered++

	if c.logTraffic {
		logger.Logf(c.perm, "link", "%02x\t%02x", data, reply)
	}

	return nil
}

// Detach destroys one endpoint of the cable. The other endpoint is closed
// too, so that a Master with a detached Slave fails on its next send rather
// than waiting for a reply that will never come.
func (c *Cable) Detach(i int) {
	c.ends[i].close()
	c.ends[1-i].close()
}

// Close implements the Transport interface.
func (c *Cable) Close() error {
	c.Detach(0)
	return nil
}
