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

// the value shifted in when there is no peer to shift out a value.
const lineHigh = 0xff

// Unconnected is a transport for an instance with no cable plugged in. A send
// by the instance completes on the next service with a reply of 0xff.
type Unconnected struct {
	end   *Endpoint
	stats Stats
}

// NewUnconnected creates a transport for a single port. The port is never
// called because there is no peer to send it anything.
func NewUnconnected(port Port) *Unconnected {
	return &Unconnected{
		end: newEndpoint(Master, port),
	}
}

// Endpoint returns the only endpoint of the transport.
func (u *Unconnected) Endpoint() *Endpoint {
	return u.end
}

// Mode implements the Transport interface.
func (u *Unconnected) Mode() Mode {
	return None
}

// Stats implements the Transport interface.
func (u *Unconnected) Stats() Stats {
	return u.stats
}

// Service implements the Transport interface.
func (u *Unconnected) Service() error {
	_, speed, ok := u.end.pending()
	if !ok {
		return nil
	}
	u.stats.Sent++
	u.end.deliver(lineHigh, speed)
	u.stats.Delivered++
	return nil
}

// Close implements the Transport interface.
func (u *Unconnected) Close() error {
	u.end.close()
	return nil
}
