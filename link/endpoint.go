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
	"github.com/lockstepgb/lockstep/curated"
)

// Endpoint is one side of a link. It implements the SerialIO interface.
type Endpoint struct {
	role  ClockRole
	port  Port
	state State

	// byte waiting to be delivered to the peer
	out      uint8
	outSpeed SpeedMode

	// byte that has arrived from the peer and not yet been checked
	in      uint8
	inSpeed SpeedMode
	inValid bool

	closed bool
}

func newEndpoint(role ClockRole, port Port) *Endpoint {
	return &Endpoint{
		role: role,
		port: port,
	}
}

// Role implements the SerialIO interface.
func (e *Endpoint) Role() ClockRole {
	return e.role
}

// State of the endpoint.
func (e *Endpoint) State() State {
	return e.state
}

// Closed returns true if the endpoint can no longer be used.
func (e *Endpoint) Closed() bool {
	return e.closed
}

// Send implements the SerialIO interface.
//
// Sending while a previous byte is still awaiting delivery replaces the
// previous byte.
func (e *Endpoint) Send(data uint8, speed SpeedMode) error {
	if e.closed {
		return curated.Errorf(LinkClosed)
	}
	if e.role != Master {
		return curated.Errorf(SlaveInitiated)
	}
	e.out = data
	e.outSpeed = speed
	e.state = AwaitingPeerByte
	return nil
}

// Check implements the SerialIO interface.
func (e *Endpoint) Check() (uint8, SpeedMode, bool) {
	if !e.inValid {
		return 0, Normal, false
	}
	e.inValid = false
	if e.state == Delivered {
		e.state = Idle
	}
	return e.in, e.inSpeed, true
}

// pending returns the byte waiting to be delivered, if any.
func (e *Endpoint) pending() (uint8, SpeedMode, bool) {
	if e.closed || e.state != AwaitingPeerByte {
		return 0, Normal, false
	}
	return e.out, e.outSpeed, true
}

// deliver the reply to a pending send.
func (e *Endpoint) deliver(reply uint8, speed SpeedMode) {
	e.in = reply
	e.inSpeed = speed
	e.inValid = true
	e.state = Delivered
}

// receive a byte from the master. the byte is made available to the instance
// through Check()
func (e *Endpoint) receive(data uint8, speed SpeedMode) {
	e.in = data
	e.inSpeed = speed
	e.inValid = true
}

// close the endpoint. any pending transfer is abandoned.
func (e *Endpoint) close() {
	e.closed = true
	e.state = Idle
}
