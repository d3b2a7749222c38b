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
	"strings"

	"github.com/lockstepgb/lockstep/curated"
)

// Sentinal error patterns.
const (
	LinkClosed           = "link: closed"
	SlaveInitiated       = "link: slave endpoint cannot initiate a transfer"
	TransportUnavailable = "link: transport unavailable: %v"
	UnknownMode          = "link: unknown mode (%s)"
)

// ClockRole of an endpoint. The Master endpoint provides the clock and is the
// only endpoint that can initiate a transfer.
type ClockRole int

// List of valid ClockRole values.
const (
	Master ClockRole = iota
	Slave
)

func (r ClockRole) String() string {
	switch r {
	case Master:
		return "master"
	case Slave:
		return "slave"
	}
	return fmt.Sprintf("unknown role (%d)", int(r))
}

// SpeedMode of a transfer. Double speed is only available to CGB hardware.
// The speed is carried with the byte but does not change the order of
// delivery.
type SpeedMode int

// List of valid SpeedMode values.
const (
	Normal SpeedMode = iota
	Double
)

func (s SpeedMode) String() string {
	if s == Double {
		return "double"
	}
	return "normal"
}

// State of an endpoint.
type State int

// List of valid State values.
const (
	Idle State = iota
	AwaitingPeerByte
	Delivered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingPeerByte:
		return "awaiting peer byte"
	case Delivered:
		return "delivered"
	}
	return fmt.Sprintf("unknown state (%d)", int(s))
}

// Mode of link between instances.
type Mode int

// List of valid Mode values.
const (
	None Mode = iota
	LocalPair
	NetworkServer
	NetworkClient
)

// ModeList is the list of mode names accepted by ParseMode().
var ModeList = []string{"none", "local", "server", "client"}

func (m Mode) String() string {
	if m >= None && int(m) < len(ModeList) {
		return ModeList[m]
	}
	return fmt.Sprintf("unknown mode (%d)", int(m))
}

// IsNetwork returns true if the mode requires a network connection.
func (m Mode) IsNetwork() bool {
	return m == NetworkServer || m == NetworkClient
}

// ParseMode converts a string to a Mode. Matching is case insensitive. The
// long forms "local-pair", "network-server" and "network-client" are also
// accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "local", "local-pair":
		return LocalPair, nil
	case "server", "network-server":
		return NetworkServer, nil
	case "client", "network-client":
		return NetworkClient, nil
	}
	return None, curated.Errorf(UnknownMode, s)
}

// Port is the instance side of a link. It is how the cable delivers a byte to
// the instance acting as the Slave.
type Port interface {
	// ReceiveFromLink is called with the byte sent by the Master. The value
	// returned is the byte shifted out by the Slave in exchange.
	ReceiveFromLink(data uint8) uint8

	// IsReady returns false if the instance is not able to accept a byte. A
	// transfer to an instance that is not ready is retried on the next
	// service.
	IsReady() bool
}

// SerialIO is the cable side of a link as seen by an instance.
type SerialIO interface {
	// Role of the endpoint the instance is attached to.
	Role() ClockRole

	// Send a byte to the peer. Returns an error if the endpoint is a Slave or
	// if the link has been closed. Never blocks.
	Send(data uint8, speed SpeedMode) error

	// Check returns a byte that has arrived at the endpoint. For a Master
	// this is the reply to an earlier Send(). For a Slave it is the byte sent
	// by the Master. The byte is only returned once.
	Check() (data uint8, speed SpeedMode, ok bool)
}

// Transport is implemented by all link types.
type Transport interface {
	Mode() Mode

	// Service pending transfers. Called by the scheduler once all instances
	// have been stepped. Never blocks.
	Service() error

	// Close the transport. Subsequent sends on any of its endpoints will fail
	// with the LinkClosed error.
	Close() error

	Stats() Stats
}

// Stats of a transport.
type Stats struct {
	// bytes sent by the master endpoint
	Sent int

	// replies delivered to the master endpoint
	Delivered int

	// number of services skipped because the slave was not ready
	NotReady int

	// number of services skipped because a network connection was not
	// available
	Unavailable int
}

func (s Stats) String() string {
	return fmt.Sprintf("sent: %d, delivered: %d, not ready: %d, unavailable: %d",
		s.Sent, s.Delivered, s.NotReady, s.Unavailable)
}
