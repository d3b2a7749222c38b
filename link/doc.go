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

// Package link implements the serial link cable between instances.
//
// Each side of a cable is an Endpoint. The instance attached to an endpoint
// sees it through the SerialIO interface and the cable sees the instance
// through the Port interface.
//
// Endpoints have a clock role. Only the Master endpoint can start a transfer
// by calling Send(). The byte is held by the endpoint (the AwaitingPeerByte
// state) until the cable is serviced. Servicing delivers the byte to the Slave
// instance's ReceiveFromLink() function and the value returned by that
// function is placed in the Master endpoint's inbox (the Delivered state). The
// Master instance sees the reply the next time it calls Check(). Because
// transports are serviced by the scheduler after every instance has been
// stepped, the reply is never visible to the Master during the same run call
// that made the request.
//
// If the Slave instance is not ready then servicing does nothing and the
// transfer remains pending until a later service.
//
// Three transports are available. A Cable connects two local instances. A
// Network connects a local instance with a remote peer over TCP. An
// Unconnected transport behaves as though no cable is plugged in: transfers
// complete with the line pulled high (0xff).
//
// Once a transport has been closed, or one of the endpoints of a cable has
// been detached, calls to Send() return the LinkClosed error immediately.
package link
