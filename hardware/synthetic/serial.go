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

package synthetic

import (
	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/logger"
)

// port is the instance's implementation of link.Port.
type port struct {
	ins *Instance
}

// ReceiveFromLink implements the link.Port interface.
func (p port) ReceiveFromLink(data uint8) uint8 {
	reply := p.ins.sb
	p.ins.sb = data
	p.ins.transfers++
	return reply
}

// IsReady implements the link.Port interface.
func (p port) IsReady() bool {
	return p.ins.rom != nil
}

// SerialPort implements the hardware.Instance interface.
func (ins *Instance) SerialPort() link.Port {
	return port{ins: ins}
}

// AttachSerial implements the hardware.Instance interface.
func (ins *Instance) AttachSerial(serial link.SerialIO) {
	ins.serial = serial
	ins.awaiting = false
	ins.serialTimer = 0
}

func (ins *Instance) speed() link.SpeedMode {
	if ins.cgb {
		return link.Double
	}
	return link.Normal
}

// checkSerial collects any byte that has arrived since the previous call to
// RunFor(). for a slave the byte has already been received by the port.
func (ins *Instance) checkSerial() {
	if ins.serial == nil {
		return
	}

	data, _, ok := ins.serial.Check()
	if !ok {
		return
	}

	if ins.serial.Role() == link.Master {
		ins.sb = data
		ins.awaiting = false
		ins.transfers++
	}
}

// stepSerial is called once per tick. a master instance starts a new transfer
// once the interval has elapsed.
func (ins *Instance) stepSerial() {
	if ins.serial == nil || ins.awaiting || ins.serial.Role() != link.Master {
		return
	}

	interval := serialInterval
	if ins.speed() == link.Double {
		interval /= 2
	}

	ins.serialTimer++
	if ins.serialTimer < interval {
		return
	}
	ins.serialTimer = 0

	out := (ins.sb ^ ins.seed) + uint8(ins.transfers)

	if err := ins.serial.Send(out, ins.speed()); err != nil {
		// the cable has been pulled
		if curated.Is(err, link.LinkClosed) {
			ins.serial = nil
		}
		logger.Logf(ins.env, "synthetic", "instance %d: %v", ins.id, err)
		return
	}

	ins.sb = out
	ins.awaiting = true
}
