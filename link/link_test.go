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

package link_test

import (
	"strings"
	"testing"
	"time"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/link"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/notifications"
	"github.com/lockstepgb/lockstep/test"
)

// port is a minimal implementation of the link.Port interface. the value
// shifted out in exchange for a received byte is the previously received byte
type port struct {
	sb       uint8
	received []uint8
	busy     bool
}

func (p *port) ReceiveFromLink(data uint8) uint8 {
	p.received = append(p.received, data)
	r := p.sb
	p.sb = data
	return r
}

func (p *port) IsReady() bool {
	return !p.busy
}

func TestLocalPairExchange(t *testing.T) {
	a := &port{}
	b := &port{sb: 0x55}

	c, err := link.NewLocalPair(logger.Allow, a, b, 0)
	test.DemandSuccess(t, err)

	m := c.Endpoint(0)
	s := c.Endpoint(1)
	test.ExpectEquality(t, m.Role(), link.Master)
	test.ExpectEquality(t, s.Role(), link.Slave)

	test.DemandSuccess(t, m.Send(0x81, link.Normal))
	test.ExpectEquality(t, m.State(), link.AwaitingPeerByte)

	// nothing is visible until the cable has been serviced
	_, _, ok := m.Check()
	test.ExpectFailure(t, ok)
	_, _, ok = s.Check()
	test.ExpectFailure(t, ok)

	test.DemandSuccess(t, c.Service())
	test.ExpectEquality(t, m.State(), link.Delivered)

	d, speed, ok := m.Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, d, uint8(0x55))
	test.ExpectEquality(t, speed, link.Normal)
	test.ExpectEquality(t, m.State(), link.Idle)

	// the reply is only returned once
	_, _, ok = m.Check()
	test.ExpectFailure(t, ok)

	d, _, ok = s.Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, d, uint8(0x81))
	test.ExpectEquality(t, len(b.received), 1)

	st := c.Stats()
	test.ExpectEquality(t, st.Sent, 1)
	test.ExpectEquality(t, st.Delivered, 1)
}

func TestMasterSecondPort(t *testing.T) {
	a := &port{sb: 0x01}
	b := &port{sb: 0x02}

	c, err := link.NewLocalPair(logger.Allow, a, b, 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Endpoint(1).Role(), link.Master)

	test.DemandSuccess(t, c.Endpoint(1).Send(0x10, link.Normal))
	test.DemandSuccess(t, c.Service())
	d, _, ok := c.Endpoint(1).Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, d, uint8(0x01))

	_, err = link.NewLocalPair(logger.Allow, a, b, 2)
	test.ExpectFailure(t, err)
	_, err = link.NewLocalPair(logger.Allow, a, nil, 0)
	test.ExpectFailure(t, err)
}

// a byte sent during tick t is never visible to the master during tick t
func TestLatency(t *testing.T) {
	a := &port{}
	b := &port{}

	c, err := link.NewLocalPair(logger.Allow, a, b, 0)
	test.DemandSuccess(t, err)
	m := c.Endpoint(0)

	sentTick := -1
	for tick := range 100 {
		// the master's run for this tick
		if _, _, ok := m.Check(); ok {
			test.ExpectSuccess(t, tick > sentTick, "tick", tick)
			sentTick = -1
		}
		if sentTick == -1 && tick%3 == 0 {
			test.DemandSuccess(t, m.Send(uint8(tick), link.Normal))
			sentTick = tick
			_, _, ok := m.Check()
			test.ExpectFailure(t, ok, "tick", tick)
		}

		// the cable is serviced after all instances have run
		test.DemandSuccess(t, c.Service())
	}
}

func TestSlaveInitiated(t *testing.T) {
	c, err := link.NewLocalPair(logger.Allow, &port{}, &port{}, 0)
	test.DemandSuccess(t, err)

	err = c.Endpoint(1).Send(0x01, link.Normal)
	test.ExpectSuccess(t, curated.Is(err, link.SlaveInitiated))
	test.ExpectEquality(t, c.Endpoint(1).State(), link.Idle)
}

func TestNotReady(t *testing.T) {
	b := &port{sb: 0x77, busy: true}
	c, err := link.NewLocalPair(logger.Allow, &port{}, b, 0)
	test.DemandSuccess(t, err)
	m := c.Endpoint(0)

	test.DemandSuccess(t, m.Send(0x81, link.Normal))

	// polling a slave that isn't ready does nothing
	for range 3 {
		test.DemandSuccess(t, c.Service())
		test.ExpectEquality(t, m.State(), link.AwaitingPeerByte)
		_, _, ok := m.Check()
		test.ExpectFailure(t, ok)
	}
	test.ExpectEquality(t, len(b.received), 0)
	test.ExpectEquality(t, c.Stats().NotReady, 3)

	b.busy = false
	test.DemandSuccess(t, c.Service())
	d, _, ok := m.Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, d, uint8(0x77))
}

func TestSpeedMode(t *testing.T) {
	c, err := link.NewLocalPair(logger.Allow, &port{}, &port{}, 0)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, c.Endpoint(0).Send(0x81, link.Double))
	test.DemandSuccess(t, c.Service())

	_, speed, ok := c.Endpoint(0).Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, speed, link.Double)
	_, speed, ok = c.Endpoint(1).Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, speed, link.Double)
}

func TestDetach(t *testing.T) {
	b := &port{}
	c, err := link.NewLocalPair(logger.Allow, &port{}, b, 0)
	test.DemandSuccess(t, err)
	m := c.Endpoint(0)

	// a transfer is pending when the slave is detached
	test.DemandSuccess(t, m.Send(0x81, link.Normal))
	c.Detach(1)
	test.DemandSuccess(t, c.Service())
	_, _, ok := m.Check()
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, len(b.received), 0)

	// sends fail immediately
	done := make(chan error)
	go func() {
		done <- m.Send(0x82, link.Normal)
	}()
	select {
	case err := <-done:
		test.ExpectSuccess(t, curated.Is(err, link.LinkClosed))
	case <-time.After(time.Second):
		t.Fatalf("send on detached cable blocked")
	}
	test.ExpectSuccess(t, m.Closed())
}

func TestClose(t *testing.T) {
	c, err := link.NewLocalPair(logger.Allow, &port{}, &port{}, 0)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, c.Close())
	err = c.Endpoint(0).Send(0x01, link.Normal)
	test.ExpectSuccess(t, curated.Is(err, link.LinkClosed))
}

func TestUnconnected(t *testing.T) {
	u := link.NewUnconnected(&port{})
	e := u.Endpoint()

	test.DemandSuccess(t, e.Send(0x81, link.Normal))
	_, _, ok := e.Check()
	test.ExpectFailure(t, ok)

	test.DemandSuccess(t, u.Service())
	d, _, ok := e.Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, d, uint8(0xff))

	test.DemandSuccess(t, u.Close())
	test.ExpectSuccess(t, curated.Is(e.Send(0x81, link.Normal), link.LinkClosed))
}

func TestGroup(t *testing.T) {
	a := link.NewUnconnected(&port{})
	b := link.NewUnconnected(&port{})
	g := link.Group{a, b}

	test.DemandSuccess(t, a.Endpoint().Send(0x01, link.Normal))
	test.DemandSuccess(t, b.Endpoint().Send(0x02, link.Normal))
	test.DemandSuccess(t, g.Service())
	test.ExpectEquality(t, g.Stats().Delivered, 2)
	test.ExpectEquality(t, g.Mode(), link.None)
	test.DemandSuccess(t, g.Close())
	test.ExpectSuccess(t, a.Endpoint().Closed())
	test.ExpectSuccess(t, b.Endpoint().Closed())
}

func TestParseMode(t *testing.T) {
	for i, s := range link.ModeList {
		m, err := link.ParseMode(s)
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, int(m), i)
		test.ExpectEquality(t, m.String(), s)
	}

	m, err := link.ParseMode("Network-Server")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, m, link.NetworkServer)
	test.ExpectSuccess(t, m.IsNetwork())

	_, err = link.ParseMode("infrared")
	test.ExpectSuccess(t, curated.Is(err, link.UnknownMode))
}

func TestTrafficLog(t *testing.T) {
	logger.Clear()
	defer logger.Clear()

	c, err := link.NewLocalPair(logger.Allow, &port{}, &port{sb: 0x2a}, 0)
	test.DemandSuccess(t, err)
	c.SetTrafficLog(true)

	test.DemandSuccess(t, c.Endpoint(0).Send(0x81, link.Normal))
	test.DemandSuccess(t, c.Service())

	w := &strings.Builder{}
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "link: 81\t2a\n")
}

type notices struct {
	received []notifications.Notice
}

func (n *notices) Notify(notice notifications.Notice) error {
	n.received = append(n.received, notice)
	return nil
}

func TestNetwork(t *testing.T) {
	serverPort := &port{}
	clientPort := &port{sb: 0x99}
	serverNotices := &notices{}

	server, err := link.NewNetwork(logger.Allow, serverNotices, link.NetworkConfig{
		Mode:    link.NetworkServer,
		Address: "127.0.0.1",
		Port:    0,
	}, serverPort)
	test.DemandSuccess(t, err)
	defer server.Close()

	client, err := link.NewNetwork(logger.Allow, nil, link.NetworkConfig{
		Mode:    link.NetworkClient,
		Address: "127.0.0.1",
		Port:    server.Port(),
	}, clientPort)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, server.Endpoint().Role(), link.Master)
	test.ExpectEquality(t, client.Endpoint().Role(), link.Slave)

	test.DemandSuccess(t, server.Endpoint().Send(0x42, link.Double))

	var reply uint8
	var speed link.SpeedMode
	var ok bool

	deadline := time.Now().Add(5 * time.Second)
	for !ok && time.Now().Before(deadline) {
		test.DemandSuccess(t, server.Service())
		test.DemandSuccess(t, client.Service())
		reply, speed, ok = server.Endpoint().Check()
		time.Sleep(time.Millisecond)
	}

	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, reply, uint8(0x99))
	test.ExpectEquality(t, speed, link.Double)
	test.ExpectEquality(t, len(clientPort.received), 1)
	test.ExpectEquality(t, clientPort.received[0], uint8(0x42))

	d, _, ok := client.Endpoint().Check()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, d, uint8(0x42))

	// closing the client is seen by the server as a disconnection. after
	// which sends on the server endpoint fail
	test.DemandSuccess(t, client.Close())

	deadline = time.Now().Add(5 * time.Second)
	for !server.Endpoint().Closed() && time.Now().Before(deadline) {
		test.DemandSuccess(t, server.Service())
		time.Sleep(time.Millisecond)
	}
	test.ExpectSuccess(t, server.Endpoint().Closed())
	test.ExpectSuccess(t, curated.Is(server.Endpoint().Send(0x01, link.Normal), link.LinkClosed))

	test.ExpectEquality(t, serverNotices.received[0], notifications.NotifyLinkConnected)
	test.ExpectEquality(t, serverNotices.received[len(serverNotices.received)-1], notifications.NotifyLinkDisconnected)
}

func TestNetworkUnavailable(t *testing.T) {
	_, err := link.NewNetwork(logger.Allow, nil, link.NetworkConfig{Mode: link.LocalPair}, &port{})
	test.ExpectSuccess(t, curated.Is(err, link.TransportUnavailable))

	// a client with no server. transfers are skipped rather than blocking
	client, err := link.NewNetwork(logger.Allow, nil, link.NetworkConfig{
		Mode:    link.NetworkClient,
		Address: "127.0.0.1",
		Port:    1,
	}, &port{})
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, client.Service())
	test.ExpectFailure(t, client.Connected())
	test.DemandSuccess(t, client.Close())
}
