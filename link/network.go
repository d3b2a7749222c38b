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
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lockstepgb/lockstep/curated"
	"github.com/lockstepgb/lockstep/logger"
	"github.com/lockstepgb/lockstep/notifications"
)

// DefaultPort is the TCP port used by network links if no other port is
// specified.
const DefaultPort = 12345

// flags in the first byte of a network frame.
const (
	flagReply  = 0x01
	flagDouble = 0x02
)

// the size of the channels between the scheduler and the network goroutines.
// the master never has more than one request in flight so a small buffer is
// sufficient
const frameQueueLen = 4

// the delay between attempts by a client to connect to the server.
const redialDelay = 250 * time.Millisecond

// frame is the unit of data sent over the network. on the wire it is two
// bytes: the flags byte followed by the data byte.
type frame struct {
	flags uint8
	data  uint8
}

func (f frame) speed() SpeedMode {
	if f.flags&flagDouble == flagDouble {
		return Double
	}
	return Normal
}

func newFrame(data uint8, speed SpeedMode, reply bool) frame {
	f := frame{data: data}
	if reply {
		f.flags |= flagReply
	}
	if speed == Double {
		f.flags |= flagDouble
	}
	return f
}

// NetworkConfig specifies how a Network transport connects to its peer.
type NetworkConfig struct {
	// either NetworkServer or NetworkClient
	Mode Mode

	// for the server this is the address to listen on. an empty string
	// listens on all interfaces. for the client it is the address of the
	// server
	Address string
	Port    int

	// log every exchanged pair of bytes
	LogTraffic bool
}

func (cfg NetworkConfig) hostPort() string {
	return net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
}

// Network connects a local instance with an instance in another process. The
// server side of the connection is the Master and the client side is the
// Slave.
//
// All network activity happens in goroutines. The scheduler's calls to
// Service() only ever poll channels and never block. While there is no
// connection, services with a pending transfer are skipped.
type Network struct {
	perm   logger.Permission
	notify notifications.Notify
	cfg    NetworkConfig

	local *Endpoint

	// only valid for NetworkServer
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	// shared between scheduler and network goroutines
	outgoing  chan frame
	incoming  chan frame
	connected atomic.Bool
	dropped   atomic.Bool

	// the connection notice is sent from the scheduler goroutine
	connectNoticeSent bool

	// master has a request in flight
	awaiting bool

	// the slave has received a request but the local instance wasn't ready
	held      frame
	holdValid bool

	closeOnce sync.Once
	stats     Stats
}

// NewNetwork creates a network transport for the local port. The server
// listens immediately, so an unusable address is reported as an error by
// this function. Accepting a connection, and dialling for the client, happens
// in the background.
func NewNetwork(perm logger.Permission, notify notifications.Notify, cfg NetworkConfig, port Port) (*Network, error) {
	if !cfg.Mode.IsNetwork() {
		return nil, curated.Errorf(TransportUnavailable, fmt.Sprintf("%s is not a network mode", cfg.Mode))
	}
	if port == nil {
		return nil, curated.Errorf(TransportUnavailable, "no local port")
	}
	if notify == nil {
		notify = notifications.Discard
	}

	n := &Network{
		perm:     perm,
		notify:   notify,
		cfg:      cfg,
		outgoing: make(chan frame, frameQueueLen),
		incoming: make(chan frame, frameQueueLen),
	}

	if cfg.Mode == NetworkServer {
		n.local = newEndpoint(Master, port)
		ln, err := net.Listen("tcp", cfg.hostPort())
		if err != nil {
			return nil, curated.Errorf(TransportUnavailable, err)
		}
		n.listener = ln
		logger.Logf(n.perm, "link", "listening on %s", ln.Addr())
	} else {
		n.local = newEndpoint(Slave, port)
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())
	n.group, n.ctx = errgroup.WithContext(n.ctx)
	n.group.Go(n.run)

	return n, nil
}

// Endpoint returns the local endpoint.
func (n *Network) Endpoint() *Endpoint {
	return n.local
}

// Port returns the port number the server is listening on. Useful when the
// configured port was zero. For the client the configured port is returned.
func (n *Network) Port() int {
	if n.listener != nil {
		if a, ok := n.listener.Addr().(*net.TCPAddr); ok {
			return a.Port
		}
	}
	return n.cfg.Port
}

// Connected returns true if a peer is connected.
func (n *Network) Connected() bool {
	return n.connected.Load()
}

// Mode implements the Transport interface.
func (n *Network) Mode() Mode {
	return n.cfg.Mode
}

// Config returns the configuration used to create the transport.
func (n *Network) Config() NetworkConfig {
	return n.cfg
}

// Stats implements the Transport interface.
func (n *Network) Stats() Stats {
	return n.stats
}

// run is the main network goroutine. it establishes the connection and then
// runs the reader and writer until the connection fails or the transport is
// closed.
func (n *Network) run() error {
	conn, err := n.connect()
	if err != nil {
		return err
	}

	logger.Logf(n.perm, "link", "connected to %s", conn.RemoteAddr())
	n.connected.Store(true)

	g, ctx := errgroup.WithContext(n.ctx)
	g.Go(func() error {
		return n.reader(ctx, conn)
	})
	g.Go(func() error {
		return n.writer(ctx, conn)
	})
	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})

	err = g.Wait()
	n.connected.Store(false)
	n.dropped.Store(true)

	if n.ctx.Err() != nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (n *Network) connect() (net.Conn, error) {
	if n.listener != nil {
		go func() {
			<-n.ctx.Done()
			n.listener.Close()
		}()
		conn, err := n.listener.Accept()
		if err != nil {
			if n.ctx.Err() != nil {
				return nil, n.ctx.Err()
			}
			return nil, curated.Errorf(TransportUnavailable, err)
		}
		return conn, nil
	}

	var d net.Dialer
	for {
		conn, err := d.DialContext(n.ctx, "tcp", n.cfg.hostPort())
		if err == nil {
			return conn, nil
		}

		// the server may not have started yet so keep trying until the
		// transport is closed
		select {
		case <-n.ctx.Done():
			return nil, n.ctx.Err()
		case <-time.After(redialDelay):
		}
	}
}

func (n *Network) reader(ctx context.Context, conn net.Conn) error {
	var b [2]byte
	for {
		if _, err := io.ReadFull(conn, b[:]); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return io.EOF
			}
			return curated.Errorf(TransportUnavailable, err)
		}
		select {
		case n.incoming <- frame{flags: b[0], data: b[1]}:
		case <-ctx.Done():
			return nil
		}
	}
}

func (n *Network) writer(ctx context.Context, conn net.Conn) error {
	for {
		select {
		case f := <-n.outgoing:
			if _, err := conn.Write([]byte{f.flags, f.data}); err != nil {
				return curated.Errorf(TransportUnavailable, err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Service implements the Transport interface.
func (n *Network) Service() error {
	if n.local.closed {
		return nil
	}

	if n.dropped.Load() {
		logger.Log(n.perm, "link", "peer disconnected")
		n.local.close()
		return n.notify.Notify(notifications.NotifyLinkDisconnected)
	}

	if n.connected.Load() && !n.connectNoticeSent {
		n.connectNoticeSent = true
		if err := n.notify.Notify(notifications.NotifyLinkConnected); err != nil {
			return err
		}
	}

	if n.local.role == Master {
		n.serviceMaster()
	} else {
		n.serviceSlave()
	}

	return nil
}

func (n *Network) serviceMaster() {
	if !n.awaiting {
		if data, speed, ok := n.local.pending(); ok {
			if !n.connected.Load() {
				n.stats.Unavailable++
				return
			}
			select {
			case n.outgoing <- newFrame(data, speed, false):
				n.awaiting = true
				n.stats.Sent++
			default:
				n.stats.Unavailable++
				return
			}
		}
	}

	select {
	case f := <-n.incoming:
		if f.flags&flagReply != flagReply || !n.awaiting {
			logger.Logf(n.perm, "link", "unexpected frame from peer (%02x %02x)", f.flags, f.data)
			return
		}
		sent := n.local.out
		n.local.deliver(f.data, f.speed())
		n.awaiting = false
		n.stats.Delivered++
		if n.cfg.LogTraffic {
			logger.Logf(n.perm, "link", "%02x\t%02x", sent, f.data)
		}
	default:
	}
}

func (n *Network) serviceSlave() {
	if !n.holdValid {
		select {
		case f := <-n.incoming:
			if f.flags&flagReply == flagReply {
				logger.Logf(n.perm, "link", "unexpected frame from peer (%02x %02x)", f.flags, f.data)
				return
			}
			n.held = f
			n.holdValid = true
		default:
			return
		}
	}

	if !n.local.port.IsReady() {
		n.stats.NotReady++
		return
	}

	reply := n.local.port.ReceiveFromLink(n.held.data)
	n.local.receive(n.held.data, n.held.speed())

	select {
	case n.outgoing <- newFrame(reply, n.held.speed(), true):
		n.holdValid = false
		n.stats.Delivered++
		if n.cfg.LogTraffic {
			logger.Logf(n.perm, "link", "%02x\t%02x", n.held.data, reply)
		}
	default:
		// the request has been delivered to the instance but the reply could
		// not be queued. the peer will be left waiting
		n.holdValid = false
		n.stats.Unavailable++
	}
}

// Close implements the Transport interface. Close waits for the network
// goroutines to end.
func (n *Network) Close() error {
	var err error
	n.closeOnce.Do(func() {
		n.local.close()
		n.cancel()
		err = n.group.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	})
	return err
}
