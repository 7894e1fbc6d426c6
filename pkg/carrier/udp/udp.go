// Package udp is the default carrier.Carrier adapter: each send writes
// one UDP datagram, each receive dispatches one datagram to the
// subscribed listener. This is the satellite link surface the
// specification places outside the core (§1) — sockets, not framing.
package udp

import (
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/satcom-sim/encap/pkg/carrier"
)

// Bus is a point-to-point UDP carrier: one local listen address, one
// remote send address.
type Bus struct {
	localAddr  string
	remoteAddr string
	log        *slog.Logger

	mu       sync.Mutex
	conn     *net.UDPConn
	stop     chan struct{}
	wg       sync.WaitGroup
	listener carrier.FrameListener
}

// New builds a UDP carrier that listens on localAddr and sends to
// remoteAddr.
func New(localAddr, remoteAddr string, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{localAddr: localAddr, remoteAddr: remoteAddr, log: logger}
}

func (b *Bus) Connect(...any) error {
	laddr, err := net.ResolveUDPAddr("udp", b.localAddr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.conn = conn
	b.stop = make(chan struct{})
	b.mu.Unlock()
	return nil
}

func (b *Bus) Disconnect() error {
	b.mu.Lock()
	conn := b.conn
	stop := b.stop
	b.conn = nil
	b.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	if conn == nil {
		return nil
	}
	err := conn.Close()
	b.wg.Wait()
	return err
}

func (b *Bus) Send(frame []byte) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return carrier.ErrNotConnected
	}
	raddr, err := net.ResolveUDPAddr("udp", b.remoteAddr)
	if err != nil {
		return err
	}
	_, err = conn.WriteToUDP(frame, raddr)
	return err
}

func (b *Bus) Subscribe(listener carrier.FrameListener) error {
	b.mu.Lock()
	conn := b.conn
	b.listener = listener
	b.mu.Unlock()
	if conn == nil {
		return carrier.ErrNotConnected
	}
	b.wg.Add(1)
	go b.receiveLoop(conn)
	return nil
}

func (b *Bus) receiveLoop(conn *net.UDPConn) {
	defer b.wg.Done()
	buf := make([]byte, 65535)
	for {
		select {
		case <-b.stop:
			return
		default:
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			b.log.Error("udp carrier read failed", "err", err)
			continue
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		b.mu.Lock()
		listener := b.listener
		b.mu.Unlock()
		if listener != nil {
			listener.Handle(frame)
		}
	}
}
