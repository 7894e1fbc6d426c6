// Package tuntap adapts a Linux TUN device into a carrier.Carrier,
// feeding bursts into the GSE encoder and draining reassembled bursts
// from the decoder (§1: the TUN/TAP device itself is explicitly "out
// of scope" for the core; this is the thin outside adapter).
package tuntap

import (
	"log/slog"
	"os"
	"sync"

	"github.com/vishvananda/netlink"

	"github.com/satcom-sim/encap/pkg/carrier"
)

// Device owns one TUN interface and its backing file descriptor.
type Device struct {
	name string
	log  *slog.Logger

	mu       sync.Mutex
	tun      *netlink.Tuntap
	fd       *os.File
	stop     chan struct{}
	wg       sync.WaitGroup
	listener carrier.FrameListener
}

// New names the TUN interface to create on Connect.
func New(name string, logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{name: name, log: logger}
}

func (d *Device) Connect(...any) error {
	tun := &netlink.Tuntap{
		LinkAttrs: netlink.LinkAttrs{Name: d.name},
		Mode:      netlink.TUNTAP_MODE_TUN,
		Flags:     netlink.TUNTAP_DEFAULTS | netlink.TUNTAP_NO_PI,
		Queues:    1,
	}
	if err := netlink.LinkAdd(tun); err != nil {
		return err
	}
	if err := netlink.LinkSetUp(tun); err != nil {
		return err
	}

	d.mu.Lock()
	d.tun = tun
	d.fd = tun.Fds[0]
	d.stop = make(chan struct{})
	d.mu.Unlock()
	return nil
}

func (d *Device) Disconnect() error {
	d.mu.Lock()
	tun := d.tun
	fd := d.fd
	stop := d.stop
	d.tun, d.fd = nil, nil
	d.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if fd != nil {
		_ = fd.Close()
	}
	d.wg.Wait()
	if tun != nil {
		return netlink.LinkDel(tun)
	}
	return nil
}

func (d *Device) Send(frame []byte) error {
	d.mu.Lock()
	fd := d.fd
	d.mu.Unlock()
	if fd == nil {
		return carrier.ErrNotConnected
	}
	_, err := fd.Write(frame)
	return err
}

func (d *Device) Subscribe(listener carrier.FrameListener) error {
	d.mu.Lock()
	fd := d.fd
	d.listener = listener
	d.mu.Unlock()
	if fd == nil {
		return carrier.ErrNotConnected
	}
	d.wg.Add(1)
	go d.readLoop(fd)
	return nil
}

func (d *Device) readLoop(fd *os.File) {
	defer d.wg.Done()
	buf := make([]byte, 65535)
	for {
		select {
		case <-d.stop:
			return
		default:
		}
		n, err := fd.Read(buf)
		if err != nil {
			d.log.Error("tuntap read failed, stopping", "err", err)
			return
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])

		d.mu.Lock()
		listener := d.listener
		d.mu.Unlock()
		if listener != nil {
			listener.Handle(frame)
		}
	}
}
