package udp

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureListener struct {
	mu     sync.Mutex
	frames [][]byte
	got    chan struct{}
}

func newCaptureListener() *captureListener {
	return &captureListener{got: make(chan struct{}, 8)}
}

func (c *captureListener) Handle(frame []byte) {
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
	c.got <- struct{}{}
}

func TestUDPCarrierSendReceiveRoundTrip(t *testing.T) {
	a := New("127.0.0.1:0", "", nil)
	require.NoError(t, a.Connect())
	defer a.Disconnect()

	b := New("127.0.0.1:0", a.conn.LocalAddr().String(), nil)
	require.NoError(t, b.Connect())
	defer b.Disconnect()

	a.remoteAddr = b.conn.LocalAddr().String()

	listener := newCaptureListener()
	require.NoError(t, b.Subscribe(listener))

	require.NoError(t, a.Send([]byte("hello")))

	select {
	case <-listener.got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}

	listener.mu.Lock()
	defer listener.mu.Unlock()
	require.Len(t, listener.frames, 1)
	require.Equal(t, "hello", string(listener.frames[0]))
}

func TestSendBeforeConnectFails(t *testing.T) {
	b := New("127.0.0.1:0", "127.0.0.1:0", nil)
	err := b.Send([]byte("x"))
	require.Error(t, err)
}
