package printer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// serveOnce 接受一个连接，读出请求并回写固定应答
func serveOnce(t *testing.T, reply []byte) (addr string, got chan []byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	got = make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 256)
		n, _ := conn.Read(buf)
		got <- buf[:n]
		_, _ = conn.Write(reply)
	}()
	return ln.Addr().String(), got
}

func TestTCPTransportSendReceive(t *testing.T) {
	reply := []byte{0x06, 0x30, 0x00, 0x00}
	addr, got := serveOnce(t, reply)

	tr := NewTCPTransport(addr, 0, 0, 0)
	tr.SetLogger(zap.NewNop())

	frame := []byte{0x30, 0x00, 0x01, 0x00, 0x31}
	resp, err := tr.SendReceive(context.Background(), frame)
	require.NoError(t, err)
	assert.Equal(t, reply, resp)
	assert.Equal(t, frame, <-got)
}

func TestTCPTransportConnRefused(t *testing.T) {
	// 先占端口再关闭，保证无人监听
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	tr := NewTCPTransport(addr, 0, 0, 0)
	tr.SetLogger(zap.NewNop())

	_, err = tr.SendReceive(context.Background(), []byte{0x05})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestTCPTransportReadTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	// 服务端只收不发
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 16)
		_, _ = conn.Read(buf)
		time.Sleep(2 * time.Second)
	}()

	tr := NewTCPTransport(ln.Addr().String(), 0, 0, 0)
	tr.ReadTimeout = 100 * time.Millisecond
	tr.SetLogger(zap.NewNop())

	_, err = tr.SendReceive(context.Background(), []byte{0x05})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestTCPTransportContextCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTCPTransport(ln.Addr().String(), 0, 0, 0)
	tr.SetLogger(zap.NewNop())

	_, err = tr.SendReceive(ctx, []byte{0x05})
	assert.Error(t, err)
}
