package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/metrics"
)

var (
	// ErrTransport 传输边界失败（连接、发送、接收任一环节）
	// 会话层不做重试，直接上抛为整体失败
	ErrTransport = errors.New("printer transport error")
)

// maxResponseSize 单次应答读取上限
const maxResponseSize = 1024

// Transport 同步的发一帧、收一帧传输边界
// 实现负责连接生命周期；调用方保证同一实现上不并发交叠调用
type Transport interface {
	SendReceive(ctx context.Context, frame []byte) ([]byte, error)
}

// TCPTransport 面向喷码机的 TCP 传输
// 与设备的原生对话模型一致：每次交互独立拨号、写一帧、读一帧、关闭。
// 设备固件不维护长连接会话，短连接反而最稳。
type TCPTransport struct {
	Addr         string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	logger *zap.Logger
	appm   *metrics.AppMetrics
}

// NewTCPTransport 创建 TCP 传输
func NewTCPTransport(addr string, dialTimeout, readTimeout, writeTimeout time.Duration) *TCPTransport {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	if readTimeout <= 0 {
		readTimeout = 3 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 3 * time.Second
	}
	return &TCPTransport{
		Addr:         addr,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
}

// SetLogger 安装日志器
func (t *TCPTransport) SetLogger(l *zap.Logger) { t.logger = l }

// SetMetrics 安装业务指标
func (t *TCPTransport) SetMetrics(m *metrics.AppMetrics) { t.appm = m }

// SendReceive 拨号、写入完整帧、读取单个应答缓冲后关闭连接
// 任何环节失败均包装为 ErrTransport；超时后收不到字节视同无应答
func (t *TCPTransport) SendReceive(ctx context.Context, frame []byte) ([]byte, error) {
	d := net.Dialer{Timeout: t.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, t.Addr, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(t.WriteTimeout))
	if _, err := conn.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	if t.appm != nil {
		t.appm.TransportBytesSent.Add(float64(len(frame)))
	}

	_ = conn.SetReadDeadline(time.Now().Add(t.ReadTimeout))
	buf := make([]byte, maxResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrTransport, err)
	}
	if t.appm != nil {
		t.appm.TransportBytesRecv.Add(float64(n))
	}
	if t.logger != nil {
		t.logger.Debug("printer exchange",
			zap.String("addr", t.Addr),
			zap.Int("sent", len(frame)),
			zap.Int("received", n),
		)
	}
	return buf[:n], nil
}
