package s8

import "errors"

// 应答字节
const (
	// AckByte 设备确认应答
	AckByte byte = 0x06
	// NakByte 设备否认应答
	NakByte byte = 0x15
)

var (
	// ErrNotAcknowledged 设备未确认命令（NAK 或意外首字节）
	ErrNotAcknowledged = errors.New("command not acknowledged")
)

// IsAck 判断应答帧首字节是否为确认
// 空应答（含传输超时后拿到的零长度数据）一律视为未确认；
// 未确认的应答不允许继续解码数据域
func IsAck(response []byte) bool {
	return len(response) > 0 && response[0] == AckByte
}
