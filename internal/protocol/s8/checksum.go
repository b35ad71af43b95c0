package s8

import "errors"

var (
	// ErrChecksumMismatch 校验和校验失败
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Checksum 计算 S8 协议校验和
// S8 校验和算法：对帧内所有在前字节做异或归约，初值为 0
// 空输入的校验和为 0
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// AppendChecksum 为数据追加校验和字节
// data: 不含校验和的帧内容（指令码 + 长度域 + 数据域）
// 返回：带校验和的完整帧
func AppendChecksum(data []byte) []byte {
	out := make([]byte, len(data)+1)
	copy(out, data)
	out[len(data)] = Checksum(data)
	return out
}

// VerifyChecksum 验证带校验和的完整帧
// dataWithChecksum: 最后一个字节为校验和
func VerifyChecksum(dataWithChecksum []byte) error {
	if len(dataWithChecksum) < 1 {
		return errors.New("data too short for checksum verification")
	}

	pos := len(dataWithChecksum) - 1
	received := dataWithChecksum[pos]
	expected := Checksum(dataWithChecksum[:pos])

	if received != expected {
		return ErrChecksumMismatch
	}
	return nil
}
