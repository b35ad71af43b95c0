package s8

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedField 数据域字节窗口存在但内容不符合预期编码
	// （期望数字却出现非数字、应答长度不足解码窗口等）
	ErrMalformedField = errors.New("malformed field")
)

// responseHeaderLen 应答头长度：应答字节 + 3 字节寻址/长度头
const responseHeaderLen = 4

// PayloadWindow 取应答中 [from, to) 的字节窗口
// from/to 为相对整帧的绝对下标（与协议文档一致，数据域从下标 4 起）；
// 应答不足窗口长度时返回 ErrMalformedField，绝不返回截断片段
func PayloadWindow(response []byte, from, to int) ([]byte, error) {
	if from < 0 || to < from || len(response) < to {
		return nil, fmt.Errorf("%w: response length %d, want window [%d,%d)", ErrMalformedField, len(response), from, to)
	}
	return response[from:to], nil
}

// ParseASCIIInt 解析定宽 ASCII 十进制数字段
func ParseASCIIInt(field []byte) (int, error) {
	s := strings.TrimSpace(string(field))
	if s == "" {
		return 0, fmt.Errorf("%w: empty numeric field", ErrMalformedField)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal integer", ErrMalformedField, string(field))
	}
	return n, nil
}

// ParseCommaDecimal 解析定宽 ASCII 小数字段
// 线上格式以逗号作为小数分隔符，解析前替换为点
func ParseCommaDecimal(field []byte) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(string(field), ",", "."))
	if s == "" {
		return 0, fmt.Errorf("%w: empty decimal field", ErrMalformedField)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrMalformedField, string(field))
	}
	return f, nil
}

// ExpandBits 将单字节展开为 8 个布尔位，高位在前
// out[0] 对应 bit7，out[7] 对应 bit0
func ExpandBits(b byte) [8]bool {
	var out [8]bool
	for i := 0; i < 8; i++ {
		out[i] = b&(1<<(7-i)) != 0
	}
	return out
}

// bitSet 判断字节的第 bit 位（0 为最低位）是否置位
func bitSet(b byte, bit uint8) bool {
	return b&(1<<bit) != 0
}
