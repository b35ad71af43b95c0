package s8

import "fmt"

// 喷头状态字节取值固定为 0x00..0x07
var jetStatusLabels = map[byte]string{
	0x00: "Jet stopped",
	0x01: "Jet in start-up phase",
	0x02: "Jet in refresh",
	0x03: "Jet in stability check",
	0x04: "Jet in solvent feed",
	0x05: "Jet in nozzle unclog",
	0x06: "Adjustment",
	0x07: "Jet running",
}

// DecodeJetStatus 解码读取喷头状态应答
// 状态字节位于应答下标 4；表外取值视为畸形字段而非崩溃
func DecodeJetStatus(response []byte) (string, error) {
	w, err := PayloadWindow(response, responseHeaderLen, responseHeaderLen+1)
	if err != nil {
		return "", err
	}
	label, ok := jetStatusLabels[w[0]]
	if !ok {
		return "", fmt.Errorf("%w: unknown jet status byte 0x%02X", ErrMalformedField, w[0])
	}
	return label, nil
}

// StatusCodeOf 反查状态文本对应的状态字节，表外文本返回 false
func StatusCodeOf(label string) (byte, bool) {
	for code, l := range jetStatusLabels {
		if l == label {
			return code, true
		}
	}
	return 0, false
}

// DecodeJetSpeed 解码读取墨线速度应答
// 速度字节位于应答下标 4，原始字节值除以 10 得到 m/s
func DecodeJetSpeed(response []byte) (float64, error) {
	w, err := PayloadWindow(response, responseHeaderLen, responseHeaderLen+1)
	if err != nil {
		return 0, err
	}
	return float64(w[0]) / 10, nil
}
