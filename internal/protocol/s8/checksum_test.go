package s8

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "空数据",
			data:     []byte{},
			expected: 0x00,
		},
		{
			name:     "单字节",
			data:     []byte{0xAA},
			expected: 0xAA,
		},
		{
			name:     "两个相同字节异或抵消",
			data:     []byte{0xAA, 0xAA},
			expected: 0x00,
		},
		{
			name:     "停机命令帧体",
			data:     []byte{0x30, 0x00, 0x01, 0x00},
			expected: 0x31, // 0x30^0x00^0x01^0x00
		},
		{
			name:     "读取日期表帧体",
			data:     []byte{0xD6, 0x00, 0x00},
			expected: 0xD6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.data)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%02X, expected 0x%02X", result, tt.expected)
			}
		})
	}
}

// TestChecksumOrderSensitive 异或归约满足交换律，
// 重排后校验和不变当且仅当字节多重集不变
func TestChecksumOrderSensitive(t *testing.T) {
	a := Checksum([]byte{0x30, 0x00, 0x01, 0x00})
	b := Checksum([]byte{0x00, 0x01, 0x00, 0x30})
	if a != b {
		t.Errorf("同一多重集重排后校验和应一致: 0x%02X vs 0x%02X", a, b)
	}

	c := Checksum([]byte{0x30, 0x00, 0x01, 0x02})
	if a == c {
		t.Errorf("字节值变化后校验和不应仍为 0x%02X", a)
	}
}

func TestAppendChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected []byte
	}{
		{
			name:     "空数据",
			data:     []byte{},
			expected: []byte{0x00},
		},
		{
			name:     "长停机命令",
			data:     []byte{0x30, 0x00, 0x01, 0x00},
			expected: []byte{0x30, 0x00, 0x01, 0x00, 0x31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AppendChecksum(tt.data)
			if len(result) != len(tt.expected) {
				t.Fatalf("AppendChecksum() length = %d, expected %d", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("AppendChecksum()[%d] = 0x%02X, expected 0x%02X", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "空数据",
			data:    []byte{},
			wantErr: true,
		},
		{
			name:    "正确的校验和",
			data:    []byte{0x30, 0x00, 0x01, 0x00, 0x31},
			wantErr: false,
		},
		{
			name:    "错误的校验和",
			data:    []byte{0x30, 0x00, 0x01, 0x00, 0xFF},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyChecksum(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyChecksum() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	testData := [][]byte{
		{0x30, 0x00, 0x01, 0xFF},
		{0xD6, 0x00, 0x00},
		{0x5B, 0x00, 0x04, 0x01, 0x12, 0x41, 0x12},
	}

	for i, data := range testData {
		checksummed := AppendChecksum(data)
		if err := VerifyChecksum(checksummed); err != nil {
			t.Errorf("Test %d: round-trip failed: %v", i, err)
		}
	}
}
