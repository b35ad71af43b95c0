package s8

import (
	"bytes"
	"testing"
)

func TestBuildDialogProbe(t *testing.T) {
	got := BuildDialogProbe()
	if !bytes.Equal(got, []byte{0x05}) {
		t.Errorf("BuildDialogProbe() = % X, expected 05", got)
	}
}

func TestBuildStartStop(t *testing.T) {
	tests := []struct {
		name     string
		mode     byte
		expected []byte
	}{
		{
			name:     "长停机",
			mode:     ModeLongShutdown,
			expected: []byte{0x30, 0x00, 0x01, 0x00, 0x31},
		},
		{
			name:     "短停机",
			mode:     ModeShortShutdown,
			expected: []byte{0x30, 0x00, 0x01, 0x01, 0x30},
		},
		{
			name:     "开机",
			mode:     ModeStartup,
			expected: []byte{0x30, 0x00, 0x01, 0xFF, 0xCE},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildStartStop(tt.mode)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("BuildStartStop(0x%02X) = % X, expected % X", tt.mode, got, tt.expected)
			}
		})
	}
}

func TestBuildZeroPayloadCommands(t *testing.T) {
	tests := []struct {
		name     string
		frame    []byte
		expected []byte
	}{
		{
			name:     "读取日期表",
			frame:    BuildGetDateTime(),
			expected: []byte{0xD6, 0x00, 0x00, 0xD6},
		},
		{
			name:     "读取喷印参数",
			frame:    BuildGetParams(),
			expected: []byte{0x20, 0x00, 0x00, 0x20},
		},
		{
			name:     "读取故障表",
			frame:    BuildGetFaults(),
			expected: []byte{0x3B, 0x00, 0x00, 0x3B},
		},
		{
			name:     "复位故障",
			frame:    BuildResetFaults(),
			expected: []byte{0x3C, 0x00, 0x00, 0x3C},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.frame, tt.expected) {
				t.Errorf("frame = % X, expected % X", tt.frame, tt.expected)
			}
		})
	}
}

func TestBuildJetCommand(t *testing.T) {
	tests := []struct {
		name     string
		opcode   byte
		jetID    int
		expected []byte
	}{
		{
			name:     "读取1号喷头计数",
			opcode:   OpGetCounter,
			jetID:    1,
			expected: []byte{0x39, 0x00, 0x01, 0x01, 0x39},
		},
		{
			name:     "清零2号喷头计数",
			opcode:   OpResetCounter,
			jetID:    2,
			expected: []byte{0x3A, 0x00, 0x01, 0x02, 0x39},
		},
		{
			name:     "读取3号喷头状态",
			opcode:   OpGetJetStatus,
			jetID:    3,
			expected: []byte{0x32, 0x00, 0x01, 0x03, 0x30},
		},
		{
			name:     "读取4号喷头墨线速度",
			opcode:   OpGetJetSpeed,
			jetID:    4,
			expected: []byte{0x33, 0x00, 0x01, 0x04, 0x36},
		},
		{
			// 协议层不做范围校验，越界喷头号照常成帧
			name:     "越界喷头号",
			opcode:   OpGetJetStatus,
			jetID:    9,
			expected: []byte{0x32, 0x00, 0x01, 0x09, 0x3A},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildJetCommand(tt.opcode, tt.jetID)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("BuildJetCommand(0x%02X, %d) = % X, expected % X", tt.opcode, tt.jetID, got, tt.expected)
			}
		})
	}
}

func TestBuildSetDateTime(t *testing.T) {
	dt := DateTime{Second: 25, Minute: 30, Hour: 12, Day: 28, Month: 8, Year: 15}
	got := BuildSetDateTime(dt)

	// 数据域 7 字节：6 个 BCD 时间字节 + 0x20 填充
	expected := []byte{0xC8, 0x00, 0x07, 0x25, 0x30, 0x12, 0x28, 0x08, 0x15, 0x20, 0xDD}
	if !bytes.Equal(got, expected) {
		t.Errorf("BuildSetDateTime() = % X, expected % X", got, expected)
	}
}

func TestBuildSetVariables(t *testing.T) {
	tests := []struct {
		name      string
		jetID     int
		variables []string
		expected  []byte
	}{
		{
			name:      "单变量",
			jetID:     1,
			variables: []string{"AB"},
			expected:  []byte{0x5B, 0x00, 0x05, 0x01, 0x12, 0x41, 0x42, 0x12, 0x5C},
		},
		{
			name:      "双变量",
			jetID:     2,
			variables: []string{"A", "B"},
			// 长度域 = 1 + (1+2) + (1+2) = 7
			expected: []byte{0x5B, 0x00, 0x07, 0x02, 0x12, 0x41, 0x12, 0x12, 0x42, 0x12, 0x5D},
		},
		{
			name:      "无变量",
			jetID:     1,
			variables: nil,
			expected:  []byte{0x5B, 0x00, 0x01, 0x01, 0x5B},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSetVariables(tt.jetID, tt.variables)
			if !bytes.Equal(got, tt.expected) {
				t.Errorf("BuildSetVariables(%d, %v) = % X, expected % X", tt.jetID, tt.variables, got, tt.expected)
			}

			// 长度域必须等于实际数据域长度
			wantLen := 1 + totalVariableLen(tt.variables)
			gotLen := int(got[1])<<8 | int(got[2])
			if gotLen != wantLen {
				t.Errorf("长度域 = %d, expected %d", gotLen, wantLen)
			}
		})
	}
}

// TestBuildDeterministic 相同语义输入必须产出逐字节一致的帧
func TestBuildDeterministic(t *testing.T) {
	a := BuildSetVariables(1, []string{"LOT42", "2026-08"})
	b := BuildSetVariables(1, []string{"LOT42", "2026-08"})
	if !bytes.Equal(a, b) {
		t.Errorf("same input produced different frames: % X vs % X", a, b)
	}
}
