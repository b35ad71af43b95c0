package s8

import (
	"errors"
	"testing"
)

func TestDecodeJetStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   byte
		expected string
		wantErr  bool
	}{
		{"停机", 0x00, "Jet stopped", false},
		{"启动阶段", 0x01, "Jet in start-up phase", false},
		{"刷新", 0x02, "Jet in refresh", false},
		{"稳定性检查", 0x03, "Jet in stability check", false},
		{"溶剂供给", 0x04, "Jet in solvent feed", false},
		{"喷嘴疏通", 0x05, "Jet in nozzle unclog", false},
		{"调整", 0x06, "Adjustment", false},
		{"运行", 0x07, "Jet running", false},
		{"表外取值", 0x08, "", true},
		{"表外取值FF", 0xFF, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := []byte{0x06, 0x32, 0x00, 0x01, tt.status}
			got, err := DecodeJetStatus(resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJetStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedField) {
					t.Errorf("error should wrap ErrMalformedField, got %v", err)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("DecodeJetStatus(0x%02X) = %q, expected %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestDecodeJetStatusShortResponse(t *testing.T) {
	_, err := DecodeJetStatus([]byte{0x06, 0x32, 0x00})
	if !errors.Is(err, ErrMalformedField) {
		t.Errorf("DecodeJetStatus() error = %v, expected ErrMalformedField", err)
	}
}

func TestDecodeJetSpeed(t *testing.T) {
	tests := []struct {
		name     string
		raw      byte
		expected float64
	}{
		{"25即2.5米每秒", 25, 2.5},
		{"零速", 0, 0.0},
		{"最大字节值", 255, 25.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := []byte{0x06, 0x33, 0x00, 0x01, tt.raw}
			got, err := DecodeJetSpeed(resp)
			if err != nil {
				t.Fatalf("DecodeJetSpeed() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("DecodeJetSpeed(%d) = %v, expected %v", tt.raw, got, tt.expected)
			}
		})
	}
}
