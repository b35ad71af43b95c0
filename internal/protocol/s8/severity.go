package s8

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity 故障严重级别
type Severity string

const (
	SeverityInfo     Severity = "info"     // 提示：不影响喷印
	SeverityWarning  Severity = "warning"  // 告警：可继续喷印，需要关注
	SeverityCritical Severity = "critical" // 严重：喷印已经或即将中断
)

// SeverityMap 故障名 → 严重级别映射，可由 YAML 文件覆盖现场策略
type SeverityMap struct {
	Map map[string]Severity `yaml:"map"`
}

// DefaultSeverityMap 返回内置默认映射
// 喷头级故障按去掉 jN_ 前缀后的短名匹配
func DefaultSeverityMap() *SeverityMap {
	return &SeverityMap{
		Map: map[string]Severity{
			// 设备级
			"ink_level_low":               SeverityWarning,
			"pressure_error":              SeverityCritical,
			"cpu_hw_error":                SeverityCritical,
			"memory_lost":                 SeverityCritical,
			"head_1_faulty":               SeverityCritical,
			"head_2_faulty":               SeverityCritical,
			"motor_cycle_fault":           SeverityCritical,
			"pigmented_ink_circuit_fault": SeverityCritical,
			"autodating_fault":            SeverityWarning,
			"ram_fault":                   SeverityCritical,
			"rom_fault":                   SeverityCritical,
			"v24_fault":                   SeverityWarning,
			"recovery_tank_too_full":      SeverityWarning,
			"ink_tank_too_full":           SeverityWarning,
			"accu_empty":                  SeverityWarning,
			"temp_fault":                  SeverityWarning,
			"viscosity_fault":             SeverityWarning,
			"fan_fault":                   SeverityWarning,
			"additive_fault":              SeverityWarning,
			// 喷头级（短名）
			"printing_hardware_fault":    SeverityCritical,
			"frame_generator_fault":      SeverityCritical,
			"char_generator_fault":       SeverityCritical,
			"cover_fault":                SeverityWarning,
			"EHV_fault":                  SeverityCritical,
			"recovery":                   SeverityWarning,
			"phase_detection":            SeverityCritical,
			"not_present":                SeverityInfo,
			"communication_cpu_printer":  SeverityCritical,
			"printing_speed_fault":       SeverityWarning,
			"DTOP_filtering":             SeverityWarning,
			"no_message_to_print":        SeverityWarning,
			"incorrect_char_generator_n": SeverityWarning,
			"DTOP_printing":              SeverityWarning,
		},
	}
}

// LoadSeverityMap 从 YAML 文件加载映射，文件条目覆盖内置默认
func LoadSeverityMap(path string) (*SeverityMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read severity map: %w", err)
	}
	var override SeverityMap
	if err := yaml.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("unmarshal severity map: %w", err)
	}
	m := DefaultSeverityMap()
	for name, sev := range override.Map {
		m.Map[name] = sev
	}
	return m, nil
}

// Classify 返回故障名对应的严重级别
// 喷头级键自动去掉 jN_ 前缀后查短名；未知名回落为 warning
func (m *SeverityMap) Classify(name string) Severity {
	if m == nil || m.Map == nil {
		return SeverityWarning
	}
	if s, ok := m.Map[name]; ok {
		return s
	}
	if short, ok := stripJetPrefix(name); ok {
		if s, ok := m.Map[short]; ok {
			return s
		}
	}
	return SeverityWarning
}

func stripJetPrefix(name string) (string, bool) {
	if len(name) < 4 || name[0] != 'j' {
		return "", false
	}
	rest := name[1:]
	i := strings.IndexByte(rest, '_')
	if i <= 0 {
		return "", false
	}
	for _, c := range rest[:i] {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return rest[i+1:], true
}
