package s8

import "fmt"

// 故障表应答窗口：
//
//	下标 4..6   设备级故障位（3 字节）
//	下标 7..18  每喷头 3 字节 × 4 喷头
//
// 位编号以 bit0 为最低位。位分配由协议版本固定，永不重排。
const (
	deviceFaultOffset = 4
	jetFaultOffset    = 7
	jetFaultBytes     = 3
	// MaxJets 协议可寻址的最大喷头数
	MaxJets = 4
	// faultWindowEnd 故障应答要求的最小总长
	faultWindowEnd = jetFaultOffset + jetFaultBytes*MaxJets
)

// faultBit 单个具名故障位的位置
type faultBit struct {
	name string
	off  int   // 字节偏移（设备级为绝对下标，喷头级为喷头块内偏移）
	bit  uint8 // 位序号，0 为最低位
}

// deviceFaultTable 设备级故障位分配表（19 项，规范性常量）
var deviceFaultTable = []faultBit{
	{"ink_level_low", 4, 0},
	{"pressure_error", 4, 1},
	{"cpu_hw_error", 4, 2},
	{"memory_lost", 4, 3},
	{"head_1_faulty", 4, 4},
	{"head_2_faulty", 4, 5},
	{"motor_cycle_fault", 4, 6},
	{"pigmented_ink_circuit_fault", 4, 7},
	{"autodating_fault", 5, 5},
	{"ram_fault", 5, 6},
	{"rom_fault", 5, 7},
	{"v24_fault", 6, 0},
	{"recovery_tank_too_full", 6, 1},
	{"ink_tank_too_full", 6, 2},
	{"accu_empty", 6, 3},
	{"temp_fault", 6, 4},
	{"viscosity_fault", 6, 5},
	{"fan_fault", 6, 6},
	{"additive_fault", 6, 7},
}

// jetFaultTable 喷头级故障位分配表（每喷头 14 项，偏移相对喷头块起点）
var jetFaultTable = []faultBit{
	{"printing_hardware_fault", 0, 0},
	{"frame_generator_fault", 0, 5},
	{"char_generator_fault", 0, 6},
	{"cover_fault", 1, 4},
	{"EHV_fault", 1, 5},
	{"recovery", 1, 6},
	{"phase_detection", 1, 7},
	{"not_present", 2, 0},
	{"communication_cpu_printer", 2, 1},
	{"printing_speed_fault", 2, 2},
	{"DTOP_filtering", 2, 3},
	{"no_message_to_print", 2, 4},
	{"incorrect_char_generator_n", 2, 5},
	{"DTOP_printing", 2, 6},
}

// FaultSet 具名故障位集合，true 表示该位置位
// 键为 19 个设备级故障名与 j1_..j4_ 前缀的喷头级故障名
type FaultSet map[string]bool

// JetFaultKey 拼接喷头级故障键名，jetID 取 1..4
func JetFaultKey(jetID int, name string) string {
	return fmt.Sprintf("j%d_%s", jetID, name)
}

// DecodeFaults 解码读取故障表应答
// 全量解码或整体拒绝：应答短于要求窗口时返回 ErrMalformedField，
// 成功时集合必定包含全部 19 + 14×4 个键
func DecodeFaults(response []byte) (FaultSet, error) {
	if _, err := PayloadWindow(response, deviceFaultOffset, faultWindowEnd); err != nil {
		return nil, err
	}

	fs := make(FaultSet, len(deviceFaultTable)+MaxJets*len(jetFaultTable))
	for _, fb := range deviceFaultTable {
		fs[fb.name] = bitSet(response[fb.off], fb.bit)
	}
	for jet := 1; jet <= MaxJets; jet++ {
		base := jetFaultOffset + (jet-1)*jetFaultBytes
		for _, fb := range jetFaultTable {
			fs[JetFaultKey(jet, fb.name)] = bitSet(response[base+fb.off], fb.bit)
		}
	}
	return fs, nil
}

// JetPresent 判断喷头是否在位（not_present 位为 0 即在位）
func (fs FaultSet) JetPresent(jetID int) bool {
	return !fs[JetFaultKey(jetID, "not_present")]
}

// AvailableJets 统计在位喷头数
func (fs FaultSet) AvailableJets() int {
	n := 0
	for jet := 1; jet <= MaxJets; jet++ {
		if fs.JetPresent(jet) {
			n++
		}
	}
	return n
}

// Active 返回所有置位故障名，顺序不保证
func (fs FaultSet) Active() []string {
	var out []string
	for name, set := range fs {
		if set {
			out = append(out, name)
		}
	}
	return out
}

// Names 返回全部故障键名，设备级在前、喷头级按喷头序，供指标注册等固定遍历使用
func Names() []string {
	out := make([]string, 0, len(deviceFaultTable)+MaxJets*len(jetFaultTable))
	for _, fb := range deviceFaultTable {
		out = append(out, fb.name)
	}
	for jet := 1; jet <= MaxJets; jet++ {
		for _, fb := range jetFaultTable {
			out = append(out, JetFaultKey(jet, fb.name))
		}
	}
	return out
}
