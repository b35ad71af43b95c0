package s8

import "encoding/binary"

// S8 协议指令码
// 帧格式：opcode(1) + len(2, 大端, 数据域长度) + data(var) + checksum(1)
// 例外：对话就绪探测（OpDialogReady）为裸单字节，无长度域也无校验和
const (
	OpDialogReady  byte = 0x05 // V24 对话就绪探测
	OpGetParams    byte = 0x20 // 读取喷印参数
	OpStartStop    byte = 0x30 // 启动/停机
	OpGetJetStatus byte = 0x32 // 读取喷头状态
	OpGetJetSpeed  byte = 0x33 // 读取墨线速度
	OpGetCounter   byte = 0x39 // 读取喷印计数
	OpResetCounter byte = 0x3A // 清零喷印计数
	OpGetFaults    byte = 0x3B // 读取故障表
	OpResetFaults  byte = 0x3C // 复位故障
	OpSetVariables byte = 0x5B // 下发外部变量
	OpSetDateTime  byte = 0xC8 // 设置自动日期表
	OpGetDateTime  byte = 0xD6 // 读取自动日期表
)

// 启动/停机模式字节
const (
	ModeLongShutdown  byte = 0x00 // 长停机：停机并触发自动清洗
	ModeShortShutdown byte = 0x01 // 短停机：仅停机
	ModeStartup       byte = 0xFF // 开机
)

// 外部变量定界符，每个变量前后各一个
const variableDelimiter byte = 0x12

// Build 构造带校验和的完整命令帧
// 长度域恒由实际数据域长度计算，不接受调用方传入，
// 否则设备侧解析器会与帧流失步
func Build(opcode byte, data []byte) []byte {
	buf := make([]byte, 0, 3+len(data)+1)
	buf = append(buf, opcode)

	var lenBytes [2]byte
	binary.BigEndian.PutUint16(lenBytes[:], uint16(len(data)))
	buf = append(buf, lenBytes[:]...)

	buf = append(buf, data...)
	return AppendChecksum(buf)
}

// BuildDialogProbe 构造对话就绪探测帧
// 该命令只有指令码本身，不带长度域与校验和
func BuildDialogProbe() []byte {
	return []byte{OpDialogReady}
}

// BuildStartStop 构造启动/停机命令
// mode 取 ModeLongShutdown / ModeShortShutdown / ModeStartup
func BuildStartStop(mode byte) []byte {
	return Build(OpStartStop, []byte{mode})
}

// BuildGetDateTime 构造读取自动日期表命令
func BuildGetDateTime() []byte {
	return Build(OpGetDateTime, nil)
}

// BuildSetDateTime 构造设置自动日期表命令
// 数据域：6 个 BCD 时间字节（秒 分 时 日 月 年）+ 固定填充 0x20，共 7 字节
func BuildSetDateTime(dt DateTime) []byte {
	payload := append(dt.EncodeBCD(), 0x20)
	return Build(OpSetDateTime, payload)
}

// BuildJetCommand 构造按喷头寻址的单字节数据域命令
// 适用于 OpGetJetStatus / OpGetJetSpeed / OpGetCounter / OpResetCounter
// 协议层不校验 jetID 取值范围，越界命令照常下发，由设备自行拒绝
func BuildJetCommand(opcode byte, jetID int) []byte {
	return Build(opcode, []byte{byte(jetID)})
}

// BuildSetVariables 构造下发外部变量命令
// 数据域：jetID(1) + 每变量 [0x12 + 内容 + 0x12]，
// 长度域即为该数据域的总长（1 + Σ(len+2)）
func BuildSetVariables(jetID int, variables []string) []byte {
	data := make([]byte, 0, 1+totalVariableLen(variables))
	data = append(data, byte(jetID))
	for _, v := range variables {
		data = append(data, variableDelimiter)
		data = append(data, []byte(v)...)
		data = append(data, variableDelimiter)
	}
	return Build(OpSetVariables, data)
}

func totalVariableLen(variables []string) int {
	n := 0
	for _, v := range variables {
		n += len(v) + 2
	}
	return n
}

// BuildGetParams 构造读取喷印参数命令
func BuildGetParams() []byte {
	return Build(OpGetParams, nil)
}

// BuildGetFaults 构造读取故障表命令
func BuildGetFaults() []byte {
	return Build(OpGetFaults, nil)
}

// BuildResetFaults 构造复位故障命令
func BuildResetFaults() []byte {
	return Build(OpResetFaults, nil)
}
