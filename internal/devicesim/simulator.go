// Package devicesim 提供一个内存态的 S8 喷码机模拟器
// 以真实 TCP 端口应答编解码层产生的命令帧，用于联调与集成测试
package devicesim

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/protocol/s8"
)

const maxFrameSize = 1024

// jetState 单喷头运行状态
type jetState struct {
	Status   byte
	SpeedRaw byte
	Counter  int
	Faults   [3]byte
	Vars     []string
}

// Simulator 模拟一台四喷头位的喷码机
// 同一时刻只处理一条连接上的一帧，与真机的半双工行为一致
type Simulator struct {
	log *zap.Logger

	ln     net.Listener
	wg     sync.WaitGroup
	closed chan struct{}

	mu           sync.Mutex
	running      bool
	dateTime     s8.DateTime
	deviceFaults [3]byte
	jets         [4]jetState
	params       struct {
		MotorSpeed        int
		Pressure          float64
		ViscoFillingTimes int
		AdditiveAdded     int
		AverageJetSpeed   float64
		TempElectronics   int
		TempInk           int
	}
}

// New 创建模拟器，presentJets 指定在位喷头数（1-4）
func New(logger *zap.Logger, presentJets int) *Simulator {
	if presentJets < 1 {
		presentJets = 1
	}
	if presentJets > 4 {
		presentJets = 4
	}
	sim := &Simulator{
		log:    logger,
		closed: make(chan struct{}),
	}
	sim.dateTime = s8.DateTime{Second: 0, Minute: 0, Hour: 12, Day: 1, Month: 1, Year: 26}
	sim.params.MotorSpeed = 1500
	sim.params.Pressure = 2.5
	sim.params.ViscoFillingTimes = 3
	sim.params.AdditiveAdded = 1
	sim.params.AverageJetSpeed = 1.2
	sim.params.TempElectronics = 23
	sim.params.TempInk = 24
	for i := range sim.jets {
		if i >= presentJets {
			sim.jets[i].Faults[2] |= 0x01 // not_present
		}
		sim.jets[i].SpeedRaw = 25
	}
	return sim
}

// Listen 在给定地址启动监听，addr 传 "127.0.0.1:0" 可取随机端口
func (s *Simulator) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("devicesim: listen %s: %w", addr, err)
	}
	s.ln = ln
	s.wg.Add(1)
	go s.acceptLoop()
	s.log.Info("模拟器已启动", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr 返回实际监听地址
func (s *Simulator) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close 停止监听并等待在途连接结束
func (s *Simulator) Close() error {
	close(s.closed)
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Simulator) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
				s.log.Warn("accept 失败", zap.Error(err))
				return
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Simulator) handleConn(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, maxFrameSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}
	resp := s.handleFrame(buf[:n])
	if resp != nil {
		_, _ = conn.Write(resp)
	}
}

// handleFrame 解析一条命令帧并生成应答
func (s *Simulator) handleFrame(frame []byte) []byte {
	// 对话探测帧是唯一的裸字节命令
	if len(frame) == 1 && frame[0] == s8.OpDialogReady {
		return []byte{s8.AckByte}
	}
	if len(frame) < 4 {
		return []byte{s8.NakByte}
	}
	if err := s8.VerifyChecksum(frame); err != nil {
		s.log.Warn("校验和不符", zap.String("frame", fmt.Sprintf("% X", frame)))
		return []byte{s8.NakByte}
	}
	op := frame[0]
	payloadLen := int(frame[1])<<8 | int(frame[2])
	if len(frame) != 4+payloadLen {
		return []byte{s8.NakByte}
	}
	payload := frame[3 : 3+payloadLen]

	s.mu.Lock()
	defer s.mu.Unlock()
	switch op {
	case s8.OpStartStop:
		return s.doStartStop(payload)
	case s8.OpGetDateTime:
		return header(op, s.dateTimeText())
	case s8.OpSetDateTime:
		return s.doSetDateTime(payload)
	case s8.OpSetVariables:
		return s.doSetVariables(payload)
	case s8.OpGetCounter:
		return s.withJet(payload, func(j *jetState) []byte {
			return header(op, []byte(fmt.Sprintf("%09d", j.Counter)))
		})
	case s8.OpResetCounter:
		return s.withJet(payload, func(j *jetState) []byte {
			j.Counter = 0
			return header(op, nil)
		})
	case s8.OpGetJetStatus:
		return s.withJet(payload, func(j *jetState) []byte {
			return header(op, []byte{j.Status})
		})
	case s8.OpGetJetSpeed:
		return s.withJet(payload, func(j *jetState) []byte {
			return header(op, []byte{j.SpeedRaw})
		})
	case s8.OpGetParams:
		return header(op, []byte(s.paramsText()))
	case s8.OpGetFaults:
		return header(op, s.faultBytes())
	case s8.OpResetFaults:
		s.deviceFaults = [3]byte{}
		for i := range s.jets {
			notPresent := s.jets[i].Faults[2] & 0x01
			s.jets[i].Faults = [3]byte{0, 0, notPresent}
		}
		return header(op, nil)
	default:
		s.log.Warn("未知命令", zap.Uint8("op", op))
		return []byte{s8.NakByte}
	}
}

// header 组装 ACK + 3 字节寻址头
func header(op byte, data []byte) []byte {
	resp := []byte{s8.AckByte, op, 0x00, 0x00}
	return append(resp, data...)
}

func (s *Simulator) doStartStop(payload []byte) []byte {
	if len(payload) != 1 {
		return []byte{s8.NakByte}
	}
	switch payload[0] {
	case s8.ModeStartup:
		s.running = true
		for i := range s.jets {
			if s.jets[i].Faults[2]&0x01 == 0 {
				s.jets[i].Status = 0x07
			}
		}
	case s8.ModeLongShutdown, s8.ModeShortShutdown:
		s.running = false
		for i := range s.jets {
			s.jets[i].Status = 0x00
		}
	default:
		return []byte{s8.NakByte}
	}
	return header(s8.OpStartStop, nil)
}

func (s *Simulator) doSetDateTime(payload []byte) []byte {
	if len(payload) != 7 || payload[6] != 0x20 {
		return []byte{s8.NakByte}
	}
	dt := s8.DateTime{
		Second: fromBCD(payload[0]),
		Minute: fromBCD(payload[1]),
		Hour:   fromBCD(payload[2]),
		Day:    fromBCD(payload[3]),
		Month:  fromBCD(payload[4]),
		Year:   fromBCD(payload[5]),
	}
	if err := dt.Validate(); err != nil {
		return []byte{s8.NakByte}
	}
	s.dateTime = dt
	return header(s8.OpSetDateTime, nil)
}

func (s *Simulator) doSetVariables(payload []byte) []byte {
	if len(payload) < 1 {
		return []byte{s8.NakByte}
	}
	jet := int(payload[0])
	if jet < 1 || jet > 4 {
		return []byte{s8.NakByte}
	}
	var vars []string
	rest := payload[1:]
	for len(rest) > 0 {
		if rest[0] != 0x12 {
			return []byte{s8.NakByte}
		}
		end := -1
		for i := 1; i < len(rest); i++ {
			if rest[i] == 0x12 {
				end = i
				break
			}
		}
		if end < 0 {
			return []byte{s8.NakByte}
		}
		vars = append(vars, string(rest[1:end]))
		rest = rest[end+1:]
	}
	if len(vars) == 0 {
		return []byte{s8.NakByte}
	}
	s.jets[jet-1].Vars = vars
	return header(s8.OpSetVariables, nil)
}

// withJet 按 1 起始喷头号定位状态，越界回 NAK
func (s *Simulator) withJet(payload []byte, fn func(*jetState) []byte) []byte {
	if len(payload) != 1 {
		return []byte{s8.NakByte}
	}
	jet := int(payload[0])
	if jet < 1 || jet > 4 {
		return []byte{s8.NakByte}
	}
	return fn(&s.jets[jet-1])
}

func (s *Simulator) dateTimeText() []byte {
	dt := s.dateTime
	return []byte(fmt.Sprintf("%02d %02d %02d  %02d/%02d/%02d    ",
		dt.Second, dt.Minute, dt.Hour, dt.Day, dt.Month, dt.Year))
}

func (s *Simulator) paramsText() string {
	p := s.params
	return fmt.Sprintf("%04d %s %02d %02d %s %02d %02d",
		p.MotorSpeed,
		commaDecimal(p.Pressure),
		p.ViscoFillingTimes,
		p.AdditiveAdded,
		commaDecimal(p.AverageJetSpeed),
		p.TempElectronics,
		p.TempInk)
}

func (s *Simulator) faultBytes() []byte {
	out := make([]byte, 15)
	copy(out[0:3], s.deviceFaults[:])
	for i := range s.jets {
		copy(out[3+3*i:], s.jets[i].Faults[:])
	}
	return out
}

// RaiseDeviceFault 置位一个设备级故障字节位，供测试注入
func (s *Simulator) RaiseDeviceFault(byteIdx, bit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceFaults[byteIdx] |= 1 << bit
}

// RaiseJetFault 置位一个喷头级故障字节位
func (s *Simulator) RaiseJetFault(jetID, byteIdx, bit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jets[jetID-1].Faults[byteIdx] |= 1 << bit
}

// SetJetCounter 设定计数器值，供测试注入
func (s *Simulator) SetJetCounter(jetID, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jets[jetID-1].Counter = value
}

// Variables 返回最近一次设置的外部变量
func (s *Simulator) Variables(jetID int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jets[jetID-1].Vars...)
}

// Running 返回当前启停状态
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func commaDecimal(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}
