package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taoyao-code/cij-gateway/internal/metrics"
	"github.com/taoyao-code/cij-gateway/internal/protocol/s8"
)

// JetWarning 越界喷头号的建议性告警
// 命令仍会照常下发，设备侧拒绝通过常规 NAK 路径报告
type JetWarning struct {
	Op            string // 触发命令
	JetID         int    // 请求的喷头号
	AvailableJets int    // 最近一次故障查询得到的在位喷头数
}

func (w JetWarning) String() string {
	return fmt.Sprintf("op %s addresses jet %d but only %d jets present", w.Op, w.JetID, w.AvailableJets)
}

// Session 喷码机会话：组帧、收发、应答判定与解码的编排层
// 协议无请求标识，应答无法与交叠请求对应，
// 因此会话内互斥保证同一时刻至多一条在途命令；
// 需要并发时每个调用方持有独立会话（及独立连接）
type Session struct {
	transport Transport
	log       *zap.Logger

	appm      *metrics.AppMetrics
	limiter   *rate.Limiter
	onWarning func(JetWarning)

	mu sync.Mutex
	// 最近一次故障查询得到的在位喷头数，0 表示尚未知晓
	knownJets int
}

// NewSession 创建会话
func NewSession(t Transport, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{transport: t, log: logger}
}

// SetMetrics 安装业务指标
func (s *Session) SetMetrics(m *metrics.AppMetrics) { s.appm = m }

// SetLimiter 安装命令节流器（设备处理能力有限，建议开启）
func (s *Session) SetLimiter(l *rate.Limiter) { s.limiter = l }

// SetOnWarning 安装建议性告警回调，默认仅记录 warn 日志
func (s *Session) SetOnWarning(fn func(JetWarning)) { s.onWarning = fn }

// exchange 单条命令的完整往返：节流、发送、应答判定
// 返回的应答保证首字节为 ACK；未确认时返回 ErrNotAcknowledged
func (s *Session) exchange(ctx context.Context, op string, frame []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate wait: %v", ErrTransport, err)
		}
	}

	resp, err := s.transport.SendReceive(ctx, frame)
	if err != nil {
		s.count(op, "transport_error")
		s.log.Warn("printer command transport failure", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	if !s8.IsAck(resp) {
		s.count(op, "nak")
		s.log.Warn("printer command not acknowledged",
			zap.String("op", op),
			zap.Int("response_len", len(resp)),
		)
		return nil, s8.ErrNotAcknowledged
	}
	s.count(op, "ok")
	return resp, nil
}

func (s *Session) count(op, result string) {
	if s.appm != nil {
		s.appm.CommandTotal.WithLabelValues(op, result).Inc()
	}
}

func (s *Session) countDecodeError(op string) {
	if s.appm != nil {
		s.appm.CommandTotal.WithLabelValues(op, "decode_error").Inc()
	}
}

// warnJetRange 建议性校验：喷头号超过已知在位数时告警，但命令照常下发
// 只比对缓存的在位数，不为一次告警额外打扰设备
func (s *Session) warnJetRange(op string, jetID int) {
	s.mu.Lock()
	known := s.knownJets
	s.mu.Unlock()

	if known <= 0 || jetID <= known {
		return
	}
	w := JetWarning{Op: op, JetID: jetID, AvailableJets: known}
	if s.appm != nil {
		s.appm.JetWarningTotal.Inc()
	}
	if s.onWarning != nil {
		s.onWarning(w)
		return
	}
	s.log.Warn("jet id beyond discovered jet count", zap.String("warning", w.String()))
}

// DialogReady 对话就绪探测
// 只说明设备可对话，不代表喷印已启动；返回 nil 即就绪
func (s *Session) DialogReady(ctx context.Context) error {
	_, err := s.exchange(ctx, "dialog_ready", s8.BuildDialogProbe())
	if s.appm != nil {
		if err == nil {
			s.appm.PrinterOnlineGauge.Set(1)
		} else {
			s.appm.PrinterOnlineGauge.Set(0)
		}
	}
	return err
}

// StartStop 启动/停机
// mode 取 s8.ModeLongShutdown（停机并自动清洗）、
// s8.ModeShortShutdown（仅停机）、s8.ModeStartup（开机）
func (s *Session) StartStop(ctx context.Context, mode byte) error {
	_, err := s.exchange(ctx, "start_stop", s8.BuildStartStop(mode))
	return err
}

// GetDateTime 读取设备自动日期表当前时间
func (s *Session) GetDateTime(ctx context.Context) (s8.DateTime, error) {
	resp, err := s.exchange(ctx, "get_datetime", s8.BuildGetDateTime())
	if err != nil {
		return s8.DateTime{}, err
	}
	dt, err := s8.DecodeDateTime(resp)
	if err != nil {
		s.countDecodeError("get_datetime")
		return s8.DateTime{}, err
	}
	return dt, nil
}

// SetDateTime 设置设备自动日期表
func (s *Session) SetDateTime(ctx context.Context, dt s8.DateTime) error {
	if err := dt.Validate(); err != nil {
		return err
	}
	_, err := s.exchange(ctx, "set_datetime", s8.BuildSetDateTime(dt))
	return err
}

// GetJetCounter 读取喷头喷印计数，每次喷印加一
func (s *Session) GetJetCounter(ctx context.Context, jetID int) (int, error) {
	s.warnJetRange("get_jet_counter", jetID)
	resp, err := s.exchange(ctx, "get_jet_counter", s8.BuildJetCommand(s8.OpGetCounter, jetID))
	if err != nil {
		return 0, err
	}
	n, err := s8.DecodeCounter(resp)
	if err != nil {
		s.countDecodeError("get_jet_counter")
		return 0, err
	}
	return n, nil
}

// ResetJetCounter 清零喷头喷印计数
func (s *Session) ResetJetCounter(ctx context.Context, jetID int) error {
	s.warnJetRange("reset_jet_counter", jetID)
	_, err := s.exchange(ctx, "reset_jet_counter", s8.BuildJetCommand(s8.OpResetCounter, jetID))
	return err
}

// GetJetStatus 读取喷头状态文本
func (s *Session) GetJetStatus(ctx context.Context, jetID int) (string, error) {
	s.warnJetRange("get_jet_status", jetID)
	resp, err := s.exchange(ctx, "get_jet_status", s8.BuildJetCommand(s8.OpGetJetStatus, jetID))
	if err != nil {
		return "", err
	}
	label, err := s8.DecodeJetStatus(resp)
	if err != nil {
		s.countDecodeError("get_jet_status")
		return "", err
	}
	return label, nil
}

// GetJetSpeed 读取墨线速度，单位 m/s
func (s *Session) GetJetSpeed(ctx context.Context, jetID int) (float64, error) {
	s.warnJetRange("get_jet_speed", jetID)
	resp, err := s.exchange(ctx, "get_jet_speed", s8.BuildJetCommand(s8.OpGetJetSpeed, jetID))
	if err != nil {
		return 0, err
	}
	v, err := s8.DecodeJetSpeed(resp)
	if err != nil {
		s.countDecodeError("get_jet_speed")
		return 0, err
	}
	return v, nil
}

// GetParameters 读取运行参数快照
func (s *Session) GetParameters(ctx context.Context) (s8.ParameterSet, error) {
	resp, err := s.exchange(ctx, "get_params", s8.BuildGetParams())
	if err != nil {
		return s8.ParameterSet{}, err
	}
	ps, err := s8.DecodeParameters(resp)
	if err != nil {
		s.countDecodeError("get_params")
		return s8.ParameterSet{}, err
	}
	return ps, nil
}

// SetExternalVariables 下发外部变量，1-10 个
func (s *Session) SetExternalVariables(ctx context.Context, jetID int, variables []string) error {
	s.warnJetRange("set_external_variables", jetID)
	_, err := s.exchange(ctx, "set_external_variables", s8.BuildSetVariables(jetID, variables))
	return err
}

// GetFaults 读取故障表，成功时集合必定包含全部具名位
func (s *Session) GetFaults(ctx context.Context) (s8.FaultSet, error) {
	resp, err := s.exchange(ctx, "get_faults", s8.BuildGetFaults())
	if err != nil {
		return nil, err
	}
	fs, err := s8.DecodeFaults(resp)
	if err != nil {
		s.countDecodeError("get_faults")
		return nil, err
	}

	s.mu.Lock()
	s.knownJets = fs.AvailableJets()
	s.mu.Unlock()
	return fs, nil
}

// ResetFaults 复位故障
func (s *Session) ResetFaults(ctx context.Context) error {
	_, err := s.exchange(ctx, "reset_faults", s8.BuildResetFaults())
	return err
}

// AvailableJets 读取在位喷头数
// 设备无直接查询命令，由故障表中四个不在位位推导
func (s *Session) AvailableJets(ctx context.Context) (int, error) {
	fs, err := s.GetFaults(ctx)
	if err != nil {
		return 0, err
	}
	n := fs.AvailableJets()
	if s.appm != nil {
		s.appm.AvailableJetsGauge.Set(float64(n))
	}
	return n, nil
}

// IsDecodeError 判断是否为解码类失败（字段畸形或日历非法）
func IsDecodeError(err error) bool {
	return errors.Is(err, s8.ErrMalformedField) || errors.Is(err, s8.ErrInvalidDateTime)
}
