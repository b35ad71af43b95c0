// Package poller 周期性采集喷码机运行数据。
// 每轮依次读取故障表、各在位喷头的状态/速度/计数与整机参数，
// 结果落库、刷新指标并写入 Redis 快照缓存。
package poller

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/cij-gateway/internal/metrics"
	"github.com/taoyao-code/cij-gateway/internal/printer"
	"github.com/taoyao-code/cij-gateway/internal/protocol/s8"
	"github.com/taoyao-code/cij-gateway/internal/storage"
	"github.com/taoyao-code/cij-gateway/internal/storage/models"
	redisstore "github.com/taoyao-code/cij-gateway/internal/storage/redis"
)

// Poller 轮询采集器。repo 与 cache 允许为 nil，对应能力未启用。
type Poller struct {
	sess     *printer.Session
	repo     storage.HistoryRepo
	cache    *redisstore.SnapshotCache
	severity *s8.SeverityMap
	appm     *metrics.AppMetrics
	log      *zap.Logger
	interval time.Duration

	// 上一轮故障表，用于沿变检测
	prev s8.FaultSet
}

// New 创建采集器
func New(sess *printer.Session, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		sess:     sess,
		severity: s8.DefaultSeverityMap(),
		log:      logger,
		interval: interval,
	}
}

// SetRepo 启用落库
func (p *Poller) SetRepo(r storage.HistoryRepo) { p.repo = r }

// SetCache 启用快照缓存
func (p *Poller) SetCache(c *redisstore.SnapshotCache) { p.cache = c }

// SetMetrics 启用指标
func (p *Poller) SetMetrics(m *metrics.AppMetrics) { p.appm = m }

// SetSeverityMap 替换故障分级表
func (p *Poller) SetSeverityMap(m *s8.SeverityMap) { p.severity = m }

// Run 阻塞运行采集循环，直到 ctx 取消
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("采集器启动", zap.Duration("interval", p.interval))
	for {
		if err := p.collect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn("采集失败", zap.Error(err))
			p.countPoll("error")
		} else {
			p.countPoll("ok")
		}

		select {
		case <-ctx.Done():
			p.log.Info("采集器退出")
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) countPoll(result string) {
	if p.appm != nil {
		p.appm.PollTotal.WithLabelValues(result).Inc()
	}
}

// collect 执行一轮采集
func (p *Poller) collect(ctx context.Context) error {
	now := time.Now()

	faults, err := p.sess.GetFaults(ctx)
	if err != nil {
		return err
	}
	p.publishFaultGauges(faults)
	p.recordTransitions(ctx, faults, now)

	snap := &redisstore.Snapshot{
		SampledAt:     now,
		Online:        true,
		AvailableJets: faults.AvailableJets(),
		ActiveFaults:  faults.Active(),
	}
	if p.appm != nil {
		p.appm.AvailableJetsGauge.Set(float64(snap.AvailableJets))
	}

	var statusSamples []models.StatusSample
	var counterSamples []models.CounterSample
	for jet := 1; jet <= s8.MaxJets; jet++ {
		if !faults.JetPresent(jet) {
			continue
		}
		js, err := p.collectJet(ctx, jet, now)
		if err != nil {
			p.log.Warn("喷头采集失败", zap.Int("jet", jet), zap.Error(err))
			continue
		}
		snap.Jets = append(snap.Jets, js.snapshot)
		statusSamples = append(statusSamples, js.status)
		counterSamples = append(counterSamples, js.counter)
	}

	params, err := p.sess.GetParameters(ctx)
	if err != nil {
		return err
	}
	snap.Params = params

	if p.repo != nil {
		sample := models.ParameterSample{
			ID:                uuid.NewString(),
			MotorSpeed:        int32(params.MotorSpeed),
			Pressure:          params.Pressure,
			ViscoFillingTimes: int32(params.ViscoFillingTimes),
			AdditiveAdded:     int32(params.AdditiveAdded),
			AverageJetSpeed:   params.AverageJetSpeed,
			TempElectronics:   int32(params.TemperatureOfElectronics),
			TempInkCircuit:    int32(params.TemperatureOfInkCircuit),
			SampledAt:         now,
		}
		err := p.repo.WithTx(ctx, func(repo storage.HistoryRepo) error {
			for i := range statusSamples {
				if err := repo.InsertStatusSample(ctx, &statusSamples[i]); err != nil {
					return err
				}
			}
			for i := range counterSamples {
				if err := repo.InsertCounterSample(ctx, &counterSamples[i]); err != nil {
					return err
				}
			}
			return repo.InsertParameterSample(ctx, &sample)
		})
		if err != nil {
			p.log.Error("采样落库失败", zap.Error(err))
		}
	}

	if p.cache != nil {
		if err := p.cache.Store(ctx, snap); err != nil {
			p.log.Warn("快照缓存写入失败", zap.Error(err))
		}
	}
	return nil
}

type jetSample struct {
	snapshot redisstore.JetSnapshot
	status   models.StatusSample
	counter  models.CounterSample
}

func (p *Poller) collectJet(ctx context.Context, jet int, at time.Time) (*jetSample, error) {
	statusText, err := p.sess.GetJetStatus(ctx, jet)
	if err != nil {
		return nil, err
	}
	speed, err := p.sess.GetJetSpeed(ctx, jet)
	if err != nil {
		return nil, err
	}
	counter, err := p.sess.GetJetCounter(ctx, jet)
	if err != nil {
		return nil, err
	}

	if p.appm != nil {
		label := strconv.Itoa(jet)
		p.appm.JetSpeedGauge.WithLabelValues(label).Set(speed)
		p.appm.JetCounterGauge.WithLabelValues(label).Set(float64(counter))
	}

	code, _ := s8.StatusCodeOf(statusText)
	return &jetSample{
		snapshot: redisstore.JetSnapshot{
			JetID:      jet,
			StatusText: statusText,
			Speed:      speed,
			Counter:    counter,
		},
		status: models.StatusSample{
			ID:         uuid.NewString(),
			JetID:      int16(jet),
			StatusCode: int16(code),
			StatusText: statusText,
			JetSpeed:   speed,
			SampledAt:  at,
		},
		counter: models.CounterSample{
			ID:        uuid.NewString(),
			JetID:     int16(jet),
			Counter:   int64(counter),
			SampledAt: at,
		},
	}, nil
}

// publishFaultGauges 按固定键名全量刷新故障指标
func (p *Poller) publishFaultGauges(faults s8.FaultSet) {
	if p.appm == nil {
		return
	}
	for _, name := range s8.Names() {
		v := 0.0
		if faults[name] {
			v = 1.0
		}
		p.appm.FaultGauge.WithLabelValues(name).Set(v)
	}
}

// recordTransitions 对比上一轮故障表并记录沿变事件
func (p *Poller) recordTransitions(ctx context.Context, faults s8.FaultSet, at time.Time) {
	prev := p.prev
	p.prev = faults
	if prev == nil {
		// 首轮无基线，仅记录当前已置位的故障
		for _, name := range s8.Names() {
			if faults[name] {
				p.emitEvent(ctx, name, true, at)
			}
		}
		return
	}
	for _, name := range s8.Names() {
		was, is := prev[name], faults[name]
		switch {
		case is && !was:
			p.emitEvent(ctx, name, true, at)
		case !is && was:
			p.emitEvent(ctx, name, false, at)
		}
	}
}

func (p *Poller) emitEvent(ctx context.Context, name string, raised bool, at time.Time) {
	sev := p.severity.Classify(name)
	if raised {
		p.log.Warn("故障出现",
			zap.String("fault", name),
			zap.String("severity", string(sev)))
	} else {
		p.log.Info("故障恢复", zap.String("fault", name))
	}

	if p.repo == nil {
		return
	}
	if raised {
		e := &models.FaultEvent{
			ID:         uuid.NewString(),
			FaultName:  name,
			Severity:   string(sev),
			Raised:     true,
			OccurredAt: at,
		}
		if err := p.repo.InsertFaultEvent(ctx, e); err != nil {
			p.log.Error("故障事件落库失败", zap.Error(err))
		}
		return
	}
	if err := p.repo.CloseFaultEvent(ctx, name, at); err != nil {
		p.log.Error("故障闭合失败", zap.Error(err))
	}
	e := &models.FaultEvent{
		ID:         uuid.NewString(),
		FaultName:  name,
		Severity:   string(sev),
		Raised:     false,
		OccurredAt: at,
	}
	if err := p.repo.InsertFaultEvent(ctx, e); err != nil {
		p.log.Error("故障事件落库失败", zap.Error(err))
	}
}
