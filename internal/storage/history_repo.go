package storage

import (
	"context"
	"time"

	"github.com/taoyao-code/cij-gateway/internal/storage/models"
)

// HistoryRepo 面向采集与查询层的存储抽象。
// 约束：
// - 禁止上层直接写 SQL，统一通过本接口访问
// - 实现需要提供事务封装 WithTx，保证同一轮采集的写入原子性
// - 接口必须保持 DB-agnostic（面向模型与基础类型）
type HistoryRepo interface {
	// WithTx 在单个事务中执行 fn，fn 内所有读写在同一事务中，
	// 嵌套调用复用当前事务。
	WithTx(ctx context.Context, fn func(repo HistoryRepo) error) error

	// ---------- 采样 ----------
	InsertStatusSample(ctx context.Context, s *models.StatusSample) error
	InsertParameterSample(ctx context.Context, s *models.ParameterSample) error
	InsertCounterSample(ctx context.Context, s *models.CounterSample) error

	// ---------- 故障事件 ----------
	// InsertFaultEvent 记录一次故障位沿变
	InsertFaultEvent(ctx context.Context, e *models.FaultEvent) error
	// CloseFaultEvent 为最近一次未闭合的出现事件写入恢复时间
	CloseFaultEvent(ctx context.Context, faultName string, clearedAt time.Time) error

	// ---------- 查询 ----------
	ListStatusSamples(ctx context.Context, jetID int, limit, offset int) ([]models.StatusSample, error)
	ListParameterSamples(ctx context.Context, limit, offset int) ([]models.ParameterSample, error)
	ListCounterSamples(ctx context.Context, jetID int, limit, offset int) ([]models.CounterSample, error)
	ListFaultEvents(ctx context.Context, faultName string, limit, offset int) ([]models.FaultEvent, error)
	// ActiveFaultEvents 返回所有未闭合的出现事件
	ActiveFaultEvents(ctx context.Context) ([]models.FaultEvent, error)
}
