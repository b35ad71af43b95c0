package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/taoyao-code/cij-gateway/internal/storage"
	"github.com/taoyao-code/cij-gateway/internal/storage/models"
)

// Repository 基于 GORM 的 HistoryRepo 实现。
// 使用 isTx 标记区分事务上下文，避免嵌套事务重复 Begin/Commit。
type Repository struct {
	db   *gorm.DB
	isTx bool
}

// New 返回一个使用给定 *gorm.DB 的 HistoryRepo 实例。
func New(db *gorm.DB) storage.HistoryRepo {
	return &Repository{db: db}
}

// WithTx 复用现有事务或开启新事务执行 fn。
func (r *Repository) WithTx(ctx context.Context, fn func(storage.HistoryRepo) error) error {
	if r.isTx {
		return fn(r)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	child := &Repository{db: tx, isTx: true}
	if err := fn(child); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// InsertStatusSample 追加一条喷头状态采样。
func (r *Repository) InsertStatusSample(ctx context.Context, s *models.StatusSample) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// InsertParameterSample 追加一条运行参数采样。
func (r *Repository) InsertParameterSample(ctx context.Context, s *models.ParameterSample) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// InsertCounterSample 追加一条计数采样。
func (r *Repository) InsertCounterSample(ctx context.Context, s *models.CounterSample) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// InsertFaultEvent 记录一次故障位沿变。
func (r *Repository) InsertFaultEvent(ctx context.Context, e *models.FaultEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// CloseFaultEvent 闭合最近一次未恢复的出现事件。
// 无匹配记录时静默返回，位恢复先于出现属于采集重启后的正常情形。
func (r *Repository) CloseFaultEvent(ctx context.Context, faultName string, clearedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.FaultEvent{}).
		Where("id = (?)", r.db.WithContext(ctx).
			Model(&models.FaultEvent{}).
			Select("id").
			Where("fault_name = ? AND raised AND cleared_at IS NULL", faultName).
			Order("occurred_at DESC").
			Limit(1)).
		Update("cleared_at", clearedAt)
	return res.Error
}

// ListStatusSamples 按时间倒序分页返回状态采样，jetID 为 0 时不过滤喷头。
func (r *Repository) ListStatusSamples(ctx context.Context, jetID int, limit, offset int) ([]models.StatusSample, error) {
	var out []models.StatusSample
	q := r.db.WithContext(ctx).Order("sampled_at DESC")
	if jetID > 0 {
		q = q.Where("jet_id = ?", jetID)
	}
	q = paginate(q, limit, offset)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListParameterSamples 按时间倒序分页返回参数采样。
func (r *Repository) ListParameterSamples(ctx context.Context, limit, offset int) ([]models.ParameterSample, error) {
	var out []models.ParameterSample
	q := paginate(r.db.WithContext(ctx).Order("sampled_at DESC"), limit, offset)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListCounterSamples 按时间倒序分页返回计数采样。
func (r *Repository) ListCounterSamples(ctx context.Context, jetID int, limit, offset int) ([]models.CounterSample, error) {
	var out []models.CounterSample
	q := r.db.WithContext(ctx).Order("sampled_at DESC")
	if jetID > 0 {
		q = q.Where("jet_id = ?", jetID)
	}
	q = paginate(q, limit, offset)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListFaultEvents 按时间倒序分页返回故障事件，faultName 为空时不过滤。
func (r *Repository) ListFaultEvents(ctx context.Context, faultName string, limit, offset int) ([]models.FaultEvent, error) {
	var out []models.FaultEvent
	q := r.db.WithContext(ctx).Order("occurred_at DESC")
	if faultName != "" {
		q = q.Where("fault_name = ?", faultName)
	}
	q = paginate(q, limit, offset)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveFaultEvents 返回所有未闭合的出现事件。
func (r *Repository) ActiveFaultEvents(ctx context.Context) ([]models.FaultEvent, error) {
	var out []models.FaultEvent
	err := r.db.WithContext(ctx).
		Where("raised AND cleared_at IS NULL").
		Order("occurred_at DESC").
		Find(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return out, err
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}
