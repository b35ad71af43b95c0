package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FaultStat 单个故障键名在统计窗口内的聚合
type FaultStat struct {
	FaultName string
	Severity  string
	Raised    int64
	Cleared   int64
	LastAt    time.Time
}

// StatsRepo 基于原生 SQL 的故障统计查询。
// 聚合查询走 pgx 直连而非 GORM，窗口扫描量大时省去 ORM 扫描开销。
type StatsRepo struct {
	pool *pgxpool.Pool
}

// NewStatsRepo 创建统计查询仓储
func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// FaultStats 统计 since 之后每个故障键名的出现/恢复次数
func (r *StatsRepo) FaultStats(ctx context.Context, since time.Time) ([]FaultStat, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT fault_name,
               MAX(severity)                                  AS severity,
               COUNT(*) FILTER (WHERE raised)                 AS raised,
               COUNT(*) FILTER (WHERE NOT raised)             AS cleared,
               MAX(occurred_at)                               AS last_at
        FROM fault_events
        WHERE occurred_at >= $1
        GROUP BY fault_name
        ORDER BY raised DESC, fault_name`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FaultStat
	for rows.Next() {
		var s FaultStat
		if err := rows.Scan(&s.FaultName, &s.Severity, &s.Raised, &s.Cleared, &s.LastAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
