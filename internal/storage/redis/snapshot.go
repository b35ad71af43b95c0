package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/cij-gateway/internal/protocol/s8"
)

const snapshotKey = "cij:snapshot:latest"

// JetSnapshot 单喷头最近一次采集结果
type JetSnapshot struct {
	JetID      int     `json:"jet_id"`
	StatusText string  `json:"status_text"`
	Speed      float64 `json:"speed"`
	Counter    int     `json:"counter"`
}

// Snapshot 最近一轮采集的整机快照，过期即视为离线陈旧
type Snapshot struct {
	SampledAt     time.Time       `json:"sampled_at"`
	Online        bool            `json:"online"`
	AvailableJets int             `json:"available_jets"`
	Jets          []JetSnapshot   `json:"jets"`
	Params        s8.ParameterSet `json:"params"`
	ActiveFaults  []string        `json:"active_faults"`
}

// ErrNoSnapshot 缓存中无快照或已过期
var ErrNoSnapshot = errors.New("redis: no snapshot")

// SnapshotCache 以 TTL 键缓存最近一轮采集结果
type SnapshotCache struct {
	client *Client
	ttl    time.Duration
}

// NewSnapshotCache 创建快照缓存，ttl 通常取轮询周期的数倍
func NewSnapshotCache(client *Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Store 序列化并写入快照
func (c *SnapshotCache) Store(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey, data, c.ttl).Err()
}

// Load 读取最近快照，键不存在时返回 ErrNoSnapshot
func (c *SnapshotCache) Load(ctx context.Context) (*Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
