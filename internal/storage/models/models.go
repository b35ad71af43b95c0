package models

import (
	"time"
)

// 注意：
// - 保持与 db/migrations/0001_init_up.sql 完全对齐
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// StatusSample 映射 status_samples 表（轮询采集的喷头状态）
type StatusSample struct {
	// 主键，UUID 由采集侧生成
	ID string `gorm:"column:id;type:uuid;primaryKey"`
	// 喷头号 1..4
	JetID int16 `gorm:"column:jet_id;not null;index:idx_status_jet_time,priority:1"`
	// 状态字节原值
	StatusCode int16 `gorm:"column:status_code;not null"`
	// 状态文本（协议固定八种）
	StatusText string `gorm:"column:status_text;type:text;not null"`
	// 墨线速度 m/s
	JetSpeed  float64   `gorm:"column:jet_speed;not null"`
	SampledAt time.Time `gorm:"column:sampled_at;not null;index:idx_status_jet_time,priority:2,sort:desc"`
}

func (StatusSample) TableName() string { return "status_samples" }

// ParameterSample 映射 parameter_samples 表（整机运行参数快照）
type ParameterSample struct {
	ID                string    `gorm:"column:id;type:uuid;primaryKey"`
	MotorSpeed        int32     `gorm:"column:motor_speed;not null"`
	Pressure          float64   `gorm:"column:pressure;not null"`
	ViscoFillingTimes int32     `gorm:"column:visco_filling_times;not null"`
	AdditiveAdded     int32     `gorm:"column:additive_added;not null"`
	AverageJetSpeed   float64   `gorm:"column:average_jet_speed;not null"`
	TempElectronics   int32     `gorm:"column:temp_electronics;not null"`
	TempInkCircuit    int32     `gorm:"column:temp_ink_circuit;not null"`
	SampledAt         time.Time `gorm:"column:sampled_at;not null;index"`
}

func (ParameterSample) TableName() string { return "parameter_samples" }

// CounterSample 映射 counter_samples 表（喷印计数）
type CounterSample struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	JetID     int16     `gorm:"column:jet_id;not null;index:idx_counter_jet_time,priority:1"`
	Counter   int64     `gorm:"column:counter;not null"`
	SampledAt time.Time `gorm:"column:sampled_at;not null;index:idx_counter_jet_time,priority:2,sort:desc"`
}

func (CounterSample) TableName() string { return "counter_samples" }

// FaultEvent 映射 fault_events 表（故障位沿变事件）
type FaultEvent struct {
	ID string `gorm:"column:id;type:uuid;primaryKey"`
	// 故障键名，设备级为裸名，喷头级带 jN_ 前缀
	FaultName string `gorm:"column:fault_name;type:text;not null;index:idx_fault_name_time,priority:1"`
	// 严重级别 info/warning/critical
	Severity string `gorm:"column:severity;type:text;not null"`
	// true=出现, false=恢复
	Raised     bool       `gorm:"column:raised;not null"`
	OccurredAt time.Time  `gorm:"column:occurred_at;not null;index:idx_fault_name_time,priority:2,sort:desc"`
	ClearedAt  *time.Time `gorm:"column:cleared_at"`
}

func (FaultEvent) TableName() string { return "fault_events" }
