package gormrepo

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按 DSN 建立 GORM 连接。
// SQL 级日志已由 pgx tracelog 承担，这里关闭 GORM 自带日志避免重复。
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}
