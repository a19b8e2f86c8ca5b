// Package configloader 负责加载 bootstrap 配置并归一化为强类型结构，
// 供 Wire 注入到各基础设施组件。
package configloader

import "time"

// RuntimeConfig 是归一化后的运行时配置根。
type RuntimeConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	GCS      GCSConfig
}

// ServerConfig 描述 HTTP 服务器监听参数。
type ServerConfig struct {
	Network string
	Address string
	Timeout time.Duration
}

// DatabaseConfig 描述 PostgreSQL 连接池参数。
type DatabaseConfig struct {
	DSN               string
	MaxOpenConns      int
	MinOpenConns      int
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	Schema            string
	Transaction       TransactionConfig
}

// TransactionConfig 描述事务管理器的默认行为。
type TransactionConfig struct {
	DefaultIsolation string
	DefaultTimeout   time.Duration
	LockTimeout      time.Duration
	MaxRetries       int
}

// GCSConfig 描述媒体对象存储所在的 bucket。
type GCSConfig struct {
	Bucket string
}
