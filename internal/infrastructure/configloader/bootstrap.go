package configloader

import (
	"encoding/json"
	"fmt"
	"time"

	obswire "github.com/bionicotaku/lingo-utils/observability"
)

// bootstrapFile 映射配置文件的原始形状，由 kratos config 扫描填充。
// 字段全部可空，缺省值在 normalize 阶段补齐。
type bootstrapFile struct {
	Server struct {
		HTTP struct {
			Network string   `json:"network"`
			Addr    string   `json:"addr"`
			Timeout duration `json:"timeout"`
		} `json:"http"`
	} `json:"server"`
	Data struct {
		Postgres struct {
			DSN               string   `json:"dsn"`
			MaxOpenConns      int      `json:"max_open_conns"`
			MinOpenConns      int      `json:"min_open_conns"`
			MaxConnLifetime   duration `json:"max_conn_lifetime"`
			MaxConnIdleTime   duration `json:"max_conn_idle_time"`
			HealthCheckPeriod duration `json:"health_check_period"`
			Schema            string   `json:"schema"`
			Transaction       struct {
				DefaultIsolation string   `json:"default_isolation"`
				DefaultTimeout   duration `json:"default_timeout"`
				LockTimeout      duration `json:"lock_timeout"`
				MaxRetries       int      `json:"max_retries"`
			} `json:"transaction"`
		} `json:"postgres"`
		GCS struct {
			Bucket string `json:"bucket"`
		} `json:"gcs"`
	} `json:"data"`
	Observability struct {
		Tracing *struct {
			Enabled       bool     `json:"enabled"`
			Exporter      string   `json:"exporter"`
			Endpoint      string   `json:"endpoint"`
			Insecure      bool     `json:"insecure"`
			SamplingRatio float64  `json:"sampling_ratio"`
			BatchTimeout  duration `json:"batch_timeout"`
			ExportTimeout duration `json:"export_timeout"`
			Required      bool     `json:"required"`
		} `json:"tracing"`
		Metrics *struct {
			Enabled  bool     `json:"enabled"`
			Exporter string   `json:"exporter"`
			Endpoint string   `json:"endpoint"`
			Insecure bool     `json:"insecure"`
			Interval duration `json:"interval"`
			Required bool     `json:"required"`
		} `json:"metrics"`
	} `json:"observability"`
}

// duration 支持 "5s" 风格字符串与纯数字（秒）两种写法。
type duration time.Duration

func (d *duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", v, err)
		}
		*d = duration(parsed)
		return nil
	case float64:
		*d = duration(time.Duration(v * float64(time.Second)))
		return nil
	default:
		return fmt.Errorf("unsupported duration value %v", raw)
	}
}

func (d duration) std() time.Duration {
	return time.Duration(d)
}

// normalize 把文件形状转换为归一化配置。
func normalize(bf *bootstrapFile) RuntimeConfig {
	if bf == nil {
		return RuntimeConfig{}
	}
	cfg := RuntimeConfig{
		Server: ServerConfig{
			Network: bf.Server.HTTP.Network,
			Address: bf.Server.HTTP.Addr,
			Timeout: bf.Server.HTTP.Timeout.std(),
		},
		Database: DatabaseConfig{
			DSN:               bf.Data.Postgres.DSN,
			MaxOpenConns:      bf.Data.Postgres.MaxOpenConns,
			MinOpenConns:      bf.Data.Postgres.MinOpenConns,
			MaxConnLifetime:   bf.Data.Postgres.MaxConnLifetime.std(),
			MaxConnIdleTime:   bf.Data.Postgres.MaxConnIdleTime.std(),
			HealthCheckPeriod: bf.Data.Postgres.HealthCheckPeriod.std(),
			Schema:            bf.Data.Postgres.Schema,
			Transaction: TransactionConfig{
				DefaultIsolation: bf.Data.Postgres.Transaction.DefaultIsolation,
				DefaultTimeout:   bf.Data.Postgres.Transaction.DefaultTimeout.std(),
				LockTimeout:      bf.Data.Postgres.Transaction.LockTimeout.std(),
				MaxRetries:       bf.Data.Postgres.Transaction.MaxRetries,
			},
		},
		GCS: GCSConfig{
			Bucket: bf.Data.GCS.Bucket,
		},
	}
	fillDefaults(&cfg)
	return cfg
}

// toObservabilityConfig 把可观测性配置段转换为 observability 包的规范化结构。
func toObservabilityConfig(bf *bootstrapFile) obswire.ObservabilityConfig {
	if bf == nil {
		return obswire.ObservabilityConfig{}
	}
	var cfg obswire.ObservabilityConfig
	if tr := bf.Observability.Tracing; tr != nil {
		cfg.Tracing = &obswire.TracingConfig{
			Enabled:       tr.Enabled,
			Exporter:      tr.Exporter,
			Endpoint:      tr.Endpoint,
			Insecure:      tr.Insecure,
			SamplingRatio: tr.SamplingRatio,
			BatchTimeout:  tr.BatchTimeout.std(),
			ExportTimeout: tr.ExportTimeout.std(),
			Required:      tr.Required,
		}
	}
	if mt := bf.Observability.Metrics; mt != nil {
		cfg.Metrics = &obswire.MetricsConfig{
			Enabled:  mt.Enabled,
			Exporter: mt.Exporter,
			Endpoint: mt.Endpoint,
			Insecure: mt.Insecure,
			Interval: mt.Interval.std(),
			Required: mt.Required,
		}
	}
	return cfg
}

func fillDefaults(cfg *RuntimeConfig) {
	if cfg.Server.Network == "" {
		cfg.Server.Network = "tcp"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0:8000"
	}
	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Database.Schema == "" {
		cfg.Database.Schema = "gallery"
	}
}
