package configloader

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"

	logger "github.com/bionicotaku/lingo-services-gallery/internal/infrastructure/logger"

	obswire "github.com/bionicotaku/lingo-utils/observability"
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

const (
	envConfPath       = "CONF_PATH"
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
	envGCSBucket      = "GCS_BUCKET"
)

var envFileNames = []string{".env.local", ".env"}

// ServiceMetadata 保存服务标识信息，供日志和可观测性组件使用。
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// Bundle 聚合强类型的配置片段，供下游 Wire 注入使用。
type Bundle struct {
	Config    RuntimeConfig
	LoggerCfg logger.Config
	ObsConfig obswire.ObservabilityConfig
	Service   ServiceMetadata
	TxConfig  txconfig.Config
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口，提供包含上下文的错误信息。
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// ParseConfPath 注册 -conf flag 并解析命令行参数，返回最终的配置路径。
func ParseConfPath(fs *flag.FlagSet, args []string) (string, error) {
	confFlag := fs.String("conf", "", "config path, eg: -conf configs")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return ResolveConfPath(*confFlag), nil
}

// ResolveConfPath 应用回退规则确定要加载的配置目录/文件路径。
// 优先级：显式传入路径 > CONF_PATH 环境变量 > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

// LoadBootstrap 从配置文件构建 Bundle。
//
// 流程：
// 1. best-effort 加载 .env 文件
// 2. 用 kratos config 加载并扫描配置文件
// 3. 应用环境变量覆盖（DATABASE_URL、PORT、GCS_BUCKET）
// 4. 推导服务元信息并派生 logger / observability / txmanager 配置
//
// 返回的 cleanup 释放配置源持有的资源。
func LoadBootstrap(confPath, name, version string) (*Bundle, func(), error) {
	loadEnvFiles(confPath)

	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		c.Close()
		return nil, nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}

	var bf bootstrapFile
	if err := c.Scan(&bf); err != nil {
		c.Close()
		return nil, nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}

	cfg := normalize(&bf)
	applyEnvOverrides(&cfg)
	if cfg.Database.DSN == "" {
		c.Close()
		return nil, nil, BuildError{Stage: "validate", Path: confPath, Err: fmt.Errorf("data.postgres.dsn is required")}
	}

	meta := buildServiceMetadata(name, version)
	bundle := &Bundle{
		Config:    cfg,
		LoggerCfg: meta.LoggerConfig(),
		ObsConfig: toObservabilityConfig(&bf),
		Service:   meta,
		TxConfig: txconfig.Config{
			DefaultIsolation: cfg.Database.Transaction.DefaultIsolation,
			DefaultTimeout:   cfg.Database.Transaction.DefaultTimeout,
			LockTimeout:      cfg.Database.Transaction.LockTimeout,
			MaxRetries:       cfg.Database.Transaction.MaxRetries,
		},
	}

	cleanup := func() { _ = c.Close() }
	return bundle, cleanup, nil
}

// applyEnvOverrides 应用环境变量覆盖配置文件中的特定字段。
// 环境变量为空时不覆盖，保留配置文件原值。
func applyEnvOverrides(cfg *RuntimeConfig) {
	if cfg == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if port := os.Getenv(envPort); port != "" {
		cfg.Server.Address = replacePort(cfg.Server.Address, port)
	}
	if bucket := os.Getenv(envGCSBucket); bucket != "" {
		cfg.GCS.Bucket = bucket
	}
}

// buildServiceMetadata 构建服务元信息。
// 优先级：构建期注入值 > 环境变量 > 默认值。
func buildServiceMetadata(name, version string) ServiceMetadata {
	if name == "" {
		name = os.Getenv(envServiceName)
	}
	if name == "" {
		name = defaultServiceName
	}
	if version == "" {
		version = os.Getenv(envServiceVersion)
	}
	if version == "" {
		version = defaultServiceVersion
	}
	env := os.Getenv(envAppEnv)
	if env == "" {
		env = defaultEnvironment
	}
	host, _ := os.Hostname()

	return ServiceMetadata{
		Name:        name,
		Version:     version,
		Environment: env,
		InstanceID:  host,
	}
}

// LoggerConfig 将服务元信息转换为 logger.Config。
func (m ServiceMetadata) LoggerConfig() logger.Config {
	return logger.Config{
		Service: m.Name,
		Version: m.Version,
		HostID:  m.InstanceID,
		Env:     m.Environment,
	}
}

// replacePort 替换地址中的端口部分，保留 host。
// 支持格式：
//   - "0.0.0.0:9090" -> "0.0.0.0:8080"
//   - ":9090" -> ":8080"
//   - "[::1]:9090" -> "[::1]:8080"
func replacePort(addr, newPort string) string {
	if addr == "" {
		return "0.0.0.0:" + newPort
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "0.0.0.0:" + newPort
	}
	return net.JoinHostPort(host, newPort)
}

// loadEnvFiles best-effort 加载配置相关的 .env 文件，失败时忽略以保持幂等。
func loadEnvFiles(confPath string) {
	files := envFileCandidates(confPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates 按优先级返回存在的 .env 文件路径。
// 搜索目录：confPath 所在目录 -> 当前工作目录；.env.local 优先于 .env。
func envFileCandidates(confPath string) []string {
	dirs := orderedDirs(confPath)
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		for _, name := range envFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			files = append(files, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return files
}

// orderedDirs 按优先级返回用于搜索 .env 文件的目录列表（去重）。
func orderedDirs(confPath string) []string {
	var dirs []string
	appendUnique := func(path string) {
		if path == "" {
			return
		}
		clean := filepath.Clean(path)
		for _, existing := range dirs {
			if existing == clean {
				return
			}
		}
		dirs = append(dirs, clean)
	}

	if confPath != "" {
		if info, err := os.Stat(confPath); err == nil {
			if info.IsDir() {
				appendUnique(confPath)
			} else {
				appendUnique(filepath.Dir(confPath))
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		appendUnique(cwd)
	}

	return dirs
}
