package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvPrefix 环境变量前缀，层级用双下划线分隔：BILLINGEST_SERVER__PORT -> server.port
	EnvPrefix = "BILLINGEST_"
	// EnvConfigFile 额外的 YAML 配置文件路径
	EnvConfigFile = "BILLINGEST_CONFIG"

	configFileName = "config.toml"
)

// 服务分类策略
const (
	ClassifierRandom  = "random"
	ClassifierKeyword = "keyword"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server" koanf:"server"`
	Data   DataConfig   `toml:"data" koanf:"data"`
	Import ImportConfig `toml:"import" koanf:"import"`
	Log    LogConfig    `toml:"log" koanf:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" koanf:"port"`
	DevMode bool `toml:"dev_mode" koanf:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir" koanf:"data_dir"`
}

// ImportConfig 导入配置
type ImportConfig struct {
	MaxUploadMB    int64   `toml:"max_upload_mb" koanf:"max_upload_mb"`
	FraudThreshold float64 `toml:"fraud_threshold" koanf:"fraud_threshold"`
	RandomSeed     int64   `toml:"random_seed" koanf:"random_seed"` // 0 表示按时间取种子
	Classifier     string  `toml:"classifier" koanf:"classifier"`   // random / keyword
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level" koanf:"level"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string // 实际读取的 config.toml，未读取时为空
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20261,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Import: ImportConfig{
			MaxUploadMB:    20,
			FraudThreshold: 0.9,
			Classifier:     ClassifierRandom,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate 检查配置取值
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Import.MaxUploadMB <= 0 {
		return fmt.Errorf("import.max_upload_mb must be positive: %d", c.Import.MaxUploadMB)
	}
	if c.Import.FraudThreshold <= 0 || c.Import.FraudThreshold > 1 {
		return fmt.Errorf("import.fraud_threshold must be in (0, 1]: %v", c.Import.FraudThreshold)
	}
	switch c.Import.Classifier {
	case ClassifierRandom, ClassifierKeyword:
	default:
		return fmt.Errorf("import.classifier must be %q or %q: %q", ClassifierRandom, ClassifierKeyword, c.Import.Classifier)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// MaxUploadBytes 上传大小上限（字节）
func (c *AppConfig) MaxUploadBytes() int64 {
	return c.Import.MaxUploadMB << 20
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadFromDir(exeDir)
}

// LoadFromDir 依次叠加：默认值 -> dir/config.toml -> BILLINGEST_CONFIG 指向的 YAML -> BILLINGEST_ 环境变量
func LoadFromDir(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	config := DefaultConfig()

	configPath := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.Path = configPath
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case !os.IsNotExist(err):
		return nil, info, err
	}

	if err := applyOverrides(config); err != nil {
		return nil, info, err
	}
	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyOverrides 用 koanf 叠加 YAML 文件与环境变量，未出现的键保持原值
func applyOverrides(config *AppConfig) error {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return err
	}
	// BILLINGEST_CONFIG 本身不是配置项
	k.Delete("config")

	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("failed to apply config overrides: %w", err)
	}
	return nil
}

// SaveConfig 保存配置到可执行文件目录下的 config.toml，返回写入路径
func SaveConfig(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return SaveToDir(config, exeDir)
}

// SaveToDir 保存配置到 dir/config.toml，返回写入路径
func SaveToDir(config *AppConfig, dir string) (string, error) {
	if err := config.Validate(); err != nil {
		return "", err
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// EnsureDataDir 确保数据目录存在
// 相对路径以可执行文件所在目录为基准
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DatabasePath SQLite 数据库文件路径
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "billing.db")
}
