package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 存储驱动
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// AppConfig 应用配置
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Analysis AnalysisConfig `toml:"analysis"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `toml:"port"`
	DevMode     bool     `toml:"dev_mode"`
	CORSOrigins []string `toml:"cors_origins"`
	MaxUploadMB int      `toml:"max_upload_mb"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	Store   string `toml:"store"`   // sqlite | memory
	DBFile  string `toml:"db_file"` // 相对数据目录
}

// AnalysisConfig 对账与列推断参数
type AnalysisConfig struct {
	NearMatchPercent     float64 `toml:"near_match_percent"`
	BranchRepeatRatio    float64 `toml:"branch_repeat_ratio"`
	ProductDistinctRatio float64 `toml:"product_distinct_ratio"`
	SampleSize           int     `toml:"sample_size"`
	TablesPath           string  `toml:"tables_path"` // 外部查找表，为空时使用内置表
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console | json
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20262,
			DevMode:     false,
			CORSOrigins: []string{"http://localhost:5173"},
			MaxUploadMB: 32,
		},
		Data: DataConfig{
			DataDir: "data",
			Store:   StoreSQLite,
			DBFile:  "hammadde.db",
		},
		Analysis: AnalysisConfig{
			NearMatchPercent:     10,
			BranchRepeatRatio:    0.8,
			ProductDistinctRatio: 0.3,
			SampleSize:           10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
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

func exeDirOrCwd() string {
	exeDir, err := GetExeDir()
	if err != nil || exeDir == "" {
		return "."
	}
	return exeDir
}

// ConfigPath 默认配置文件路径：可执行文件同目录下的 config.toml
func ConfigPath() string {
	return filepath.Join(exeDirOrCwd(), "config.toml")
}

// LoadConfigWithInfo 从默认位置加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom 从指定 config.toml 加载配置
// 先读 .env（可执行文件目录与当前目录），文件不存在时使用默认配置，最后应用环境变量覆盖
func LoadConfigFrom(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv("HAMMADDE_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid HAMMADDE_PORT: %q", v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv("HAMMADDE_DATA_DIR")); v != "" {
		config.Data.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("HAMMADDE_STORE")); v != "" {
		config.Data.Store = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("HAMMADDE_LOG_LEVEL")); v != "" {
		config.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("HAMMADDE_TABLES_PATH")); v != "" {
		config.Analysis.TablesPath = v
	}
	switch config.Data.Store {
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", config.Data.Store)
	}
	return nil
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// SaveConfig 保存配置到默认位置
func SaveConfig(config *AppConfig) error {
	return SaveConfigTo(ConfigPath(), config)
}

// SaveConfigTo 保存配置到指定文件
func SaveConfigTo(configPath string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir 数据目录的绝对位置；相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDirOrCwd(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	subdirs := []string{"projects", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}

// DBPath SQLite 数据库文件路径
func DBPath(config *AppConfig) string {
	return GetDataPath(config, "", config.Data.DBFile)
}
