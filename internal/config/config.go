package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 3000
	defaultStaticDir       = "public"
	defaultMaxConnections  = 10000
	defaultShutdownTimeout = 10 // 秒
	defaultRoomTTL         = 120
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultMaxPerSecond    = 10
	defaultMaxPerMinute    = 60
	defaultBanDuration     = 60
	defaultMessagePerSec   = 20

	envPrefix = "LUDO"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Security SecurityConfig `mapstructure:"security" yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	StaticDir       string `mapstructure:"static_dir" yaml:"static_dir"`             // 静态资源目录，为空时不提供
	MaxConnections  int    `mapstructure:"max_connections" yaml:"max_connections"`   // 最大并发连接数
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"` // 优雅关闭超时（秒）
}

// Addr 监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// RedisConfig Redis 配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	RoomTTL  int    `mapstructure:"room_ttl" yaml:"room_ttl"` // 房间快照过期时间（分钟）
}

// Enabled 是否启用 Redis
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// RoomTTLDuration 返回房间快照过期时长
func (c *RedisConfig) RoomTTLDuration() time.Duration {
	return time.Duration(c.RoomTTL) * time.Minute
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug / info / warn / error
	Format string `mapstructure:"format" yaml:"format"` // json / console
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	BlockedIPs     []string           `mapstructure:"blocked_ips" yaml:"blocked_ips"`
	RateLimit      RateLimitConfig    `mapstructure:"rate_limit" yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `mapstructure:"message_limit" yaml:"message_limit"`
}

// RateLimitConfig 连接速率限制（按 IP）
type RateLimitConfig struct {
	MaxPerSecond int `mapstructure:"max_per_second" yaml:"max_per_second"`
	MaxPerMinute int `mapstructure:"max_per_minute" yaml:"max_per_minute"`
	BanDuration  int `mapstructure:"ban_duration" yaml:"ban_duration"` // 秒
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// MessageLimitConfig 消息速率限制（按连接）
type MessageLimitConfig struct {
	MaxPerSecond int `mapstructure:"max_per_second" yaml:"max_per_second"`
}

// 命令行参数到配置键的映射
var flagKeys = map[string]string{
	"host":      "server.host",
	"port":      "server.port",
	"log-level": "log.level",
}

// Load 加载配置
// 优先级：命令行参数 > 环境变量（LUDO_ 前缀）> 配置文件 > 默认值
// path 为空时在 configs/ 和当前目录查找 config.yaml，找不到则只用默认值
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("绑定参数 --%s 失败: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", defaultHost)
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.static_dir", defaultStaticDir)
	v.SetDefault("server.max_connections", defaultMaxConnections)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.room_ttl", defaultRoomTTL)

	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.blocked_ips", []string{})
	v.SetDefault("security.rate_limit.max_per_second", defaultMaxPerSecond)
	v.SetDefault("security.rate_limit.max_per_minute", defaultMaxPerMinute)
	v.SetDefault("security.rate_limit.ban_duration", defaultBanDuration)
	v.SetDefault("security.message_limit.max_per_second", defaultMessagePerSec)
}

// Validate 校验配置，返回所有不合法项
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.MaxConnections < 1 {
		errs = append(errs, fmt.Sprintf("server.max_connections must be >= 1, got %d", c.Server.MaxConnections))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if c.Redis.RoomTTL < 0 {
		errs = append(errs, "redis.room_ttl must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, console], got %q", c.Log.Format))
	}

	rl := c.Security.RateLimit
	if rl.MaxPerSecond < 1 || rl.MaxPerMinute < 1 {
		errs = append(errs, "security.rate_limit limits must be >= 1")
	}
	if rl.BanDuration < 0 {
		errs = append(errs, "security.rate_limit.ban_duration must not be negative")
	}
	if c.Security.MessageLimit.MaxPerSecond < 1 {
		errs = append(errs, "security.message_limit.max_per_second must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置校验失败: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Dump 以 YAML 输出生效配置
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
