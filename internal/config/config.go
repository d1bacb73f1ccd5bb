// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config 应用配置，全部来自环境变量
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Planner   PlannerConfig   `envPrefix:"PLANNER_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `env:"NAME" envDefault:"paiqi"`
	Env  string `env:"ENV" envDefault:"development"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            int           `env:"PORT" envDefault:"7012"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"paiqi"`
	User            string        `env:"USER" envDefault:"paiqi"`
	Password        string        `env:"PASSWORD" envDefault:"paiqi123"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// PlannerConfig 排期引擎配置
type PlannerConfig struct {
	StartHour      int     `env:"START_HOUR" envDefault:"9"`        // 每日工作开始小时
	EndHour        int     `env:"END_HOUR" envDefault:"18"`         // 每日工作结束小时
	MaxHoursPerDay float64 `env:"MAX_HOURS_PER_DAY" envDefault:"8"` // 默认单日容量
	PopulationSize int     `env:"POPULATION_SIZE" envDefault:"20"`  // 遗传算法种群规模
	Generations    int     `env:"GENERATIONS" envDefault:"40"`      // 遗传算法迭代代数
	SampleCount    int     `env:"SAMPLE_COUNT" envDefault:"200"`    // 蒙特卡洛采样次数
	Seed           int64   `env:"SEED" envDefault:"1"`              // 随机种子，保证可复现
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool    `env:"ENABLED" envDefault:"true"`
	RPS     float64 `env:"RPS" envDefault:"10"` // 每客户端每秒请求数
	Burst   int     `env:"BURST" envDefault:"20"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载并校验配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值范围
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("服务端口 %d 不合法", c.Server.Port)
	}
	if c.Planner.StartHour < 0 || c.Planner.StartHour > 23 {
		return fmt.Errorf("工作开始小时 %d 不合法", c.Planner.StartHour)
	}
	if c.Planner.EndHour <= c.Planner.StartHour || c.Planner.EndHour > 24 {
		return fmt.Errorf("工作结束小时 %d 必须晚于开始小时且不超过 24", c.Planner.EndHour)
	}
	if c.Planner.MaxHoursPerDay <= 0 {
		return fmt.Errorf("单日容量必须大于 0")
	}
	if window := float64(c.Planner.EndHour - c.Planner.StartHour); c.Planner.MaxHoursPerDay > window {
		return fmt.Errorf("单日容量 %.1f 超过工作时段长度 %.0f 小时", c.Planner.MaxHoursPerDay, window)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("限流参数必须大于 0")
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
