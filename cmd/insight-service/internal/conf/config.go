package conf

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config 服务全量配置
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Data          DataConfig          `mapstructure:"data"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Analytics     AnalyticsConfig     `mapstructure:"analytics"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig HTTP 与指标端口配置
type ServerConfig struct {
	HTTPAddr     string        `mapstructure:"http_addr"`
	MetricsAddr  string        `mapstructure:"metrics_addr"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// DataConfig 记录数据源配置。driver 取 csv、postgres 或 clickhouse。
type DataConfig struct {
	Driver     string           `mapstructure:"driver"`
	CSVPath    string           `mapstructure:"csv_path"`
	Database   DatabaseConfig   `mapstructure:"database"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
}

// DatabaseConfig Postgres 配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ClickHouseConfig ClickHouse 配置
type ClickHouseConfig struct {
	Addr     string `mapstructure:"addr"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RedisConfig Redis 配置，addr 为空时退回内存缓存
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CacheConfig 缓存策略
type CacheConfig struct {
	InsightTTL time.Duration `mapstructure:"insight_ttl"`
}

// AnalyticsConfig 异常检测参数
type AnalyticsConfig struct {
	Contamination float64 `mapstructure:"contamination"`
	TreeCount     int     `mapstructure:"tree_count"`
	Seed          int64   `mapstructure:"seed"`
}

// LLMConfig 叙事模型配置
type LLMConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	APIKey             string        `mapstructure:"api_key"`
	Model              string        `mapstructure:"model"`
	Temperature        float64       `mapstructure:"temperature"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerMaxRequests uint32        `mapstructure:"breaker_max_requests"`
	BreakerInterval    time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	BreakerFailures    uint32        `mapstructure:"breaker_failures"`
}

// ObservabilityConfig 链路追踪配置
type ObservabilityConfig struct {
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// Load 读取配置文件并套用默认值与环境变量覆盖
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 敏感项允许环境变量覆盖
	if pw := os.Getenv("DB_PASSWORD"); pw != "" {
		cfg.Data.Database.Password = pw
	}
	if pw := os.Getenv("CLICKHOUSE_PASSWORD"); pw != "" {
		cfg.Data.ClickHouse.Password = pw
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")

	v.SetDefault("data.driver", "csv")
	v.SetDefault("data.csv_path", "data/warehouse_metrics.csv")
	v.SetDefault("data.database.port", 5432)
	v.SetDefault("data.database.sslmode", "disable")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "supplysight")

	v.SetDefault("cache.insight_ttl", "10m")

	v.SetDefault("analytics.contamination", 0.15)
	v.SetDefault("analytics.tree_count", 200)
	v.SetDefault("analytics.seed", 42)

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.breaker_max_requests", 1)
	v.SetDefault("llm.breaker_interval", "60s")
	v.SetDefault("llm.breaker_timeout", "30s")
	v.SetDefault("llm.breaker_failures", 5)

	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.sample_rate", 0.1)
}
