// Package config 提供配置加载和管理功能
package config

import (
	"strings"
	"time"

	apperrors "webgen-ai-api/pkg/errors"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Static        StaticConfig        `yaml:"static" mapstructure:"static"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置（OpenAI 兼容接口）
type ProviderConfig struct {
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Model     string        `yaml:"model" mapstructure:"model"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// GenerationConfig 生成与落盘配置
type GenerationConfig struct {
	// BaseDir 生成文件的根目录，HTTP 服务下返回的 path 以它为前缀
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`
	// Isolate 是否为每次生成创建独立的随机子目录
	Isolate bool `yaml:"isolate" mapstructure:"isolate"`
	// SystemPrompt 会话中缺少 system 消息时注入的指令
	SystemPrompt string `yaml:"system_prompt" mapstructure:"system_prompt"`
	// MaxTokens 单次补全的输出上限
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// StaticConfig 落地页静态资源配置
type StaticConfig struct {
	Dir   string `yaml:"dir" mapstructure:"dir"`
	Index string `yaml:"index" mapstructure:"index"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// DefaultProviderConfig 返回默认提供商配置
func (c *Config) DefaultProviderConfig() (ProviderConfig, bool) {
	p, ok := c.LLM.Providers[strings.TrimSpace(c.LLM.DefaultProvider)]
	return p, ok
}

// Validate 校验启动所必需的配置，缺失时返回 ConfigurationError
func (c *Config) Validate() error {
	name := strings.TrimSpace(c.LLM.DefaultProvider)
	if name == "" {
		return apperrors.ErrConfiguration.WithDetail("llm.default_provider is empty")
	}
	p, ok := c.LLM.Providers[name]
	if !ok {
		return apperrors.ErrConfiguration.WithDetail("llm provider not found: " + name)
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return apperrors.New(apperrors.CodeConfiguration,
			"API key not found. Please set the "+APIKeyEnv+" environment variable.")
	}
	if strings.TrimSpace(c.Generation.BaseDir) == "" {
		return apperrors.ErrConfiguration.WithDetail("generation.base_dir is empty")
	}
	return nil
}
