package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlorentedev/roastmydouban/internal/credential"
)

// Config holds all application configuration. It is read once at startup
// and never mutated afterwards.
type Config struct {
	Port           int           `yaml:"port"`
	RedisURL       string        `yaml:"redis_url"`
	DailyLimit     int           `yaml:"daily_limit"`
	DoubanURL      string        `yaml:"douban_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Providers      Providers     `yaml:"providers"`
}

// Providers holds the server-side LLM credentials and model choices.
type Providers struct {
	GeminiAPIKey     string `yaml:"gemini_api_key"`
	GeminiModel      string `yaml:"gemini_model"`
	DeepSeekAPIKey   string `yaml:"deepseek_api_key"`
	QwenAPIKey       string `yaml:"qwen_api_key"`
	DoubaoAPIKey     string `yaml:"doubao_api_key"`
	DoubaoEndpointID string `yaml:"doubao_endpoint_id"`
	ZhipuAPIKey      string `yaml:"zhipu_api_key"`
	ClaudeAPIKey     string `yaml:"claude_api_key"`
	ClaudeModel      string `yaml:"claude_model"`
}

func defaults() Config {
	return Config{
		Port:           8090,
		DailyLimit:     5,
		DoubanURL:      "https://m.douban.com",
		RequestTimeout: 120 * time.Second,
		AllowedOrigins: []string{"*"},
		Providers: Providers{
			GeminiModel: "gemini-2.5-flash",
			ClaudeModel: "claude-sonnet-4-5-20250929",
		},
	}
}

// Load loads configuration from a YAML file (if path is non-empty),
// then applies environment variable overrides. An empty path returns defaults + env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if v := os.Getenv("RMD_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid RMD_PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("RMD_DAILY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid RMD_DAILY_LIMIT %q: %w", v, err)
		}
		cfg.DailyLimit = n
	}
	if v := os.Getenv("RMD_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid RMD_REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("RMD_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	override(&cfg.RedisURL, "RMD_REDIS_URL", "REDIS_URL")
	override(&cfg.DoubanURL, "RMD_DOUBAN_URL")

	p := &cfg.Providers
	override(&p.GeminiAPIKey, "RMD_GEMINI_API_KEY", "GOOGLE_API_KEY")
	override(&p.GeminiModel, "RMD_GEMINI_MODEL")
	override(&p.DeepSeekAPIKey, "RMD_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY")
	override(&p.QwenAPIKey, "RMD_QWEN_API_KEY", "DASHSCOPE_API_KEY")
	override(&p.DoubaoAPIKey, "RMD_DOUBAO_API_KEY", "DOUBAO_API_KEY")
	override(&p.DoubaoEndpointID, "RMD_DOUBAO_ENDPOINT_ID", "DOUBAO_ENDPOINT_ID_TEXT")
	override(&p.ZhipuAPIKey, "RMD_ZHIPU_API_KEY", "ZHIPU_API_KEY")
	override(&p.ClaudeAPIKey, "RMD_CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	override(&p.ClaudeModel, "RMD_CLAUDE_MODEL")

	if cfg.DailyLimit <= 0 {
		return Config{}, fmt.Errorf("config: daily_limit must be positive, got %d", cfg.DailyLimit)
	}
	return cfg, nil
}

// Credentials returns the server default credential set. Doubao only counts
// when its endpoint id is configured as well.
func (c Config) Credentials() credential.Set {
	p := c.Providers
	s := credential.Set{
		"gemini":   p.GeminiAPIKey,
		"deepseek": p.DeepSeekAPIKey,
		"qwen":     p.QwenAPIKey,
		"zhipu":    p.ZhipuAPIKey,
		"claude":   p.ClaudeAPIKey,
	}
	if p.DoubaoEndpointID != "" {
		s["doubao"] = p.DoubaoAPIKey
	}
	for k, v := range s {
		if v == "" {
			delete(s, k)
		}
	}
	return s
}

// override sets *dst from the first non-empty variable in names.
func override(dst *string, names ...string) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			*dst = v
			return
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
