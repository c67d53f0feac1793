package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Agent     AgentConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int `validate:"min=1,max=65535"`
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type LLMConfig struct {
	Provider    string `validate:"oneof=openai gemini anthropic"`
	Model       string `validate:"required"`
	BaseURL     string
	APIKey      string `validate:"required"`
	Temperature float32
	MaxTokens   int `validate:"min=1"`
	TimeoutSec  int `validate:"min=1"`
	Breaker     BreakerConfig
}

type BreakerConfig struct {
	FailureThreshold uint32
	CooldownSec      int
}

type AgentConfig struct {
	PDFFolder         string  `validate:"required"`
	MaxDocumentChars  int     `validate:"min=1"`
	GoodEnoughScore   float64 `validate:"gte=0,lte=10"`
	MaxQuestionLength int     `validate:"min=1"`
}

type RateLimitConfig struct {
	Enabled              bool
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

// Load reads defaults, an optional YAML file and the environment, in that order
// of precedence (environment wins). An explicit configFile must exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pdf-agent")
	}

	v.SetEnvPrefix("PDF_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	resolveProvider(&config.LLM)

	return &config, nil
}

// Validate reports the first missing or out-of-range setting using the
// dotted key a user would set.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fe := fieldErrs[0]
	key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	if fe.Tag() == "required" {
		return fmt.Errorf("invalid configuration: %s is required", key)
	}
	return fmt.Errorf("invalid configuration: %s fails %q (got %v)", key, fe.Tag()+"="+fe.Param(), fe.Value())
}

// providerDefaults lists, in inference order, the plain API key variable and
// default model of each provider.
var providerDefaults = []struct {
	provider string
	keyEnv   string
	model    string
}{
	{"openai", "OPENAI_API_KEY", "gpt-4o-mini"},
	{"gemini", "GEMINI_API_KEY", "gemini-1.5-flash"},
	{"anthropic", "ANTHROPIC_API_KEY", "claude-3-5-sonnet-20241022"},
}

// resolveProvider fills in the provider, API key and model. An unset provider
// is inferred from the first provider key variable present (openai when none
// is). The plain key variable is only read for the resolved provider, so a
// key is never sent to another vendor.
func resolveProvider(llm *LLMConfig) {
	if llm.Provider == "" {
		llm.Provider = providerDefaults[0].provider
		if llm.APIKey == "" {
			for _, p := range providerDefaults {
				if os.Getenv(p.keyEnv) != "" {
					llm.Provider = p.provider
					break
				}
			}
		}
	}

	for _, p := range providerDefaults {
		if p.provider != llm.Provider {
			continue
		}
		if llm.APIKey == "" {
			llm.APIKey = os.Getenv(p.keyEnv)
		}
		if llm.Model == "" {
			llm.Model = p.model
		}
	}
}

// bindLegacyEnv accepts the plain variable names the tool has always been
// configured with, next to the prefixed ones.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"agent.pdfFolder": {"PDF_AGENT_AGENT_PDFFOLDER", "PDF_FOLDER_PATH"},
		"llm.apiKey":      {"PDF_AGENT_LLM_APIKEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 300)
	v.SetDefault("server.bodyLimit", 1048576)

	// empty provider and model are resolved by resolveProvider
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.baseURL", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.maxTokens", 1024)
	v.SetDefault("llm.timeoutSec", 60)
	v.SetDefault("llm.breaker.failureThreshold", 5)
	v.SetDefault("llm.breaker.cooldownSec", 30)

	v.SetDefault("agent.maxDocumentChars", 100000)
	v.SetDefault("agent.goodEnoughScore", 0.0)
	v.SetDefault("agent.maxQuestionLength", 2000)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.maxRequestsPerMinute", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
