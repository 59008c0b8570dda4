// Package config loads pdfquiz settings from flags, environment and an
// optional YAML file, and builds the stderr logger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/pdfquiz/internal/extract"
	"github.com/abhisek/pdfquiz/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. PDFQUIZ_LOG_LEVEL.
const EnvPrefix = "PDFQUIZ"

// Config is the full runtime configuration.
type Config struct {
	LLM     llm.Config     `mapstructure:"llm"`
	Extract extract.Config `mapstructure:"extract"`
	Log     LogConfig      `mapstructure:"log"`
	Audit   AuditConfig    `mapstructure:"audit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuditConfig configures the optional LLM request log.
type AuditConfig struct {
	// DB is the SQLite file path. Empty disables auditing.
	DB string `mapstructure:"db"`
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"provider":   "llm.provider",
	"extractor":  "extract.provider",
	"log-level":  "log.level",
	"log-format": "log.format",
	"audit-db":   "audit.db",
}

// RegisterFlags adds the configuration flags understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file (default ./pdfquiz.yaml or $XDG_CONFIG_HOME/pdfquiz/pdfquiz.yaml)")
	fs.String("provider", "", "LLM provider: gemini, openai, anthropic or mock")
	fs.String("model", "", "Model for the selected provider")
	fs.String("extractor", "", "PDF text extractor: local or pdftotext")
	fs.String("log-level", "", "Log level: debug, info, warn or error")
	fs.String("log-format", "", "Log format: console or json")
	fs.String("audit-db", "", "SQLite file that records every LLM request (disabled when empty)")
}

// Load reads configuration from file, environment and flags, in increasing
// order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("pdfquiz")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "pdfquiz"))
	}

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.provider", llmDefaults.Provider)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("extract.provider", "local")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("audit.db", "")

	// Conventional key variables, checked after the prefixed ones.
	for key, env := range map[string]string{
		"llm.gemini.api_key":    "GEMINI_API_KEY",
		"llm.openai.api_key":    "OPENAI_API_KEY",
		"llm.anthropic.api_key": "ANTHROPIC_API_KEY",
	} {
		if err := v.BindEnv(key, envName(key), env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
			}
		}
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	// --model applies to whichever provider ends up selected.
	if flags != nil {
		if f := flags.Lookup("model"); f != nil && f.Changed {
			cfg.LLM.SetModel(f.Value.String())
		}
	}

	if err := cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// InitLogger builds the process logger. All output goes to stderr so that
// stdout carries only the result document.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("config: parse log level: %w", err)
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
