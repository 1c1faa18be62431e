package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/contact-cli/internal/export"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resolve"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Resolve    ResolveConfig    `yaml:"resolve" mapstructure:"resolve"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ResolveConfig configures duplicate resolution.
type ResolveConfig struct {
	MasterPolicy string `yaml:"master_policy" mapstructure:"master_policy"`
}

// ClassifyConfig configures the domain classifier.
type ClassifyConfig struct {
	TablesPath      string `yaml:"tables_path" mapstructure:"tables_path"`
	AgentThreshold  int    `yaml:"agent_threshold" mapstructure:"agent_threshold"`
	VendorThreshold int    `yaml:"vendor_threshold" mapstructure:"vendor_threshold"`
	CategoryField   string `yaml:"category_field" mapstructure:"category_field"`
	Enrich          bool   `yaml:"enrich" mapstructure:"enrich"`
}

// ExportConfig configures export set output.
type ExportConfig struct {
	Set            string `yaml:"set" mapstructure:"set"`
	OutputDir      string `yaml:"output_dir" mapstructure:"output_dir"`
	DominantSource string `yaml:"dominant_source" mapstructure:"dominant_source"`
}

// AnthropicConfig holds Anthropic API settings for classification enrichment.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	BatchSize         int     `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency       int     `yaml:"concurrency" mapstructure:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID          string  `yaml:"client_id" mapstructure:"client_id"`
	Username          string  `yaml:"username" mapstructure:"username"`
	KeyPath           string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL          string  `yaml:"login_url" mapstructure:"login_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	ContactTagField   string  `yaml:"contact_tag_field" mapstructure:"contact_tag_field"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// RetryConfig configures retries against remote collaborators.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONTACTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("resolve.master_policy", resolve.PolicyFirstSeen)
	v.SetDefault("classify.tables_path", "")
	v.SetDefault("classify.agent_threshold", 40)
	v.SetDefault("classify.vendor_threshold", 40)
	v.SetDefault("classify.category_field", model.ColCategory)
	v.SetDefault("classify.enrich", false)
	v.SetDefault("export.set", string(export.SetChangedPlusAnniversary))
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("export.dominant_source", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.batch_size", 50)
	v.SetDefault("anthropic.concurrency", 2)
	v.SetDefault("anthropic.requests_per_second", 1.0)
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.key_path", "")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.requests_per_second", 5.0)
	v.SetDefault("salesforce.contact_tag_field", "Description")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Every problem is
// reported in one error.
func (c *Config) Validate(mode string) error {
	var errs []string

	if _, err := resolve.SelectorByName(c.Resolve.MasterPolicy); err != nil {
		errs = append(errs, fmt.Sprintf("resolve.master_policy %q is not one of first, most_complete", c.Resolve.MasterPolicy))
	}
	if c.Classify.AgentThreshold <= 0 {
		errs = append(errs, "classify.agent_threshold must be > 0")
	}
	if c.Classify.VendorThreshold <= 0 {
		errs = append(errs, "classify.vendor_threshold must be > 0")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be >= 1")
	}

	switch mode {
	case "reconcile":
		if c.Export.Set != AllSets {
			if _, err := export.ParseSet(c.Export.Set); err != nil {
				errs = append(errs, fmt.Sprintf("export.set %q is not a known set", c.Export.Set))
			}
		}
		if d := c.Export.DominantSource; d != "" && model.SourceKind(d).Rank() == len(model.SourceOrder) {
			errs = append(errs, fmt.Sprintf("export.dominant_source %q must be crm, phone or mls", d))
		}
		errs = append(errs, c.enrichErrors()...)
	case "classify":
		errs = append(errs, c.enrichErrors()...)
	case "push":
		if c.Salesforce.ClientID == "" {
			errs = append(errs, "salesforce.client_id is required")
		}
		if c.Salesforce.Username == "" {
			errs = append(errs, "salesforce.username is required")
		}
		if c.Salesforce.KeyPath == "" {
			errs = append(errs, "salesforce.key_path is required")
		}
		if c.Salesforce.RequestsPerSecond <= 0 {
			errs = append(errs, "salesforce.requests_per_second must be > 0")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		errs = append(errs, c.enrichErrors()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid (%s): %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

// AllSets is the export.set value that writes every export set.
const AllSets = "all-sets"

func (c *Config) enrichErrors() []string {
	if !c.Classify.Enrich {
		return nil
	}
	var errs []string
	if c.Anthropic.Key == "" {
		errs = append(errs, "anthropic.key is required when classify.enrich is set")
	}
	if c.Anthropic.BatchSize < 1 {
		errs = append(errs, "anthropic.batch_size must be >= 1")
	}
	if c.Anthropic.RequestsPerSecond <= 0 {
		errs = append(errs, "anthropic.requests_per_second must be > 0")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
