package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Retry    RetryConfig    `yaml:"retry" mapstructure:"retry"`
	Browser  BrowserConfig  `yaml:"browser" mapstructure:"browser"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
}

// StoreConfig configures the shared batch store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	KeyPrefix   string `yaml:"key_prefix" mapstructure:"key_prefix"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures plain HTTP fetches and the page cache.
type FetchConfig struct {
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyMB     int     `yaml:"max_body_mb" mapstructure:"max_body_mb"`
	DefaultRate   float64 `yaml:"default_rate" mapstructure:"default_rate"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// Timeout returns the per-request timeout.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheTTL returns how long fetched pages stay cached. Zero disables the cache.
func (c FetchConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// RetryConfig configures the fixed-delay retry of transient fetch failures.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	DelayMs     int `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// BrowserConfig configures the headless browser used for rendered pages.
type BrowserConfig struct {
	Enabled               bool   `yaml:"enabled" mapstructure:"enabled"`
	Headless              bool   `yaml:"headless" mapstructure:"headless"`
	ExecPath              string `yaml:"exec_path" mapstructure:"exec_path"`
	NavigationTimeoutSecs int    `yaml:"navigation_timeout_secs" mapstructure:"navigation_timeout_secs"`
	WaitTimeoutSecs       int    `yaml:"wait_timeout_secs" mapstructure:"wait_timeout_secs"`
}

// SourcesConfig holds the base URLs of the crawled catalogs.
type SourcesConfig struct {
	EnzymeBaseURL  string `yaml:"enzyme_base_url" mapstructure:"enzyme_base_url"`
	UniProtBaseURL string `yaml:"uniprot_base_url" mapstructure:"uniprot_base_url"`
	RheaBaseURL    string `yaml:"rhea_base_url" mapstructure:"rhea_base_url"`
}

// PipelineConfig configures stage fan-out and redirection.
type PipelineConfig struct {
	MaxHops             int `yaml:"max_hops" mapstructure:"max_hops"`
	NameConcurrency     int `yaml:"name_concurrency" mapstructure:"name_concurrency"`
	EntryConcurrency    int `yaml:"entry_concurrency" mapstructure:"entry_concurrency"`
	SequenceConcurrency int `yaml:"sequence_concurrency" mapstructure:"sequence_concurrency"`
	ReactionConcurrency int `yaml:"reaction_concurrency" mapstructure:"reaction_concurrency"`
}

// ExportConfig configures the final dataset export.
type ExportConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format"`
	FastaPath string `yaml:"fasta_path" mapstructure:"fasta_path"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENZYME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "enzyme.db")
	v.SetDefault("store.key_prefix", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.user_agent", "enzyme-cli/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_body_mb", 16)
	v.SetDefault("fetch.default_rate", 20.0)
	v.SetDefault("fetch.cache_ttl_hours", 24)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.delay_ms", 3000)
	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.navigation_timeout_secs", 10)
	v.SetDefault("browser.wait_timeout_secs", 5)
	v.SetDefault("sources.enzyme_base_url", "https://enzyme.expasy.org")
	v.SetDefault("sources.uniprot_base_url", "https://rest.uniprot.org")
	v.SetDefault("sources.rhea_base_url", "https://www.rhea-db.org")
	v.SetDefault("pipeline.max_hops", 5)
	v.SetDefault("pipeline.name_concurrency", 2)
	v.SetDefault("pipeline.entry_concurrency", 10)
	v.SetDefault("pipeline.sequence_concurrency", 10)
	v.SetDefault("pipeline.reaction_concurrency", 2)
	v.SetDefault("export.path", "enzymes.xlsx")
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("export.fasta_path", "")

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
