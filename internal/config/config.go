package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	ListStore ListStoreConfig `mapstructure:"list_store"`
	Board     BoardConfig
	JWT       JWTConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Runtime flags set from the command line, not the config file.
	ForceProvision bool `mapstructure:"-"`
	ProvisionOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// ListStoreConfig locates the remote list store.
type ListStoreConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	SiteID         string        `mapstructure:"site_id"`
	Token          string        `mapstructure:"token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout_seconds"`
}

// BoardConfig tunes board behavior: vote quota, how quota is partitioned,
// paging sizes, and the display names of the six logical lists.
type BoardConfig struct {
	VoteQuota        int  `mapstructure:"vote_quota"`
	QuotaPerCategory bool `mapstructure:"quota_per_category"`
	PageSize         int  `mapstructure:"page_size"`
	// ScanPageSize is the server-side page size used by the full-scan
	// query fallback and the comment and vote scans.
	ScanPageSize int `mapstructure:"scan_page_size"`
	// PurgeConcurrency bounds the fan-out of cascading deletes.
	PurgeConcurrency int `mapstructure:"purge_concurrency"`

	SuggestionsList   string `mapstructure:"suggestions_list"`
	VotesList         string `mapstructure:"votes_list"`
	CommentsList      string `mapstructure:"comments_list"`
	CategoriesList    string `mapstructure:"categories_list"`
	SubcategoriesList string `mapstructure:"subcategories_list"`
	StatusesList      string `mapstructure:"statuses_list"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("SUGGESTION_BOARD")
	viper.AutomaticEnv()

	// BindEnv with an explicit variable name bypasses the prefix, so
	// each binding spells out the full documented name.
	viper.BindEnv("list_store.base_url", "SUGGESTION_BOARD_LIST_STORE_BASE_URL")
	viper.BindEnv("list_store.site_id", "SUGGESTION_BOARD_LIST_STORE_SITE_ID")
	viper.BindEnv("list_store.token", "SUGGESTION_BOARD_LIST_STORE_TOKEN")

	viper.BindEnv("jwt.secret", "SUGGESTION_BOARD_JWT_SECRET")

	viper.BindEnv("server.mode", "SUGGESTION_BOARD_SERVER_MODE")
	viper.BindEnv("server.port", "SUGGESTION_BOARD_SERVER_PORT")

	viper.BindEnv("tracing.enabled", "SUGGESTION_BOARD_TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "SUGGESTION_BOARD_TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.ListStore.RequestTimeout = cfg.ListStore.RequestTimeout * time.Second

	if cfg.ListStore.BaseURL == "" {
		return nil, fmt.Errorf("list_store.base_url is required")
	}
	if cfg.ListStore.SiteID == "" {
		return nil, fmt.Errorf("list_store.site_id is required")
	}
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	applyBoardDefaults(&cfg.Board)
	return &cfg, nil
}

func applyBoardDefaults(b *BoardConfig) {
	if b.VoteQuota <= 0 {
		b.VoteQuota = 5
	}
	if b.PageSize <= 0 {
		b.PageSize = 20
	}
	if b.ScanPageSize <= 0 {
		b.ScanPageSize = 200
	}
	if b.PurgeConcurrency <= 0 {
		b.PurgeConcurrency = 4
	}
	if b.SuggestionsList == "" {
		b.SuggestionsList = "Suggestions"
	}
	if b.VotesList == "" {
		b.VotesList = "SuggestionVotes"
	}
	if b.CommentsList == "" {
		b.CommentsList = "SuggestionComments"
	}
	if b.CategoriesList == "" {
		b.CategoriesList = "SuggestionCategories"
	}
	if b.SubcategoriesList == "" {
		b.SubcategoriesList = "SuggestionSubcategories"
	}
	if b.StatusesList == "" {
		b.StatusesList = "SuggestionStatuses"
	}
}
