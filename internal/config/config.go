package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort            = 3000
	defaultEnv             = "development"
	defaultNotionBaseURL   = "https://api.notion.com"
	defaultNotionVersion   = "2022-06-28"
	defaultPageSize        = 100
	defaultDepth           = 1
	defaultConcurrency     = 8
	defaultRevalidate      = 10 * time.Second
	defaultKeep            = 24 * time.Hour
	defaultWarmInterval    = 5 * time.Minute
	defaultHTTPCacheTTL    = 15 * time.Second
	defaultPlaceholderSize = 64
	defaultGoatSiteCode    = "anish3d"
	defaultAIRateLimit     = 10
	defaultAIRateWindow    = time.Minute
	defaultRedisPrefix     = "folio:"
	defaultJWTIssuer       = "folio"
	defaultReadingTime     = "5 min read"
)

// AppConfig holds runtime configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int
	Env            string // "development" | "preview" | "production"
	AllowedOrigins []string
	Notion         NotionConfig
	Site           SiteConfig
	Cache          CacheConfig
	Images         ImagesConfig
	GoatCounter    GoatCounterConfig
	AI             AIConfig
	JWT            JWTConfig
	Redis          RedisConfig
	Log            LogConfig
	// HiddenPaths answer 404, e.g. "/notes".
	HiddenPaths []string
}

type NotionConfig struct {
	Token       string
	BaseURL     string
	Version     string
	PageSize    int
	Depth       int
	Concurrency int
	Notes       CollectionConfig
	Develop     CollectionConfig
	// LinksDatabaseID is the "about" links collection.
	LinksDatabaseID string
}

// CollectionConfig describes one notes database and where it is served.
type CollectionConfig struct {
	Name            string
	DatabaseID      string
	APIPath         string // under /api, e.g. "/notes"
	PagePath        string // rendered pages, e.g. "/notes"
	DefaultCategory string
	ReadingTime     string
}

type SiteConfig struct {
	Title       string
	Description string
	URL         string
	Owner       string
}

type CacheConfig struct {
	Disabled     bool
	Revalidate   time.Duration
	Keep         time.Duration
	WarmInterval time.Duration
	HTTPTTL      time.Duration
}

type ImagesConfig struct {
	Enrich          bool
	Strict          bool
	Concurrency     int
	PlaceholderSize int
	Mirror          MirrorConfig
}

// MirrorConfig is the S3-compatible bucket images are copied to.
type MirrorConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	CustomDomain    string
	PathStyle       bool
}

type GoatCounterConfig struct {
	SiteCode string
	APIKey   string
	BaseURL  string
}

type AIConfig struct {
	Enabled     bool
	Provider    string
	APIKey      string
	Endpoint    string
	Model       string
	ProfilePath string
	RateLimit   int
	RateWindow  time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type RedisConfig struct {
	URL    string
	Prefix string
}

type LogConfig struct {
	Dir   string
	Level string
}

// IsDev reports whether the server runs outside a deployment.
func (c *AppConfig) IsDev() bool {
	return !c.IsDeployed()
}

// IsDeployed reports whether Env names a deployment (production or preview).
func (c *AppConfig) IsDeployed() bool {
	return c.Env == "production" || c.Env == "preview"
}

// Load reads the YAML file at configPath, applies environment overrides and
// validates the result. A missing file at the default path is not an error.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
		content = nil
	}
	return Parse(content, path, os.LookupEnv)
}

// Parse builds a config from YAML content and an environment lookup.
func Parse(content []byte, source string, lookupEnv func(string) (string, bool)) (*AppConfig, error) {
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", source, err)
		}
	}

	cfg := defaultAppConfig()
	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if lookupEnv != nil {
		applyEnv(&cfg, lookupEnv)
	}
	normalize(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Notion: NotionConfig{
			BaseURL:     defaultNotionBaseURL,
			Version:     defaultNotionVersion,
			PageSize:    defaultPageSize,
			Depth:       defaultDepth,
			Concurrency: defaultConcurrency,
			Notes: CollectionConfig{
				Name:        "notes",
				APIPath:     "/notes",
				PagePath:    "/notes",
				ReadingTime: defaultReadingTime,
			},
			Develop: CollectionConfig{
				Name:        "develop",
				APIPath:     "/develop-notes",
				PagePath:    "/develop",
				ReadingTime: defaultReadingTime,
			},
		},
		Site: SiteConfig{
			Title: "Anish Shah",
			URL:   "http://localhost:3000",
		},
		Cache: CacheConfig{
			Revalidate:   defaultRevalidate,
			Keep:         defaultKeep,
			WarmInterval: defaultWarmInterval,
			HTTPTTL:      defaultHTTPCacheTTL,
		},
		Images: ImagesConfig{
			Enrich:          true,
			Concurrency:     defaultConcurrency,
			PlaceholderSize: defaultPlaceholderSize,
		},
		GoatCounter: GoatCounterConfig{SiteCode: defaultGoatSiteCode},
		AI: AIConfig{
			Provider:   "openai",
			RateLimit:  defaultAIRateLimit,
			RateWindow: defaultAIRateWindow,
		},
		JWT:   JWTConfig{Issuer: defaultJWTIssuer},
		Redis: RedisConfig{Prefix: defaultRedisPrefix},
	}
}
