package config

import (
	"fmt"
	"strings"
	"time"
)

type rawAppConfig struct {
	Port           *int                 `yaml:"port"`
	Env            string               `yaml:"env"`
	AllowedOrigins []string             `yaml:"allowed_origins"`
	HiddenPaths    []string             `yaml:"hidden_paths"`
	Notion         rawNotionConfig      `yaml:"notion"`
	Site           rawSiteConfig        `yaml:"site"`
	Cache          rawCacheConfig       `yaml:"cache"`
	Images         rawImagesConfig      `yaml:"images"`
	GoatCounter    rawGoatCounterConfig `yaml:"goatcounter"`
	AI             rawAIConfig          `yaml:"ai"`
	JWT            rawJWTConfig         `yaml:"jwt"`
	Redis          rawRedisConfig       `yaml:"redis"`
	Log            rawLogConfig         `yaml:"log"`
}

type rawNotionConfig struct {
	Token           string              `yaml:"token"`
	BaseURL         string              `yaml:"base_url"`
	Version         string              `yaml:"version"`
	PageSize        *int                `yaml:"page_size"`
	Depth           *int                `yaml:"depth"`
	Concurrency     *int                `yaml:"concurrency"`
	Notes           rawCollectionConfig `yaml:"notes"`
	Develop         rawCollectionConfig `yaml:"develop"`
	LinksDatabaseID string              `yaml:"links_database_id"`
}

type rawCollectionConfig struct {
	DatabaseID      string `yaml:"database_id"`
	APIPath         string `yaml:"api_path"`
	PagePath        string `yaml:"page_path"`
	DefaultCategory string `yaml:"default_category"`
	ReadingTime     string `yaml:"reading_time"`
}

type rawSiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	Owner       string `yaml:"owner"`
}

type rawCacheConfig struct {
	Disabled     *bool  `yaml:"disabled"`
	Revalidate   string `yaml:"revalidate"`
	Keep         string `yaml:"keep"`
	WarmInterval string `yaml:"warm_interval"`
	HTTPTTL      string `yaml:"http_ttl"`
}

type rawImagesConfig struct {
	Enrich          *bool           `yaml:"enrich"`
	Strict          *bool           `yaml:"strict"`
	Concurrency     *int            `yaml:"concurrency"`
	PlaceholderSize *int            `yaml:"placeholder_size"`
	Mirror          rawMirrorConfig `yaml:"mirror"`
}

type rawMirrorConfig struct {
	Enabled         *bool  `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyle       *bool  `yaml:"path_style"`
}

type rawGoatCounterConfig struct {
	SiteCode string `yaml:"site_code"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

type rawAIConfig struct {
	Enabled     *bool  `yaml:"enabled"`
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	Endpoint    string `yaml:"endpoint"`
	Model       string `yaml:"model"`
	ProfilePath string `yaml:"profile_path"`
	RateLimit   *int   `yaml:"rate_limit"`
	RateWindow  string `yaml:"rate_window"`
}

type rawJWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type rawRedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type rawLogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != nil {
		cfg.Port = *raw.Port
	}
	setString(&cfg.Env, raw.Env)
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}
	cfg.HiddenPaths = append(cfg.HiddenPaths, raw.HiddenPaths...)

	n := &cfg.Notion
	setString(&n.Token, raw.Notion.Token)
	setString(&n.BaseURL, raw.Notion.BaseURL)
	setString(&n.Version, raw.Notion.Version)
	setInt(&n.PageSize, raw.Notion.PageSize)
	setInt(&n.Depth, raw.Notion.Depth)
	setInt(&n.Concurrency, raw.Notion.Concurrency)
	setString(&n.LinksDatabaseID, raw.Notion.LinksDatabaseID)
	applyCollection(&n.Notes, raw.Notion.Notes)
	applyCollection(&n.Develop, raw.Notion.Develop)

	setString(&cfg.Site.Title, raw.Site.Title)
	setString(&cfg.Site.Description, raw.Site.Description)
	setString(&cfg.Site.URL, raw.Site.URL)
	setString(&cfg.Site.Owner, raw.Site.Owner)

	setBool(&cfg.Cache.Disabled, raw.Cache.Disabled)
	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"cache.revalidate", raw.Cache.Revalidate, &cfg.Cache.Revalidate},
		{"cache.keep", raw.Cache.Keep, &cfg.Cache.Keep},
		{"cache.warm_interval", raw.Cache.WarmInterval, &cfg.Cache.WarmInterval},
		{"cache.http_ttl", raw.Cache.HTTPTTL, &cfg.Cache.HTTPTTL},
		{"ai.rate_window", raw.AI.RateWindow, &cfg.AI.RateWindow},
	} {
		if err := setDuration(d.dst, d.key, d.raw); err != nil {
			return err
		}
	}

	img := &cfg.Images
	setBool(&img.Enrich, raw.Images.Enrich)
	setBool(&img.Strict, raw.Images.Strict)
	setInt(&img.Concurrency, raw.Images.Concurrency)
	setInt(&img.PlaceholderSize, raw.Images.PlaceholderSize)
	m := raw.Images.Mirror
	setBool(&img.Mirror.Enabled, m.Enabled)
	setString(&img.Mirror.Endpoint, m.Endpoint)
	setString(&img.Mirror.Region, m.Region)
	setString(&img.Mirror.Bucket, m.Bucket)
	setString(&img.Mirror.AccessKeyID, m.AccessKeyID)
	setString(&img.Mirror.SecretAccessKey, m.SecretAccessKey)
	setString(&img.Mirror.Prefix, m.Prefix)
	setString(&img.Mirror.CustomDomain, m.CustomDomain)
	setBool(&img.Mirror.PathStyle, m.PathStyle)

	setString(&cfg.GoatCounter.SiteCode, raw.GoatCounter.SiteCode)
	setString(&cfg.GoatCounter.APIKey, raw.GoatCounter.APIKey)
	setString(&cfg.GoatCounter.BaseURL, raw.GoatCounter.BaseURL)

	setBool(&cfg.AI.Enabled, raw.AI.Enabled)
	setString(&cfg.AI.Provider, raw.AI.Provider)
	setString(&cfg.AI.APIKey, raw.AI.APIKey)
	setString(&cfg.AI.Endpoint, raw.AI.Endpoint)
	setString(&cfg.AI.Model, raw.AI.Model)
	setString(&cfg.AI.ProfilePath, raw.AI.ProfilePath)
	setInt(&cfg.AI.RateLimit, raw.AI.RateLimit)

	setString(&cfg.JWT.Secret, raw.JWT.Secret)
	setString(&cfg.JWT.Issuer, raw.JWT.Issuer)
	setString(&cfg.Redis.URL, raw.Redis.URL)
	setString(&cfg.Redis.Prefix, raw.Redis.Prefix)
	setString(&cfg.Log.Dir, raw.Log.Dir)
	setString(&cfg.Log.Level, raw.Log.Level)
	return nil
}

func applyCollection(dst *CollectionConfig, raw rawCollectionConfig) {
	setString(&dst.DatabaseID, raw.DatabaseID)
	setString(&dst.APIPath, raw.APIPath)
	setString(&dst.PagePath, raw.PagePath)
	setString(&dst.DefaultCategory, raw.DefaultCategory)
	setString(&dst.ReadingTime, raw.ReadingTime)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q for %s: %w", v, key, err)
	}
	*dst = d
	return nil
}
