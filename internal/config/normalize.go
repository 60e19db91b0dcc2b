package config

import (
	"fmt"
	"net/url"
	"strings"
)

func normalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/")
	cfg.Notion.BaseURL = strings.TrimRight(cfg.Notion.BaseURL, "/")
	cfg.Notion.Notes.APIPath = normalizePath(cfg.Notion.Notes.APIPath)
	cfg.Notion.Notes.PagePath = normalizePath(cfg.Notion.Notes.PagePath)
	cfg.Notion.Develop.APIPath = normalizePath(cfg.Notion.Develop.APIPath)
	cfg.Notion.Develop.PagePath = normalizePath(cfg.Notion.Develop.PagePath)
	cfg.HiddenPaths = normalizeHidden(cfg.HiddenPaths)
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		if cfg.IsDev() {
			cfg.Log.Level = "debug"
		} else {
			cfg.Log.Level = "info"
		}
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Notion.PageSize <= 0 || cfg.Notion.PageSize > 100 {
		return fmt.Errorf("notion.page_size must be within 1..100, got %d", cfg.Notion.PageSize)
	}
	if cfg.Notion.Depth < 0 {
		return fmt.Errorf("notion.depth must not be negative, got %d", cfg.Notion.Depth)
	}
	if cfg.Notion.Concurrency <= 0 {
		return fmt.Errorf("notion.concurrency must be positive, got %d", cfg.Notion.Concurrency)
	}
	if cfg.Images.Concurrency <= 0 {
		return fmt.Errorf("images.concurrency must be positive, got %d", cfg.Images.Concurrency)
	}
	if cfg.Images.PlaceholderSize < 4 {
		return fmt.Errorf("images.placeholder_size must be at least 4, got %d", cfg.Images.PlaceholderSize)
	}
	if cfg.AI.RateLimit <= 0 {
		return fmt.Errorf("ai.rate_limit must be positive, got %d", cfg.AI.RateLimit)
	}
	if cfg.Cache.Revalidate <= 0 {
		return fmt.Errorf("cache.revalidate must be positive")
	}
	if cfg.Site.URL != "" {
		if u, err := url.Parse(cfg.Site.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid site.url %q", cfg.Site.URL)
		}
	}
	if cfg.Notion.Notes.APIPath == cfg.Notion.Develop.APIPath {
		return fmt.Errorf("notion.notes and notion.develop share api_path %q", cfg.Notion.Notes.APIPath)
	}
	return nil
}

func normalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	case "preview", "staging":
		return "preview"
	case "test":
		return "test"
	default:
		return "development"
	}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	seen := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		out = append(out, origin)
	}
	return out
}

func normalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}

func normalizeHidden(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		p = normalizePath(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
