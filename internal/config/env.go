package config

import (
	"strconv"
	"strings"
)

// applyEnv overlays the deployment environment on top of the file. Variable
// names follow the hosting platform the site was first deployed to.
func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) {
	get := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}
	str := func(dst *string, keys ...string) {
		if v, ok := get(keys...); ok {
			*dst = v
		}
	}

	if v, ok := get("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		} else {
			cfg.Port = -1
		}
	}
	str(&cfg.Env, "APP_ENV", "NODE_ENV")
	if v, ok := get("VERCEL_ENV"); ok {
		cfg.Env = v
	}

	str(&cfg.Notion.Token, "NOTION_TOKEN", "NOTION_API_KEY")
	str(&cfg.Notion.Notes.DatabaseID, "NOTION_DATABASE_ID")
	str(&cfg.Notion.Develop.DatabaseID, "NOTION_DEVELOP_DATABASE_ID")
	str(&cfg.Notion.LinksDatabaseID, "NOTION_ABOUT_DATABASE_ID", "NOTION_LINKS_DATABASE_ID")

	str(&cfg.Site.URL, "NEXT_PUBLIC_URL", "SITE_URL")
	str(&cfg.Site.Owner, "NEXT_PUBLIC_FULL_NAME")
	str(&cfg.Site.Description, "NEXT_PUBLIC_SITE_DESC")

	str(&cfg.GoatCounter.SiteCode, "GOAT_SITE_CODE")
	str(&cfg.GoatCounter.APIKey, "GOAT_API_KEY", "GOATCOUNTER_API_KEY")

	if v, ok := get("GROQ_API_KEY"); ok {
		cfg.AI.APIKey = v
		cfg.AI.Enabled = true
	}
	str(&cfg.AI.APIKey, "AI_API_KEY")

	str(&cfg.JWT.Secret, "JWT_SECRET", "REVALIDATE_SECRET")
	str(&cfg.Redis.URL, "REDIS_URL")
	str(&cfg.Log.Dir, "FOLIO_LOG_DIR")
	str(&cfg.Log.Level, "LOG_LEVEL")

	if v, ok := get("NEXT_PUBLIC_MAKE_PAGE_404"); ok {
		for _, page := range strings.Split(v, ",") {
			if page = strings.TrimSpace(page); page != "" {
				cfg.HiddenPaths = append(cfg.HiddenPaths, page)
			}
		}
	}
}
