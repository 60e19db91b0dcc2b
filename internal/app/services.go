package app

import (
	"fmt"

	"github.com/anish3d/folio/internal/config"
	"github.com/anish3d/folio/internal/middleware"
	"github.com/anish3d/folio/internal/modules/content/blocks"
	"github.com/anish3d/folio/internal/modules/content/cache"
	"github.com/anish3d/folio/internal/modules/content/links"
	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/anish3d/folio/internal/modules/processing/ai"
	"github.com/anish3d/folio/internal/modules/stats/views"
	"github.com/anish3d/folio/internal/modules/storage/imagemirror"
	"github.com/anish3d/folio/internal/pkg/jwt"
	"github.com/anish3d/folio/internal/pkg/notion"
	pkgredis "github.com/anish3d/folio/internal/pkg/redis"
	"go.uber.org/zap"
)

// Services is the HTTP-independent part of the application, shared by the
// server and folioctl.
type Services struct {
	Store   cache.Store
	Counter middleware.Counter
	Cache   *cache.Cache
	Signer  *jwt.Signer

	Notes     *notes.Service
	Develop   *notes.Service
	Links     *links.Service
	Views     *views.Client
	Assistant *ai.Assistant

	redis  *pkgredis.Client
	logger *zap.Logger
}

// NewServices connects the stores and builds every content service.
func NewServices(logger *zap.Logger, cfg *config.AppConfig, configPath string) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Services{logger: logger}
	if err := s.connectStores(cfg); err != nil {
		return nil, err
	}
	if err := s.build(cfg, configPath); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Collection returns the notes service named name ("notes" or "develop").
func (s *Services) Collection(name string) (*notes.Service, bool) {
	for _, svc := range []*notes.Service{s.Notes, s.Develop} {
		if svc.Collection().Name == name {
			return svc, true
		}
	}
	return nil, false
}

func (s *Services) connectStores(cfg *config.AppConfig) error {
	if cfg.Redis.URL == "" {
		s.logger.Info("redis.url is empty, using in-memory cache")
		s.Store = cache.NewMemoryStore()
		s.Counter = middleware.NewMemoryCounter()
		return nil
	}
	rc, err := pkgredis.Connect(cfg.Redis.URL, cfg.Redis.Prefix)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	s.redis = rc
	s.Store = rc
	s.Counter = rc
	return nil
}

// Close releases the Redis pool.
func (s *Services) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

func (s *Services) build(cfg *config.AppConfig, configPath string) error {
	s.Cache = cache.New(s.Store, cache.Options{
		Revalidate: cfg.Cache.Revalidate,
		Keep:       cfg.Cache.Keep,
		Disabled:   cfg.Cache.Disabled,
	}, s.logger)
	s.Signer = jwt.New(cfg.JWT.Secret, cfg.JWT.Issuer)
	if cfg.JWT.Secret == "" {
		s.logger.Warn("jwt.secret is empty, /api/revalidate will reject every request")
	}

	client := notion.New(cfg.Notion.Token,
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithVersion(cfg.Notion.Version),
		notion.WithPageSize(cfg.Notion.PageSize),
	)
	if cfg.Notion.Token == "" {
		s.logger.Warn("notion.token is empty, Notion requests will fail")
	}

	enricher, err := s.buildEnricher(cfg.Images)
	if err != nil {
		return err
	}
	resolver := blocks.NewResolver(client,
		blocks.WithDepth(cfg.Notion.Depth),
		blocks.WithConcurrency(cfg.Notion.Concurrency),
	)
	pipeline := blocks.NewPipeline(resolver, enricher, s.logger)

	env := notes.Environment(cfg.Env)
	s.Notes = notes.NewService(client, pipeline, s.Cache, collection(cfg.Notion.Notes), env, s.logger)
	s.Develop = notes.NewService(client, pipeline, s.Cache, collection(cfg.Notion.Develop), env, s.logger)
	s.Links = links.NewService(client, cfg.Notion.LinksDatabaseID, s.Cache)
	s.Views = views.NewClient(cfg.GoatCounter.SiteCode, cfg.GoatCounter.APIKey, cfg.GoatCounter.BaseURL)

	if cfg.AI.Enabled {
		assistant, err := s.buildAssistant(cfg, configPath)
		if err != nil {
			return fmt.Errorf("ai: %w", err)
		}
		s.Assistant = assistant
	}
	return nil
}

func (s *Services) buildEnricher(img config.ImagesConfig) (*blocks.Enricher, error) {
	if !img.Enrich {
		return nil, nil
	}
	opts := []blocks.EnricherOption{
		blocks.WithStrict(img.Strict),
		blocks.WithEnrichConcurrency(img.Concurrency),
		blocks.WithPlaceholderSize(img.PlaceholderSize),
	}
	if img.Mirror.Enabled {
		m, err := imagemirror.New(imagemirror.Options{
			Endpoint:        img.Mirror.Endpoint,
			Region:          img.Mirror.Region,
			Bucket:          img.Mirror.Bucket,
			AccessKeyID:     img.Mirror.AccessKeyID,
			SecretAccessKey: img.Mirror.SecretAccessKey,
			Prefix:          img.Mirror.Prefix,
			CustomDomain:    img.Mirror.CustomDomain,
			PathStyle:       img.Mirror.PathStyle,
		}, s.logger)
		if err != nil {
			return nil, fmt.Errorf("image mirror: %w", err)
		}
		opts = append(opts, blocks.WithMirror(m))
	}
	return blocks.NewEnricher(blocks.NewHTTPFetcher(), s.logger, opts...), nil
}

func (s *Services) buildAssistant(cfg *config.AppConfig, configPath string) (*ai.Assistant, error) {
	gen, err := ai.NewGenerator(ai.Provider{
		Type:     cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Endpoint: cfg.AI.Endpoint,
		Model:    cfg.AI.Model,
	})
	if err != nil {
		return nil, err
	}
	profile := ""
	if path := cfg.ProfilePath(configPath); path != "" {
		if profile, err = ai.LoadProfile(path); err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn("ai.profile_path is empty, the assistant will answer with no context")
	}
	return ai.New(gen, cfg.Site.Owner, profile, s.logger), nil
}

func collection(c config.CollectionConfig) notes.Collection {
	return notes.Collection{
		Name:               c.Name,
		DatabaseID:         c.DatabaseID,
		DefaultCategory:    c.DefaultCategory,
		DefaultReadingTime: c.ReadingTime,
	}
}
