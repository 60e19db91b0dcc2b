package blocks

import (
	"context"
	"time"

	"github.com/anish3d/folio/internal/models"
	"go.uber.org/zap"
)

// Pipeline runs resolution, enrichment and regrouping for one page.
type Pipeline struct {
	resolver *Resolver
	enricher *Enricher
	logger   *zap.Logger
}

// NewPipeline wires the stages together. enricher may be nil to skip image work.
func NewPipeline(resolver *Resolver, enricher *Enricher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{resolver: resolver, enricher: enricher, logger: logger.Named("blocks")}
}

// Page returns the render-ready block tree of pageID.
func (p *Pipeline) Page(ctx context.Context, pageID string) ([]models.Block, error) {
	start := time.Now()
	tree, err := p.resolver.Resolve(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if p.enricher != nil {
		if err := p.enricher.Enrich(ctx, tree); err != nil {
			return nil, err
		}
	}
	tree = RegroupTree(tree)
	p.logger.Debug("page resolved",
		zap.String("page", pageID),
		zap.Int("blocks", len(tree)),
		zap.Duration("took", time.Since(start)),
	)
	return tree, nil
}
