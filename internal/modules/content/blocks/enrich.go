package blocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/pkg/placeholder"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxImageBytes caps a single download.
const maxImageBytes = 32 << 20

// ImageFetcher downloads image bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Mirror stores a copy of an image and returns its public URL.
type Mirror interface {
	Mirror(ctx context.Context, sourceURL string, data []byte) (string, error)
}

// HTTPFetcher is an ImageFetcher over plain HTTP GET.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded client timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 20 * time.Second}}
}

// Fetch implements ImageFetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}

// ImageError reports a failed image enrichment.
type ImageError struct {
	BlockID string
	URL     string
	Err     error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("enrich image %s (%s): %v", e.BlockID, e.URL, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Enricher attaches derived data to blocks. Only images carry any: their
// true size, a 64px preview and a blur hash.
type Enricher struct {
	fetcher ImageFetcher
	mirror  Mirror
	strict  bool
	limit   int
	size    int
	logger  *zap.Logger
}

// EnricherOption customizes an Enricher.
type EnricherOption func(*Enricher)

// WithMirror uploads every downloaded image through m.
func WithMirror(m Mirror) EnricherOption {
	return func(e *Enricher) { e.mirror = m }
}

// WithStrict makes any image failure fail the whole batch. Otherwise the
// block keeps its plain URL and a warning is logged.
func WithStrict(strict bool) EnricherOption {
	return func(e *Enricher) { e.strict = strict }
}

// WithEnrichConcurrency bounds parallel downloads; 0 means unbounded.
func WithEnrichConcurrency(n int) EnricherOption {
	return func(e *Enricher) { e.limit = n }
}

// WithPlaceholderSize sets the preview box edge.
func WithPlaceholderSize(n int) EnricherOption {
	return func(e *Enricher) { e.size = n }
}

// NewEnricher builds an enricher downloading through fetcher.
func NewEnricher(fetcher ImageFetcher, logger *zap.Logger, opts ...EnricherOption) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Enricher{
		fetcher: fetcher,
		size:    placeholder.DefaultSize,
		logger:  logger.Named("enricher"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich enriches every block of the tree in place, in parallel.
func (e *Enricher) Enrich(ctx context.Context, tree []models.Block) error {
	var all []*models.Block
	models.Walk(tree, func(b *models.Block) { all = append(all, b) })

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for _, b := range all {
		g.Go(func() error { return e.enrichOne(gctx, b) })
	}
	return g.Wait()
}

// enrichOne handles a single block and leaves its children alone.
func (e *Enricher) enrichOne(ctx context.Context, b *models.Block) error {
	switch c := b.Content.(type) {
	case *models.Image:
		err := e.enrichImage(ctx, b.ID, c)
		if err == nil {
			return nil
		}
		if e.strict || errors.Is(err, context.Canceled) {
			return err
		}
		e.logger.Warn("image enrichment skipped", zap.String("block", b.ID), zap.Error(err))
		return nil
	default:
		return nil
	}
}

func (e *Enricher) enrichImage(ctx context.Context, blockID string, img *models.Image) error {
	src := img.URL()
	if src == "" {
		return &ImageError{BlockID: blockID, Err: errors.New("image has no url")}
	}
	data, err := e.fetcher.Fetch(ctx, src)
	if err != nil {
		return &ImageError{BlockID: blockID, URL: src, Err: err}
	}
	res, err := placeholder.Generate(data, placeholder.Options{Size: e.size})
	if err != nil {
		return &ImageError{BlockID: blockID, URL: src, Err: err}
	}

	img.Size = &models.ImageSize{Width: res.Width, Height: res.Height}
	img.Placeholder = res.DataURI
	img.BlurHash = res.BlurHash

	if e.mirror != nil {
		mirrored, err := e.mirror.Mirror(ctx, src, data)
		if err != nil {
			return &ImageError{BlockID: blockID, URL: src, Err: fmt.Errorf("mirror: %w", err)}
		}
		img.MirrorURL = mirrored
	}
	return nil
}
