// Package blocks turns the flat, paginated block listings of a page into a
// render-ready tree: children are resolved, images enriched and list items
// regrouped under synthetic list wrappers.
package blocks

import (
	"context"
	"fmt"

	"github.com/anish3d/folio/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ChildLister lists the direct children of a block, all pages included.
// *notion.Client satisfies it.
type ChildLister interface {
	ListChildren(ctx context.Context, blockID string) ([]models.Block, error)
}

// Resolver fetches a page's block tree.
type Resolver struct {
	client ChildLister
	depth  int
	sem    *semaphore.Weighted
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithDepth sets how many levels below the top-level blocks are fetched.
// A column list does not count against it, so the contents of its columns
// are fetched along with the columns.
func WithDepth(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.depth = n
		}
	}
}

// WithConcurrency bounds the number of in-flight children requests.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewResolver builds a resolver on top of client. By default one level of
// children is attached to every top-level block.
func NewResolver(client ChildLister, opts ...ResolverOption) *Resolver {
	r := &Resolver{client: client, depth: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the children of blockID with their own children attached.
// Sibling fetches run concurrently; the result keeps the order the API
// returned. Any failed fetch fails the whole call.
func (r *Resolver) Resolve(ctx context.Context, blockID string) ([]models.Block, error) {
	top, err := r.list(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, top, r.depth); err != nil {
		return nil, err
	}
	return top, nil
}

// attach fetches the children of every expandable block of level, writing
// each result back into its own slot.
func (r *Resolver) attach(ctx context.Context, level []models.Block, depth int) error {
	if depth <= 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := range level {
		b := &level[i]
		if !Expandable(*b) {
			continue
		}
		g.Go(func() error {
			children, err := r.list(gctx, b.ID)
			if err != nil {
				return err
			}
			next := depth - 1
			if b.Type == models.BlockColumnList {
				next = depth
			}
			if err := r.attach(gctx, children, next); err != nil {
				return err
			}
			b.Children = children
			return nil
		})
	}
	return g.Wait()
}

func (r *Resolver) list(ctx context.Context, blockID string) ([]models.Block, error) {
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer r.sem.Release(1)
	}
	blocks, err := r.client.ListChildren(ctx, blockID)
	if err != nil {
		return nil, fmt.Errorf("resolve block %s: %w", blockID, err)
	}
	return blocks, nil
}

// Expandable reports whether the children of b are fetched. Child pages are
// separate documents and unsupported blocks are never rendered.
func Expandable(b models.Block) bool {
	if !b.HasChildren {
		return false
	}
	switch b.Type {
	case models.BlockUnsupported, models.BlockChildPage:
		return false
	}
	return true
}
