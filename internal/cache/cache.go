package cache

import (
	"context"
	"errors"

	"github.com/Skotchmaster/peptide_shop/internal/transport"
)

// ListingCache stores public catalog pages. Invalidate drops every page.
type ListingCache interface {
	Get(ctx context.Context, key string) (*transport.ProductPage, error)
	Set(ctx context.Context, key string, page *transport.ProductPage) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

type Noop struct{}

func (Noop) Get(context.Context, string) (*transport.ProductPage, error) { return nil, ErrCacheMiss }

func (Noop) Set(context.Context, string, *transport.ProductPage) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
