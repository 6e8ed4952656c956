package adapter

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"emojigen/internal/cache"
)

// CacheOptions tunes how a transformer's payloads are cached.
type CacheOptions struct {
	// TTL overrides the cache default; cache.NeverExpire disables expiry.
	TTL time.Duration
	// Encoding is the on-disk text encoding (default utf-8).
	Encoding string
}

// Transformer is the per-version unit of work: fetch every URL, parse and
// transform each payload, aggregate, and shape the output.
//
// P is the parsed payload type, T the per-URL transform result and Out the
// adapter's output type.
type Transformer[P, T, Out any] struct {
	URLs      func(vc VersionContext) []URLSpec
	Parser    Parser[P]
	Transform func(vc VersionContext, parsed P) (T, error)
	// Aggregate merges per-URL results in URLs() order; required when more than one URL is returned.
	Aggregate func(vc VersionContext, items []T) (T, error)
	Output    func(vc VersionContext, value T) (Out, error)
	Cache     CacheOptions
}

func (t *Transformer[P, T, Out]) check() error {
	switch {
	case t.URLs == nil:
		return fmt.Errorf("%w: urls not set", ErrIncompleteTransformer)
	case !t.Parser.valid():
		return fmt.Errorf("%w: parser not set", ErrIncompleteTransformer)
	case t.Transform == nil:
		return fmt.Errorf("%w: transform not set", ErrIncompleteTransformer)
	case t.Output == nil:
		return fmt.Errorf("%w: output not set", ErrIncompleteTransformer)
	}
	return nil
}

// run executes the pipeline for vc.
func (t *Transformer[P, T, Out]) run(ctx context.Context, rt *Runtime, vc VersionContext) (Out, error) {
	var zero Out

	specs := normalizeURLs(t.URLs(vc))
	if len(specs) == 0 {
		return zero, ErrNoURLs
	}
	if len(specs) > 1 && t.Aggregate == nil {
		return zero, ErrAggregateRequired
	}

	// Fetch concurrently; results land at their URLs() index.
	parsed := make([]P, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			uvc := vc.WithKey(spec.Key)
			p, err := cache.Fetch(gctx, rt.Cache, spec.URL, cache.Options[P]{
				CacheKey:    spec.CacheKey,
				Parser:      t.Parser.bind(uvc),
				BypassCache: vc.Force,
				TTL:         t.Cache.TTL,
				Encoding:    t.Cache.Encoding,
			})
			if err != nil {
				return err
			}
			parsed[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return zero, err
	}

	items := make([]T, len(specs))
	for i, spec := range specs {
		item, err := t.Transform(vc.WithKey(spec.Key), parsed[i])
		if err != nil {
			return zero, &TransformError{URL: spec.URL, Key: spec.Key, Err: err}
		}
		items[i] = item
	}

	value := items[0]
	if t.Aggregate != nil {
		aggregated, err := t.Aggregate(vc, items)
		if err != nil {
			return zero, fmt.Errorf("aggregate failed: %w", err)
		}
		value = aggregated
	}

	out, err := t.Output(vc, value)
	if err != nil {
		return zero, fmt.Errorf("output failed: %w", err)
	}
	return out, nil
}
