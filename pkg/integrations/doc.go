// Package integrations provides HTTP clients for package feed APIs.
//
// # Overview
//
// Each feed protocol has its own subpackage. Today that is [nuget], a
// NuGet v3 client that implements [resolve.Source].
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing every feed client embeds:
//
//   - JSON and raw GETs with default and per-request headers
//   - response caching through any [cache.Cache] backend, scoped by a key prefix
//   - retry with exponential backoff for 5xx, 429 and transport failures
//   - cache and HTTP observability hooks
//
// A 404 maps to [ErrNotFound]; every other failure wraps [ErrNetwork].
//
//	base := integrations.NewClient(backend, "nuget:", 24*time.Hour, nil)
//	var index serviceIndex
//	err := base.Cached(ctx, "index", false, &index, func() error {
//		return base.Get(ctx, url, &index)
//	})
//
// [nuget]: github.com/matzehuels/depends/pkg/integrations/nuget
// [resolve.Source]: github.com/matzehuels/depends/pkg/resolve.Source
// [cache.Cache]: github.com/matzehuels/depends/pkg/cache.Cache
package integrations
