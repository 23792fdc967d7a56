package nuget

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/depends/pkg/cache"
	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/integrations"
	fw "github.com/matzehuels/depends/pkg/nuget"
	"github.com/matzehuels/depends/pkg/resolve"
)

// DefaultIndexURL is the nuget.org v3 service index.
const DefaultIndexURL = "https://api.nuget.org/v3/index.json"

// Client is a NuGet v3 feed client. It implements [resolve.Source].
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	indexURL string
	name     string

	// Refresh bypasses cached responses when set before the first call.
	Refresh bool

	mu        sync.Mutex
	resources *resources
}

var _ resolve.Source = (*Client)(nil)

// NewClient creates a client for the feed whose service index is at
// indexURL (use [DefaultIndexURL] for nuget.org).
//
// Parameters:
//   - backend: Cache backend for feed responses (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//   - indexURL: The feed's service index
func NewClient(backend cache.Cache, cacheTTL time.Duration, indexURL string) *Client {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	prefix := "nuget:" + cache.Hash([]byte(indexURL))[:12] + ":"
	return &Client{
		Client: integrations.NewClient(backend, prefix, cacheTTL, map[string]string{
			"User-Agent": integrations.UserAgent,
		}),
		indexURL: indexURL,
		name:     feedName(indexURL),
	}
}

// Name returns the feed host, e.g. "api.nuget.org".
func (c *Client) Name() string { return c.name }

// IndexURL returns the service index this client reads.
func (c *Client) IndexURL() string { return c.indexURL }

// ResolveDependencies returns the dependency group of id that is nearest to
// framework. Packages without a compatible group have no dependencies.
func (c *Client) ResolveDependencies(ctx context.Context, id resolve.Identity, framework fw.Framework) (*resolve.PackageInfo, error) {
	leaf, err := c.fetchLeaf(ctx, id)
	if err != nil {
		return nil, classify(err, id)
	}

	info := &resolve.PackageInfo{
		Identity: resolve.Identity{ID: leaf.ID, Version: id.Version},
		Source:   c.name,
	}
	if info.Identity.ID == "" {
		info.Identity.ID = id.ID
	}

	group, ok := nearestGroup(framework, leaf.Groups)
	if !ok {
		return info, nil
	}
	for _, d := range group.Dependencies {
		rng, err := fw.ParseRange(d.Range)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "package %s declares dependency %s", id, d.ID)
		}
		info.Dependencies = append(info.Dependencies, resolve.Dependency{ID: d.ID, Range: rng})
	}
	return info, nil
}

// Assets downloads the package archive and lists its lib/ files and the
// framework assemblies declared in its nuspec.
func (c *Client) Assets(ctx context.Context, id resolve.Identity) (*resolve.PackageAssets, error) {
	res, err := c.discover(ctx)
	if err != nil {
		return nil, classify(err, id)
	}
	if res.PackageBase == "" {
		return nil, derrors.New(derrors.ErrCodeNetwork, "feed %s has no PackageBaseAddress resource", c.name)
	}

	lowerID := strings.ToLower(id.ID)
	lowerVer := strings.ToLower(id.Version.String())
	key := "assets:" + lowerID + "/" + lowerVer

	var listing assetListing
	err = c.Cached(ctx, key, c.Refresh, &listing, func() error {
		u := fmt.Sprintf("%s%s/%s/%s.%s.nupkg", res.PackageBase, lowerID, lowerVer, lowerID, lowerVer)
		data, err := c.GetBytes(ctx, u)
		if err != nil {
			return err
		}
		l, err := readPackage(data)
		if err != nil {
			return fmt.Errorf("read %s: %w", id, err)
		}
		listing = *l
		return nil
	})
	if err != nil {
		return nil, classify(err, id)
	}

	return &resolve.PackageAssets{
		Identity:            id,
		Lib:                 listing.Lib,
		FrameworkAssemblies: listing.FrameworkAssemblies,
	}, nil
}

// classify maps transport errors onto the coded errors discovery and the
// analyzer understand.
func classify(err error, id resolve.Identity) error {
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return fmt.Errorf("%w: %s", resolve.ErrNotFound, id)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, new(*derrors.RateLimitedError)):
		return derrors.Wrap(derrors.ErrCodeRateLimited, err, "feed rate limited fetching %s", id)
	case errors.Is(err, integrations.ErrNetwork):
		return derrors.Wrap(derrors.ErrCodeNetwork, err, "fetch %s", id)
	default:
		return err
	}
}

func feedName(indexURL string) string {
	u, err := url.Parse(indexURL)
	if err != nil || u.Host == "" {
		return indexURL
	}
	return u.Host
}
