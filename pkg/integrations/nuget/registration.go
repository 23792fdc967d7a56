package nuget

import (
	"context"
	"strings"

	fw "github.com/matzehuels/depends/pkg/nuget"
	"github.com/matzehuels/depends/pkg/resolve"
)

// resources are the service index entries this client uses.
type resources struct {
	RegistrationBase string `json:"registration_base"`
	PackageBase      string `json:"package_base"`
}

type serviceIndex struct {
	Version   string `json:"version"`
	Resources []struct {
		ID   string `json:"@id"`
		Type string `json:"@type"`
	} `json:"resources"`
}

// Resource types in order of preference. The semver2 hive also lists
// packages with SemVer 2.0.0 versions.
var (
	registrationTypes = []string{"RegistrationsBaseUrl/3.6.0", "RegistrationsBaseUrl/3.4.0", "RegistrationsBaseUrl"}
	packageBaseTypes  = []string{"PackageBaseAddress/3.0.0"}
)

func (c *Client) discover(ctx context.Context) (*resources, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resources != nil {
		return c.resources, nil
	}

	var res resources
	err := c.Cached(ctx, "index", c.Refresh, &res, func() error {
		var idx serviceIndex
		if err := c.Get(ctx, c.indexURL, &idx); err != nil {
			return err
		}
		res = resources{
			RegistrationBase: pickResource(idx, registrationTypes),
			PackageBase:      pickResource(idx, packageBaseTypes),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.resources = &res
	return c.resources, nil
}

func pickResource(idx serviceIndex, types []string) string {
	for _, t := range types {
		for _, r := range idx.Resources {
			if r.Type == t {
				return withSlash(r.ID)
			}
		}
	}
	return ""
}

func withSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

type registrationIndex struct {
	Items []registrationPage `json:"items"`
}

type registrationPage struct {
	ID    string             `json:"@id"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Items []registrationLeaf `json:"items"`
}

type registrationLeaf struct {
	CatalogEntry catalogEntry `json:"catalogEntry"`
}

type catalogEntry struct {
	ID               string            `json:"id"`
	Version          string            `json:"version"`
	DependencyGroups []dependencyGroup `json:"dependencyGroups"`
}

type dependencyGroup struct {
	TargetFramework string       `json:"targetFramework"`
	Dependencies    []dependency `json:"dependencies"`
}

type dependency struct {
	ID    string `json:"id"`
	Range string `json:"range"`
}

// leaf is the cached form of one registration entry.
type leaf struct {
	ID     string            `json:"id"`
	Groups []dependencyGroup `json:"groups"`
}

// fetchLeaf returns the registration entry for id. Index pages that are not
// inlined are fetched only when their version bounds contain id's version.
func (c *Client) fetchLeaf(ctx context.Context, id resolve.Identity) (*leaf, error) {
	res, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}
	if res.RegistrationBase == "" {
		return nil, errNoRegistration
	}

	lowerID := strings.ToLower(id.ID)
	key := "registration:" + lowerID + "/" + strings.ToLower(id.Version.String())

	var out leaf
	err = c.Cached(ctx, key, c.Refresh, &out, func() error {
		var idx registrationIndex
		if err := c.Get(ctx, res.RegistrationBase+lowerID+"/index.json", &idx); err != nil {
			return err
		}
		for _, page := range idx.Items {
			if !pageContains(page, id.Version) {
				continue
			}
			items := page.Items
			if items == nil && page.ID != "" {
				var full registrationPage
				if err := c.Get(ctx, page.ID, &full); err != nil {
					return err
				}
				items = full.Items
			}
			for _, item := range items {
				v, err := fw.ParseVersion(item.CatalogEntry.Version)
				if err != nil || !v.Equal(id.Version) {
					continue
				}
				out = leaf{ID: item.CatalogEntry.ID, Groups: item.CatalogEntry.DependencyGroups}
				return nil
			}
		}
		return errVersionNotListed
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func pageContains(page registrationPage, v fw.Version) bool {
	lower, errL := fw.ParseVersion(page.Lower)
	upper, errU := fw.ParseVersion(page.Upper)
	if errL != nil || errU != nil {
		return true
	}
	return fw.Compare(lower, v) <= 0 && fw.Compare(v, upper) <= 0
}

// nearestGroup picks the dependency group for framework. A group without a
// target framework applies to every framework.
func nearestGroup(framework fw.Framework, groups []dependencyGroup) (dependencyGroup, bool) {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.TargetFramework
	}
	name, ok := fw.Reduce(framework, names)
	if !ok {
		return dependencyGroup{}, false
	}
	for _, g := range groups {
		if g.TargetFramework == name {
			return g, true
		}
	}
	return dependencyGroup{}, false
}
