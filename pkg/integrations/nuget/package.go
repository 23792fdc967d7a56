package nuget

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/depends/pkg/resolve"
)

// assetListing is the cached summary of a downloaded .nupkg.
type assetListing struct {
	Lib                 []resolve.AssetGroup `json:"lib"`
	FrameworkAssemblies []resolve.AssetGroup `json:"framework_assemblies"`
}

type nuspec struct {
	Metadata struct {
		FrameworkAssemblies []struct {
			AssemblyName    string `xml:"assemblyName,attr"`
			TargetFramework string `xml:"targetFramework,attr"`
		} `xml:"frameworkAssemblies>frameworkAssembly"`
	} `xml:"metadata"`
}

// readPackage lists the lib/ groups and framework assemblies of a .nupkg.
//
// Files directly under lib/ form a group with an empty framework, which
// applies to every target.
func readPackage(data []byte) (*assetListing, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	lib := make(map[string][]string)
	var spec *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if !strings.Contains(name, "/") && strings.EqualFold(path.Ext(name), ".nuspec") {
			spec = f
			continue
		}
		rest, ok := cutFoldPrefix(name, "lib/")
		if !ok || strings.HasSuffix(rest, "/") {
			continue
		}
		folder, _, nested := strings.Cut(rest, "/")
		if !nested {
			folder = ""
		}
		lib[folder] = append(lib[folder], name)
	}

	out := &assetListing{Lib: groups(lib)}
	if spec != nil {
		fa, err := readFrameworkAssemblies(spec)
		if err != nil {
			return nil, err
		}
		out.FrameworkAssemblies = fa
	}
	return out, nil
}

func readFrameworkAssemblies(f *zip.File) ([]resolve.AssetGroup, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open nuspec: %w", err)
	}
	defer rc.Close()

	var spec nuspec
	if err := xml.NewDecoder(io.LimitReader(rc, 4<<20)).Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse nuspec: %w", err)
	}

	byFramework := make(map[string][]string)
	for _, fa := range spec.Metadata.FrameworkAssemblies {
		if fa.AssemblyName == "" {
			continue
		}
		targets := []string{fa.TargetFramework}
		if !strings.HasPrefix(strings.TrimSpace(fa.TargetFramework), ".") {
			targets = strings.Split(fa.TargetFramework, ",")
		}
		for _, t := range targets {
			t = strings.TrimSpace(t)
			byFramework[t] = append(byFramework[t], fa.AssemblyName)
		}
	}
	return groups(byFramework), nil
}

func groups(m map[string][]string) []resolve.AssetGroup {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]resolve.AssetGroup, 0, len(keys))
	for _, k := range keys {
		items := m[k]
		slices.Sort(items)
		out = append(out, resolve.AssetGroup{Framework: k, Items: slices.Compact(items)})
	}
	return out
}

func cutFoldPrefix(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
