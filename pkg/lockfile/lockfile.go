// Package lockfile reads NuGet's resolved-state artifact, project.assets.json.
//
// Restore writes one assets file per project. It records, for every target
// (framework plus optional runtime identifier), exactly which package
// versions were selected and which files each contributes. This package
// only reads the file; it never writes or updates it.
package lockfile

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/depends/pkg/nuget"
)

// FileName is the name restore gives the assets file.
const FileName = "project.assets.json"

// emptyMarker is the placeholder NuGet lists for an intentionally empty folder.
const emptyMarker = "_._"

// File is a parsed assets file.
type File struct {
	Version int
	Targets []Target // Ordered by name
}

// Target is the resolved package set for one framework and runtime.
type Target struct {
	Name              string          // Raw key, e.g. "net8.0" or "net8.0/win-x64"
	Framework         nuget.Framework // Parsed framework part of Name
	RuntimeIdentifier string          // Empty for the portable target
	Libraries         []Library       // Ordered by name
}

// Library is one resolved entry of a target.
type Library struct {
	Name    string
	Version string
	Type    string // "package" or "project"

	Dependencies        []Dependency // Ordered by id
	FrameworkAssemblies []string     // Platform assembly names without suffix
	RuntimeAssemblies   []string     // Package-relative paths
	CompileAssemblies   []string     // Package-relative paths
}

// Dependency is a library's recorded dependency range.
type Dependency struct {
	ID    string
	Range string
}

// IsPackage reports whether l came from a package feed rather than a
// project reference.
func (l Library) IsPackage() bool {
	return strings.EqualFold(l.Type, "package")
}

// RuntimeFiles returns the base names of l's runtime assemblies, excluding
// empty-folder markers.
func (l Library) RuntimeFiles() []string {
	var out []string
	for _, p := range l.RuntimeAssemblies {
		name := path.Base(strings.ReplaceAll(p, "\\", "/"))
		if name == emptyMarker {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Target returns the target for framework and rid. Framework names are
// compared after parsing, so "net8.0" matches ".NETCoreApp,Version=v8.0".
func (f *File) Target(framework nuget.Framework, rid string) (*Target, bool) {
	for i := range f.Targets {
		t := &f.Targets[i]
		if t.Framework == framework && strings.EqualFold(t.RuntimeIdentifier, rid) {
			return t, true
		}
	}
	return nil, false
}

// Frameworks returns the distinct frameworks the file has targets for.
func (f *File) Frameworks() []nuget.Framework {
	var out []nuget.Framework
	for _, t := range f.Targets {
		if !slices.Contains(out, t.Framework) {
			out = append(out, t.Framework)
		}
	}
	return out
}

// Read parses the assets file at path. A missing file yields an error
// satisfying errors.Is(err, fs.ErrNotExist).
func Read(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

type rawFile struct {
	Version int                              `json:"version"`
	Targets map[string]map[string]rawLibrary `json:"targets"`
}

type rawLibrary struct {
	Type                string                     `json:"type"`
	Dependencies        map[string]string          `json:"dependencies"`
	FrameworkAssemblies []string                   `json:"frameworkAssemblies"`
	Runtime             map[string]json.RawMessage `json:"runtime"`
	Compile             map[string]json.RawMessage `json:"compile"`
}

// Parse decodes an assets file.
func Parse(r io.Reader) (*File, error) {
	var raw rawFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode assets file: %w", err)
	}

	f := &File{Version: raw.Version}
	for _, name := range slices.Sorted(maps.Keys(raw.Targets)) {
		fwPart, rid, _ := strings.Cut(name, "/")
		framework, err := nuget.ParseFramework(fwPart)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", name, err)
		}
		t := Target{Name: name, Framework: framework, RuntimeIdentifier: rid}

		libs := raw.Targets[name]
		for _, key := range slices.Sorted(maps.Keys(libs)) {
			t.Libraries = append(t.Libraries, newLibrary(key, libs[key]))
		}
		f.Targets = append(f.Targets, t)
	}
	return f, nil
}

func newLibrary(key string, raw rawLibrary) Library {
	name, version, _ := strings.Cut(key, "/")
	lib := Library{
		Name:                name,
		Version:             version,
		Type:                raw.Type,
		FrameworkAssemblies: raw.FrameworkAssemblies,
		RuntimeAssemblies:   slices.Sorted(maps.Keys(raw.Runtime)),
		CompileAssemblies:   slices.Sorted(maps.Keys(raw.Compile)),
	}
	for _, id := range slices.Sorted(maps.Keys(raw.Dependencies)) {
		lib.Dependencies = append(lib.Dependencies, Dependency{ID: id, Range: raw.Dependencies[id]})
	}
	return lib
}
