package msbuild

import (
	"context"
	"encoding/xml"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/lockfile"
	"github.com/matzehuels/depends/pkg/nuget"
)

// Evaluator evaluates a project file for one target framework.
//
// An empty framework selects the project's first declared framework.
type Evaluator interface {
	Evaluate(ctx context.Context, projectPath, framework string) (*Result, error)
}

// Result is the evaluated state of one project.
type Result struct {
	ProjectPath       string
	TargetFramework   string // As declared in the project, e.g. "net8.0"
	RuntimeIdentifier string
	IsSDK             bool   // Modern SDK-style project
	AssetsFile        string // Expected location of project.assets.json

	PackageReferences []PackageReference // In declaration order
	References        []string           // HintPath or Include of each Reference item
	Items             map[string][]Item  // Every item, grouped by item type
}

// PackageReference is a direct package request. Version is empty for
// implicit references whose version the SDK supplies.
type PackageReference struct {
	ID      string
	Version string
}

// Item is one evaluated item with its metadata.
type Item struct {
	Include  string
	Metadata map[string]string
}

// Framework parses TargetFramework.
func (r *Result) Framework() (nuget.Framework, error) {
	return nuget.ParseFramework(r.TargetFramework)
}

// StaticEvaluator is the default [Evaluator]. It reads project XML without
// invoking MSBuild.
type StaticEvaluator struct{}

var _ Evaluator = StaticEvaluator{}

// Evaluate implements [Evaluator].
func (StaticEvaluator) Evaluate(ctx context.Context, projectPath, framework string) (*Result, error) {
	if err := derrors.ValidateProjectPath(projectPath); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "resolve project path %s", projectPath)
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "project path does not exist: %s", projectPath)
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read project %s", projectPath)
	}

	var proj xmlProject
	if err := xml.Unmarshal(data, &proj); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse project %s", projectPath)
	}

	// First pass finds the declared frameworks, second pass evaluates the
	// inner build for the chosen one.
	outer := proj.evaluate(defaultProperties(abs), nil)
	declared := declaredFrameworks(outer.props)
	chosen, err := chooseFramework(declared, framework, projectPath)
	if err != nil {
		return nil, err
	}

	globals := map[string]string{}
	if chosen != "" {
		globals["targetframework"] = chosen
	}
	inner := proj.evaluate(defaultProperties(abs), globals)

	res := &Result{
		ProjectPath:       abs,
		TargetFramework:   chosen,
		RuntimeIdentifier: inner.props.get("RuntimeIdentifier"),
		IsSDK:             proj.isSDK(),
		AssetsFile:        assetsFile(abs, inner.props),
		Items:             inner.items,
	}
	for _, it := range inner.items["PackageReference"] {
		res.PackageReferences = append(res.PackageReferences, PackageReference{
			ID:      it.Include,
			Version: packageVersion(it),
		})
	}
	for _, it := range inner.items["Reference"] {
		ref := it.Include
		if hint := it.Metadata["HintPath"]; hint != "" {
			ref = hint
		}
		res.References = append(res.References, ref)
	}
	return res, nil
}

func declaredFrameworks(p properties) []string {
	if list := p.get("TargetFrameworks"); list != "" {
		var out []string
		for _, f := range strings.Split(list, ";") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
		return out
	}
	if f := strings.TrimSpace(p.get("TargetFramework")); f != "" {
		return []string{f}
	}
	return nil
}

// chooseFramework returns the declared name matching requested, or the
// first declared framework when requested is empty.
func chooseFramework(declared []string, requested, projectPath string) (string, error) {
	if requested == "" {
		if len(declared) == 0 {
			return "", nil
		}
		return declared[0], nil
	}
	want, err := nuget.ParseFramework(requested)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid framework %q", requested)
	}
	if len(declared) == 0 {
		return requested, nil
	}
	for _, d := range declared {
		if f, err := nuget.ParseFramework(d); err == nil && f == want {
			return d, nil
		}
	}
	return "", derrors.New(derrors.ErrCodeInvalidInput,
		"project %s does not target %s (targets: %s)", projectPath, requested, strings.Join(declared, ", "))
}

func packageVersion(it Item) string {
	for _, key := range []string{"Version", "VersionOverride"} {
		if v := strings.TrimSpace(it.Metadata[key]); v != "" {
			return v
		}
	}
	return ""
}

// assetsFile follows restore's defaults: ProjectAssetsFile, else
// MSBuildProjectExtensionsPath, else BaseIntermediateOutputPath, else obj/.
func assetsFile(projectPath string, p properties) string {
	dir := filepath.Dir(projectPath)
	if f := p.get("ProjectAssetsFile"); f != "" {
		return resolvePath(dir, f)
	}
	base := p.get("MSBuildProjectExtensionsPath")
	if base == "" {
		base = p.get("BaseIntermediateOutputPath")
	}
	if base == "" {
		base = "obj"
	}
	return filepath.Join(resolvePath(dir, base), lockfile.FileName)
}

func resolvePath(dir, p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

func defaultProperties(projectPath string) properties {
	name := filepath.Base(projectPath)
	return properties{
		"msbuildprojectname":       strings.TrimSuffix(name, filepath.Ext(name)),
		"msbuildprojectfile":       name,
		"msbuildprojectdirectory":  filepath.Dir(projectPath),
		"msbuildprojectfullpath":   projectPath,
		"msbuildthisfiledirectory": withSeparator(filepath.Dir(projectPath)),
	}
}

func withSeparator(dir string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}
	return dir + string(filepath.Separator)
}

// ItemNames returns the item types present in r, sorted.
func (r *Result) ItemNames() []string {
	names := make([]string, 0, len(r.Items))
	for k := range r.Items {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
