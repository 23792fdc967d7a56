package analyzer

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/lockfile"
	"github.com/matzehuels/depends/pkg/nuget"
)

// AnalyzeProject builds the graph of an SDK-style project from what restore
// recorded in its assets file. The project must have been restored.
//
// An empty framework selects the project's first target framework.
func (a *Analyzer) AnalyzeProject(ctx context.Context, projectPath, framework string) (*graph.Graph, error) {
	return a.run(ctx, ModeProject, projectPath, func(logger *log.Logger) (*graph.Graph, error) {
		return a.assemble(ctx, logger, projectPath, framework)
	})
}

func (a *Analyzer) assemble(ctx context.Context, logger *log.Logger, projectPath, framework string) (*graph.Graph, error) {
	res, err := a.opts.Evaluator.Evaluate(ctx, projectPath, framework)
	if err != nil {
		return nil, err
	}
	if !res.IsSDK {
		return nil, derrors.New(derrors.ErrCodeUnsupportedProject,
			"%s is not an SDK-style project; only projects using <Project Sdk=\"...\"> are supported", projectPath)
	}
	if res.TargetFramework == "" {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "%s declares no target framework", projectPath)
	}
	target, err := res.Framework()
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "project %s", projectPath)
	}

	lock, err := lockfile.Read(res.AssetsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.New(derrors.ErrCodeMissingResolvedState,
			"%s not found. Please run 'dotnet restore'", res.AssetsFile)
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read assets file")
	}

	lockTarget, ok := lock.Target(target, res.RuntimeIdentifier)
	if !ok {
		name := res.TargetFramework
		if res.RuntimeIdentifier != "" {
			name += "/" + res.RuntimeIdentifier
		}
		return nil, derrors.New(derrors.ErrCodeInvalidInput,
			"target %s not found in %s; restore the project for this framework", name, res.AssetsFile)
	}
	logger.Debug("read assets file", "path", res.AssetsFile, "target", lockTarget.Name, "libraries", len(lockTarget.Libraries))

	project := graph.NewProject(res.ProjectPath)
	b := graph.NewBuilder(project)

	libraries := make(map[string]graph.Node)
	var packages []lockfile.Library
	for _, lib := range lockTarget.Libraries {
		if !lib.IsPackage() {
			continue
		}
		packages = append(packages, lib)
		node := graph.NewPackage(lib.Name, lib.Version)
		b.AddNode(node)
		libraries[node.Key()] = node

		for _, name := range lib.FrameworkAssemblies {
			asm := graph.NewAssembly(withDLL(name))
			b.AddNode(asm).AddEdge(graph.NewEdge(node, asm))
		}
		for _, file := range lib.RuntimeFiles() {
			asm := graph.NewAssembly(file)
			b.AddNode(asm).AddEdge(graph.NewEdge(node, asm))
		}
	}

	for _, lib := range packages {
		from := libraries[strings.ToLower(lib.Name)]
		for _, dep := range lib.Dependencies {
			to, ok := libraries[strings.ToLower(dep.ID)]
			if !ok {
				logger.Debug("dependency not in target", "package", lib.Name, "dependency", dep.ID)
				continue
			}
			b.AddEdge(graph.NewLabeledEdge(from, to, normalizeRange(dep.Range)))
		}
	}

	for _, ref := range res.PackageReferences {
		if ref.Version == "" {
			continue
		}
		to, ok := libraries[strings.ToLower(ref.ID)]
		if !ok {
			logger.Warn("package reference missing from assets file", "project", project.ID, "package", ref.ID)
			continue
		}
		b.AddEdge(graph.NewLabeledEdge(project, to, ref.Version))
	}

	for _, ref := range res.References {
		asm := graph.NewAssembly(referenceFile(ref))
		b.AddNode(asm).AddEdge(graph.NewEdge(project, asm))
	}
	return b.Build(), nil
}

// normalizeRange renders a recorded range the way feed ranges are
// rendered, so "4.5.5" becomes "[4.5.5, )". Unparsable ranges are kept.
func normalizeRange(raw string) string {
	r, err := nuget.ParseRange(raw)
	if err != nil {
		return raw
	}
	return r.String()
}

// referenceFile turns a Reference item into an assembly file name: a
// HintPath keeps its file name, an assembly name like
// "Vendor.Lib, Version=1.0.0.0" becomes "Vendor.Lib.dll".
func referenceFile(ref string) string {
	name, _, _ := strings.Cut(ref, ",")
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	switch strings.ToLower(path.Ext(name)) {
	case ".dll", ".exe", ".winmd":
		return name
	}
	return name + ".dll"
}
