package msbuild

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	derrors "github.com/matzehuels/depends/pkg/errors"
)

// SolutionProject is one member project of a solution.
type SolutionProject struct {
	Name string
	Path string // Absolute path to the project file
}

const solutionFolderType = "{2150E333-8FDC-42A3-9474-1A3956D46DE8}"

var slnProject = regexp.MustCompile(`^Project\("(\{[0-9A-Fa-f-]+\})"\)\s*=\s*"([^"]*)"\s*,\s*"([^"]*)"`)

// ReadSolution lists the MSBuild-format projects of a .sln or .slnx file,
// in file order. Solution folders and non-MSBuild entries such as web site
// folders are skipped.
func ReadSolution(path string) ([]SolutionProject, error) {
	if err := derrors.ValidateProjectPath(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "resolve solution path %s", path)
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "solution path does not exist: %s", path)
	}
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read solution %s", path)
	}

	dir := filepath.Dir(abs)
	if strings.EqualFold(filepath.Ext(abs), ".slnx") {
		return parseSlnx(dir, data)
	}
	return parseSln(dir, data)
}

func parseSln(dir string, data []byte) ([]SolutionProject, error) {
	var out []SolutionProject
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		m := slnProject.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil || strings.EqualFold(m[1], solutionFolderType) {
			continue
		}
		if p, ok := member(dir, m[2], m[3]); ok {
			out = append(out, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "scan solution")
	}
	return out, nil
}

type slnxProject struct {
	Path string `xml:"Path,attr"`
}

type slnxFolder struct {
	Projects []slnxProject `xml:"Project"`
	Folders  []slnxFolder  `xml:"Folder"`
}

func (f slnxFolder) walk(visit func(slnxProject)) {
	for _, p := range f.Projects {
		visit(p)
	}
	for _, sub := range f.Folders {
		sub.walk(visit)
	}
}

func parseSlnx(dir string, data []byte) ([]SolutionProject, error) {
	var root slnxFolder
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "parse solution")
	}
	var out []SolutionProject
	root.walk(func(p slnxProject) {
		name := filepath.Base(strings.ReplaceAll(p.Path, "\\", "/"))
		if sp, ok := member(dir, strings.TrimSuffix(name, filepath.Ext(name)), p.Path); ok {
			out = append(out, sp)
		}
	})
	return out, nil
}

// member accepts project files whose extension ends in "proj", which is
// how MSBuild-format projects are named.
func member(dir, name, rel string) (SolutionProject, bool) {
	rel = filepath.FromSlash(strings.ReplaceAll(rel, "\\", "/"))
	if !strings.HasSuffix(strings.ToLower(filepath.Ext(rel)), "proj") {
		return SolutionProject{}, false
	}
	if !filepath.IsAbs(rel) {
		rel = filepath.Join(dir, rel)
	}
	return SolutionProject{Name: name, Path: rel}, true
}
