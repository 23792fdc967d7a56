package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	graphio "github.com/matzehuels/depends/pkg/io"
	"github.com/matzehuels/depends/pkg/render/dot"
)

// Output formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
)

var validFormats = []string{formatJSON, formatDOT, formatSVG, formatPDF, formatPNG}

// formatByExt maps output file extensions to formats.
var formatByExt = map[string]string{
	".json": formatJSON,
	".dot":  formatDOT,
	".gv":   formatDOT,
	".svg":  formatSVG,
	".pdf":  formatPDF,
	".png":  formatPNG,
}

// outputOpts holds the flags that control where and how a graph is written.
type outputOpts struct {
	path   string
	format string
	ranked bool
	scale  float64
}

func (o *outputOpts) register(f *pflag.FlagSet) {
	f.StringVarP(&o.path, "output", "o", "", "output file (default: stdout)")
	f.StringVarP(&o.format, "format", "f", "", "output format: "+strings.Join(validFormats, ", ")+" (default: from -o extension)")
	f.BoolVar(&o.ranked, "ranked", false, "group nodes of equal depth on one DOT rank")
	f.Float64Var(&o.scale, "scale", 1, "PNG scale factor")
}

// resolve picks the output format: the --format flag, then the -o
// extension, then fallback.
func (o *outputOpts) resolve(fallback string) (string, error) {
	if o.format != "" {
		f := strings.ToLower(o.format)
		if !slices.Contains(validFormats, f) {
			return "", derrors.New(derrors.ErrCodeInvalidInput, "unknown format %q (valid: %s)", o.format, strings.Join(validFormats, ", "))
		}
		return f, nil
	}
	if f, ok := formatByExt[strings.ToLower(filepath.Ext(o.path))]; ok {
		return f, nil
	}
	return fallback, nil
}

// write encodes g in format to the output file, or stdout when no path is
// set. Binary formats are never written to a terminal-bound stdout by
// accident; they require -o.
func (o *outputOpts) write(ctx context.Context, g *graph.Graph, format string) error {
	data, err := encodeGraph(ctx, g, format, o)
	if err != nil {
		return err
	}
	if o.path == "" {
		if format == formatPDF || format == formatPNG {
			return derrors.New(derrors.ErrCodeInvalidInput, "%s output needs a file; use -o", format)
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(o.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(o.path, data, 0o644)
}

func encodeGraph(ctx context.Context, g *graph.Graph, format string, o *outputOpts) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case formatJSON:
		if err := graphio.WriteJSON(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatDOT:
		if err := dot.Write(&buf, g, dot.Options{Ranked: o.ranked}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	src := dot.ToDOT(g, dot.Options{Ranked: o.ranked})
	switch format {
	case formatSVG:
		return dot.RenderSVG(ctx, src)
	case formatPDF:
		return dot.RenderPDF(ctx, src)
	case formatPNG:
		return dot.RenderPNG(ctx, src, o.scale)
	}
	return nil, derrors.New(derrors.ErrCodeInvalidInput, "unknown format %q", format)
}
