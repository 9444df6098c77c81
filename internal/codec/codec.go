// Package codec renders topology snapshots in exchange formats.
package codec

import (
	"fmt"
	"io"
	"sort"

	"podmanager/internal/service"
)

// Exporter interface for exporting a topology snapshot to various formats
type Exporter interface {
	Export(roots []*service.Node, w io.Writer) error
	Format() string
}

// Document is the top-level layout of every export
type Document struct {
	Roots []*service.Node `json:"roots" yaml:"roots"`
}

func newDocument(roots []*service.Node) Document {
	if roots == nil {
		roots = []*service.Node{}
	}
	return Document{Roots: roots}
}

var exporters = map[string]Exporter{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
}

// ForFormat returns the exporter of format
func ForFormat(format string) (Exporter, error) {
	e, ok := exporters[format]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q (supported: %v)", format, Formats())
	}
	return e, nil
}

// Formats lists the supported export formats
func Formats() []string {
	out := make([]string, 0, len(exporters))
	for f := range exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
