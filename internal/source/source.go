// Package source loads OCA documents from a filesystem.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/ocaast/ast"
)

// Format is the serialization of a document file.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ErrUnsupported is returned for files that are not JSON or YAML documents.
var ErrUnsupported = errors.New("unsupported document format")

// FormatOf picks a format from the file extension.
func FormatOf(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Sniff guesses the format of data: a leading '{' means JSON, anything else
// is read as YAML (which also accepts JSON).
func Sniff(data []byte) Format {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses data in the given format. FormatUnknown sniffs the content.
func Decode(data []byte, f Format) (*ast.OCAAst, error) {
	if f == FormatUnknown {
		f = Sniff(data)
	}
	switch f {
	case FormatJSON:
		return ast.ParseJSON(data)
	case FormatYAML:
		return ast.ParseYAML(data)
	default:
		return nil, ErrUnsupported
	}
}

// Loaded is the outcome of loading one file.
type Loaded struct {
	Path string
	Doc  *ast.OCAAst
	Err  error
}

// Loader reads documents from a billy filesystem.
type Loader struct {
	fs billy.Filesystem
}

// NewLoader returns a loader over fs.
func NewLoader(fs billy.Filesystem) *Loader {
	return &Loader{fs: fs}
}

// NewOSLoader returns a loader rooted at dir on the local disk.
func NewOSLoader(dir string) *Loader {
	return NewLoader(osfs.New(dir))
}

// Load reads and decodes one file. Files without a known extension are
// sniffed.
func (l *Loader) Load(name string) (*ast.OCAAst, error) {
	data, err := util.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	doc, err := Decode(data, FormatOf(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// LoadTree loads every .json, .yaml and .yml file under root, in path order.
// A file that fails to decode is reported in its Loaded entry and does not
// stop the walk.
func (l *Loader) LoadTree(root string) ([]Loaded, error) {
	var names []string
	err := util.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && FormatOf(p) != FormatUnknown {
			names = append(names, filepath.ToSlash(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(names)

	out := make([]Loaded, len(names))
	for i, n := range names {
		doc, err := l.Load(n)
		out[i] = Loaded{Path: n, Doc: doc, Err: err}
	}
	return out, nil
}
