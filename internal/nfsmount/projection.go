// Package nfsmount exposes stored OCA documents as a read-only file tree
// served over NFSv3 by willscott/go-nfs. Each document becomes a directory:
//
//	/<id>/document.json          canonical wire form
//	/<id>/meta.json              version, command count and document meta
//	/<id>/index.json             last-writer table per object-kind code
//	/<id>/lint.txt               lint findings, one per line
//	/<id>/commands/NNN-verb-kind.json
package nfsmount

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/index"
	"github.com/agentic-research/ocaast/internal/linter"
	"github.com/agentic-research/ocaast/internal/store"
)

// Projector writes documents into a billy filesystem.
type Projector struct {
	fs     billy.Filesystem
	indent string
}

// NewProjector returns a projector over an empty in-memory filesystem.
func NewProjector(indent string) *Projector {
	return &Projector{fs: memfs.New(), indent: indent}
}

// Filesystem returns the projected tree, wrapped read-only.
func (p *Projector) Filesystem() billy.Filesystem {
	return ReadOnly(p.fs)
}

// Add projects doc under /<id>/. An existing directory for id is replaced.
func (p *Projector) Add(id string, doc *ast.OCAAst) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid document id %q", id)
	}
	dir := "/" + id
	if err := util.RemoveAll(p.fs, dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := p.fs.MkdirAll(path.Join(dir, "commands"), 0o755); err != nil {
		return err
	}

	if err := p.writeJSON(path.Join(dir, "document.json"), doc); err != nil {
		return err
	}

	meta := orderedmap.New[string, any]()
	meta.Set("version", doc.Version())
	meta.Set("commands", doc.Len())
	fields := orderedmap.New[string, string]()
	for k, v := range doc.Meta().All() {
		fields.Set(k, v)
	}
	meta.Set("meta", fields)
	if err := p.writeJSON(path.Join(dir, "meta.json"), meta); err != nil {
		return err
	}

	idx, err := index.Build(doc)
	if err != nil {
		return fmt.Errorf("index %s: %w", id, err)
	}
	if err := p.writeJSON(path.Join(dir, "index.json"), idx.LastWriters()); err != nil {
		return err
	}

	var lint strings.Builder
	for _, d := range linter.Lint(doc) {
		lint.WriteString(d.String())
		lint.WriteByte('\n')
	}
	if err := util.WriteFile(p.fs, path.Join(dir, "lint.txt"), []byte(lint.String()), 0o644); err != nil {
		return err
	}

	for i, cmd := range doc.All() {
		name := path.Join(dir, "commands", CommandFileName(i, cmd))
		if err := p.writeJSON(name, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (p *Projector) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", p.indent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return util.WriteFile(p.fs, name, append(data, '\n'), 0o644)
}

// CommandFileName names the file for the command at 0-based position i,
// e.g. "002-add-overlay-label.json".
func CommandFileName(i int, cmd ast.Command) string {
	kind := strings.ToLower(string(cmd.ObjectKind.Type()))
	if ov, ok := ast.AsOverlay(cmd.ObjectKind); ok {
		kind += "-" + strings.ToLower(ov.OverlayType.ShortName())
	}
	return fmt.Sprintf("%03d-%s-%s.json", i, strings.ToLower(cmd.Kind.String()), kind)
}

// ProjectStore projects every document in st. Documents that fail to load
// abort the projection.
func ProjectStore(ctx context.Context, st *store.Store, indent string) (*Projector, error) {
	list, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	p := NewProjector(indent)
	for _, sum := range list {
		doc, err := st.Get(ctx, sum.ID)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", sum.ID, err)
		}
		if err := p.Add(sum.ID, doc); err != nil {
			return nil, err
		}
	}
	return p, nil
}
