// Package index builds bitmap indexes over the commands of an OCA document:
// which positions target each object-kind code, which use each verb, and
// which share content features. The last-writer table tells an apply
// engine which command finally decides each target.
package index

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"github.com/agentic-research/ocaast/ast"
)

// Index is an immutable view over one document. All bitmaps hold 0-based
// command positions.
type Index struct {
	doc    *ast.OCAAst
	byCode map[int]*roaring.Bitmap
	byVerb map[ast.CommandType]*roaring.Bitmap
	ctx    *FormalContext
}

// Writer is one row of the last-writer table.
type Writer struct {
	Code     int    `json:"code"`     // object-kind code
	Kind     string `json:"kind"`     // e.g. "CaptureBase" or "Overlay(spec/overlays/label/1.0)"
	Position int    `json:"position"` // 0-based position of the last command on Code
	Count    int    `json:"count"`    // commands targeting Code
}

// Build indexes doc. It fails only if a command carries an object kind
// without a code, which a validated document never does.
func Build(doc *ast.OCAAst) (*Index, error) {
	idx := &Index{
		doc:    doc,
		byCode: make(map[int]*roaring.Bitmap),
		byVerb: make(map[ast.CommandType]*roaring.Bitmap),
	}

	for i, cmd := range doc.All() {
		code, err := ast.ToInt(cmd.ObjectKind)
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		bitmapFor(idx.byCode, code).Add(uint32(i))
		bitmapFor(idx.byVerb, cmd.Kind).Add(uint32(i))
	}

	idx.ctx = newContext(doc.Len(), collectFeatures(doc))
	for i, cmd := range doc.All() {
		for _, f := range CommandFeatures(cmd) {
			j, _ := idx.ctx.Column(f.Name)
			idx.ctx.columns[j].Add(uint32(i))
		}
	}

	logger.Debug("indexed document",
		zap.Int("commands", doc.Len()),
		zap.Int("codes", len(idx.byCode)),
		zap.Int("features", len(idx.ctx.Features)))
	return idx, nil
}

func bitmapFor[K comparable](m map[K]*roaring.Bitmap, k K) *roaring.Bitmap {
	b, ok := m[k]
	if !ok {
		b = roaring.New()
		m[k] = b
	}
	return b
}

// Len returns the number of indexed commands.
func (idx *Index) Len() int { return idx.doc.Len() }

// Document returns the indexed document.
func (idx *Index) Document() *ast.OCAAst { return idx.doc }

// ByCode returns the positions of commands targeting the object-kind code.
func (idx *Index) ByCode(code int) *roaring.Bitmap {
	if b, ok := idx.byCode[code]; ok {
		return b.Clone()
	}
	return roaring.New()
}

// ByKind is ByCode for an object kind; only the variant (and overlay type)
// of k matters, not its content.
func (idx *Index) ByKind(k ast.ObjectKind) (*roaring.Bitmap, error) {
	code, err := ast.ToInt(k)
	if err != nil {
		return nil, err
	}
	return idx.ByCode(code), nil
}

// ByVerb returns the positions of commands of type t.
func (idx *Index) ByVerb(t ast.CommandType) *roaring.Bitmap {
	if b, ok := idx.byVerb[t]; ok {
		return b.Clone()
	}
	return roaring.New()
}

// Codes returns the object-kind codes present, ascending.
func (idx *Index) Codes() []int {
	codes := make([]int, 0, len(idx.byCode))
	for c := range idx.byCode {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// LastWriter returns the position of the last command targeting code.
func (idx *Index) LastWriter(code int) (int, bool) {
	b, ok := idx.byCode[code]
	if !ok || b.IsEmpty() {
		return 0, false
	}
	return int(b.Maximum()), true
}

// LastWriters returns the last-writer table ordered by code.
func (idx *Index) LastWriters() []Writer {
	out := make([]Writer, 0, len(idx.byCode))
	for _, code := range idx.Codes() {
		b := idx.byCode[code]
		pos := int(b.Maximum())
		out = append(out, Writer{
			Code:     code,
			Kind:     ast.KindName(idx.doc.Command(pos).ObjectKind),
			Position: pos,
			Count:    int(b.GetCardinality()),
		})
	}
	return out
}

// Context returns the command/feature incidence table.
func (idx *Index) Context() *FormalContext { return idx.ctx }

// Select returns the positions of commands having every named feature.
// Unknown feature names select nothing.
func (idx *Index) Select(features ...string) *roaring.Bitmap {
	set, unknown := idx.ctx.FeatureSet(features...)
	if len(unknown) > 0 {
		return roaring.New()
	}
	return idx.ctx.AttrDeriv(set)
}

// Shared returns the features common to every command at the given
// positions.
func (idx *Index) Shared(positions ...int) []string {
	objs := roaring.New()
	for _, p := range positions {
		objs.Add(uint32(p))
	}
	return idx.ctx.Names(idx.ctx.ObjectDeriv(objs))
}

// Concepts enumerates the groups of commands that share a maximal set of
// features.
func (idx *Index) Concepts() []Concept {
	return NextClosure(idx.ctx)
}

// Positions flattens a bitmap into ints for callers outside this package.
func Positions(b *roaring.Bitmap) []int {
	out := make([]int, 0, b.GetCardinality())
	it := b.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
