// Package query runs JSONPath selectors over the wire form of OCA
// documents.
package query

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"

	"github.com/agentic-research/ocaast/ast"
)

// Walker evaluates selectors against a payload root.
type Walker interface {
	Query(root any, selector string) ([]Match, error)
}

// Match is one selected node.
type Match interface {
	// Values returns the fields of an object match, or the scalar under
	// the key "value".
	Values() map[string]any
	// Context returns the matched node, usable as the root of a child query.
	Context() any
}

// JSONWalker implements Walker with ojg JSONPath. Parsed selectors are
// cached, so a walker can be shared between goroutines.
type JSONWalker struct {
	cache sync.Map // selector → jp.Expr
}

func NewJSONWalker() *JSONWalker {
	return &JSONWalker{}
}

func (w *JSONWalker) compile(selector string) (jp.Expr, error) {
	if x, ok := w.cache.Load(selector); ok {
		return x.(jp.Expr), nil
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	w.cache.Store(selector, x)
	return x, nil
}

// Query implements Walker. root must be made of plain maps and slices;
// see ast.Plain.
func (w *JSONWalker) Query(root any, selector string) ([]Match, error) {
	x, err := w.compile(selector)
	if err != nil {
		return nil, err
	}
	results := x.Get(root)

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = &jsonMatch{value: r}
	}
	return matches, nil
}

// Document encodes doc and queries its wire form.
func (w *JSONWalker) Document(doc *ast.OCAAst, selector string) ([]Match, error) {
	payload, err := ast.EncodeOCAAst(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return w.Query(ast.Plain(payload), selector)
}

type jsonMatch struct {
	value any
}

func (m *jsonMatch) Values() map[string]any {
	switch v := m.value.(type) {
	case map[string]any:
		return v
	default:
		return map[string]any{"value": v}
	}
}

func (m *jsonMatch) Context() any {
	return m.value
}

// Contexts returns the matched nodes.
func Contexts(matches []Match) []any {
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = m.Context()
	}
	return out
}

// MarshalMatches renders the matched nodes as a JSON array.
func MarshalMatches(matches []Match) ([]byte, error) {
	return json.Marshal(Contexts(matches))
}
