package tests

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/ocaast/ast"
	"github.com/agentic-research/ocaast/internal/index"
	"github.com/agentic-research/ocaast/internal/linter"
	"github.com/agentic-research/ocaast/internal/nfsmount"
	"github.com/agentic-research/ocaast/internal/query"
	"github.com/agentic-research/ocaast/internal/source"
	"github.com/agentic-research/ocaast/internal/store"
)

// testFixture bundles the shared state for integration tests: a source tree
// of documents in memory, the decoded documents, and a store holding them.
type testFixture struct {
	docs  map[string]*ast.OCAAst
	store *store.Store
}

const passportJSON = `{
	"commands": [
		{"type": "From", "object_kind": {"type": "OCABundle", "content": {"said": "refs:EPassportBase"}}},
		{"type": "Add", "object_kind": {"type": "CaptureBase", "content": {
			"attributes": {"name": "Text", "dob": "Datetime", "photo": "Binary", "address": "refs:EAddress"},
			"properties": {"classification": "GICS:45102010"},
			"flagged_attributes": ["name", "dob"]}}},
		{"type": "Add", "object_kind": {"type": "Overlay", "content": {
			"overlay_type": "spec/overlays/label/1.0",
			"content": {"attributes": {"name": "Text"}, "properties": {"lang": "en", "labels": {"name": "Full name"}}}}}},
		{"type": "Add", "object_kind": {"type": "Overlay", "content": {
			"overlay_type": "Format",
			"content": {"properties": {"dob": "YYYY-MM-DD"}}}}}
	],
	"commands_meta": {
		"1": {"line_number": 1, "raw_line": "FROM refs:EPassportBase"},
		"2": {"line_number": 3, "raw_line": "ADD ATTRIBUTE name=Text dob=DateTime photo=Binary address=refs:EAddress"}
	},
	"meta": {"name": "passport", "version": "2"}
}`

const addressYAML = `
commands:
  - type: Add
    object_kind:
      type: CaptureBase
      content:
        attributes:
          street: Text
          city: Text
          country: Text
  - type: Add
    object_kind:
      type: Overlay
      content:
        overlay_type: Label
        content:
          properties:
            lang: fr
meta:
  name: address
`

const brokenJSON = `{"commands":[{"type":"Add","object_kind":{"type":"Overlay","content":{"overlay_type":"spec/overlays/nope/1.0"}}}]}`

// setup loads the documents from an in-memory tree and stores the valid ones.
func setup(t *testing.T) *testFixture {
	t.Helper()

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "schemas/passport.json", []byte(passportJSON), 0o644))
	require.NoError(t, util.WriteFile(fs, "schemas/nested/address.yaml", []byte(addressYAML), 0o644))
	require.NoError(t, util.WriteFile(fs, "schemas/broken.json", []byte(brokenJSON), 0o644))

	loaded, err := source.NewLoader(fs).LoadTree("schemas")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	docs := make(map[string]*ast.OCAAst)
	for _, l := range loaded {
		if l.Err != nil {
			assert.ErrorIs(t, l.Err, ast.ErrUnknownOverlayType, l.Path)
			continue
		}
		name, _ := l.Doc.Meta().Get("name")
		docs[name] = l.Doc
	}
	require.Len(t, docs, 2)

	st, err := store.Open(filepath.Join(t.TempDir(), "oca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	for id, doc := range docs {
		require.NoError(t, st.Put(context.Background(), id, doc))
	}

	return &testFixture{docs: docs, store: st}
}

func TestIntegration_LoadAndStore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	list, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "address", list[0].ID)
	assert.Equal(t, 4, list[1].Commands)

	for id, doc := range f.docs {
		got, err := f.store.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, doc.Equal(got), id)
	}
}

func TestIntegration_CrossDocumentReferences(t *testing.T) {
	f := setup(t)

	locs, err := f.store.Referencing(context.Background(), ast.SaidRef("EAddress"))
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, store.Location{DocID: "passport", Position: 1, Verb: "Add", Kind: "CaptureBase"}, locs[0])

	locs, err = f.store.CommandsByCode(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, locs, 2)
}

func TestIntegration_IndexAndLint(t *testing.T) {
	f := setup(t)
	doc := f.docs["passport"]

	idx, err := index.Build(doc)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 6}, idx.Codes())

	sel := index.Positions(idx.Select("kind=Overlay", "property=lang"))
	assert.Equal(t, []int{2}, sel)

	var rules []string
	for _, d := range linter.Lint(doc) {
		rules = append(rules, d.Rule)
	}
	assert.NotContains(t, rules, "flagged-undeclared")
	assert.NotContains(t, rules, "late-from")
}

func TestIntegration_QueryEncodedForm(t *testing.T) {
	f := setup(t)
	w := query.NewJSONWalker()

	matches, err := w.Document(f.docs["passport"], "$.commands[?(@.object_kind.type == 'Overlay')].object_kind.content.overlay_type")
	require.NoError(t, err)
	assert.Equal(t, []any{"spec/overlays/label/1.0", "spec/overlays/format/1.0"}, query.Contexts(matches))

	matches, err = w.Document(f.docs["passport"], "$.commands_meta['2'].line_number")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestIntegration_Projection(t *testing.T) {
	f := setup(t)

	p, err := nfsmount.ProjectStore(context.Background(), f.store, "  ")
	require.NoError(t, err)
	fs := p.Filesystem()

	data, err := util.ReadFile(fs, "/passport/document.json")
	require.NoError(t, err)
	back, err := ast.ParseJSON(data)
	require.NoError(t, err)
	assert.True(t, f.docs["passport"].Equal(back))

	var meta map[string]any
	data, err = util.ReadFile(fs, "/address/meta.json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.EqualValues(t, 2, meta["commands"])
}
