package source

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/ocaast/ast"
)

const jsonDoc = `{"commands":[{"type":"Add","object_kind":{"type":"OCABundle","content":{"said":"refs:EAbc"}}}]}`

const yamlDoc = `
commands:
  - type: Add
    object_kind:
      type: OCABundle
      content:
        said: refs:EAbc
`

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatOf("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatOf("x.yml"))
	assert.Equal(t, FormatYAML, FormatOf("x.yaml"))
	assert.Equal(t, FormatUnknown, FormatOf("x.oca"))
	assert.Equal(t, "yaml", FormatYAML.String())
}

func TestSniff(t *testing.T) {
	assert.Equal(t, FormatJSON, Sniff([]byte("  \n{\"a\":1}")))
	assert.Equal(t, FormatYAML, Sniff([]byte("a: 1")))
	assert.Equal(t, FormatYAML, Sniff(nil))
}

func TestLoader_Load(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "docs/a.json", []byte(jsonDoc), 0o644))
	require.NoError(t, util.WriteFile(fs, "docs/b.yaml", []byte(yamlDoc), 0o644))
	require.NoError(t, util.WriteFile(fs, "docs/c.oca", []byte(jsonDoc), 0o644))

	l := NewLoader(fs)
	a, err := l.Load("docs/a.json")
	require.NoError(t, err)
	b, err := l.Load("docs/b.yaml")
	require.NoError(t, err)
	c, err := l.Load("docs/c.oca")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.Equal(t, 1, a.Len())

	_, err = l.Load("docs/missing.json")
	assert.Error(t, err)
}

func TestLoader_LoadTree(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "set/z.json", []byte(jsonDoc), 0o644))
	require.NoError(t, util.WriteFile(fs, "set/nested/a.yml", []byte(yamlDoc), 0o644))
	require.NoError(t, util.WriteFile(fs, "set/bad.json", []byte(`{"commands":[{"type":"Add","object_kind":{"type":"CaptureBase"}}]}`), 0o644))
	require.NoError(t, util.WriteFile(fs, "set/readme.txt", []byte("ignored"), 0o644))

	loaded, err := NewLoader(fs).LoadTree("set")
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, "set/bad.json", loaded[0].Path)
	assert.ErrorIs(t, loaded[0].Err, ast.ErrMissingField)
	assert.Nil(t, loaded[0].Doc)

	assert.Equal(t, "set/nested/a.yml", loaded[1].Path)
	require.NoError(t, loaded[1].Err)
	assert.Equal(t, "set/z.json", loaded[2].Path)
	assert.True(t, loaded[1].Doc.Equal(loaded[2].Doc))
}

func TestNewOSLoader(t *testing.T) {
	dir := t.TempDir()
	fs := NewOSLoader(dir)
	require.NoError(t, util.WriteFile(fs.fs, "doc.json", []byte(jsonDoc), 0o644))

	doc, err := fs.Load("doc.json")
	require.NoError(t, err)
	assert.Equal(t, ast.DefaultVersion, doc.Version())
}
