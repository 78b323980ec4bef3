package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("ocaast.hcl", []byte(`
log_level = "debug"
database  = "/var/lib/ocaast/docs.db"

mcp {
  name = "oca-tools"
}
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "console", c.LogFormat)
	assert.Equal(t, "/var/lib/ocaast/docs.db", c.Database)
	assert.Equal(t, 2, c.Indent)
	assert.Equal(t, "oca-tools", c.MCP.Name)
	assert.Equal(t, "0.1.0", c.MCP.Version)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad level", `log_level = "loud"`, "log_level"},
		{"bad format", `log_format = "xml"`, "log_format"},
		{"bad indent", `indent = 12`, "indent"},
		{"unknown attribute", `colour = "blue"`, "parse config"},
		{"syntax", `log_level = `, "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("ocaast.hcl", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("missing file", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ocaast.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`indent = 4`+"\n"+`log_format = "json"`), 0o644))
		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "    ", c.IndentString())
		assert.Equal(t, "json", c.LogFormat)
	})
}

func TestNewLogger(t *testing.T) {
	c := Default()
	c.LogLevel = "warn"
	l, err := c.NewLogger()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(1))
}
