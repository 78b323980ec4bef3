package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadJSON_KeepsOrderAndNumbers(t *testing.T) {
	p, err := ParsePayloadJSON([]byte(` {"b": 1, "a": [1.5, "x", null, true], "c": {"z": {}, "y": 2}} `))
	require.NoError(t, err)

	obj, ok := p.(*Object)
	require.True(t, ok)

	var keys []string
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)

	b, _ := obj.Get("b")
	assert.Equal(t, json.Number("1"), b)

	a, _ := obj.Get("a")
	assert.Equal(t, []any{json.Number("1.5"), "x", nil, true}, a)

	assert.Equal(t, map[string]any{
		"b": int64(1),
		"a": []any{1.5, "x", nil, true},
		"c": map[string]any{"z": map[string]any{}, "y": int64(2)},
	}, Plain(p))
}

func TestParsePayloadJSON_Invalid(t *testing.T) {
	for _, src := range []string{``, `{`, `{"a":1,}`, `[1 2]`} {
		_, err := ParsePayloadJSON([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestParsePayloadYAML(t *testing.T) {
	p, err := ParsePayloadYAML([]byte(`
base: &base
  k: v
copy: *base
n: 7
f: 2.5
ok: yes
s: "yes"
nothing: ~
`))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"base":    map[string]any{"k": "v"},
		"copy":    map[string]any{"k": "v"},
		"n":       int64(7),
		"f":       2.5,
		"ok":      "yes",
		"s":       "yes",
		"nothing": nil,
	}, Plain(p))

	obj, ok := p.(*Object)
	require.True(t, ok)
	f, _ := obj.Get("f")
	assert.Equal(t, json.Number("2.5"), f)

	_, err = ParsePayloadYAML([]byte("a: [1, 2"))
	assert.Error(t, err)

	empty, err := ParsePayloadYAML(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3, 3, true},
		{int64(4), 4, true},
		{5.0, 5, true},
		{5.5, 0, false},
		{json.Number("6"), 6, true},
		{json.Number("6.1"), 0, false},
		{"7", 7, true},
		{"seven", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := asInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestScalarText(t *testing.T) {
	for in, want := range map[any]string{
		"s":                 "s",
		json.Number("1e3"): "1e3",
		false:               "false",
		42:                  "42",
		int64(-1):           "-1",
		0.25:                "0.25",
	} {
		got, ok := scalarText(in)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := scalarText([]any{})
	assert.False(t, ok)
}
