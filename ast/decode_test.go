package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPayload(t *testing.T, src string) any {
	t.Helper()
	p, err := ParsePayloadJSON([]byte(src))
	require.NoError(t, err)
	return p
}

func TestDecodeCommand_MissingContent(t *testing.T) {
	_, err := DecodeCommand(mustPayload(t, `{"type":"Add","object_kind":{"type":"CaptureBase"}}`))
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindMissingField, e.Kind)
	assert.Equal(t, "content", e.Field)
	assert.Equal(t, "missing_field at content", err.Error())
}

func TestDecodeCommand_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  Kind
		field string
	}{
		{
			name:  "missing object kind",
			src:   `{"type":"Add"}`,
			kind:  KindMissingField,
			field: "object_kind",
		},
		{
			name:  "empty object kind",
			src:   `{"type":"Add","object_kind":{}}`,
			kind:  KindMissingField,
			field: "object_kind",
		},
		{
			name:  "missing discriminant",
			src:   `{"type":"Add","object_kind":{"content":{"said":"refs:x"}}}`,
			kind:  KindMissingField,
			field: "object_kind.type",
		},
		{
			name: "unknown discriminant",
			src:  `{"type":"Add","object_kind":{"type":"Schema","content":{"a":"b"}}}`,
			kind: KindUnknownObjectKind,
		},
		{
			name: "non-string discriminant",
			src:  `{"type":"Add","object_kind":{"type":7,"content":{"a":"b"}}}`,
			kind: KindUnknownObjectKind,
		},
		{
			name:  "empty content",
			src:   `{"type":"Add","object_kind":{"type":"Overlay","content":{}}}`,
			kind:  KindMissingField,
			field: "content",
		},
		{
			name:  "missing verb",
			src:   `{"object_kind":{"type":"OCABundle","content":{"said":"refs:x"}}}`,
			kind:  KindMissingField,
			field: "type",
		},
		{
			name:  "unknown verb",
			src:   `{"type":"Rename","object_kind":{"type":"OCABundle","content":{"said":"refs:x"}}}`,
			kind:  KindInvalidValue,
			field: "type",
		},
		{
			name:  "bundle without said",
			src:   `{"type":"Add","object_kind":{"type":"OCABundle","content":{"other":"x"}}}`,
			kind:  KindMissingField,
			field: "content.said",
		},
		{
			name:  "overlay without type",
			src:   `{"type":"Add","object_kind":{"type":"Overlay","content":{"content":{}}}}`,
			kind:  KindMissingField,
			field: "content.overlay_type",
		},
		{
			name: "unknown overlay",
			src:  `{"type":"Add","object_kind":{"type":"Overlay","content":{"overlay_type":"spec/overlays/nope/1.0"}}}`,
			kind: KindUnknownOverlayType,
		},
		{
			name:  "bad attribute type",
			src:   `{"type":"Add","object_kind":{"type":"CaptureBase","content":{"attributes":{"n":"Integer"}}}}`,
			kind:  KindInvalidValue,
			field: "content.attributes.n",
		},
		{
			name:  "two-element attribute array",
			src:   `{"type":"Add","object_kind":{"type":"CaptureBase","content":{"attributes":{"n":["Text","Text"]}}}}`,
			kind:  KindInvalidValue,
			field: "content.attributes.n",
		},
		{
			name:  "null property",
			src:   `{"type":"Add","object_kind":{"type":"CaptureBase","content":{"properties":{"p":{"q":null}}}}}`,
			kind:  KindInvalidValue,
			field: "content.properties.p.q",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommand(mustPayload(t, tt.src))
			require.Error(t, err)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.kind, e.Kind)
			if tt.field != "" {
				assert.Equal(t, tt.field, e.Field)
			}
		})
	}
}

func TestDecodeCommand_RefErrorsPropagate(t *testing.T) {
	_, err := DecodeCommand(mustPayload(t,
		`{"type":"Add","object_kind":{"type":"OCABundle","content":{"said":"sha:abc"}}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.Contains(t, err.Error(), "content.said")

	_, err = DecodeCommand(mustPayload(t,
		`{"type":"Add","object_kind":{"type":"OCABundle","content":{"said":"EAbc"}}}`))
	assert.ErrorIs(t, err, ErrMissingColon)

	_, err = DecodeCommand(mustPayload(t,
		`{"type":"Add","object_kind":{"type":"CaptureBase","content":{"attributes":{"addr":"rfs:x"}}}}`))
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestDecodeObjectKind_Variants(t *testing.T) {
	t.Run("capture base", func(t *testing.T) {
		k, err := DecodeObjectKind(mustPayload(t, `{
			"type": "CaptureBase",
			"content": {
				"attributes": {
					"name": "Text",
					"tags": ["Text"],
					"address": "refn:address",
					"extra": null
				},
				"properties": {"classification": "GICS:45102010"},
				"flagged_attributes": ["name"]
			}
		}`))
		require.NoError(t, err)

		c, ok := AsCaptureContent(k)
		require.True(t, ok)
		assert.Equal(t, []string{"name", "tags", "address", "extra"}, c.Attributes.Keys())

		addr, _ := c.Attributes.Get("address")
		ref, ok := addr.Ref()
		require.True(t, ok)
		assert.Equal(t, NameRef("address"), ref)

		extra, _ := c.Attributes.Get("extra")
		assert.Equal(t, AttrNull, extra.Kind())

		tags, _ := c.Attributes.Get("tags")
		assert.True(t, tags.Equal(AttrArrayOf(AttrOf(AttributeText))))

		prop, _ := c.Properties.Get("classification")
		s, ok := prop.Str()
		require.True(t, ok)
		assert.Equal(t, "GICS:45102010", s)

		assert.Equal(t, []string{"name"}, c.FlaggedAttributes())
	})

	t.Run("bundle", func(t *testing.T) {
		k, err := DecodeObjectKind(mustPayload(t, `{"type":"OCABundle","content":{"said":"refs:EAbc"}}`))
		require.NoError(t, err)
		b, ok := AsBundleContent(k)
		require.True(t, ok)
		assert.Equal(t, Reference(SaidRef("EAbc")), b.Said)
	})

	t.Run("bundle by content name", func(t *testing.T) {
		k, err := DecodeObjectKind(mustPayload(t, `{"type":"BundleContent","content":{"said":"refs:EAbc"}}`))
		require.NoError(t, err)
		assert.Equal(t, TypeOCABundle, k.Type())
		assert.True(t, ObjectKindEqual(OCABundle(BundleContent{Said: Reference(SaidRef("EAbc"))}), k))

		// The alias is accepted on input only.
		out, err := EncodeObjectKind(k)
		require.NoError(t, err)
		typ, _ := out.Get("type")
		assert.Equal(t, "OCABundle", typ)
	})

	t.Run("overlay by short name", func(t *testing.T) {
		k, err := DecodeObjectKind(mustPayload(t, `{
			"type": "Overlay",
			"content": {
				"overlay_type": "Mapping",
				"content": {"properties": {"lang": "en", "count": 3}}
			}
		}`))
		require.NoError(t, err)
		ov, ok := AsOverlay(k)
		require.True(t, ok)
		assert.Equal(t, OverlayAttributeMapping, ov.OverlayType)

		count, _ := ov.Content.Properties.Get("count")
		assert.True(t, count.Equal(NewValue("3")))
	})

	t.Run("overlay without inner content", func(t *testing.T) {
		k, err := DecodeObjectKind(mustPayload(t,
			`{"type":"Overlay","content":{"overlay_type":"spec/overlays/label/1.0"}}`))
		require.NoError(t, err)
		assert.True(t, ObjectKindEqual(NewOverlay(OverlayLabel, Content{}), k))
	})
}

func TestDecodeNestedValue(t *testing.T) {
	v, err := DecodeNestedValue(mustPayload(t, `{
		"schema": "refs:EAbc",
		"label": "plain",
		"colon": "a:b",
		"list": ["refn:x", {"deep": true}]
	}`))
	require.NoError(t, err)

	want := NewObject(
		Field("schema", NewReference(SaidRef("EAbc"))),
		Field("label", NewValue("plain")),
		Field("colon", NewValue("a:b")),
		Field("list", NewArray(
			NewReference(NameRef("x")),
			NewObject(Field("deep", NewValue("true"))),
		)),
	)
	assert.True(t, want.Equal(v), "got %v", v)

	obj, _ := v.Object()
	assert.Equal(t, []string{"schema", "label", "colon", "list"}, obj.Keys())
}

func TestDecodeNestedValue_AcceptsPlainMaps(t *testing.T) {
	v, err := DecodeNestedValue(map[string]any{"b": "2", "a": []any{"1"}})
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
}

func TestDecodeOCAAst_Errors(t *testing.T) {
	t.Run("bad command is indexed", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{"commands":[
			{"type":"Add","object_kind":{"type":"OCABundle","content":{"said":"refs:a"}}},
			{"type":"Add","object_kind":{"type":"CaptureBase"}}
		]}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingField)
		assert.Contains(t, err.Error(), "commands[1]")
	})

	t.Run("meta index out of range", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{
			"commands":[{"type":"Add","object_kind":{"type":"OCABundle","content":{"said":"refs:a"}}}],
			"commands_meta":{"2":{"line_number":1,"raw_line":"ADD"}}
		}`))
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindInvalidValue, e.Kind)
		assert.Equal(t, "commands_meta.2", e.Field)
	})

	t.Run("meta without line", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{
			"commands":[{"type":"Add","object_kind":{"type":"OCABundle","content":{"said":"refs:a"}}}],
			"commands_meta":{"1":{"raw_line":"ADD"}}
		}`))
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("non-object document", func(t *testing.T) {
		_, err := ParseJSON([]byte(`[1,2]`))
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{"commands":`))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidValue))
	})
}

func TestDecodeOCAAst_NumericVersion(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"version: 1.0\n", "1.0"},
		{"version: 2\n", "2"},
		{"version: \"1.0.0\"\n", "1.0.0"},
	}
	for _, tt := range tests {
		doc, err := ParseYAML([]byte(tt.src))
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, doc.Version())
	}

	doc, err := ParseJSON([]byte(`{"version": 1.5}`))
	require.NoError(t, err)
	assert.Equal(t, "1.5", doc.Version())

	_, err = ParseJSON([]byte(`{"version": [1]}`))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "version", e.Field)
}

func TestDecodeOCAAst_Defaults(t *testing.T) {
	doc, err := ParseJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, doc.Version())
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.MetaIndexes())
	assert.Equal(t, 0, doc.Meta().Len())
}
