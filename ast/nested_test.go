package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestedValue_OrderSensitiveHash(t *testing.T) {
	ab := NewObject(Field("a", NewValue("1")), Field("b", NewValue("2")))
	ab2 := NewObject(Field("a", NewValue("1")), Field("b", NewValue("2")))
	ba := NewObject(Field("b", NewValue("2")), Field("a", NewValue("1")))

	assert.Equal(t, ab.Hash(), ab2.Hash())
	assert.True(t, ab.Equal(ba))
	assert.NotEqual(t, ab.Hash(), ba.Hash())
	assert.Equal(t, ab.Canonical().Hash(), ba.Canonical().Hash())
}

func TestNestedValue_ArraysCompareInOrder(t *testing.T) {
	a := NewArray(NewValue("x"), NewValue("y"))
	b := NewArray(NewValue("y"), NewValue("x"))
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(NewArray(NewValue("x"), NewValue("y"))))
}

func TestNestedValue_HashSeparatesKinds(t *testing.T) {
	str := NewValue("refs:abc")
	ref := NewReference(SaidRef("abc"))
	assert.False(t, str.Equal(ref))
	assert.NotEqual(t, str.Hash(), ref.Hash())

	// Length prefixes keep adjacent strings from running together.
	x := NewObject(Field("ab", NewValue("c")))
	y := NewObject(Field("a", NewValue("bc")))
	assert.NotEqual(t, x.Hash(), y.Hash())
}

func TestNestedValue_Canonical(t *testing.T) {
	v := NewObject(
		Field("z", NewArray(NewObject(Field("q", NewValue("1")), Field("p", NewValue("2"))))),
		Field("a", NewReference(NameRef("other"))),
	)
	c := v.Canonical()

	obj, ok := c.Object()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "z"}, obj.Keys())

	z, _ := obj.Get("z")
	items, ok := z.Items()
	require.True(t, ok)
	inner, _ := items[0].Object()
	assert.Equal(t, []string{"p", "q"}, inner.Keys())

	assert.True(t, v.Equal(c))
	assert.True(t, cmp.Equal(v, c))
}

func TestNestedValue_Accessors(t *testing.T) {
	v := NewObject(Field("k", NewValue("v")))
	assert.Equal(t, NestedObject, v.Kind())
	assert.Equal(t, 1, v.Len())

	_, ok := v.Str()
	assert.False(t, ok)
	_, ok = v.Ref()
	assert.False(t, ok)
	_, ok = v.Items()
	assert.False(t, ok)

	var zero NestedValue
	s, ok := zero.Str()
	assert.True(t, ok)
	assert.Empty(t, s)
	assert.True(t, zero.Equal(NewValue("")))
}

func TestNewObject_RepeatedKeyKeepsFirstPosition(t *testing.T) {
	v := NewObject(
		Field("a", NewValue("1")),
		Field("b", NewValue("2")),
		Field("a", NewValue("3")),
	)
	obj, _ := v.Object()
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	got, _ := obj.Get("a")
	assert.True(t, got.Equal(NewValue("3")))
}

func TestNewArray_CopiesItems(t *testing.T) {
	items := []NestedValue{NewValue("a")}
	v := NewArray(items...)
	items[0] = NewValue("changed")

	got, _ := v.Items()
	assert.True(t, got[0].Equal(NewValue("a")))
}

func TestNestedAttrType(t *testing.T) {
	tests := []struct {
		name string
		typ  NestedAttrType
		want string
	}{
		{"null", NestedAttrType{}, "null"},
		{"value", AttrOf(AttributeNumeric), "Numeric"},
		{"reference", AttrRef(SaidRef("EAbc")), "refs:EAbc"},
		{"array", AttrArrayOf(AttrOf(AttributeText)), "[Text]"},
		{"nested array", AttrArrayOf(AttrArrayOf(AttrRef(NameRef("addr")))), "[[refn:addr]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
			assert.True(t, tt.typ.Equal(tt.typ))
		})
	}

	assert.False(t, AttrOf(AttributeText).Equal(AttrArrayOf(AttrOf(AttributeText))))
	assert.NotEqual(t, AttrOf(AttributeText).Hash(), AttrArrayOf(AttrOf(AttributeText)).Hash())
	assert.True(t, AttrArrayOf(AttrOf(AttributeBinary)).Equal(AttrArrayOf(AttrOf(AttributeBinary))))
}

func TestParseAttributeType(t *testing.T) {
	for _, name := range []string{"Boolean", "Binary", "Text", "Numeric", "Datetime"} {
		at, err := ParseAttributeType(name)
		require.NoError(t, err)
		assert.Equal(t, name, at.String())
	}
	_, err := ParseAttributeType("DateTime")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestCaptureContent(t *testing.T) {
	c := NewContentBuilder().
		Attribute("name", AttrOf(AttributeText)).
		Attribute("dob", AttrOf(AttributeDatetime)).
		Property("classification", NewValue("GICS:45102010")).
		Flag("name", "dob", "name").
		CaptureContent()

	assert.Equal(t, []string{"name", "dob"}, c.FlaggedAttributes())
	assert.True(t, c.IsFlagged("dob"))
	assert.False(t, c.IsFlagged("classification"))
	assert.Equal(t, []string{"name", "dob"}, c.Attributes.Keys())

	reordered := NewContentBuilder().
		Attribute("dob", AttrOf(AttributeDatetime)).
		Attribute("name", AttrOf(AttributeText)).
		Property("classification", NewValue("GICS:45102010")).
		Flag("name", "dob").
		CaptureContent()
	assert.True(t, c.Equal(reordered))
	assert.NotEqual(t, c.Hash(), reordered.Hash())
}

func TestContentBuilder_BuildsAreIndependent(t *testing.T) {
	b := NewContentBuilder().Attribute("a", AttrOf(AttributeText))
	first := b.Content()
	b.Attribute("b", AttrOf(AttributeNumeric))
	second := b.Content()

	assert.Equal(t, 1, first.Attributes.Len())
	assert.Equal(t, 2, second.Attributes.Len())
}
