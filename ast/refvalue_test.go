package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefValue_RoundTrip(t *testing.T) {
	for _, r := range []RefValue{
		SaidRef("abc123"),
		NameRef("schema-x"),
		SaidRef("EBfdlu8R27Fbx-ehrqwImnK-8Cm79sqbAQ4MmvEAYqao"),
		NameRef("with:colons:inside"),
	} {
		s := r.String()
		back, err := ParseRefValue(s)
		require.NoError(t, err, s)
		assert.Equal(t, r, back)
		assert.Equal(t, s, back.String())
	}
}

func TestRefValue_Textual(t *testing.T) {
	assert.Equal(t, "refs:abc123", SaidRef("abc123").String())
	assert.Equal(t, "refn:schema-x", NameRef("schema-x").String())
	assert.Equal(t, "refs:", SaidRef("").String())
}

func TestParseRefValue_Errors(t *testing.T) {
	t.Run("unknown tag", func(t *testing.T) {
		_, err := ParseRefValue("badtag:x")
		require.Error(t, err)

		var pe *RefValueParsingError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, RefUnknownTag, pe.Kind)
		assert.Equal(t, "badtag", pe.Tag)
		assert.ErrorIs(t, err, ErrUnknownTag)
	})

	t.Run("missing colon", func(t *testing.T) {
		_, err := ParseRefValue("noseparator")
		require.Error(t, err)

		var pe *RefValueParsingError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, RefMissingColon, pe.Kind)
		assert.Equal(t, "noseparator", pe.Input)
		assert.ErrorIs(t, err, ErrMissingColon)
		assert.NotErrorIs(t, err, ErrUnknownTag)
	})

	t.Run("tag is case sensitive", func(t *testing.T) {
		_, err := ParseRefValue("REFS:abc")
		assert.ErrorIs(t, err, ErrUnknownTag)
	})
}

func TestParseRefValueWith_SaidValidator(t *testing.T) {
	errTooShort := errors.New("said too short")
	verify := func(id string) error {
		if len(id) < 4 {
			return errTooShort
		}
		return nil
	}

	r, err := ParseRefValueWith("refs:EAbcdef", verify)
	require.NoError(t, err)
	assert.Equal(t, SaidRef("EAbcdef"), r)

	_, err = ParseRefValueWith("refs:EA", verify)
	require.Error(t, err)
	var pe *RefValueParsingError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, RefSaidError, pe.Kind)
	assert.ErrorIs(t, err, errTooShort)
	assert.ErrorIs(t, err, ErrSaid)
	assert.Contains(t, err.Error(), "caused by said too short")

	// Names are never passed to the validator.
	r, err = ParseRefValueWith("refn:EA", verify)
	require.NoError(t, err)
	assert.Equal(t, NameRef("EA"), r)
}

func TestNewSaidError(t *testing.T) {
	cause := errors.New("digest mismatch")
	err := NewSaidError("EXyz", cause)
	assert.Equal(t, RefSaidError, err.Kind)
	assert.Equal(t, "EXyz", err.Input)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.Equal(t, `SaidError: invalid said "EXyz" (caused by digest mismatch)`, err.Error())
}

func TestRefValue_Text(t *testing.T) {
	var r RefValue
	require.NoError(t, r.UnmarshalText([]byte("refn:person")))
	assert.Equal(t, NameRef("person"), r)

	text, err := r.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "refn:person", string(text))

	assert.Error(t, r.UnmarshalText([]byte("person")))
}

func TestReferenceAttrType(t *testing.T) {
	a := Reference(SaidRef("EAbc"))
	assert.Equal(t, "Reference", a.TypeName())
	assert.Equal(t, "refs:EAbc", a.String())
	assert.Equal(t, SaidRef("EAbc"), a.Ref)
}
