package ast

import (
	"fmt"
	"strings"
)

// RefKind tells a content-addressed reference from a named one.
type RefKind uint8

const (
	RefSaid RefKind = iota // refs:<said>
	RefName                // refn:<name>
)

const (
	tagSaid = "refs"
	tagName = "refn"
)

func (k RefKind) String() string {
	switch k {
	case RefSaid:
		return "Said"
	case RefName:
		return "Name"
	default:
		return fmt.Sprintf("RefKind(%d)", uint8(k))
	}
}

// RefValue is a reference to another OCA object, either by SAID or by a
// human-readable name.
type RefValue struct {
	Kind RefKind
	ID   string
}

// SaidRef builds a content-addressed reference.
func SaidRef(id string) RefValue {
	return RefValue{Kind: RefSaid, ID: id}
}

// NameRef builds a named reference.
func NameRef(id string) RefValue {
	return RefValue{Kind: RefName, ID: id}
}

// String returns the textual form, "refs:<id>" or "refn:<id>".
// The identifier is not escaped.
func (r RefValue) String() string {
	if r.Kind == RefName {
		return tagName + ":" + r.ID
	}
	return tagSaid + ":" + r.ID
}

func (r RefValue) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RefValue) UnmarshalText(text []byte) error {
	v, err := ParseRefValue(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// SaidValidator checks that an identifier is a well-formed SAID. It is
// supplied by a digest-aware collaborator; this package never verifies
// digests itself.
type SaidValidator func(id string) error

// ParseRefValue parses ("refs"|"refn") ":" identifier, splitting on the
// first colon.
func ParseRefValue(s string) (RefValue, error) {
	return ParseRefValueWith(s, nil)
}

// ParseRefValueWith is ParseRefValue with an optional check applied to Said
// identifiers. A failed check is reported as a SaidError wrapping the cause.
func ParseRefValueWith(s string, verify SaidValidator) (RefValue, error) {
	tag, id, ok := strings.Cut(s, ":")
	if !ok {
		return RefValue{}, &RefValueParsingError{
			Kind:    RefMissingColon,
			Input:   s,
			Message: fmt.Sprintf("reference %q has no tag separator", s),
		}
	}

	switch tag {
	case tagSaid:
		if verify != nil {
			if err := verify(id); err != nil {
				return RefValue{}, NewSaidError(id, err)
			}
		}
		return SaidRef(id), nil
	case tagName:
		return NameRef(id), nil
	default:
		return RefValue{}, &RefValueParsingError{
			Kind:    RefUnknownTag,
			Input:   s,
			Tag:     tag,
			Message: fmt.Sprintf("unknown reference tag %q", tag),
		}
	}
}

// ReferenceAttrType is an attribute type that points at another object.
type ReferenceAttrType struct {
	Ref RefValue
}

// Reference wraps r as a reference attribute type.
func Reference(r RefValue) ReferenceAttrType {
	return ReferenceAttrType{Ref: r}
}

// TypeName returns the attribute type tag, always "Reference".
func (ReferenceAttrType) TypeName() string { return "Reference" }

func (a ReferenceAttrType) String() string {
	return a.Ref.String()
}
