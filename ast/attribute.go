package ast

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// AttributeType is the primitive type of a capture-base attribute.
type AttributeType uint8

const (
	AttributeBoolean AttributeType = iota
	AttributeBinary
	AttributeText
	AttributeNumeric
	AttributeDatetime

	attributeTypeCount
)

var attributeTypeNames = [attributeTypeCount]string{
	AttributeBoolean:  "Boolean",
	AttributeBinary:   "Binary",
	AttributeText:     "Text",
	AttributeNumeric:  "Numeric",
	AttributeDatetime: "Datetime",
}

func (t AttributeType) String() string {
	if t >= attributeTypeCount {
		return fmt.Sprintf("AttributeType(%d)", uint8(t))
	}
	return attributeTypeNames[t]
}

// ParseAttributeType resolves a type name such as "Text".
func ParseAttributeType(s string) (AttributeType, error) {
	for t, name := range attributeTypeNames {
		if name == s {
			return AttributeType(t), nil
		}
	}
	return 0, InvalidValue("attribute_type", s)
}

// AttrKind discriminates NestedAttrType.
type AttrKind uint8

const (
	AttrNull AttrKind = iota
	AttrReference
	AttrValue
	AttrArray
)

func (k AttrKind) String() string {
	switch k {
	case AttrNull:
		return "Null"
	case AttrReference:
		return "Reference"
	case AttrValue:
		return "Value"
	case AttrArray:
		return "Array"
	default:
		return fmt.Sprintf("AttrKind(%d)", uint8(k))
	}
}

// NestedAttrType is the declared type of a capture-base attribute: a
// reference to another capture base, a primitive type, an array of a nested
// type, or null. The zero value is the Null type.
type NestedAttrType struct {
	kind AttrKind
	ref  RefValue
	typ  AttributeType
	elem *NestedAttrType
}

// AttrRef declares an attribute that references another object.
func AttrRef(r RefValue) NestedAttrType {
	return NestedAttrType{kind: AttrReference, ref: r}
}

// AttrOf declares an attribute of primitive type t.
func AttrOf(t AttributeType) NestedAttrType {
	return NestedAttrType{kind: AttrValue, typ: t}
}

// AttrArrayOf declares an array attribute whose items have type elem.
func AttrArrayOf(elem NestedAttrType) NestedAttrType {
	return NestedAttrType{kind: AttrArray, elem: &elem}
}

func (a NestedAttrType) Kind() AttrKind { return a.kind }

// Ref returns the referenced object for AttrReference.
func (a NestedAttrType) Ref() (RefValue, bool) {
	return a.ref, a.kind == AttrReference
}

// Type returns the primitive type for AttrValue.
func (a NestedAttrType) Type() (AttributeType, bool) {
	return a.typ, a.kind == AttrValue
}

// Elem returns the item type for AttrArray.
func (a NestedAttrType) Elem() (NestedAttrType, bool) {
	if a.kind != AttrArray || a.elem == nil {
		return NestedAttrType{}, false
	}
	return *a.elem, true
}

// Equal reports structural equality.
func (a NestedAttrType) Equal(b NestedAttrType) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case AttrReference:
		return a.ref == b.ref
	case AttrValue:
		return a.typ == b.typ
	case AttrArray:
		ae, _ := a.Elem()
		be, _ := b.Elem()
		return ae.Equal(be)
	default:
		return true
	}
}

// String renders the wire form: "Text", "refs:...", "[Text]" or "null".
func (a NestedAttrType) String() string {
	switch a.kind {
	case AttrReference:
		return a.ref.String()
	case AttrValue:
		return a.typ.String()
	case AttrArray:
		e, _ := a.Elem()
		return "[" + e.String() + "]"
	default:
		return "null"
	}
}

// Hash returns an order-sensitive 64-bit digest of the type.
func (a NestedAttrType) Hash() uint64 {
	d := xxhash.New()
	a.writeHash(d)
	return d.Sum64()
}

func (a NestedAttrType) writeHash(d *xxhash.Digest) {
	writeHashString(d, a.kind.String())
	switch a.kind {
	case AttrReference:
		writeHashString(d, a.ref.String())
	case AttrValue:
		writeHashString(d, a.typ.String())
	case AttrArray:
		e, _ := a.Elem()
		writeHashUint(d, e.Hash())
	}
}
