package ast

import (
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Content is the body of an overlay: typed attributes and free-form
// properties, both in declaration order.
type Content struct {
	Attributes Fields[NestedAttrType]
	Properties Fields[NestedValue]
}

// Equal compares two contents by key, regardless of insertion order.
func (c Content) Equal(o Content) bool {
	return fieldsEqual(c.Attributes, o.Attributes, NestedAttrType.Equal) &&
		fieldsEqual(c.Properties, o.Properties, NestedValue.Equal)
}

// CaptureContent is the body of a capture base. FlaggedAttributes lists
// attribute names flagged as sensitive, without duplicates.
type CaptureContent struct {
	Attributes Fields[NestedAttrType]
	Properties Fields[NestedValue]
	flagged    []string
}

// FlaggedAttributes returns a copy of the flagged attribute names in order.
func (c CaptureContent) FlaggedAttributes() []string {
	return slices.Clone(c.flagged)
}

// IsFlagged reports whether name is flagged.
func (c CaptureContent) IsFlagged(name string) bool {
	return slices.Contains(c.flagged, name)
}

// Equal compares two capture contents. Attributes and properties compare by
// key; flagged attributes compare in order.
func (c CaptureContent) Equal(o CaptureContent) bool {
	return fieldsEqual(c.Attributes, o.Attributes, NestedAttrType.Equal) &&
		fieldsEqual(c.Properties, o.Properties, NestedValue.Equal) &&
		slices.Equal(c.flagged, o.flagged)
}

// Hash digests attributes then properties in insertion order.
func (c CaptureContent) Hash() uint64 {
	d := xxhash.New()
	for k, v := range c.Attributes.All() {
		writeHashString(d, k)
		writeHashUint(d, v.Hash())
	}
	for k, v := range c.Properties.All() {
		writeHashString(d, k)
		writeHashUint(d, v.Hash())
	}
	return d.Sum64()
}

// BundleContent names the bundle by its own content-addressed identifier.
type BundleContent struct {
	Said ReferenceAttrType
}

func (b BundleContent) Equal(o BundleContent) bool {
	return b.Said == o.Said
}

// Overlay is one metadata layer over a capture base.
type Overlay struct {
	OverlayType OverlayType
	Content     Content
}

func (ov Overlay) Equal(o Overlay) bool {
	return ov.OverlayType == o.OverlayType && ov.Content.Equal(o.Content)
}

// ContentBuilder assembles Content and CaptureContent values. Each Build
// call copies the accumulated entries, so built values never share state
// with the builder.
type ContentBuilder struct {
	attrs   []Entry[NestedAttrType]
	props   []Entry[NestedValue]
	flagged []string
}

func NewContentBuilder() *ContentBuilder {
	return &ContentBuilder{}
}

// Attribute declares an attribute. Redeclaring a name replaces its type in
// place.
func (b *ContentBuilder) Attribute(name string, t NestedAttrType) *ContentBuilder {
	b.attrs = append(b.attrs, Entry[NestedAttrType]{Name: name, Value: t})
	return b
}

// Property sets a property. Setting a name again replaces its value in place.
func (b *ContentBuilder) Property(name string, v NestedValue) *ContentBuilder {
	b.props = append(b.props, Entry[NestedValue]{Name: name, Value: v})
	return b
}

// Flag marks an attribute as flagged. Repeated names are ignored.
func (b *ContentBuilder) Flag(names ...string) *ContentBuilder {
	for _, n := range names {
		if !slices.Contains(b.flagged, n) {
			b.flagged = append(b.flagged, n)
		}
	}
	return b
}

// Content builds overlay content; flags are not part of it.
func (b *ContentBuilder) Content() Content {
	return Content{
		Attributes: newFields(b.attrs...),
		Properties: newFields(b.props...),
	}
}

// CaptureContent builds capture-base content.
func (b *ContentBuilder) CaptureContent() CaptureContent {
	return CaptureContent{
		Attributes: newFields(b.attrs...),
		Properties: newFields(b.props...),
		flagged:    slices.Clone(b.flagged),
	}
}
