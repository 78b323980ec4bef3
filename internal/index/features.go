package index

import (
	"sort"

	"github.com/agentic-research/ocaast/ast"
)

// FeatureKind classifies a binary property of a command.
type FeatureKind int

const (
	// Verb means the command has a given type, e.g. "type=Add".
	Verb FeatureKind = iota
	// Kind means the command targets an object-kind discriminant.
	Kind
	// OverlayKind means the command targets a specific overlay type.
	OverlayKind
	// Attribute means the command declares an attribute of that name.
	Attribute
	// Property means the command sets a property of that name.
	Property
	// Flagged means the command flags an attribute of that name.
	Flagged
	// Reference means the command mentions a reference anywhere in its
	// content.
	Reference
)

var featurePrefixes = [...]string{
	Verb:        "type=",
	Kind:        "kind=",
	OverlayKind: "overlay=",
	Attribute:   "attribute=",
	Property:    "property=",
	Flagged:     "flagged=",
	Reference:   "ref=",
}

func (k FeatureKind) String() string {
	if int(k) < len(featurePrefixes) {
		p := featurePrefixes[k]
		return p[:len(p)-1]
	}
	return "unknown"
}

// Feature is one column of the command incidence table.
type Feature struct {
	Name  string      // e.g. "overlay=Label" or "attribute=dob"
	Kind  FeatureKind // what the feature describes
	Value string      // the part after the prefix
}

func newFeature(k FeatureKind, value string) Feature {
	return Feature{Name: featurePrefixes[k] + value, Kind: k, Value: value}
}

// CommandFeatures lists the features of one command, without duplicates,
// in a stable order.
func CommandFeatures(cmd ast.Command) []Feature {
	seen := make(map[string]bool)
	var out []Feature
	add := func(f Feature) {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f)
		}
	}

	add(newFeature(Verb, cmd.Kind.String()))
	if cmd.ObjectKind == nil {
		return out
	}
	add(newFeature(Kind, string(cmd.ObjectKind.Type())))

	if c, ok := ast.AsCaptureContent(cmd.ObjectKind); ok {
		contentFeatures(c.Attributes, c.Properties, add)
		for _, name := range c.FlaggedAttributes() {
			add(newFeature(Flagged, name))
		}
	}
	if b, ok := ast.AsBundleContent(cmd.ObjectKind); ok {
		add(newFeature(Reference, b.Said.String()))
	}
	if ov, ok := ast.AsOverlay(cmd.ObjectKind); ok {
		add(newFeature(OverlayKind, ov.OverlayType.ShortName()))
		contentFeatures(ov.Content.Attributes, ov.Content.Properties, add)
	}
	return out
}

func contentFeatures(attrs ast.Fields[ast.NestedAttrType], props ast.Fields[ast.NestedValue], add func(Feature)) {
	for name, t := range attrs.All() {
		add(newFeature(Attribute, name))
		for _, r := range attrRefs(t) {
			add(newFeature(Reference, r.String()))
		}
	}
	for name, v := range props.All() {
		add(newFeature(Property, name))
		for _, r := range valueRefs(v) {
			add(newFeature(Reference, r.String()))
		}
	}
}

func attrRefs(t ast.NestedAttrType) []ast.RefValue {
	if r, ok := t.Ref(); ok {
		return []ast.RefValue{r}
	}
	if e, ok := t.Elem(); ok {
		return attrRefs(e)
	}
	return nil
}

func valueRefs(v ast.NestedValue) []ast.RefValue {
	switch v.Kind() {
	case ast.NestedReference:
		r, _ := v.Ref()
		return []ast.RefValue{r}
	case ast.NestedObject:
		obj, _ := v.Object()
		var out []ast.RefValue
		for _, child := range obj.All() {
			out = append(out, valueRefs(child)...)
		}
		return out
	case ast.NestedArray:
		items, _ := v.Items()
		var out []ast.RefValue
		for _, child := range items {
			out = append(out, valueRefs(child)...)
		}
		return out
	default:
		return nil
	}
}

// collectFeatures gathers the features of every command, sorted by name so
// column order is deterministic.
func collectFeatures(doc *ast.OCAAst) []Feature {
	byName := make(map[string]Feature)
	for _, cmd := range doc.All() {
		for _, f := range CommandFeatures(cmd) {
			byName[f.Name] = f
		}
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Feature, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out
}
