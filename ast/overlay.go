package ast

import (
	"fmt"
	"strings"
)

// OverlayType names one of the fixed overlay kinds. The declaration order is
// load-bearing: it defines the object-kind integer codes 2..20.
type OverlayType uint8

const (
	OverlayLabel OverlayType = iota
	OverlayInformation
	OverlayEncoding
	OverlayCharacterEncoding
	OverlayFormat
	OverlayMeta
	OverlayStandard
	OverlayCardinality
	OverlayConditional
	OverlayConformance
	OverlayEntryCode
	OverlayEntry
	OverlayUnit
	OverlayAttributeMapping
	OverlayEntryCodeMapping
	OverlaySubset
	OverlayUnitMapping
	OverlayLayout
	OverlaySensitivity

	overlayTypeCount
)

const (
	overlayPrefix  = "spec/overlays/"
	overlayVersion = "/1.0"
)

// overlayNames maps each overlay type to its short name and its path segment
// in the canonical string. AttributeMapping uses "mapping".
var overlayNames = [overlayTypeCount]struct {
	short string
	slug  string
}{
	OverlayLabel:             {"Label", "label"},
	OverlayInformation:       {"Information", "information"},
	OverlayEncoding:          {"Encoding", "encoding"},
	OverlayCharacterEncoding: {"CharacterEncoding", "character_encoding"},
	OverlayFormat:            {"Format", "format"},
	OverlayMeta:              {"Meta", "meta"},
	OverlayStandard:          {"Standard", "standard"},
	OverlayCardinality:       {"Cardinality", "cardinality"},
	OverlayConditional:       {"Conditional", "conditional"},
	OverlayConformance:       {"Conformance", "conformance"},
	OverlayEntryCode:         {"EntryCode", "entry_code"},
	OverlayEntry:             {"Entry", "entry"},
	OverlayUnit:              {"Unit", "unit"},
	OverlayAttributeMapping:  {"AttributeMapping", "mapping"},
	OverlayEntryCodeMapping:  {"EntryCodeMapping", "entry_code_mapping"},
	OverlaySubset:            {"Subset", "subset"},
	OverlayUnitMapping:       {"UnitMapping", "unit_mapping"},
	OverlayLayout:            {"Layout", "layout"},
	OverlaySensitivity:       {"Sensitivity", "sensitivity"},
}

// shortNameAliases holds short names that differ from the variant name.
var shortNameAliases = map[string]OverlayType{
	"Mapping": OverlayAttributeMapping,
}

// Lookup tables, built once at init and only read afterwards.
var (
	overlaysByCanonical = make(map[string]OverlayType, overlayTypeCount)
	overlaysByShortName = make(map[string]OverlayType, overlayTypeCount+1)
)

func init() {
	for t := OverlayType(0); t < overlayTypeCount; t++ {
		overlaysByCanonical[t.Serialize()] = t
		overlaysByShortName[overlayNames[t].short] = t
	}
	for alias, t := range shortNameAliases {
		overlaysByShortName[alias] = t
	}
}

// OverlayTypes returns every overlay type in declaration order.
func OverlayTypes() []OverlayType {
	types := make([]OverlayType, 0, overlayTypeCount)
	for t := OverlayType(0); t < overlayTypeCount; t++ {
		types = append(types, t)
	}
	return types
}

// Valid reports whether t is one of the declared overlay types.
func (t OverlayType) Valid() bool {
	return t < overlayTypeCount
}

// ShortName returns the variant name, e.g. "CharacterEncoding".
func (t OverlayType) ShortName() string {
	if !t.Valid() {
		return fmt.Sprintf("OverlayType(%d)", uint8(t))
	}
	return overlayNames[t].short
}

// Serialize returns the canonical namespaced form,
// e.g. "spec/overlays/character_encoding/1.0".
func (t OverlayType) Serialize() string {
	if !t.Valid() {
		return t.ShortName()
	}
	return overlayPrefix + overlayNames[t].slug + overlayVersion
}

func (t OverlayType) String() string {
	return t.Serialize()
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (t OverlayType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, UnknownOverlayType(t.ShortName())
	}
	return []byte(t.Serialize()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the canonical form.
func (t *OverlayType) UnmarshalText(text []byte) error {
	v, err := DeserializeOverlayType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// DeserializeOverlayType parses a canonical overlay string. Anything other
// than one of the canonical forms fails with UnknownOverlayType.
func DeserializeOverlayType(s string) (OverlayType, error) {
	if t, ok := overlaysByCanonical[s]; ok {
		return t, nil
	}
	return 0, UnknownOverlayType(s)
}

// OverlayTypeFromShortName resolves a variant name such as "Label". The
// alias "Mapping" resolves to OverlayAttributeMapping.
func OverlayTypeFromShortName(s string) (OverlayType, error) {
	if t, ok := overlaysByShortName[s]; ok {
		return t, nil
	}
	return 0, UnknownOverlayType(s)
}

// parseOverlayType accepts either the canonical form or a short name.
func parseOverlayType(s string) (OverlayType, error) {
	if strings.HasPrefix(s, overlayPrefix) {
		return DeserializeOverlayType(s)
	}
	return OverlayTypeFromShortName(s)
}
