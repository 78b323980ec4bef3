package ast

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EncodeOCAAst renders a document as a payload tree. Decoding the result
// with DecodeOCAAst yields a document equal to a.
func EncodeOCAAst(a *OCAAst) (*Object, error) {
	if a == nil {
		return nil, InvalidValue("", nil)
	}
	commands := make([]any, 0, a.Len())
	for i, cmd := range a.All() {
		p, err := EncodeCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		commands = append(commands, p)
	}

	commandsMeta := NewPayloadObject()
	for _, n := range a.MetaIndexes() {
		m := a.commandsMeta[n]
		entry := NewPayloadObject()
		entry.Set("line_number", m.LineNumber)
		entry.Set("raw_line", m.RawLine)
		commandsMeta.Set(strconv.Itoa(n), entry)
	}

	meta := NewPayloadObject()
	for k, v := range a.meta.All() {
		meta.Set(k, v)
	}

	out := NewPayloadObject()
	out.Set("version", a.Version())
	out.Set("commands", commands)
	out.Set("commands_meta", commandsMeta)
	out.Set("meta", meta)
	return out, nil
}

// EncodeCommand renders {"type": <verb>, "object_kind": {...}}.
func EncodeCommand(c Command) (*Object, error) {
	if !c.Kind.Valid() {
		return nil, InvalidValue("type", c.Kind.String())
	}
	kind, err := EncodeObjectKind(c.ObjectKind)
	if err != nil {
		return nil, err
	}
	out := NewPayloadObject()
	out.Set("type", c.Kind.String())
	out.Set("object_kind", kind)
	return out, nil
}

// EncodeObjectKind renders {"type": <discriminant>, "content": {...}}. The
// content object always carries its required keys, so it is never empty.
func EncodeObjectKind(k ObjectKind) (*Object, error) {
	if _, err := ToInt(k); err != nil {
		return nil, err
	}

	content := NewPayloadObject()
	switch v := normalizeKind(k).(type) {
	case CaptureContent:
		if err := encodeContentInto(content, v.Attributes, v.Properties, "content"); err != nil {
			return nil, err
		}
		flagged := make([]any, len(v.flagged))
		for i, f := range v.flagged {
			flagged[i] = f
		}
		content.Set("flagged_attributes", flagged)
	case BundleContent:
		content.Set("said", v.Said.String())
	case Overlay:
		inner := NewPayloadObject()
		if err := encodeContentInto(inner, v.Content.Attributes, v.Content.Properties, "content.content"); err != nil {
			return nil, err
		}
		content.Set("overlay_type", v.OverlayType.Serialize())
		content.Set("content", inner)
	}

	out := NewPayloadObject()
	out.Set("type", string(k.Type()))
	out.Set("content", content)
	return out, nil
}

func encodeContentInto(obj *Object, attrs Fields[NestedAttrType], props Fields[NestedValue], path string) error {
	a := NewPayloadObject()
	for k, v := range attrs.All() {
		a.Set(k, v.Payload())
	}
	p := NewPayloadObject()
	for k, v := range props.All() {
		pv, err := v.encode(path + ".properties." + k)
		if err != nil {
			return err
		}
		p.Set(k, pv)
	}
	obj.Set("attributes", a)
	obj.Set("properties", p)
	return nil
}

// Payload renders the value in its untagged wire form. A value leaf whose
// text would decode as a reference has no wire form and is rejected.
func (v NestedValue) Payload() (any, error) {
	return v.encode("value")
}

func (v NestedValue) encode(path string) (any, error) {
	switch v.kind {
	case NestedReference:
		return v.ref.String(), nil
	case NestedObject:
		obj := NewPayloadObject()
		for k, child := range v.obj.All() {
			c, err := child.encode(path + "." + k)
			if err != nil {
				return nil, err
			}
			obj.Set(k, c)
		}
		return obj, nil
	case NestedArray:
		items := make([]any, len(v.arr))
		for i, child := range v.arr {
			c, err := child.encode(fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			items[i] = c
		}
		return items, nil
	default:
		if _, err := ParseRefValue(v.str); err == nil {
			return nil, InvalidValue(path, v.str)
		}
		return v.str, nil
	}
}

// Payload renders the attribute type in its wire form.
func (a NestedAttrType) Payload() any {
	switch a.kind {
	case AttrReference:
		return a.ref.String()
	case AttrValue:
		return a.typ.String()
	case AttrArray:
		e, _ := a.Elem()
		return []any{e.Payload()}
	default:
		return nil
	}
}

// MarshalJSON encodes the document with key order preserved.
func (a *OCAAst) MarshalJSON() ([]byte, error) {
	p, err := EncodeOCAAst(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes and validates a document.
func (a *OCAAst) UnmarshalJSON(data []byte) error {
	doc, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*a = *doc
	return nil
}

func (c Command) MarshalJSON() ([]byte, error) {
	p, err := EncodeCommand(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func (c *Command) UnmarshalJSON(data []byte) error {
	p, err := ParsePayloadJSON(data)
	if err != nil {
		return err
	}
	cmd, err := DecodeCommand(p)
	if err != nil {
		return err
	}
	*c = cmd
	return nil
}

func (v NestedValue) MarshalJSON() ([]byte, error) {
	p, err := v.Payload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func (v *NestedValue) UnmarshalJSON(data []byte) error {
	p, err := ParsePayloadJSON(data)
	if err != nil {
		return err
	}
	nv, err := DecodeNestedValue(p)
	if err != nil {
		return err
	}
	*v = nv
	return nil
}

func (a NestedAttrType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Payload())
}

func (a *NestedAttrType) UnmarshalJSON(data []byte) error {
	p, err := ParsePayloadJSON(data)
	if err != nil {
		return err
	}
	t, err := DecodeNestedAttrType(p)
	if err != nil {
		return err
	}
	*a = t
	return nil
}

// ParseJSON decodes a JSON document.
func ParseJSON(data []byte) (*OCAAst, error) {
	p, err := ParsePayloadJSON(data)
	if err != nil {
		return nil, err
	}
	return DecodeOCAAst(p)
}

// ParseYAML decodes a YAML document.
func ParseYAML(data []byte) (*OCAAst, error) {
	p, err := ParsePayloadYAML(data)
	if err != nil {
		return nil, err
	}
	return DecodeOCAAst(p)
}
