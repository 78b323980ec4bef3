package ast

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DecodeOCAAst decodes a document payload. Commands decode in order and
// commands_meta decodes independently; the only cross-check is that every
// meta index names a real command. A document decodes completely or not
// at all.
func DecodeOCAAst(payload any) (*OCAAst, error) {
	obj, ok := asObject(payload)
	if !ok {
		return nil, InvalidValue("", describe(payload))
	}

	b := NewBuilder("")
	if v, ok := obj.Get("version"); ok && v != nil {
		s, ok := scalarText(v)
		if !ok {
			return nil, InvalidValue("version", describe(v))
		}
		if s != "" {
			b.version = s
		}
	}

	if v, ok := obj.Get("commands"); ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return nil, InvalidValue("commands", describe(v))
		}
		for i, item := range items {
			cmd, err := DecodeCommand(item)
			if err != nil {
				return nil, fmt.Errorf("commands[%d]: %w", i, err)
			}
			b.Push(cmd)
		}
	}

	if v, ok := obj.Get("commands_meta"); ok && v != nil {
		metaObj, ok := asObject(v)
		if !ok {
			return nil, InvalidValue("commands_meta", describe(v))
		}
		for p := metaObj.Oldest(); p != nil; p = p.Next() {
			n, ok := asInt(p.Key)
			if !ok {
				return nil, InvalidValue("commands_meta", p.Key)
			}
			m, err := decodeCommandMeta(p.Value, "commands_meta."+p.Key)
			if err != nil {
				return nil, err
			}
			b.commandsMeta[n] = m
		}
	}

	if v, ok := obj.Get("meta"); ok && v != nil {
		metaObj, ok := asObject(v)
		if !ok {
			return nil, InvalidValue("meta", describe(v))
		}
		for p := metaObj.Oldest(); p != nil; p = p.Next() {
			s, ok := scalarText(p.Value)
			if !ok {
				return nil, InvalidValue("meta."+p.Key, describe(p.Value))
			}
			b.Meta(p.Key, s)
		}
	}

	doc, err := b.Build()
	if err != nil {
		return nil, err
	}
	Logger().Debug("decoded OCA document",
		zap.String("version", doc.Version()),
		zap.Int("commands", doc.Len()),
		zap.Int("commands_meta", len(doc.commandsMeta)))
	return doc, nil
}

// DecodeCommand decodes {"type": <verb>, "object_kind": {...}}.
func DecodeCommand(payload any) (Command, error) {
	obj, ok := asObject(payload)
	if !ok {
		return Command{}, InvalidValue("", describe(payload))
	}

	rawKind, ok := obj.Get("object_kind")
	if !ok || isEmpty(rawKind) {
		return Command{}, MissingField("object_kind")
	}
	kind, err := DecodeObjectKind(rawKind)
	if err != nil {
		return Command{}, err
	}

	rawType, ok := obj.Get("type")
	if !ok || isEmpty(rawType) {
		return Command{}, MissingField("type")
	}
	s, ok := rawType.(string)
	if !ok {
		return Command{}, InvalidValue("type", rawType)
	}
	verb, err := ParseCommandType(s)
	if err != nil {
		return Command{}, err
	}

	return Command{Kind: verb, ObjectKind: kind}, nil
}

// DecodeObjectKind decodes {"type": <discriminant>, "content": {...}}. The
// checks run in order: a non-empty type, a known discriminant, then a
// non-empty content decoded for that discriminant.
func DecodeObjectKind(payload any) (ObjectKind, error) {
	obj, ok := asObject(payload)
	if !ok {
		return nil, InvalidValue("object_kind", describe(payload))
	}

	rawType, ok := obj.Get("type")
	if !ok || isEmpty(rawType) {
		return nil, MissingField("object_kind.type")
	}
	s, ok := rawType.(string)
	if !ok {
		return nil, UnknownObjectKind(rawType)
	}
	t := ObjectKindType(s)
	switch t {
	case typeBundleContent:
		t = TypeOCABundle
	case TypeCaptureBase, TypeOCABundle, TypeOverlay:
	default:
		return nil, UnknownObjectKind(s)
	}

	rawContent, ok := obj.Get("content")
	if !ok || isEmpty(rawContent) {
		return nil, MissingField("content")
	}
	content, ok := asObject(rawContent)
	if !ok {
		return nil, InvalidValue("content", describe(rawContent))
	}

	switch t {
	case TypeCaptureBase:
		c, err := decodeCaptureContent(content, "content")
		if err != nil {
			return nil, err
		}
		return CaptureBase(c), nil
	case TypeOCABundle:
		bc, err := decodeBundleContent(content, "content")
		if err != nil {
			return nil, err
		}
		return OCABundle(bc), nil
	default:
		ov, err := decodeOverlay(content, "content")
		if err != nil {
			return nil, err
		}
		return ov, nil
	}
}

func decodeCaptureContent(obj *Object, path string) (CaptureContent, error) {
	b := NewContentBuilder()
	if err := decodeContentInto(b, obj, path); err != nil {
		return CaptureContent{}, err
	}

	if v, ok := obj.Get("flagged_attributes"); ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return CaptureContent{}, InvalidValue(path+".flagged_attributes", describe(v))
		}
		for i, item := range items {
			name, ok := item.(string)
			if !ok {
				return CaptureContent{}, InvalidValue(fmt.Sprintf("%s.flagged_attributes[%d]", path, i), describe(item))
			}
			b.Flag(name)
		}
	}
	return b.CaptureContent(), nil
}

func decodeBundleContent(obj *Object, path string) (BundleContent, error) {
	v, ok := obj.Get("said")
	if !ok || isEmpty(v) {
		return BundleContent{}, MissingField(path + ".said")
	}
	s, ok := v.(string)
	if !ok {
		return BundleContent{}, InvalidValue(path+".said", describe(v))
	}
	ref, err := ParseRefValue(s)
	if err != nil {
		return BundleContent{}, fmt.Errorf("%s.said: %w", path, err)
	}
	return BundleContent{Said: Reference(ref)}, nil
}

func decodeOverlay(obj *Object, path string) (Overlay, error) {
	v, ok := obj.Get("overlay_type")
	if !ok || isEmpty(v) {
		return Overlay{}, MissingField(path + ".overlay_type")
	}
	s, ok := v.(string)
	if !ok {
		return Overlay{}, InvalidValue(path+".overlay_type", describe(v))
	}
	t, err := parseOverlayType(s)
	if err != nil {
		return Overlay{}, err
	}

	b := NewContentBuilder()
	if inner, ok := obj.Get("content"); ok && inner != nil {
		innerObj, ok := asObject(inner)
		if !ok {
			return Overlay{}, InvalidValue(path+".content", describe(inner))
		}
		if err := decodeContentInto(b, innerObj, path+".content"); err != nil {
			return Overlay{}, err
		}
	}
	return Overlay{OverlayType: t, Content: b.Content()}, nil
}

// decodeContentInto reads the attributes and properties maps shared by
// capture bases and overlays. Unknown keys are ignored.
func decodeContentInto(b *ContentBuilder, obj *Object, path string) error {
	if v, ok := obj.Get("attributes"); ok && v != nil {
		attrs, ok := asObject(v)
		if !ok {
			return InvalidValue(path+".attributes", describe(v))
		}
		for p := attrs.Oldest(); p != nil; p = p.Next() {
			field := path + ".attributes." + p.Key
			t, err := decodeNestedAttrType(p.Value, field)
			if err != nil {
				return err
			}
			b.Attribute(p.Key, t)
		}
	}

	if v, ok := obj.Get("properties"); ok && v != nil {
		props, ok := asObject(v)
		if !ok {
			return InvalidValue(path+".properties", describe(v))
		}
		for p := props.Oldest(); p != nil; p = p.Next() {
			field := path + ".properties." + p.Key
			nv, err := decodeNestedValue(p.Value, field)
			if err != nil {
				return err
			}
			b.Property(p.Key, nv)
		}
	}
	return nil
}

// DecodeNestedValue decodes a nested value payload. Strings that parse as
// references become Reference leaves; every other scalar becomes a Value
// leaf in its textual form.
func DecodeNestedValue(payload any) (NestedValue, error) {
	return decodeNestedValue(payload, "value")
}

func decodeNestedValue(v any, path string) (NestedValue, error) {
	switch t := v.(type) {
	case string:
		if ref, err := ParseRefValue(t); err == nil {
			return NewReference(ref), nil
		}
		return NewValue(t), nil
	case []any:
		items := make([]NestedValue, len(t))
		for i, item := range t {
			nv, err := decodeNestedValue(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return NestedValue{}, err
			}
			items[i] = nv
		}
		return NestedValue{kind: NestedArray, arr: items}, nil
	case nil:
		return NestedValue{}, InvalidValue(path, nil)
	}

	if obj, ok := asObject(v); ok {
		entries := make([]Entry[NestedValue], 0, obj.Len())
		for p := obj.Oldest(); p != nil; p = p.Next() {
			nv, err := decodeNestedValue(p.Value, path+"."+p.Key)
			if err != nil {
				return NestedValue{}, err
			}
			entries = append(entries, Field(p.Key, nv))
		}
		return NewObject(entries...), nil
	}
	if s, ok := scalarText(v); ok {
		return NewValue(s), nil
	}
	return NestedValue{}, InvalidValue(path, describe(v))
}

// DecodeNestedAttrType decodes an attribute type payload: a type name, a
// reference string, a one-element array, or null.
func DecodeNestedAttrType(payload any) (NestedAttrType, error) {
	return decodeNestedAttrType(payload, "attribute")
}

func decodeNestedAttrType(v any, path string) (NestedAttrType, error) {
	switch t := v.(type) {
	case nil:
		return NestedAttrType{}, nil
	case string:
		if ref, err := ParseRefValue(t); err == nil {
			return AttrRef(ref), nil
		} else if strings.Contains(t, ":") {
			return NestedAttrType{}, fmt.Errorf("%s: %w", path, err)
		}
		at, err := ParseAttributeType(t)
		if err != nil {
			return NestedAttrType{}, InvalidValue(path, t)
		}
		return AttrOf(at), nil
	case []any:
		if len(t) != 1 {
			return NestedAttrType{}, InvalidValue(path, describe(v))
		}
		elem, err := decodeNestedAttrType(t[0], path+"[0]")
		if err != nil {
			return NestedAttrType{}, err
		}
		return AttrArrayOf(elem), nil
	default:
		return NestedAttrType{}, InvalidValue(path, describe(v))
	}
}

func decodeCommandMeta(v any, path string) (CommandMeta, error) {
	obj, ok := asObject(v)
	if !ok {
		return CommandMeta{}, InvalidValue(path, describe(v))
	}
	rawLine, ok := obj.Get("line_number")
	if !ok || rawLine == nil {
		return CommandMeta{}, MissingField(path + ".line_number")
	}
	line, ok := asInt(rawLine)
	if !ok {
		return CommandMeta{}, InvalidValue(path+".line_number", describe(rawLine))
	}
	raw, ok := obj.Get("raw_line")
	if !ok || raw == nil {
		return CommandMeta{}, MissingField(path + ".raw_line")
	}
	s, ok := raw.(string)
	if !ok {
		return CommandMeta{}, InvalidValue(path+".raw_line", describe(raw))
	}
	return CommandMeta{LineNumber: line, RawLine: s}, nil
}

// describe keeps error values short: containers are reported by shape.
func describe(v any) any {
	switch t := v.(type) {
	case *Object:
		return fmt.Sprintf("object(%d keys)", t.Len())
	case map[string]any:
		return fmt.Sprintf("object(%d keys)", len(t))
	case []any:
		return fmt.Sprintf("array(%d items)", len(t))
	default:
		return v
	}
}
