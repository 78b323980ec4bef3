package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Object is the map node of a payload tree. It keeps key order so that
// attribute, property and meta order survive a round trip.
//
// A payload tree is built from: nil, bool, string, numbers (float64, int,
// int64 or json.Number), []any and *Object. Decoders also accept
// map[string]any, visiting its keys in sorted order.
type Object = orderedmap.OrderedMap[string, any]

// NewPayloadObject returns an empty payload object.
func NewPayloadObject() *Object {
	return orderedmap.New[string, any]()
}

// ParsePayloadJSON parses JSON into a payload tree, preserving key order.
// Numbers are kept as json.Number.
func ParsePayloadJSON(data []byte) (any, error) {
	if !json.Valid(data) {
		return nil, errors.New("payload: invalid JSON")
	}
	return parseJSONValue(bytes.TrimSpace(data))
}

func parseJSONValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, errors.New("payload: empty JSON value")
	}
	switch data[0] {
	case '{':
		raw := orderedmap.New[string, json.RawMessage]()
		if err := raw.UnmarshalJSON(data); err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		obj := orderedmap.New[string, any](raw.Len())
		for p := raw.Oldest(); p != nil; p = p.Next() {
			v, err := parseJSONValue(bytes.TrimSpace(p.Value))
			if err != nil {
				return nil, err
			}
			obj.Set(p.Key, v)
		}
		return obj, nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		items := make([]any, len(raw))
		for i, r := range raw {
			v, err := parseJSONValue(bytes.TrimSpace(r))
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		return v, nil
	}
}

// ParsePayloadYAML parses a YAML document into a payload tree, preserving
// mapping order. Scalars keep their resolved YAML type; floats written
// as plain decimals are kept as json.Number.
func ParsePayloadYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		obj := orderedmap.New[string, any](len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			err := n.Decode(&b)
			return b, err
		case "!!int":
			var i int64
			err := n.Decode(&i)
			return i, err
		case "!!float":
			// Decimal literals keep their text, as JSON numbers do.
			if json.Valid([]byte(n.Value)) {
				return json.Number(n.Value), nil
			}
			var f float64
			err := n.Decode(&f)
			return f, err
		default:
			return n.Value, nil
		}
	default:
		return nil, fmt.Errorf("payload: unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

// Plain converts a payload tree into plain Go maps and slices, losing key
// order. It is meant for consumers such as JSONPath engines.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			m[p.Key] = Plain(p.Value)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = Plain(e)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}

// asObject accepts *Object or map[string]any.
func asObject(v any) (*Object, bool) {
	switch t := v.(type) {
	case *Object:
		return t, t != nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := orderedmap.New[string, any](len(keys))
		for _, k := range keys {
			obj.Set(k, t[k])
		}
		return obj, true
	default:
		return nil, false
	}
}

// isEmpty reports whether a payload value counts as absent.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case *Object:
		return t.Len() == 0
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// asInt accepts the integral number forms produced by the parsers.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// scalarText renders a non-container scalar as text. Numbers and booleans
// appear in payloads parsed from YAML or loosely typed JSON.
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
