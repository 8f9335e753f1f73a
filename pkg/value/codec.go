package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a JSON document. Empty input yields Null. Numbers are
// read from their literal text, so 42 stays integral and 42.0 does not.
func ParseJSON(b []byte) (Value, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return Value{}, nil
	}
	if !gjson.ValidBytes(b) {
		return Value{}, errors.New("invalid json document")
	}
	return FromResult(gjson.ParseBytes(b))
}

// FromResult converts a gjson result into a Value.
func FromResult(r gjson.Result) (Value, error) {
	switch r.Type {
	case gjson.Null:
		return Value{}, nil
	case gjson.False:
		return NewBool(false), nil
	case gjson.True:
		return NewBool(true), nil
	case gjson.Number:
		return fromNumberText(r.Raw)
	case gjson.String:
		return NewString(r.Str), nil
	}

	var err error
	if r.IsArray() {
		items := []Value{}
		r.ForEach(func(_, item gjson.Result) bool {
			var v Value
			if v, err = FromResult(item); err != nil {
				err = fmt.Errorf("[%d]: %w", len(items), err)
				return false
			}
			items = append(items, v)
			return true
		})
		if err != nil {
			return Value{}, err
		}
		return NewList(items...), nil
	}
	if r.IsObject() {
		m := map[string]Value{}
		r.ForEach(func(key, item gjson.Result) bool {
			var v Value
			if v, err = FromResult(item); err != nil {
				err = fmt.Errorf("%s: %w", key.Str, err)
				return false
			}
			m[key.Str] = v
			return true
		})
		if err != nil {
			return Value{}, err
		}
		return NewMap(m), nil
	}
	return Value{}, fmt.Errorf("unsupported json value %q", r.Raw)
}

// ParseYAML decodes inline YAML text such as a step doc string.
// Empty input yields Null.
func ParseYAML(text string) (Value, error) {
	var v Value
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return Value{}, fmt.Errorf("parse yaml: %w", err)
	}
	return v, nil
}

// FromAny converts the output of a generic decoder (encoding/json, yaml.v3,
// mapstructure) into a Value.
func FromAny(in interface{}) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case int:
		return NewInt(int64(t)), nil
	case int8:
		return NewInt(int64(t)), nil
	case int16:
		return NewInt(int64(t)), nil
	case int32:
		return NewInt(int64(t)), nil
	case int64:
		return NewInt(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return NewInt(int64(t)), nil
	case uint16:
		return NewInt(int64(t)), nil
	case uint32:
		return NewInt(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return NewFloat(float64(t)), nil
	case float64:
		return NewFloat(t), nil
	case json.Number:
		return fromNumberText(t.String())
	case []interface{}:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return NewList(items...), nil
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = v
		}
		return NewMap(m), nil
	case map[interface{}]interface{}:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			key := fmt.Sprint(k)
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", key, err)
			}
			m[key] = v
		}
		return NewMap(m), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", in)
	}
}

// ToAny converts v into plain Go values (nil, bool, int64, float64, string,
// []interface{}, map[string]interface{}).
func (v Value) ToAny() interface{} {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		if v.isInt {
			return v.i
		}
		return v.f
	case String:
		return v.s
	case List:
		out := make([]interface{}, len(v.list))
		for i, item := range v.list {
			out[i] = item.ToAny()
		}
		return out
	case Map:
		out := make(map[string]interface{}, len(v.m))
		for k, item := range v.m {
			out[k] = item.ToAny()
		}
		return out
	default:
		return nil
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return NewFloat(float64(u))
	}
	return NewInt(int64(u))
}

func fromNumberText(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return NewFloat(f), nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToAny())
}

// UnmarshalJSON implements json.Unmarshaler. Integral numbers stay integral.
func (v *Value) UnmarshalJSON(b []byte) error {
	out, err := ParseJSON(b)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler by walking the node tree, so
// integers and floats keep the lexical type they were written with.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	out, err := fromNode(node)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Value{}, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return Value{}, nil
		}
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		return fromScalar(n)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return NewList(items...), nil
	case yaml.MappingNode:
		m := make(map[string]Value, len(n.Content)/2)
		if err := mergeMapping(m, n); err != nil {
			return Value{}, err
		}
		return NewMap(m), nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

func mergeMapping(m map[string]Value, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, item := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			if err := mergeInto(m, item); err != nil {
				return err
			}
			continue
		}
		v, err := fromNode(item)
		if err != nil {
			return err
		}
		m[k.Value] = v
	}
	return nil
}

func mergeInto(m map[string]Value, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		return mergeMapping(m, n)
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if err := mergeInto(m, c); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Value{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return NewInt(i), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return NewFloat(f), nil
	default:
		return NewString(n.Value), nil
	}
}
