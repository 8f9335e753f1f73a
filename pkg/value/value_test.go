package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_KeepsIntegralNumbers(t *testing.T) {
	v, err := ParseJSON([]byte(`{"id": 42, "ratio": 42.0, "name": "x", "tags": [1, "a", null], "ok": true}`))
	require.NoError(t, err)
	require.Equal(t, Map, v.Kind())

	id, ok := v.Get("id")
	require.True(t, ok)
	n, isInt := id.Int()
	assert.True(t, isInt)
	assert.Equal(t, int64(42), n)

	ratio, _ := v.Get("ratio")
	_, isInt = ratio.Int()
	assert.False(t, isInt, "42.0 must stay a float")
	assert.Equal(t, 42.0, ratio.Float())

	tags, _ := v.Get("tags")
	assert.Equal(t, List, tags.Kind())
	assert.Equal(t, 3, tags.Len())
	last, _ := tags.Index(2)
	assert.True(t, last.IsNull())

	okv, _ := v.Get("ok")
	assert.True(t, okv.Bool())
}

func TestParseJSON_ReadsLiteralText(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a\u0062": [42.0, -7, 1.5e3], "nested": {"k": "v\n"}, "dup": 1, "dup": 2}`))
	require.NoError(t, err)

	ab, ok := v.Get("ab")
	require.True(t, ok, "escaped key must be unescaped")
	require.Equal(t, 3, ab.Len())
	first, _ := ab.Index(0)
	_, isInt := first.Int()
	assert.False(t, isInt)
	second, _ := ab.Index(1)
	n, isInt := second.Int()
	assert.True(t, isInt)
	assert.Equal(t, int64(-7), n)
	third, _ := ab.Index(2)
	assert.Equal(t, 1500.0, third.Float())

	nested, _ := v.Get("nested")
	k, _ := nested.Get("k")
	assert.Equal(t, "v\n", k.Str())

	dup, _ := v.Get("dup")
	n, _ = dup.Int()
	assert.Equal(t, int64(2), n, "last duplicate key wins")
}

func TestParseJSON_Rejects(t *testing.T) {
	for _, in := range []string{`{"a": 1} trailing`, `<html></html>`, `{"a":}`, "\xff", `1e400`, `[1, 1e400]`} {
		_, err := ParseJSON([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestUnmarshalJSON_UsesLiteralNumbers(t *testing.T) {
	var doc struct {
		Body Value `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"body": {"id": 42, "ratio": 42.0}}`), &doc))
	id, _ := doc.Body.Get("id")
	_, isInt := id.Int()
	assert.True(t, isInt)
	ratio, _ := doc.Body.Get("ratio")
	_, isInt = ratio.Int()
	assert.False(t, isInt)
}

func TestParseJSON_EmptyIsNull(t *testing.T) {
	v, err := ParseJSON([]byte("  "))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestParseYAML_Shapes(t *testing.T) {
	v, err := ParseYAML(`
name: Alice
age: 30
score: 1.5
active: yes
nested:
  items:
    - a
    - 2
quoted: "42"
nothing: ~
`)
	require.NoError(t, err)
	require.Equal(t, Map, v.Kind())

	age, _ := v.Get("age")
	n, isInt := age.Int()
	assert.True(t, isInt)
	assert.Equal(t, int64(30), n)

	score, _ := v.Get("score")
	_, isInt = score.Int()
	assert.False(t, isInt)

	// yaml.v3 follows YAML 1.2, "yes" is a string
	active, _ := v.Get("active")
	assert.Equal(t, String, active.Kind())

	quoted, _ := v.Get("quoted")
	assert.Equal(t, String, quoted.Kind())
	assert.Equal(t, "42", quoted.Str())

	nothing, ok := v.Get("nothing")
	assert.True(t, ok)
	assert.True(t, nothing.IsNull())

	nested, _ := v.Get("nested")
	items, _ := nested.Get("items")
	assert.Equal(t, 2, items.Len())
}

func TestParseYAML_EmptyAndNullDocuments(t *testing.T) {
	for _, in := range []string{"", "null", "~"} {
		v, err := ParseYAML(in)
		require.NoError(t, err, in)
		assert.True(t, v.IsNull(), "input %q", in)
	}
}

func TestParseYAML_MergeKeys(t *testing.T) {
	v, err := ParseYAML(`
base: &base
  a: 1
child:
  <<: *base
  b: 2
`)
	require.NoError(t, err)
	child, _ := v.Get("child")
	assert.Equal(t, []string{"a", "b"}, child.Keys())
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML("a: [1, 2")
	assert.Error(t, err)
}

func TestEqual_IsTypeSensitive(t *testing.T) {
	assert.False(t, NewInt(42).Equal(NewString("42")))
	assert.True(t, NewInt(42).Equal(NewInt(42)))
	assert.True(t, NewInt(2).Equal(NewFloat(2)))
	assert.True(t, NewMap(map[string]Value{"a": NewList(NewBool(true))}).Equal(
		NewMap(map[string]Value{"a": NewList(NewBool(true))})))
	assert.False(t, NewList(NewInt(1)).Equal(NewList(NewInt(1), NewInt(2))))
	assert.True(t, NewNull().Equal(Value{}))
}

func TestText(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{NewNull(), "null"},
		{NewBool(false), "false"},
		{NewInt(7), "7"},
		{NewInt(-12345678901), "-12345678901"},
		{NewFloat(2.5), "2.5"},
		{NewFloat(1e21), "1000000000000000000000"},
		{NewString("abc"), "abc"},
		{NewList(NewInt(1), NewString("x")), `[1,"x"]`},
		{NewMap(map[string]Value{"b": NewInt(1), "a": NewNull()}), `{"a":null,"b":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Text())
	}
	assert.Equal(t, `"abc"`, NewString("abc").String())
}

func TestMarshalJSON_RoundTripsModel(t *testing.T) {
	in, err := ParseYAML("name: Alice\ntags: [a, b]\nage: 3")
	require.NoError(t, err)
	b, err := in.MarshalJSON()
	require.NoError(t, err)
	out, err := ParseJSON(b)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[interface{}]interface{}{1: "one", "two": []interface{}{uint8(2), float32(0.5)}})
	require.NoError(t, err)
	one, ok := v.Get("1")
	require.True(t, ok)
	assert.Equal(t, "one", one.Str())

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestNewMap_NilIsEmptyMap(t *testing.T) {
	m := NewMap(nil)
	assert.Equal(t, Map, m.Kind())
	assert.Equal(t, 0, m.Len())
}
