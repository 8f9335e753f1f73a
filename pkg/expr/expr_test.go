package expr

import (
	"errors"
	"testing"

	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(s))
	require.NoError(t, err)
	return v
}

func TestEval_Paths(t *testing.T) {
	body := mustJSON(t, `{
		"id": 7,
		"owner": {"name": "Alice", "address": {"city": "Seoul"}},
		"items": [{"sku": "a-1"}, {"sku": "b-2"}],
		"odd key": true,
		"0": "zero"
	}`)

	tests := []struct {
		path string
		want string
	}{
		{"id", "7"},
		{"owner.name", "Alice"},
		{"owner.address.city", "Seoul"},
		{"items[1].sku", "b-2"},
		{"items [0] . sku", "a-1"},
		{"['odd key']", "true"},
		{`owner["name"]`, "Alice"},
		{"0", "zero"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Eval(body, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text())
		})
	}
}

func TestEval_Failures(t *testing.T) {
	body := mustJSON(t, `{"id": 7, "items": [1, 2], "owner": {"name": "Alice"}}`)

	tests := []struct {
		name string
		path string
	}{
		{"missing key", "missing"},
		{"missing nested key", "owner.age"},
		{"traverse scalar", "id.value"},
		{"key on list", "items.first"},
		{"index on map", "owner[0]"},
		{"index out of range", "items[5]"},
		{"empty path", ""},
		{"dangling dot", "owner."},
		{"unterminated bracket", "items[0"},
		{"unterminated quote", "['abc"},
		{"bad char", "owner#name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(body, tt.path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, failure.ErrEvaluation), "got %v", err)
		})
	}
}

func TestEval_NonMapRoot(t *testing.T) {
	_, err := Eval(mustJSON(t, `[1,2,3]`), "id")
	var evalErr *failure.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "id", evalErr.Path)

	_, err = Eval(value.NewNull(), "id")
	assert.ErrorIs(t, err, failure.ErrEvaluation)
}

func TestEval_DeepPath(t *testing.T) {
	// a.a.a....a = "leaf", 50 levels
	leaf := value.NewString("leaf")
	path := ""
	for i := 0; i < 50; i++ {
		leaf = value.NewMap(map[string]value.Value{"a": leaf})
		if path != "" {
			path += "."
		}
		path += "a"
	}
	got, err := Eval(leaf, path)
	require.NoError(t, err)
	assert.Equal(t, "leaf", got.Str())
}

func TestAccessor_ReadOnlyMapAccess(t *testing.T) {
	m := value.NewMap(map[string]value.Value{"k": value.NewNull()})
	assert.True(t, canRead(m, "k"), "present key with null value is readable")
	assert.False(t, canRead(m, "x"))
	assert.False(t, canRead(value.NewList(), "k"))
	assert.True(t, read(m, "k").IsNull())
}

func TestResolve(t *testing.T) {
	body := mustJSON(t, `{"id": 7, "user": {"slug": "al"}, "ratio": 0.5}`)
	root := func() (value.Value, error) { return body, nil }

	got, err := Resolve("/items/${response.id}", root)
	require.NoError(t, err)
	assert.Equal(t, "/items/7", got)

	got, err = Resolve("/u/${response.user.slug}/r/${response.ratio}", root)
	require.NoError(t, err)
	assert.Equal(t, "/u/al/r/0.5", got)

	_, err = Resolve("/items/${response.nope}", root)
	assert.ErrorIs(t, err, failure.ErrEvaluation)
}

func TestResolve_NoPlaceholderNeverTouchesRoot(t *testing.T) {
	called := false
	root := func() (value.Value, error) {
		called = true
		return value.Value{}, failure.ErrNoResponse
	}
	got, err := Resolve("/items/1?x=${other}", root)
	require.NoError(t, err)
	assert.Equal(t, "/items/1?x=${other}", got)
	assert.False(t, called)
	assert.False(t, HasPlaceholder("/items/${request.id}"))
	assert.True(t, HasPlaceholder("/items/${response.id}"))
}

func TestResolve_PropagatesNoResponse(t *testing.T) {
	root := func() (value.Value, error) { return value.Value{}, failure.ErrNoResponse }
	_, err := Resolve("/items/${response.id}", root)
	assert.ErrorIs(t, err, failure.ErrNoResponse)
}

func FuzzCompile(f *testing.F) {
	for _, seed := range []string{"a", "a.b", "a[0]", "['x y']", "a..b", "[", "a[0", `"x`, ""} {
		f.Add(seed)
	}
	body := value.NewMap(map[string]value.Value{"a": value.NewList(value.NewInt(1))})
	f.Fuzz(func(t *testing.T, in string) {
		p, err := Compile(in)
		if err != nil {
			if !errors.Is(err, failure.ErrEvaluation) {
				t.Fatalf("compile error has wrong kind: %v", err)
			}
			return
		}
		if _, err := p.Eval(body); err != nil && !errors.Is(err, failure.ErrEvaluation) {
			t.Fatalf("eval error has wrong kind: %v", err)
		}
	})
}
