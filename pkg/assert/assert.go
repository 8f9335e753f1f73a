// Package assert checks the last recorded response of a scenario.
//
// Every check reads the state.Store and never mutates it, so running the same
// check twice against an unchanged store gives the same outcome. Shape
// problems (a list where a map was expected) are reported as
// failure.ShapeError, content problems as failure.AssertionError.
package assert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loykin/apiscenario/pkg/expr"
	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/state"
	"github.com/loykin/apiscenario/pkg/value"
)

// Asserter runs checks against a scenario Store.
type Asserter struct {
	store *state.Store
}

// New returns an Asserter reading s.
func New(s *state.Store) *Asserter {
	return &Asserter{store: s}
}

// Status checks the status code of the last response.
func (a *Asserter) Status(expected int) error {
	res, err := a.store.Response()
	if err != nil {
		return err
	}
	if res.StatusCode != expected {
		return &failure.AssertionError{
			Subject:  "response status",
			Expected: strconv.Itoa(expected),
			Actual:   strconv.Itoa(res.StatusCode),
		}
	}
	return nil
}

// Empty checks that the last response had no body.
func (a *Asserter) Empty() error {
	body, err := a.store.Body()
	if err != nil {
		return err
	}
	if !body.IsNull() {
		return &failure.AssertionError{Subject: "response body", Expected: "empty", Actual: body.String()}
	}
	return nil
}

// ListSize checks that the body is a list of exactly expected elements.
func (a *Asserter) ListSize(expected int) error {
	body, err := a.bodyOf(value.List)
	if err != nil {
		return err
	}
	if body.Len() != expected {
		return &failure.AssertionError{
			Subject:  "response size",
			Expected: strconv.Itoa(expected),
			Actual:   strconv.Itoa(body.Len()),
		}
	}
	return nil
}

// EmptyList checks that the body is an empty list.
func (a *Asserter) EmptyList() error {
	return a.ListSize(0)
}

// ContainsKey checks that the body is a map holding key.
func (a *Asserter) ContainsKey(key string) error {
	body, err := a.bodyOf(value.Map)
	if err != nil {
		return err
	}
	if _, ok := body.Get(key); !ok {
		return missingKey("response entity", key, body)
	}
	return nil
}

// NotContainsKey checks that the body is a map without key.
func (a *Asserter) NotContainsKey(key string) error {
	body, err := a.bodyOf(value.Map)
	if err != nil {
		return err
	}
	if v, ok := body.Get(key); ok {
		return &failure.AssertionError{
			Subject:  "response entity",
			Expected: fmt.Sprintf("no key %q", key),
			Actual:   fmt.Sprintf("%q = %s", key, v),
		}
	}
	return nil
}

// KeyEqualsString checks that key holds exactly the string s.
func (a *Asserter) KeyEqualsString(key, s string) error {
	v, err := a.key(key)
	if err != nil {
		return err
	}
	return equalString(fmt.Sprintf("response entity %q", key), v, s)
}

// KeyEqualsInt checks that key holds the integer n. A string "42" or a
// fractional number never equals 42.
func (a *Asserter) KeyEqualsInt(key string, n int64) error {
	v, err := a.key(key)
	if err != nil {
		return err
	}
	return equalInt(fmt.Sprintf("response entity %q", key), v, n)
}

// EntityCount checks the size of the list stored under entity with op and
// returns the list for further checks.
func (a *Asserter) EntityCount(entity string, op Operator, expected int) (value.Value, error) {
	body, err := a.bodyOf(value.Map)
	if err != nil {
		return value.Value{}, err
	}
	coll, ok := body.Get(entity)
	if !ok {
		return value.Value{}, missingKey("response entity", entity, body)
	}
	subject := fmt.Sprintf("entity %q", entity)
	if coll.Kind() != value.List {
		return value.Value{}, &failure.ShapeError{Subject: subject, Expected: value.List.String(), Actual: coll.Kind().String()}
	}
	if !op.Compare(coll.Len(), expected) {
		return value.Value{}, &failure.AssertionError{
			Subject:  subject + " size",
			Expected: fmt.Sprintf("%s %d", op, expected),
			Actual:   strconv.Itoa(coll.Len()),
		}
	}
	return coll, nil
}

// EntityKey evaluates entityPath against the body, requires a map there and
// returns the non-null value of key inside it.
func (a *Asserter) EntityKey(entityPath, key string) (value.Value, error) {
	body, err := a.bodyOf(value.Map)
	if err != nil {
		return value.Value{}, err
	}
	entity, err := expr.Eval(body, entityPath)
	if err != nil {
		return value.Value{}, err
	}
	subject := fmt.Sprintf("entity %q", entityPath)
	if entity.Kind() != value.Map {
		return value.Value{}, &failure.ShapeError{Subject: subject, Expected: value.Map.String(), Actual: entity.Kind().String()}
	}
	v, ok := entity.Get(key)
	if !ok {
		return value.Value{}, missingKey(subject, key, entity)
	}
	if v.IsNull() {
		return value.Value{}, &failure.AssertionError{
			Subject:  fmt.Sprintf("%s key %q", subject, key),
			Expected: "non-null value",
			Actual:   "null",
		}
	}
	return v, nil
}

// EntityKeyEqualsString checks that key of the entity at entityPath is s.
func (a *Asserter) EntityKeyEqualsString(entityPath, key, s string) error {
	v, err := a.EntityKey(entityPath, key)
	if err != nil {
		return err
	}
	return equalString(fmt.Sprintf("entity %q key %q", entityPath, key), v, s)
}

// EntityKeyEqualsInt checks that key of the entity at entityPath is n.
func (a *Asserter) EntityKeyEqualsInt(entityPath, key string, n int64) error {
	v, err := a.EntityKey(entityPath, key)
	if err != nil {
		return err
	}
	return equalInt(fmt.Sprintf("entity %q key %q", entityPath, key), v, n)
}

func (a *Asserter) bodyOf(kind value.Kind) (value.Value, error) {
	body, err := a.store.Body()
	if err != nil {
		return value.Value{}, err
	}
	if body.Kind() != kind {
		return value.Value{}, &failure.ShapeError{Subject: "response body", Expected: kind.String(), Actual: body.Kind().String()}
	}
	return body, nil
}

func (a *Asserter) key(key string) (value.Value, error) {
	body, err := a.bodyOf(value.Map)
	if err != nil {
		return value.Value{}, err
	}
	v, ok := body.Get(key)
	if !ok {
		return value.Value{}, missingKey("response entity", key, body)
	}
	return v, nil
}

func missingKey(subject, key string, m value.Value) error {
	return &failure.AssertionError{
		Subject:  subject,
		Expected: fmt.Sprintf("key %q", key),
		Actual:   "keys [" + strings.Join(m.Keys(), ", ") + "]",
	}
}

func equalString(subject string, v value.Value, s string) error {
	if !v.Equal(value.NewString(s)) {
		return &failure.AssertionError{Subject: subject, Expected: strconv.Quote(s), Actual: v.String()}
	}
	return nil
}

func equalInt(subject string, v value.Value, n int64) error {
	if got, ok := v.Int(); !ok || got != n {
		return &failure.AssertionError{Subject: subject, Expected: strconv.FormatInt(n, 10), Actual: v.String()}
	}
	return nil
}
