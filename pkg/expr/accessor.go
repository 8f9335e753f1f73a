package expr

import "github.com/loykin/apiscenario/pkg/value"

// canRead reports whether name is readable on target: target must be a map
// that holds the key. There is no write counterpart; responses are read-only.
func canRead(target value.Value, name string) bool {
	_, ok := target.Get(name)
	return ok
}

// read returns the mapped value unchanged.
func read(target value.Value, name string) value.Value {
	v, _ := target.Get(name)
	return v
}
