package assert

import (
	"strings"

	"github.com/loykin/apiscenario/pkg/failure"
)

// Operator compares an actual count with an expected one.
type Operator int

const (
	Equal Operator = iota
	AtLeast
	AtMost
	MoreThan
	LessThan
)

var operatorNames = map[Operator]string{
	Equal:    "",
	AtLeast:  "at least",
	AtMost:   "at most",
	MoreThan: "more than",
	LessThan: "less than",
}

// ParseOperator maps the qualifier preceding a count ("at least", "more than",
// ...) to an Operator. An empty qualifier is Equal.
func ParseOperator(qualifier string) (Operator, error) {
	q := strings.Join(strings.Fields(strings.ToLower(qualifier)), " ")
	for op, name := range operatorNames {
		if q == name {
			return op, nil
		}
	}
	return Equal, failure.Argumentf("unknown comparison qualifier %q", qualifier)
}

// String returns the qualifier phrase; Equal renders as "exactly".
func (o Operator) String() string {
	if o == Equal {
		return "exactly"
	}
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// Compare reports whether actual satisfies o against expected.
func (o Operator) Compare(actual, expected int) bool {
	switch o {
	case AtLeast:
		return actual >= expected
	case AtMost:
		return actual <= expected
	case MoreThan:
		return actual > expected
	case LessThan:
		return actual < expected
	default:
		return actual == expected
	}
}
