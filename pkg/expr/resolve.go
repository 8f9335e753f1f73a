package expr

import (
	"regexp"
	"strings"

	"github.com/loykin/apiscenario/pkg/value"
)

var placeholderRe = regexp.MustCompile(`\$\{response\.([^}]*)\}`)

// HasPlaceholder reports whether s contains a `${response.<path>}` reference.
func HasPlaceholder(s string) bool {
	return placeholderRe.MatchString(s)
}

// Resolve replaces every `${response.<path>}` in target with the rendered
// value of path evaluated against the body returned by root. root is only
// called when a placeholder is present, so a target without placeholders
// never needs a previous response.
func Resolve(target string, root func() (value.Value, error)) (string, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(target, -1)
	if len(matches) == 0 {
		return target, nil
	}
	body, err := root()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		v, err := Eval(body, target[m[2]:m[3]])
		if err != nil {
			return "", err
		}
		b.WriteString(target[last:m[0]])
		b.WriteString(v.Text())
		last = m[1]
	}
	b.WriteString(target[last:])
	return b.String(), nil
}
