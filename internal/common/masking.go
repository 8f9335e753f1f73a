package common

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
)

const maskedValue = "***MASKED***"

// SensitivePattern detects a secret inside free text or by attribute/header key.
type SensitivePattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Keys        []string // matched case-insensitively against attribute and header names
}

// DefaultSensitivePatterns covers credentials that show up in request logs.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|pwd)(["']?\s*[:=]\s*["']?)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"password", "passwd", "pwd"},
	},
	{
		Name:        "api_key",
		Regex:       regexp.MustCompile(`(?i)(api[_-]?key|apikey)(["']?\s*[:=]\s*["']?)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"api_key", "apikey", "api-key", "x-api-key"},
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)((?:access[_-]?|auth[_-]?|refresh[_-]?)?token)(["']?\s*[:=]\s*["']?)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"token", "access_token", "auth_token", "refresh_token"},
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)((?:client[_-]?)?secret)(["']?\s*[:=]\s*["']?)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"secret", "client_secret", "client-secret"},
	},
	{
		Name:        "bearer",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + maskedValue,
	},
	{
		Name:        "basic",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic " + maskedValue,
	},
	{
		Name: "authorization",
		Keys: []string{"authorization", "proxy-authorization", "cookie", "set-cookie"},
	},
}

// Masker redacts sensitive values before they reach a log sink.
type Masker struct {
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return &Masker{patterns: DefaultSensitivePatterns, enabled: true}
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	return m.enabled
}

// AddPattern appends a pattern. A pattern with only Keys masks by key.
func (m *Masker) AddPattern(p SensitivePattern) {
	m.patterns = append(m.patterns, p)
}

// MaskString redacts secrets embedded in free text.
func (m *Masker) MaskString(input string) string {
	if !m.enabled {
		return input
	}
	out := input
	for _, p := range m.patterns {
		if p.Regex != nil {
			out = p.Regex.ReplaceAllString(out, p.Replacement)
		}
	}
	return out
}

func (m *Masker) sensitiveKey(key string) bool {
	for _, p := range m.patterns {
		for _, k := range p.Keys {
			if strings.EqualFold(key, k) {
				return true
			}
		}
	}
	return false
}

// MaskValue masks value entirely when key is sensitive, otherwise masks
// secrets inside string values. Non-string values pass through unchanged.
func (m *Masker) MaskValue(key string, value interface{}) interface{} {
	if !m.enabled {
		return value
	}
	if m.sensitiveKey(key) {
		return maskedValue
	}
	if s, ok := value.(string); ok {
		return m.MaskString(s)
	}
	return value
}

// MaskHeaders flattens h into "Name: v1, v2" lines, sorted by name, with
// sensitive headers redacted. Suitable for a single log attribute.
func (m *Masker) MaskHeaders(h http.Header) []string {
	out := make([]string, 0, len(h))
	for name, vals := range h {
		joined := strings.Join(vals, ", ")
		if m.enabled && m.sensitiveKey(name) {
			joined = maskedValue
		} else {
			joined = m.MaskString(joined)
		}
		out = append(out, name+": "+joined)
	}
	sort.Strings(out)
	return out
}

var globalMasker = NewMasker()

// SetGlobalMasker sets the global masker instance
func SetGlobalMasker(masker *Masker) {
	if masker != nil {
		globalMasker = masker
	}
}

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}
