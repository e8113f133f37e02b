// Package config holds what the configuration stores share: the typed
// reading of loosely typed values and dot key checks.
//
// TOML decodes integers as int64 and arrays as []any, while values set
// from code keep their Go types, so every getter accepts both.
package config

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// String returns v when it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an int. Floats are truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Float returns v as a float64. Integers are widened.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool returns v when it is a bool.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Strings returns the string elements of v. Other elements are skipped.
func Strings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// CheckKey rejects keys that cannot be stored next to the existing ones:
// empty segments, and keys that would turn a value into a table or a
// table into a value.
func CheckKey(key string, existing map[string]any) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") || strings.Contains(key, "..") {
		return fmt.Errorf("%w: config key %q", domain.ErrInvalidInput, key)
	}
	for other := range existing {
		if other == key {
			continue
		}
		if strings.HasPrefix(other, key+".") || strings.HasPrefix(key, other+".") {
			return fmt.Errorf("%w: config key %q conflicts with %q", domain.ErrInvalidInput, key, other)
		}
	}
	return nil
}
