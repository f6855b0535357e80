// Package config implements the Configuration Accessor named in spec.md §6:
// a small dotted-key lookup that Action implementations may hold a
// reference to. The engine itself never calls it.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Accessor resolves a dotted key, preferring the environment over a loaded
// YAML document.
type Accessor struct {
	values map[string]any
}

// NewAccessor builds an Accessor with no backing document; only
// environment lookups will succeed until Load is called.
func NewAccessor() *Accessor {
	return &Accessor{values: map[string]any{}}
}

// Load parses yamlDoc as a YAML mapping and uses it as the Accessor's
// fallback source.
func Load(yamlDoc []byte) (*Accessor, error) {
	var values map[string]any
	if err := yaml.Unmarshal(yamlDoc, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]any{}
	}
	return &Accessor{values: values}, nil
}

// Get resolves key, first as an environment variable
// (dots become underscores, upper-cased), then by walking the loaded YAML
// document along the dotted path. The second return value reports whether
// either source held a value.
func (a *Accessor) Get(key string) (string, bool) {
	envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if value, ok := os.LookupEnv(envKey); ok {
		return value, true
	}

	if a == nil || a.values == nil {
		return "", false
	}

	var current any = a.values
	for _, part := range strings.Split(key, ".") {
		mapping, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		current, ok = mapping[part]
		if !ok {
			return "", false
		}
	}

	switch v := current.(type) {
	case string:
		return v, true
	case nil:
		return "", false
	default:
		return toString(v), true
	}
}

func toString(v any) string {
	switch value := v.(type) {
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
