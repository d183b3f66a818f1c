package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Get returns the value at a dotted key, e.g. "display.position" or
// "sounds.volume", rendered as a string.
func (c *Config) Get(key string) (string, error) {
	tree, err := c.toTree()
	if err != nil {
		return "", err
	}

	node, ok := lookup(tree, key)
	if !ok {
		return "", fmt.Errorf("unknown config key %q (see: devping config show)", key)
	}
	if _, isTable := node.(map[string]any); isTable {
		return "", fmt.Errorf("%q is a section, not a value", key)
	}
	return renderValue(node), nil
}

// Set updates the value at a dotted key, validates the resulting
// config, and applies it to c. The string value is coerced to the
// key's existing type.
func (c *Config) Set(key, value string) error {
	tree, err := c.toTree()
	if err != nil {
		return err
	}

	current, ok := lookup(tree, key)
	if !ok {
		return fmt.Errorf("unknown config key %q (see: devping config show)", key)
	}
	if _, isTable := current.(map[string]any); isTable {
		return fmt.Errorf("%q is a section, not a value", key)
	}

	coerced, err := coerceValue(current, value)
	if err != nil {
		return fmt.Errorf("invalid value for %q: %w", key, err)
	}

	parts := strings.Split(key, ".")
	parent := tree
	for _, part := range parts[:len(parts)-1] {
		parent = parent[part].(map[string]any)
	}
	parent[parts[len(parts)-1]] = coerced

	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	updated := Default()
	if err := toml.Unmarshal(data, updated); err != nil {
		return fmt.Errorf("failed to apply config value: %w", err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*c = *updated
	return nil
}

// Keys lists every settable dotted key in sorted order.
func (c *Config) Keys() []string {
	tree, err := c.toTree()
	if err != nil {
		return nil
	}

	var keys []string
	collectKeys(tree, "", &keys)
	sort.Strings(keys)
	return keys
}

// toTree round-trips the config through TOML into a nested map, so
// key access follows the same names as the config file.
func (c *Config) toTree() (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	tree := make(map[string]any)
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return tree, nil
}

func lookup(tree map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	var node any = tree
	for _, part := range parts {
		table, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

func collectKeys(node any, prefix string, out *[]string) {
	table, ok := node.(map[string]any)
	if !ok {
		*out = append(*out, prefix)
		return
	}
	for name, child := range table {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		collectKeys(child, key, out)
	}
}

// coerceValue converts a string to the type the key currently holds.
func coerceValue(current any, value string) (any, error) {
	switch current.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int64:
		return strconv.ParseInt(value, 10, 64)
	case float64:
		return strconv.ParseFloat(value, 64)
	default:
		return value, nil
	}
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
