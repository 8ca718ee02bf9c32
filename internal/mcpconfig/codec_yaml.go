package mcpconfig

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

func parseYAML(text string) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	if doc == nil {
		// comments only
		return NewConfig(), nil
	}
	m, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrUnparseable)
	}
	return fromMap(m)
}

func serializeYAML(cfg *Config) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.toMap()); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}
