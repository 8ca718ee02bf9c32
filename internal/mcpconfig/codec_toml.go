package mcpconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	tomlServerHeader = regexp.MustCompile(`^\[\s*mcpServers\.(?:"((?:[^"\\]|\\.)*)"|([A-Za-z0-9_-]+))\s*\]$`)
	tomlBareKey      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func parseTOML(text string) (*Config, error) {
	var doc map[string]any
	err := toml.Unmarshal([]byte(text), &doc)
	if err == nil {
		return fromMap(doc)
	}

	// Hand-edited files often trip the strict decoder on a single line.
	// Recover whatever [mcpServers.<name>] sections still read cleanly.
	if cfg := scanTOMLServers(text); cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
}

// scanTOMLServers reads [mcpServers.<name>] sections line by line, decoding each
// single-line key = value pair on its own. Lines that fail to decode are dropped.
// Returns nil when no section is found.
func scanTOMLServers(text string) *Config {
	cfg := NewConfig()
	var (
		current     map[string]any
		currentName string
		found       bool
	)

	flush := func() {
		if current == nil {
			return
		}
		if s, err := serverFromMap(currentName, current); err == nil {
			cfg.Servers[currentName] = s
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			flush()
			current, currentName = nil, ""
			if m := tomlServerHeader.FindStringSubmatch(line); m != nil {
				name := m[2]
				if name == "" {
					name = unquoteTOML(m[1])
				}
				current, currentName = make(map[string]any), name
				found = true
			}
			continue
		}

		if current == nil {
			continue
		}
		var kv map[string]any
		if err := toml.Unmarshal([]byte(line), &kv); err != nil {
			continue
		}
		for k, v := range kv {
			current[k] = v
		}
	}
	flush()

	if !found {
		return nil
	}
	return cfg
}

func serializeTOML(cfg *Config) (string, error) {
	var buf bytes.Buffer

	if len(cfg.Extra) > 0 {
		if err := toml.NewEncoder(&buf).Encode(cfg.Extra); err != nil {
			return "", fmt.Errorf("encode toml: %w", err)
		}
	}

	for _, name := range cfg.ServerNames() {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "[%s.%s]\n", ServersKey, quoteTOMLKey(name))

		enc := toml.NewEncoder(&buf)
		enc.SetTablesInline(true)
		if err := enc.Encode(cfg.Servers[name].toMap()); err != nil {
			return "", fmt.Errorf("encode toml server %q: %w", name, err)
		}
	}
	return buf.String(), nil
}

func quoteTOMLKey(key string) string {
	if tomlBareKey.MatchString(key) {
		return key
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(key) + `"`
}

func unquoteTOML(s string) string {
	r := strings.NewReplacer(`\\`, `\`, `\"`, `"`)
	return r.Replace(s)
}
