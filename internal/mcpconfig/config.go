package mcpconfig

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cast"
)

// ServersKey is the top-level key holding the server mapping in every encoding.
const ServersKey = "mcpServers"

var (
	// ErrUnparseable is returned when a document cannot be decoded into a Config.
	ErrUnparseable = errors.New("unparseable mcp config")
	// ErrUnknownFormat is returned for file extensions with no codec.
	ErrUnknownFormat = errors.New("unknown mcp config format")
)

// Server is one MCP server definition. Fields other than command, args and env
// are kept verbatim in Extra so they survive a round trip.
type Server struct {
	Command string
	Args    []string
	Env     map[string]string
	Extra   map[string]any
}

// Config is the decoded form shared by all encodings.
type Config struct {
	Servers map[string]*Server
	// Extra holds top-level keys other than mcpServers.
	Extra map[string]any
}

// NewConfig returns an empty, non-nil config.
func NewConfig() *Config {
	return &Config{
		Servers: make(map[string]*Server),
		Extra:   make(map[string]any),
	}
}

// ServerNames returns the server names in sorted order.
func (c *Config) ServerNames() []string {
	return slices.Sorted(maps.Keys(c.Servers))
}

// IsEmpty reports whether the config has neither servers nor other keys.
func (c *Config) IsEmpty() bool {
	return len(c.Servers) == 0 && len(c.Extra) == 0
}

// Clone returns a copy of the server definition. Extra values are copied shallowly.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	return &Server{
		Command: s.Command,
		Args:    slices.Clone(s.Args),
		Env:     maps.Clone(s.Env),
		Extra:   maps.Clone(s.Extra),
	}
}

func (s *Server) toMap() map[string]any {
	m := make(map[string]any, len(s.Extra)+3)
	for k, v := range s.Extra {
		m[k] = v
	}
	if s.Command != "" {
		m["command"] = s.Command
	}
	if len(s.Args) > 0 {
		args := make([]any, len(s.Args))
		for i, a := range s.Args {
			args[i] = a
		}
		m["args"] = args
	}
	if len(s.Env) > 0 {
		env := make(map[string]any, len(s.Env))
		for k, v := range s.Env {
			env[k] = v
		}
		m["env"] = env
	}
	return m
}

func serverFromMap(name string, raw any) (*Server, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("server %q is not a mapping", name)
	}

	s := &Server{Extra: make(map[string]any)}
	for k, v := range m {
		switch k {
		case "command":
			cmd, err := cast.ToStringE(v)
			if err != nil {
				return nil, fmt.Errorf("server %q command: %w", name, err)
			}
			s.Command = cmd
		case "args":
			list, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("server %q args is not a list", name)
			}
			args, err := cast.ToStringSliceE(list)
			if err != nil {
				return nil, fmt.Errorf("server %q args: %w", name, err)
			}
			if len(args) > 0 {
				s.Args = args
			}
		case "env":
			envMap, ok := asMap(v)
			if !ok {
				return nil, fmt.Errorf("server %q env is not a mapping", name)
			}
			env, err := cast.ToStringMapStringE(envMap)
			if err != nil {
				return nil, fmt.Errorf("server %q env: %w", name, err)
			}
			if len(env) > 0 {
				s.Env = env
			}
		default:
			s.Extra[k] = v
		}
	}
	return s, nil
}

// toMap converts the config to the generic document shape used by every encoder.
func (c *Config) toMap() map[string]any {
	doc := make(map[string]any, len(c.Extra)+1)
	for k, v := range c.Extra {
		doc[k] = v
	}
	servers := make(map[string]any, len(c.Servers))
	for name, s := range c.Servers {
		servers[name] = s.toMap()
	}
	doc[ServersKey] = servers
	return doc
}

// fromMap builds a Config from a decoded document.
func fromMap(doc map[string]any) (*Config, error) {
	cfg := NewConfig()
	for k, v := range doc {
		if k != ServersKey {
			cfg.Extra[k] = v
			continue
		}
		if v == nil {
			continue
		}
		servers, ok := asMap(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a mapping", ErrUnparseable, ServersKey)
		}
		for name, raw := range servers {
			s, err := serverFromMap(name, raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
			}
			cfg.Servers[name] = s
		}
	}
	return cfg, nil
}

// asMap accepts the mapping types produced by the JSON, TOML and YAML decoders.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[cast.ToString(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
