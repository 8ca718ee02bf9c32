package mcpconfig

import (
	"fmt"
	"strings"
)

func parseJSON(text string) (*Config, error) {
	var doc any
	if err := jsonUnmarshal([]byte(StripJSONComments(text)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	m, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("%w: top level is not an object", ErrUnparseable)
	}
	return fromMap(m)
}

func serializeJSON(cfg *Config) (string, error) {
	out, err := jsonMarshalIndent(cfg.toMap())
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(out) + "\n", nil
}

// StripJSONComments removes // line comments and /* */ block comments that occur
// outside string literals. Newlines inside removed comments are kept so decoder
// error offsets still point at the right line.
func StripJSONComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(text) {
			switch text[i+1] {
			case '/':
				i += 2
				for i < len(text) && text[i] != '\n' {
					i++
				}
				if i < len(text) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				i += 2
				for i < len(text) && !(text[i] == '*' && i+1 < len(text) && text[i+1] == '/') {
					if text[i] == '\n' {
						b.WriteByte('\n')
					}
					i++
				}
				// skip the closing slash; an unterminated comment runs to EOF
				i++
				continue
			}
		}

		b.WriteByte(c)
	}
	return b.String()
}
