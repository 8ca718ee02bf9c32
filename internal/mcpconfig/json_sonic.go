//go:build sonic

package mcpconfig

import (
	"bytes"

	"github.com/bytedance/sonic"
)

var jsonUnmarshal = sonic.ConfigStd.Unmarshal

func jsonMarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := sonic.ConfigStd.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
