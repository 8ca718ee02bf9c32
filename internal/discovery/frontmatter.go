package discovery

import (
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/openmined/agentsync/internal/assets"
)

var frontMatterBlock = regexp.MustCompile(`\A\x{FEFF}?---[ \t]*\r?\n((?s:.*?))\r?\n---[ \t]*(?:\r?\n|\z)`)

type ruleFrontMatter struct {
	AlwaysApply *bool `yaml:"alwaysApply"`
}

// ruleMetadata extracts the alwaysApply flag from a leading front-matter block.
// Anything that does not decode cleanly yields nil rather than a guess.
func ruleMetadata(content string) *assets.Metadata {
	m := frontMatterBlock.FindStringSubmatch(content)
	if m == nil {
		return nil
	}

	var fm ruleFrontMatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil || fm.AlwaysApply == nil {
		return nil
	}
	return &assets.Metadata{AlwaysApply: fm.AlwaysApply}
}
