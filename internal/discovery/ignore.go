package discovery

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/openmined/agentsync/internal/utils"
)

// IgnoreFileName is the optional user ignore file inside the config directory.
const IgnoreFileName = "agentsyncignore"

var defaultIgnoreLines = []string{
	// agentsync
	IgnoreFileName,
	"*.agentsync.bak",
	".agentsync-tmp-*",
	// editors
	"*.swp",
	"*~",
	".vscode",
	".idea",
	// General excludes
	".git",
	"node_modules/",
	"*.tmp",
	"*.log",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
}

// IgnoreList decides which discovered paths are never treated as assets.
type IgnoreList struct {
	configDir string
	extra     []string
	ignore    *gitignore.GitIgnore
}

// NewIgnoreList creates a list reading user rules from configDir. extra lines are
// compiled after the defaults, e.g. a custom backup suffix pattern.
func NewIgnoreList(configDir string, extra ...string) *IgnoreList {
	l := &IgnoreList{configDir: configDir, extra: extra}
	l.ignore = gitignore.CompileIgnoreLines(l.baseLines()...)
	return l
}

func (l *IgnoreList) baseLines() []string {
	lines := make([]string, 0, len(defaultIgnoreLines)+len(l.extra))
	lines = append(lines, defaultIgnoreLines...)
	return append(lines, l.extra...)
}

// Load (re)compiles the defaults plus the user's ignore file, if present.
func (l *IgnoreList) Load() {
	lines := l.baseLines()

	if l.configDir == "" {
		l.ignore = gitignore.CompileIgnoreLines(lines...)
		return
	}

	ignorePath := filepath.Join(l.configDir, IgnoreFileName)
	if utils.FileExists(ignorePath) {
		rules := 0
		file, err := os.Open(ignorePath)
		if err != nil {
			slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if line != "" {
					lines = append(lines, line)
					rules++
				}
			}

			if err := scanner.Err(); err != nil {
				slog.Warn("error reading ignore file", "path", ignorePath, "error", err)
			} else {
				slog.Debug("loaded ignore file", "path", ignorePath, "rules", rules)
			}
		}
	}

	l.ignore = gitignore.CompileIgnoreLines(lines...)
}

// ShouldIgnore matches a slash separated path relative to a client directory.
func (l *IgnoreList) ShouldIgnore(rel string) bool {
	return l.ignore.MatchesPath(rel)
}
