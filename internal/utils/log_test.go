package utils

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogInterceptor(t *testing.T) {
	var out bytes.Buffer
	li := NewLogInterceptor(&out)
	li.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	n, err := li.Write([]byte("first\r\nsec"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "seq=1 time=2025-01-02T03:04:05Z first\n", out.String())

	_, err = li.Write([]byte("ond\nthird"))
	require.NoError(t, err)
	require.NoError(t, li.Close())
	require.NoError(t, li.Close())

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "seq=2 time=2025-01-02T03:04:05Z second", lines[1])
	assert.Equal(t, "seq=3 time=2025-01-02T03:04:05Z third", lines[2])
}

func TestMultiLogHandler(t *testing.T) {
	var debug, warn bytes.Buffer
	h := NewMultiLogHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(h).With("run", "r1").WithGroup("g")

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("quiet", "k", 1)
	logger.Warn("loud", "k", 2)

	assert.Contains(t, debug.String(), "msg=quiet")
	assert.Contains(t, debug.String(), "msg=loud")
	assert.Contains(t, debug.String(), "run=r1")
	assert.NotContains(t, warn.String(), "quiet")
	assert.Contains(t, warn.String(), "g.k=2")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, ok := FindProjectRoot(nested)
	assert.True(t, ok)
	assert.Equal(t, root, got)

	bare := t.TempDir()
	got, ok = FindProjectRoot(bare)
	if !ok {
		assert.Equal(t, bare, got)
	}
}
