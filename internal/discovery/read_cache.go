package discovery

import (
	"io/fs"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of files kept by a ReadCache.
const DefaultCacheSize = 4096

type cachedRead struct {
	size    int64
	modTime time.Time
	content string
}

// ReadCache remembers file contents between scans. An entry is only reused while
// the file's size and modification time are unchanged, so watch mode does not
// re-read every file on each pass.
type ReadCache struct {
	entries *lru.Cache[string, cachedRead]
}

func NewReadCache(size int) *ReadCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cachedRead](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &ReadCache{entries: entries}
}

// Get returns the cached content of path if info still matches.
func (c *ReadCache) Get(path string, info fs.FileInfo) (string, bool) {
	e, ok := c.entries.Get(path)
	if !ok || e.size != info.Size() || !e.modTime.Equal(info.ModTime()) {
		return "", false
	}
	return e.content, true
}

func (c *ReadCache) Put(path string, info fs.FileInfo, content string) {
	c.entries.Add(path, cachedRead{size: info.Size(), modTime: info.ModTime(), content: content})
}

func (c *ReadCache) Len() int {
	return c.entries.Len()
}

func (c *ReadCache) Purge() {
	c.entries.Purge()
}
