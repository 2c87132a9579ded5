package organize

import "os"

// SourceCache is an insertion-ordered map of absolute destination path to
// the SourceInfo currently believed to live there.
// Eviction is FIFO; a miss falls through to disk via Lstat.
type SourceCache struct {
	m         *orderedMap[string, *SourceInfo]
	onAccount func(delta int)
}

// NewSourceCache creates an empty SourceCache. onAccount receives the
// memory-account delta on every insert/evict, mirroring NewSeenCounter.
func NewSourceCache(onAccount func(delta int)) *SourceCache {
	return &SourceCache{m: newOrderedMap[string, *SourceInfo](), onAccount: onAccount}
}

// Get returns the cached SourceInfo for path without removing it.
func (c *SourceCache) Get(path string) (*SourceInfo, bool) {
	return c.m.Get(path)
}

// Set inserts or replaces the cached entry for path, adjusting the memory
// account by the size delta between the old and new entries.
func (c *SourceCache) Set(path string, info *SourceInfo) {
	old, had := c.m.Get(path)
	c.m.Set(path, info)

	if c.onAccount == nil {
		return
	}

	delta := info.ApproxSize()
	if had {
		delta -= old.ApproxSize()
	}

	c.onAccount(delta)
}

// Pop removes and returns the cached entry for path, transferring
// ownership to the caller.
func (c *SourceCache) Pop(path string) (*SourceInfo, bool) {
	info, ok := c.m.Pop(path)
	if !ok {
		return nil, false
	}

	if c.onAccount != nil {
		c.onAccount(-info.ApproxSize())
	}

	return info, true
}

// PopOldest removes and returns the oldest (path, SourceInfo) entry.
func (c *SourceCache) PopOldest() (string, *SourceInfo, bool) {
	path, info, ok := c.m.PopOldest()
	if !ok {
		return "", nil, false
	}

	if c.onAccount != nil {
		c.onAccount(-info.ApproxSize())
	}

	return path, info, true
}

// Len returns the number of cached entries.
func (c *SourceCache) Len() int {
	return c.m.Len()
}

// Lstat synthesizes a SourceInfo by statting path directly, for use when
// the cache misses but the engine still needs to know what's on disk.
// It returns (nil, nil) if path does not exist.
func Lstat(path string) (*SourceInfo, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	return &SourceInfo{AbsPath: path, Stat: statRecordFrom(fi)}, nil
}
