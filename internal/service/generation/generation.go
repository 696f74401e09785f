// Package generation issues monotonic tags used to detect callbacks that belong
// to a superseded capture or session.
package generation

import "sync/atomic"

// Counter hands out strictly increasing generation tags. The zero value is
// ready to use and its first tag is 1, so 0 never matches a live generation.
type Counter struct {
	current atomic.Uint64
}

// New returns a fresh counter.
func New() *Counter {
	return &Counter{}
}

// Next supersedes the current generation and returns the new tag.
func (c *Counter) Next() uint64 {
	return c.current.Add(1)
}

// Current returns the live tag.
func (c *Counter) Current() uint64 {
	return c.current.Load()
}

// IsCurrent reports whether tag is still the live generation.
func (c *Counter) IsCurrent(tag uint64) bool {
	return tag != 0 && c.current.Load() == tag
}
