// Package cache holds the word currently being looked at.
//
// It is a single slot, not a map: every lookup replaces the whole entry.
// The orchestrator writes it and the image loader reads it and attaches
// images to it, so all access goes through the mutex-guarded methods and
// every value crossing the boundary is a deep copy.
package cache

import (
	"sync"

	"codeberg.org/snonux/grunwald/internal/word"
)

// WordCache stores one word, initially word.Empty
type WordCache struct {
	mu      sync.RWMutex
	current word.Word
}

// New creates an empty cache
func New() *WordCache {
	return &WordCache{current: word.Empty}
}

// HasContent reports whether the slot holds something other than word.Empty
func (c *WordCache) HasContent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.current.IsEmpty()
}

// Clear resets the slot to word.Empty
func (c *WordCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = word.Empty
}

// StoreWordContent replaces the slot
func (c *WordCache) StoreWordContent(w word.Word) {
	w = w.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = w
}

// StoreWordImage replaces the image of whatever word is in the slot.
// An empty slot stays word.Empty.
func (c *WordCache) StoreWordImage(img word.Image) {
	img = img.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.IsEmpty() {
		return
	}
	c.current.Image = img
}

// StoreWordImageFor attaches img only if the slot still holds name and
// that word can own an image. It reports whether the image was stored.
func (c *WordCache) StoreWordImageFor(name string, img word.Image) bool {
	img = img.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.IsEmpty() || c.current.Name != name || !c.current.HasImage() {
		return false
	}
	c.current.Image = img
	return true
}

// SetIDs updates the persistent ids of the word in the slot if it is still name
func (c *WordCache) SetIDs(name string, id, imageID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current.IsEmpty() || c.current.Name != name {
		return false
	}
	c.current.ID = id
	c.current.Image.ID = imageID
	return true
}

// LoadWordContent returns a copy of the slot
func (c *WordCache) LoadWordContent() word.Word {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// LoadWordImage returns a copy of the image in the slot
func (c *WordCache) LoadWordImage() word.Image {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Image.Clone()
}
