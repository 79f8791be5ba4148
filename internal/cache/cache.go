// Package cache stores successful model responses so repeated runs over the
// same batches skip inference.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"

	"github.com/ppiankov/claimsift/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyPrefix is bumped when the cached payload changes shape
const keyPrefix = "claimsift:v1:"

// ResponseKey derives a cache key from everything that determines a model
// response: provider, model name and the full prompt.
func ResponseKey(provider, modelName, prompt string) string {
	h := sha256.New()
	for _, part := range []string{provider, modelName, prompt} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg. A relative cfg.Dir is resolved
// against root, the workspace root. A disabled cache never stores anything.
func New(cfg model.CacheConfig, root string) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, Dir(cfg, root), cfg.DiskTTL)
}

// Dir returns the on-disk cache directory for cfg under root
func Dir(cfg model.CacheConfig, root string) string {
	if cfg.Dir == "" || filepath.IsAbs(cfg.Dir) {
		return cfg.Dir
	}
	return filepath.Join(root, cfg.Dir)
}

// Nop is a cache that stores nothing
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
