// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// cacheKey identifies one decoded result. For file-backed sources it is the
// path and modification time; for in-memory sources it is the byte length
// plus an xxhash digest of the full content, cheap enough to compute on
// every Decode call and far more collision-resistant than hashing a prefix
// (spec.md §4.5's cache-key description, see DESIGN.md).
type cacheKey struct {
	path   string
	mtime  time.Time
	length int
	digest uint64
}

func cacheKeyForBytes(data []byte) cacheKey {
	return cacheKey{length: len(data), digest: xxhash.Sum64(data)}
}

func cacheKeyForFile(path string, info os.FileInfo) cacheKey {
	return cacheKey{path: path, mtime: info.ModTime(), length: int(info.Size())}
}

// Decoder wraps Decode with an optional per-instance result cache, grounded
// on reader.go's sync.Pool-based instance-scoped reuse generalized from
// buffer pooling to decoded-result caching.
type Decoder struct {
	opts DecodeOptions

	mu    sync.Mutex
	cache map[cacheKey]*Document
}

// NewDecoder returns a Decoder that applies opts to every Decode call and
// caches results keyed per cacheKey when opts.UseCache is set.
func NewDecoder(opts DecodeOptions) *Decoder {
	opts.applyDefaults()
	return &Decoder{opts: opts}
}

// Decode decodes data, serving a cached Document when available and caching
// turned on. The returned Document is shared across callers when served from
// cache; callers must not mutate it in place.
func (d *Decoder) Decode(data []byte) (*Document, error) {
	if !d.opts.UseCache {
		return Decode(data, d.opts)
	}

	key := cacheKeyForBytes(data)

	d.mu.Lock()
	if d.cache != nil {
		if doc, ok := d.cache[key]; ok {
			d.mu.Unlock()
			return doc, nil
		}
	}
	d.mu.Unlock()

	doc, err := Decode(data, d.opts)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.cache == nil {
		d.cache = make(map[cacheKey]*Document)
	}
	d.cache[key] = doc
	d.mu.Unlock()

	return doc, nil
}

// DecodeFile decodes the container at path, using (path, mtime) as the cache
// key when caching is enabled so a file edited in place is re-decoded.
func (d *Decoder) DecodeFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if !d.opts.UseCache {
		return Decode(data, d.opts)
	}

	info, statErr := os.Stat(path)
	var key cacheKey
	if statErr == nil {
		key = cacheKeyForFile(path, info)
	} else {
		key = cacheKeyForBytes(data)
	}

	d.mu.Lock()
	if d.cache != nil {
		if doc, ok := d.cache[key]; ok {
			d.mu.Unlock()
			return doc, nil
		}
	}
	d.mu.Unlock()

	doc, err := Decode(data, d.opts)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.cache == nil {
		d.cache = make(map[cacheKey]*Document)
	}
	d.cache[key] = doc
	d.mu.Unlock()

	return doc, nil
}

// ClearCache discards every cached result.
func (d *Decoder) ClearCache() {
	d.mu.Lock()
	d.cache = nil
	d.mu.Unlock()
}
