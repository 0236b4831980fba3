// pkg/fixture/cache.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package fixture

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/windrose/uasplanner/pkg/gridmap"
)

// cacheEntry is the on-disk shape of one cached obstacle field: the
// params that produced it plus the result, so a cache hit can be
// double-checked against the params a caller actually asked for before
// being trusted.
type cacheEntry struct {
	Params    RandomFieldParams
	Obstacles []gridmap.Circle
}

// SaveCache msgpack-encodes obstacles and the params that produced
// them, then zstd-compresses the result before writing it to path.
func SaveCache(path string, p RandomFieldParams, obstacles []gridmap.Circle) error {
	raw, err := msgpack.Marshal(cacheEntry{Params: p, Obstacles: obstacles})
	if err != nil {
		return fmt.Errorf("fixture: encode cache: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("fixture: init zstd encoder: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(raw, nil)

	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		return fmt.Errorf("fixture: write cache: %w", err)
	}
	return nil
}

// LoadCache reads a zstd-compressed, msgpack-encoded obstacle field
// from path. It returns ok=false (not an error) if the cached params
// don't match p, so a caller can fall back to regenerating rather than
// silently serving a stale field for a different seed or count.
func LoadCache(path string, p RandomFieldParams) (obstacles []gridmap.Circle, ok bool, err error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fixture: read cache: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false, fmt.Errorf("fixture: init zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("fixture: decompress cache: %w", err)
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("fixture: decode cache: %w", err)
	}
	if entry.Params != p {
		return nil, false, nil
	}
	return entry.Obstacles, true, nil
}

// RandomFieldCached behaves like RandomField but first checks path for
// a matching cached field, only drawing fresh random obstacles on a
// cache miss, and writing the result back for next time.
func RandomFieldCached(path string, p RandomFieldParams) ([]gridmap.Circle, error) {
	if cached, ok, err := LoadCache(path, p); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	obstacles, err := RandomField(p)
	if err != nil {
		return nil, err
	}
	if err := SaveCache(path, p, obstacles); err != nil {
		return nil, err
	}
	return obstacles, nil
}
