// Package cache implements the content-addressed result cache of spec.md
// §4.8: a digest of the normalized request keys an in-memory store that
// single-flights concurrent misses and optionally evicts via LRU.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/josephgoksu/promptforge/types"
)

// Key computes the deterministic digest of a normalized request: idea,
// context, mode, preset, and model (spec.md §4.8). Grounded on
// store/file_store.go's calculateChecksum (sha256 + hex).
func Key(req types.ImproveRequest) types.CacheKey {
	n := req.Normalize()
	h := sha256.New()
	fmt.Fprintf(h, "idea=%s\x00context=%s\x00mode=%s\x00preset=%s\x00model=%s",
		n.Idea, n.Context, n.Mode, n.Preset, n.Model)
	return types.CacheKey(hex.EncodeToString(h.Sum(nil)))
}
