package cache

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// NormalizeExclusions sorts and deduplicates an exclusion list so that two
// requests carrying the same exclusion set (in any order, with repeats)
// map to the same cache key.
func NormalizeExclusions(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ExclusionDigest returns a deterministic digest of a normalized exclusion
// list. Two different exclusion sets must never share a digest within a
// user's key space; xxhash64 over the NUL-joined ids is sufficient at that
// scale.
func ExclusionDigest(normalized []string) string {
	h := xxhash.New()
	for _, id := range normalized {
		_, _ = h.WriteString(id)
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// MatchKey builds the cache key for a match request. The exclusion digest
// is part of the key on purpose: a result computed against a smaller
// exclusion set must never be served for a broader one.
func MatchKey(userID string, limit int, exclusionDigest string) string {
	return fmt.Sprintf("matches:%s:%d:%s", userID, limit, exclusionDigest)
}
