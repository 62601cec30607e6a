package conversation

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// DedupThreads keeps one thread per dedup key, the most recent one, and
// orders the result by recency descending. Equal recency is broken by the
// greater thread id, so the result is deterministic and DedupThreads is
// idempotent.
func DedupThreads(threads []RemoteThread) []RemoteThread {
	best := make(map[string]RemoteThread, len(threads))
	for _, t := range threads {
		key := t.DedupKey()
		if cur, ok := best[key]; !ok || moreRecent(t, cur) {
			best[key] = t
		}
	}

	out := lo.Values(best)
	slices.SortFunc(out, func(a, b RemoteThread) int {
		switch {
		case moreRecent(a, b):
			return -1
		case moreRecent(b, a):
			return 1
		default:
			return 0
		}
	})

	return out
}

func moreRecent(a, b RemoteThread) bool {
	ra, rb := a.Recency(), b.Recency()
	if !ra.Equal(rb) {
		return ra.After(rb)
	}
	return strings.Compare(a.Thread.ID, b.Thread.ID) > 0
}
