package sync

import (
	"sort"
	"time"

	"golf-tracker/internal/constants"
	"golf-tracker/internal/domain"
	"golf-tracker/internal/handicap"
)

// Merge reconciles a local and a remote snapshot into a single collection.
//
// Rounds are keyed exclusively on ID. A round present on only one side is
// kept unchanged. A round present on both sides is resolved by recency:
// the copy with the strictly later effective timestamp wins, and the remote
// copy wins exact ties. The result is ordered by datePlayed descending,
// trimmed to the retention cap, and gets its derived fields recomputed from
// scratch.
//
// Deletions are not tracked: a round deleted locally but still present
// remotely reappears after a merge.
func Merge(local, remote *domain.RoundCollection) *domain.RoundCollection {
	remoteByID := make(map[string]domain.Round, len(remote.Rounds))
	for _, r := range remote.Rounds {
		remoteByID[r.ID] = r
	}

	merged := make([]domain.Round, 0, len(local.Rounds)+len(remote.Rounds))
	seen := make(map[string]bool, len(local.Rounds))
	for _, lr := range local.Rounds {
		seen[lr.ID] = true
		rr, ok := remoteByID[lr.ID]
		if !ok {
			merged = append(merged, lr)
			continue
		}
		if lr.EffectiveTimestamp().After(rr.EffectiveTimestamp()) {
			merged = append(merged, lr)
		} else {
			merged = append(merged, rr)
		}
	}
	for _, rr := range remote.Rounds {
		if !seen[rr.ID] {
			merged = append(merged, rr)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DatePlayed.After(merged[j].DatePlayed)
	})
	if len(merged) > constants.RetentionCap {
		merged = merged[:constants.RetentionCap]
	}

	out := &domain.RoundCollection{
		Rounds:       merged,
		LastModified: time.Now().UTC(),
	}
	handicap.Refresh(out)
	return out
}
