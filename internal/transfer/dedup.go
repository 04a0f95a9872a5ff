package transfer

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Dedup drops candidates whose signature already exists at the
// destination and collapses repeats within the batch to their first
// occurrence. Order is preserved. This is the second safety net next
// to the cursor: even if two rows share a timestamp, or a failed run
// is retried after a partial append, no row lands twice.
func Dedup(candidates []Row, existing []Row) []Row {
	seen := mapset.NewSet[string]()
	for _, row := range existing {
		seen.Add(row.Signature())
	}

	fresh := make([]Row, 0, len(candidates))
	for _, row := range candidates {
		if seen.Add(row.Signature()) {
			fresh = append(fresh, row)
		}
	}
	return fresh
}
