package transfer

import "time"

// FilterStats counts what SelectCandidates saw in one pass over the
// source. The counts feed run logs; selection depends only on the
// domain and cursor checks.
type FilterStats struct {
	Scanned   int // rows inspected
	NoURL     int // URL cell missing or empty
	OtherHost int // URL points at another domain
	Stale     int // domain matches rejected by the cursor
	Matched   int // rows selected
}

// SelectCandidates returns, in source order, the rows whose URL cell
// matches domain and whose record date passes the cursor check. The
// input is never mutated; the result aliases the input rows.
func SelectCandidates(rows []Row, domain string, urlColumn int, cursor time.Time) ([]Row, FilterStats) {
	var stats FilterStats
	candidates := make([]Row, 0, len(rows))

	for _, row := range rows {
		stats.Scanned++

		url := row.Cell(urlColumn)
		if url == "" {
			stats.NoURL++
			continue
		}
		if !MatchesDomain(url, domain) {
			stats.OtherHost++
			continue
		}
		if !IsNewer(row, cursor) {
			stats.Stale++
			continue
		}

		stats.Matched++
		candidates = append(candidates, row)
	}

	return candidates, stats
}
