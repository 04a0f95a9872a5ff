package transfer

import "time"

// DateLayout is the record timestamp format in the first cell of every
// data row, e.g. "2025-06-02 10:00:00". Values are naive wall clock
// times, parsed and compared without a zone.
const DateLayout = "2006-01-02 15:04:05"

// RowTime parses the record timestamp in the first cell. ok is false
// for empty rows and for cells that don't conform to DateLayout,
// which covers headers, metadata cells and free text.
func RowTime(row Row) (time.Time, bool) {
	t, err := time.Parse(DateLayout, row.Cell(0))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ComputeCursor scans destination rows and returns the newest record
// timestamp found. The zero time means no cell parsed: the destination
// has no dated rows yet and every source row counts as new.
func ComputeCursor(rows []Row) time.Time {
	var cursor time.Time
	for _, row := range rows {
		if t, ok := RowTime(row); ok && t.After(cursor) {
			cursor = t
		}
	}
	return cursor
}

// IsNewer reports whether row passes the cursor check. A zero cursor
// accepts every row, dateable or not, so a fresh destination gets its
// first sync in full. Once a cursor exists only rows with a timestamp
// strictly after it pass; undateable rows are held back.
func IsNewer(row Row, cursor time.Time) bool {
	if cursor.IsZero() {
		return true
	}
	t, ok := RowTime(row)
	return ok && t.After(cursor)
}
