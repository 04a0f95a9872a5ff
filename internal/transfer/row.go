package transfer

import "strings"

// Row is one spreadsheet record, cells in column order. The first cell
// conventionally holds a timestamp, one configurable index holds a URL.
// Rows are never mutated once read.
type Row []string

// sigSep joins cells into a signature. The unit separator does not occur
// in sheet text, so ["a,b"] and ["a","b"] stay distinct.
const sigSep = "\x1f"

// Signature returns the canonical identity of the row: its exact cell
// values joined in order. Two rows are the same record iff their
// signatures are equal (order- and case-sensitive).
func (r Row) Signature() string {
	return strings.Join(r, sigSep)
}

// Cell returns the cell at idx, or "" when the row is shorter.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}
