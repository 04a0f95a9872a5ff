package sheetsapi

import (
	"fmt"
	"strconv"
	"strings"

	"sheetsync/internal/transfer"
)

// QuoteTitle renders a tab title for use in an A1 range. Titles are
// always quoted so names like "A1" or "Май 2025" stay unambiguous;
// embedded single quotes are doubled.
func QuoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// Range renders "'<title>'!<ref>", or just the quoted title when ref is
// empty, which addresses the whole tab.
func Range(title, ref string) string {
	if ref == "" {
		return QuoteTitle(title)
	}
	return QuoteTitle(title) + "!" + ref
}

// toRows converts loosely typed API cells into string rows. Formatted
// reads return strings, but numbers and bools can still appear on tabs
// with typed cells.
func toRows(values [][]any) []transfer.Row {
	rows := make([]transfer.Row, 0, len(values))
	for _, cells := range values {
		row := make(transfer.Row, 0, len(cells))
		for _, cell := range cells {
			row = append(row, cellString(cell))
		}
		rows = append(rows, row)
	}
	return rows
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		if c {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

func rowsPayload(rows []transfer.Row) *valuesBody {
	values := make([][]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row)
	}
	return &valuesBody{Values: values}
}
