package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// TabHandle identifies one tab of a spreadsheet. SheetID is the
// backend's immutable numeric id; Title is the display name used in
// cell ranges.
type TabHandle struct {
	SpreadsheetID string
	SheetID       int64
	Title         string
}

var periodLocales = []language.Tag{
	language.Russian, // the destination sheets are operated in Russian
	language.English,
}

var periodMatcher = language.NewMatcher(periodLocales)

// month names in nominative case, exactly as tab titles are written
var monthTables = map[language.Tag][12]string{
	language.Russian: {
		"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
	},
	language.English: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

// PeriodNamer renders and recognizes "<Month> <year>" tab titles in one
// locale. Use NewPeriodNamer; the zero value has no month table.
type PeriodNamer struct {
	months [12]string
}

// NewPeriodNamer picks the month table best matching the BCP 47 locale
// tag. Unknown or empty locales fall back to Russian.
func NewPeriodNamer(locale string) *PeriodNamer {
	_, idx := language.MatchStrings(periodMatcher, locale)
	return &PeriodNamer{months: monthTables[periodLocales[idx]]}
}

// Format renders the period tab title for the month containing t.
func (n *PeriodNamer) Format(t time.Time) string {
	return fmt.Sprintf("%s %d", n.months[t.Month()-1], t.Year())
}

// Parse reports whether title is a period tab title and returns the
// first instant of that period when it is.
func (n *PeriodNamer) Parse(title string) (time.Time, bool) {
	fields := strings.Fields(title)
	if len(fields) != 2 {
		return time.Time{}, false
	}

	month := 0
	for i, name := range n.months {
		if strings.EqualFold(fields[0], name) {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// TabResolver maps a point in time to the destination tab holding that
// period's rows, creating the tab when absent.
type TabResolver struct {
	api      SpreadsheetAPI
	namer    *PeriodNamer
	firstTab string
}

func NewTabResolver(api SpreadsheetAPI, namer *PeriodNamer, firstTab string) *TabResolver {
	return &TabResolver{
		api:      api,
		namer:    namer,
		firstTab: firstTab,
	}
}

// Resolve returns a handle to the destination tab for the period
// containing when. A destination that has no period tabs yet gets the
// configured first tab instead of a clock-derived one, so the very
// first sync lands where the sheet owners expect it; from then on
// titles derive purely from when. Creation goes through EnsureTab, so
// resolving the same period twice never creates two tabs.
func (r *TabResolver) Resolve(ctx context.Context, spreadsheetID string, when time.Time) (*TabHandle, error) {
	title := r.namer.Format(when)

	if r.firstTab != "" && title != r.firstTab {
		titles, err := r.api.ListTabs(ctx, spreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("list destination tabs: %w", err)
		}
		if !r.hasPeriodTab(titles) {
			slog.Debug("destination has no period tabs, seeding first tab", "tab", r.firstTab)
			title = r.firstTab
		}
	}

	handle, err := r.api.EnsureTab(ctx, spreadsheetID, title)
	if err != nil {
		return nil, fmt.Errorf("ensure tab %q: %w", title, err)
	}
	return handle, nil
}

func (r *TabResolver) hasPeriodTab(titles []string) bool {
	for _, title := range titles {
		if title == r.firstTab {
			return true
		}
		if _, ok := r.namer.Parse(title); ok {
			return true
		}
	}
	return false
}
