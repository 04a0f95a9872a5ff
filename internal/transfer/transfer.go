// Package transfer implements the row sync pipeline: select source rows
// by domain and date cursor, drop duplicates, and append the survivors
// to a period-named destination tab.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// SpreadsheetAPI is the remote surface the pipeline runs against.
// Implementations own transport, auth and retries; the pipeline assumes
// calls either succeed or fail outright.
type SpreadsheetAPI interface {
	// ListTabs returns the tab titles of a spreadsheet in sheet order.
	ListTabs(ctx context.Context, spreadsheetID string) ([]string, error)
	// ReadTab returns every row of the named tab.
	ReadTab(ctx context.Context, spreadsheetID string, tab string) ([]Row, error)
	// EnsureTab returns a handle to the named tab, creating it if absent.
	EnsureTab(ctx context.Context, spreadsheetID string, tab string) (*TabHandle, error)
	// AppendRows appends rows after the tab's existing content, in order.
	AppendRows(ctx context.Context, tab *TabHandle, rows []Row) error
	// WriteCell overwrites a single cell, e.g. cellRef "A1".
	WriteCell(ctx context.Context, tab *TabHandle, cellRef string, value string) error
}

// TabNotFoundError is returned when the configured source tab does not
// exist. Available carries the titles that do, to aid correction.
type TabNotFoundError struct {
	SpreadsheetID string
	Tab           string
	Available     []string
}

func (e *TabNotFoundError) Error() string {
	return fmt.Sprintf("tab %q not found in spreadsheet %s (available: %s)",
		e.Tab, e.SpreadsheetID, strings.Join(e.Available, ", "))
}

const (
	// DefaultMetadataCell is where the sync metadata lands on the
	// destination tab.
	DefaultMetadataCell = "A1"

	// metadata is written for the destination sheet owners, who read Russian
	metadataTemplate = "Последняя синхронизация: %s. Перенесено записей: %d"

	// how many URL cells to log at debug level per run
	urlSampleSize = 10

	urlHeader = "URL"
)

// FormatMetadata renders the sync metadata cell value.
func FormatMetadata(completedAt time.Time, appended int) string {
	return fmt.Sprintf(metadataTemplate, completedAt.Format(DateLayout), appended)
}

// Config carries everything one Syncer needs. MetadataCell and Zone
// have working defaults; the rest must be set.
type Config struct {
	SourceSpreadsheetID string
	DestSpreadsheetID   string
	SourceTab           string
	FirstTab            string // seeds the first period tab, see TabResolver
	Domain              string
	URLColumn           int
	MetadataCell        string
	Locale              string         // BCP 47 tag for period tab titles
	Zone                *time.Location // wall clock for tab naming and metadata
}

// Report summarizes one completed run.
type Report struct {
	RunID      string
	SourceRows int
	Matched    int // candidates pre-dedup
	Appended   int
	Cursor     time.Time // zero when the destination had no dated rows
	Tab        string
	Duration   time.Duration
}

// Syncer runs the pipeline against two spreadsheets. It holds no state
// between runs; the destination tab itself is the source of truth for
// what has already been synced.
type Syncer struct {
	api  SpreadsheetAPI
	cfg  Config
	tabs *TabResolver
}

func NewSyncer(api SpreadsheetAPI, cfg Config) *Syncer {
	if cfg.MetadataCell == "" {
		cfg.MetadataCell = DefaultMetadataCell
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	return &Syncer{
		api:  api,
		cfg:  cfg,
		tabs: NewTabResolver(api, NewPeriodNamer(cfg.Locale), cfg.FirstTab),
	}
}

// RunOnce executes one full sync pass. now is supplied by the caller,
// never read from ambient clock state, and is localized to the
// configured zone before it drives tab naming. A run that appends zero
// rows is a success.
func (s *Syncer) RunOnce(ctx context.Context, now time.Time) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	now = now.In(s.cfg.Zone)
	log := slog.With("run", runID)

	log.Info("sync start",
		"sourceTab", s.cfg.SourceTab,
		"domain", s.cfg.Domain,
		"urlColumn", s.cfg.URLColumn)

	sourceTabs, err := s.api.ListTabs(ctx, s.cfg.SourceSpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("list source tabs: %w", err)
	}
	if !slices.Contains(sourceTabs, s.cfg.SourceTab) {
		return nil, &TabNotFoundError{
			SpreadsheetID: s.cfg.SourceSpreadsheetID,
			Tab:           s.cfg.SourceTab,
			Available:     sourceTabs,
		}
	}

	sourceRows, err := s.api.ReadTab(ctx, s.cfg.SourceSpreadsheetID, s.cfg.SourceTab)
	if err != nil {
		return nil, fmt.Errorf("read source tab %q: %w", s.cfg.SourceTab, err)
	}
	log.Info("source read", "rows", humanize.Comma(int64(len(sourceRows))))

	s.checkHeaderHint(log, sourceRows)
	s.logSampleURLs(log, sourceRows)

	destTab, err := s.tabs.Resolve(ctx, s.cfg.DestSpreadsheetID, now)
	if err != nil {
		return nil, fmt.Errorf("resolve destination tab: %w", err)
	}

	destRows, err := s.api.ReadTab(ctx, s.cfg.DestSpreadsheetID, destTab.Title)
	if err != nil {
		return nil, fmt.Errorf("read destination tab %q: %w", destTab.Title, err)
	}

	cursor := ComputeCursor(destRows)
	if cursor.IsZero() {
		log.Info("destination has no dated rows, accepting all source rows", "tab", destTab.Title)
	} else {
		log.Info("cursor computed", "tab", destTab.Title, "cursor", cursor.Format(DateLayout))
	}

	candidates, stats := SelectCandidates(sourceRows, s.cfg.Domain, s.cfg.URLColumn, cursor)
	log.Info("source filtered",
		"scanned", stats.Scanned,
		"noURL", stats.NoURL,
		"otherHost", stats.OtherHost,
		"stale", stats.Stale,
		"matched", stats.Matched)

	fresh := Dedup(candidates, destRows)
	if dropped := len(candidates) - len(fresh); dropped > 0 {
		log.Info("duplicates dropped", "count", dropped)
	}

	if len(fresh) > 0 {
		if err := s.api.AppendRows(ctx, destTab, fresh); err != nil {
			return nil, fmt.Errorf("append %d rows to tab %q: %w", len(fresh), destTab.Title, err)
		}
	}

	meta := FormatMetadata(time.Now().In(s.cfg.Zone), len(fresh))
	if err := s.api.WriteCell(ctx, destTab, s.cfg.MetadataCell, meta); err != nil {
		return nil, fmt.Errorf("write metadata to tab %q: %w", destTab.Title, err)
	}

	report := &Report{
		RunID:      runID,
		SourceRows: len(sourceRows),
		Matched:    len(candidates),
		Appended:   len(fresh),
		Cursor:     cursor,
		Tab:        destTab.Title,
		Duration:   time.Since(start),
	}

	log.Info("sync done",
		"tab", report.Tab,
		"appended", humanize.Comma(int64(report.Appended)),
		"took", report.Duration.Round(time.Millisecond))

	return report, nil
}

// checkHeaderHint warns when the source header row names a URL column
// at an index other than the configured one, or when the header is too
// narrow for it. The configured index always wins; this is a log-only
// aid for operators.
func (s *Syncer) checkHeaderHint(log *slog.Logger, rows []Row) {
	if len(rows) == 0 {
		return
	}

	header := rows[0]
	for i, cell := range header {
		if cell == urlHeader && i != s.cfg.URLColumn {
			log.Warn("header names a URL column at a different index, keeping configured",
				"header", i, "configured", s.cfg.URLColumn)
			return
		}
	}

	if len(header) <= s.cfg.URLColumn {
		log.Warn("configured URL column is beyond the header width",
			"configured", s.cfg.URLColumn, "columns", len(header))
	}
}

func (s *Syncer) logSampleURLs(log *slog.Logger, rows []Row) {
	for i, row := range rows {
		if i == urlSampleSize {
			break
		}
		log.Debug("sample url", "row", i+1, "url", row.Cell(s.cfg.URLColumn))
	}
}
