package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelectCandidates(t *testing.T) {
	domain := "forum-info.ru"

	t.Run("domain and cursor combined, order preserved", func(t *testing.T) {
		cursor := mustTime(t, "2025-05-01 00:00:00")

		// header, newer match, stale match, wrong host, missing url,
		// undateable match, newer match
		rows := []Row{
			{"Дата", "URL"},
			{"2025-06-02 10:00:00", "http://forum-info.ru/a"},
			{"2025-04-01 12:00:00", "http://forum-info.ru/b"},
			{"2025-06-03 10:00:00", "http://other.ru/c"},
			{"2025-06-04 10:00:00", ""},
			{"not a date", "https://sub.forum-info.ru/d"},
			{"2025-07-01 00:00:00", "https://forum-info.ru/e"},
		}

		got, stats := SelectCandidates(rows, domain, 1, cursor)

		assert.Equal(t, []Row{rows[1], rows[6]}, got)
		assert.Equal(t, FilterStats{
			Scanned:   7,
			NoURL:     1,
			OtherHost: 2,
			Stale:     2,
			Matched:   2,
		}, stats)
	})

	t.Run("bootstrap accepts undateable matches", func(t *testing.T) {
		rows := []Row{
			{"not a date", "http://forum-info.ru/a"},
			{"", "http://forum-info.ru/b"},
		}

		got, stats := SelectCandidates(rows, domain, 1, time.Time{})

		assert.Len(t, got, 2)
		assert.Equal(t, 2, stats.Matched)
	})

	t.Run("out of range url column matches nothing", func(t *testing.T) {
		rows := []Row{{"2025-06-02 10:00:00", "http://forum-info.ru/a"}}

		got, stats := SelectCandidates(rows, domain, 9, time.Time{})

		assert.Empty(t, got)
		assert.Equal(t, 1, stats.NoURL)
	})

	t.Run("input rows are not mutated", func(t *testing.T) {
		rows := []Row{{"2025-06-02 10:00:00", "http://forum-info.ru/a"}}

		got, _ := SelectCandidates(rows, domain, 1, time.Time{})

		assert.Equal(t, Row{"2025-06-02 10:00:00", "http://forum-info.ru/a"}, rows[0])
		assert.Equal(t, rows[0], got[0])
	})
}
