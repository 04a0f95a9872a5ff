package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodNamer(t *testing.T) {
	june := mustTime(t, "2025-06-15 12:00:00")

	t.Run("russian is the default", func(t *testing.T) {
		assert.Equal(t, "Июнь 2025", NewPeriodNamer("").Format(june))
		assert.Equal(t, "Июнь 2025", NewPeriodNamer("ru").Format(june))
		assert.Equal(t, "Июнь 2025", NewPeriodNamer("ru-RU").Format(june))
		assert.Equal(t, "Июнь 2025", NewPeriodNamer("de").Format(june))
	})

	t.Run("english table", func(t *testing.T) {
		assert.Equal(t, "June 2025", NewPeriodNamer("en").Format(june))
		assert.Equal(t, "June 2025", NewPeriodNamer("en-US").Format(june))
	})

	t.Run("format and parse round trip", func(t *testing.T) {
		namer := NewPeriodNamer("ru")
		for month := time.January; month <= time.December; month++ {
			at := time.Date(2025, month, 10, 8, 30, 0, 0, time.UTC)
			parsed, ok := namer.Parse(namer.Format(at))
			require.True(t, ok, namer.Format(at))
			assert.Equal(t, time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC), parsed)
		}
	})

	t.Run("parse rejects non period titles", func(t *testing.T) {
		namer := NewPeriodNamer("ru")
		for _, title := range []string{"", "Лист1", "Май", "Май 2025 копия", "Sheet 2025", "Май abcd"} {
			_, ok := namer.Parse(title)
			assert.False(t, ok, title)
		}
	})

	t.Run("parse folds case", func(t *testing.T) {
		namer := NewPeriodNamer("ru")
		parsed, ok := namer.Parse("май 2025")
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), parsed)
	})
}

func TestTabResolver(t *testing.T) {
	june := mustTime(t, "2025-06-15 12:00:00")
	may := mustTime(t, "2025-05-02 10:00:00")

	t.Run("get or create is idempotent", func(t *testing.T) {
		api := newFakeSheets()
		api.addTab("dst", "Лист1")

		resolver := NewTabResolver(api, NewPeriodNamer("ru"), "Май 2025")
		first, err := resolver.Resolve(context.Background(), "dst", may)
		require.NoError(t, err)
		second, err := resolver.Resolve(context.Background(), "dst", may)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, api.created)
		assert.Equal(t, []string{"Лист1", "Май 2025"}, api.tabs["dst"])
	})

	t.Run("derives from calendar time once a period tab exists", func(t *testing.T) {
		api := newFakeSheets()
		api.addTab("dst", "Май 2025")

		resolver := NewTabResolver(api, NewPeriodNamer("ru"), "Май 2025")
		handle, err := resolver.Resolve(context.Background(), "dst", june)

		require.NoError(t, err)
		assert.Equal(t, "Июнь 2025", handle.Title)
		assert.Equal(t, 1, api.created)
	})

	t.Run("fresh destination gets the configured first tab", func(t *testing.T) {
		api := newFakeSheets()
		api.addTab("dst", "Лист1")

		resolver := NewTabResolver(api, NewPeriodNamer("ru"), "Май 2025")
		handle, err := resolver.Resolve(context.Background(), "dst", june)

		require.NoError(t, err)
		assert.Equal(t, "Май 2025", handle.Title)
		assert.Equal(t, 1, api.created)
	})

	t.Run("no first tab configured derives directly", func(t *testing.T) {
		api := newFakeSheets()
		api.addTab("dst", "Лист1")

		resolver := NewTabResolver(api, NewPeriodNamer("ru"), "")
		handle, err := resolver.Resolve(context.Background(), "dst", june)

		require.NoError(t, err)
		assert.Equal(t, "Июнь 2025", handle.Title)
	})
}
