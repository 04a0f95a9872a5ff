package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedup(t *testing.T) {
	t.Run("rows already at destination are dropped", func(t *testing.T) {
		existing := []Row{
			{"2025-05-01 10:00:00", "http://forum-info.ru/a"},
		}
		candidates := []Row{
			{"2025-05-01 10:00:00", "http://forum-info.ru/a"},
			{"2025-05-02 10:00:00", "http://forum-info.ru/b"},
		}

		fresh := Dedup(candidates, existing)

		assert.Equal(t, []Row{candidates[1]}, fresh)
	})

	t.Run("identical candidates collapse to the first", func(t *testing.T) {
		candidates := []Row{
			{"2025-05-02 10:00:00", "http://forum-info.ru/b"},
			{"2025-05-02 10:00:00", "http://forum-info.ru/b"},
		}

		fresh := Dedup(candidates, nil)

		assert.Len(t, fresh, 1)
	})

	t.Run("comparison is exact, not fuzzy", func(t *testing.T) {
		existing := []Row{{"a", "b"}}

		fresh := Dedup([]Row{{"a,b"}, {"A", "b"}, {"a", "b"}}, existing)

		assert.Equal(t, []Row{{"a,b"}, {"A", "b"}}, fresh)
	})

	t.Run("order preserved", func(t *testing.T) {
		candidates := []Row{{"3"}, {"1"}, {"2"}, {"1"}}

		fresh := Dedup(candidates, nil)

		assert.Equal(t, []Row{{"3"}, {"1"}, {"2"}}, fresh)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, Dedup(nil, nil))
		assert.Empty(t, Dedup(nil, []Row{{"a"}}))
	})
}
