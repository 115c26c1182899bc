package ordering

import (
	"testing"
	"time"

	"waitlist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func entry(id uint, listType, status string, offset time.Duration) models.Entry {
	return models.Entry{ID: id, ListType: listType, Status: status, CreatedAt: base.Add(offset)}
}

func TestRankFollowsOrderingKey(t *testing.T) {
	entries := []models.Entry{
		entry(1, "A", models.StatusWaiting, 3*time.Second),
		entry(2, "A", models.StatusCalled, 1*time.Second),
		entry(3, "A", models.StatusOnsite, 2*time.Second),
		entry(4, "A", models.StatusAbsent, 4*time.Second),
	}

	for _, a := range entries {
		for _, b := range entries {
			if a.ID == b.ID {
				continue
			}
			ra := RankOf(entries, a, models.ActiveStatuses)
			rb := RankOf(entries, b, models.ActiveStatuses)
			assert.Equal(t, Less(a, b), ra < rb, "entries %d and %d", a.ID, b.ID)
		}
	}

	assert.Equal(t, 0, RankOf(entries, entries[1], models.ActiveStatuses))
	assert.Equal(t, 3, RankOf(entries, entries[3], models.ActiveStatuses))
}

func TestRankTieBrokenByID(t *testing.T) {
	entries := []models.Entry{
		entry(7, "A", models.StatusWaiting, 0),
		entry(5, "A", models.StatusWaiting, 0),
	}

	assert.Equal(t, 0, RankOf(entries, entries[1], models.ActiveStatuses))
	assert.Equal(t, 1, RankOf(entries, entries[0], models.ActiveStatuses))
}

func TestRankIgnoresClosedAndOtherPartitions(t *testing.T) {
	entries := []models.Entry{
		entry(1, "A", models.StatusCompleted, 0),
		entry(2, "A", models.StatusCancelled, time.Second),
		entry(3, "B", models.StatusWaiting, 2*time.Second),
		entry(4, "A", models.StatusWaiting, 3*time.Second),
	}

	assert.Equal(t, 0, RankOf(entries, entries[3], models.ActiveStatuses))
}

func TestRankCountsConsultingAsActive(t *testing.T) {
	entries := []models.Entry{
		entry(1, "A", models.StatusConsulting, 0),
		entry(2, "A", models.StatusWaiting, time.Second),
	}

	assert.Equal(t, 1, RankOf(entries, entries[1], models.ActiveStatuses))
	assert.False(t, models.IsAdminStatus(models.StatusConsulting))
}

func TestOrderedViewAndPositions(t *testing.T) {
	entries := []models.Entry{
		entry(1, "A", models.StatusWaiting, 3*time.Second),
		entry(2, "B", models.StatusWaiting, 0),
		entry(3, "A", models.StatusCompleted, 1*time.Second),
		entry(4, "A", models.StatusWaiting, 2*time.Second),
	}

	view := OrderedView(entries, "A")
	require.Len(t, view, 3)
	assert.Equal(t, []uint{3, 4, 1}, []uint{view[0].ID, view[1].ID, view[2].ID})

	pos := Positions(entries, "A")
	assert.Equal(t, map[uint]int{3: 1, 4: 2, 1: 3}, pos)
}

func TestNextWaiting(t *testing.T) {
	entries := []models.Entry{
		entry(1, "A", models.StatusWaiting, 0),
		entry(2, "A", models.StatusCalled, 1*time.Second),
		entry(3, "B", models.StatusWaiting, 2*time.Second),
		entry(4, "A", models.StatusWaiting, 4*time.Second),
		entry(5, "A", models.StatusWaiting, 3*time.Second),
	}

	next, ok := NextWaiting(entries, entries[0])
	require.True(t, ok)
	assert.Equal(t, uint(5), next.ID, "called entries and other lists are skipped")

	_, ok = NextWaiting(entries, entries[3])
	assert.False(t, ok, "last waiting entry has no next")
}
