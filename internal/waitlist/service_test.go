package waitlist

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"waitlist/internal/events"
	"waitlist/internal/models"
	"waitlist/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testListTypes = []string{"이력서1", "이력서2", "기업추천1", "기업추천2"}

func newTestService(t *testing.T) (*Service, *storage.Store, *events.Recorder) {
	t.Helper()
	store, err := storage.Open(storage.Options{
		Driver:          storage.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "waitlist.db"),
		DefaultListType: testListTypes[0],
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	rec := &events.Recorder{}
	svc := New(store, rec, nil, Options{ListTypes: testListTypes, BulkConcurrency: 4})
	return svc, store, rec
}

func register(t *testing.T, svc *Service, name, phone, listType string) models.Entry {
	t.Helper()
	e, err := svc.Register(context.Background(), RegisterInput{Name: name, Phone: phone, ListType: listType})
	require.NoError(t, err)
	return e
}

// aheadOf возвращает ahead записи через проверку статуса по телефону.
func aheadOf(t *testing.T, svc *Service, e models.Entry) int {
	t.Helper()
	res, err := svc.StatusByPhone(context.Background(), e.Phone)
	require.NoError(t, err)
	for _, r := range res {
		if r.ID == e.ID {
			return r.Ahead
		}
	}
	t.Fatalf("entry %d not found by phone %s", e.ID, e.Phone)
	return -1
}

// createdAtByID - снимок ключей сортировки в микросекундах.
func createdAtByID(t *testing.T, store *storage.Store) map[uint]int64 {
	t.Helper()
	all, err := store.List(context.Background(), storage.Filter{})
	require.NoError(t, err)
	out := make(map[uint]int64, len(all))
	for _, e := range all {
		out[e.ID] = e.CreatedAt.UnixMicro()
	}
	return out
}

func TestRegister(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	e, err := svc.Register(ctx, RegisterInput{Name: " Kim ", Phone: "010-1", Years: 3})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, "Kim", e.Name)
	assert.Equal(t, "이력서1", e.ListType, "пустой list_type - очередь по умолчанию")
	assert.Equal(t, models.StatusWaiting, e.Status)
	assert.Equal(t, []string{events.EntryRegistered}, rec.Types())

	_, err = svc.Register(ctx, RegisterInput{Name: "Lee"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(ctx, RegisterInput{Name: "Lee", Phone: "2", ListType: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidListType)
}

func TestListWaitingFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := register(t, svc, "a", "1", "이력서1")
	b := register(t, svc, "b", "2", "이력서1")
	c := register(t, svc, "c", "3", "이력서2")

	_, err := svc.UpdateStatus(ctx, a.ID, models.StatusCompleted)
	require.NoError(t, err)

	all, err := svc.List(ctx, "all")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{b.ID, c.ID, a.ID}, ids(all))

	one, err := svc.List(ctx, "이력서1")
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, a.ID}, ids(one))
}

func ids(entries []models.Entry) []uint {
	out := make([]uint, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestUpdateStatus(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	e := register(t, svc, "a", "1", "이력서1")

	n, err := svc.UpdateStatus(ctx, e.ID, models.StatusCalled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, rec.Types(), events.EntryStatusChanged)

	n, err = svc.UpdateStatus(ctx, 9999, models.StatusCalled)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = svc.UpdateStatus(ctx, e.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRankFollowsCreatedAt(t *testing.T) {
	svc, _, _ := newTestService(t)
	var entries []models.Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, register(t, svc, fmt.Sprintf("u%d", i), fmt.Sprintf("p%d", i), "이력서1"))
	}
	for i, e := range entries {
		assert.Equal(t, i, aheadOf(t, svc, e))
	}
}

func TestPostponeExample(t *testing.T) {
	svc, store, rec := newTestService(t)
	ctx := context.Background()
	e1 := register(t, svc, "first", "p1", "이력서1")
	e2 := register(t, svc, "second", "p2", "이력서1")
	e3 := register(t, svc, "third", "p3", "이력서1")

	res, err := svc.Postpone(ctx, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, Person{ID: e1.ID, Name: "first"}, res.Current)
	assert.Equal(t, Person{ID: e2.ID, Name: "second"}, res.Next)
	assert.Contains(t, rec.Types(), events.EntryPostponed)

	assert.Equal(t, 0, aheadOf(t, svc, e2))
	assert.Equal(t, 1, aheadOf(t, svc, e1))
	assert.Equal(t, 2, aheadOf(t, svc, e3))

	before := createdAtByID(t, store)
	_, err = svc.Postpone(ctx, e3.ID)
	assert.ErrorIs(t, err, ErrNoNextPerson)
	assert.Equal(t, before, createdAtByID(t, store), "неудачный перенос не меняет метки")
}

func TestPostponeSwapsExactlyOneRank(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	var entries []models.Entry
	for i := 0; i < 5; i++ {
		entries = append(entries, register(t, svc, fmt.Sprintf("u%d", i), fmt.Sprintf("p%d", i), "이력서1"))
	}
	before := make(map[uint]int)
	for _, e := range entries {
		before[e.ID] = aheadOf(t, svc, e)
	}

	_, err := svc.Postpone(ctx, entries[1].ID)
	require.NoError(t, err)

	for _, e := range entries {
		got := aheadOf(t, svc, e)
		switch e.ID {
		case entries[1].ID:
			assert.Equal(t, before[e.ID]+1, got)
		case entries[2].ID:
			assert.Equal(t, before[e.ID]-1, got)
		default:
			assert.Equal(t, before[e.ID], got)
		}
	}
}

func TestPostponeSkipsNonWaiting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := register(t, svc, "a", "1", "이력서1")
	b := register(t, svc, "b", "2", "이력서1")
	c := register(t, svc, "c", "3", "이력서1")
	register(t, svc, "other", "4", "이력서2")

	_, err := svc.UpdateStatus(ctx, b.ID, models.StatusCalled)
	require.NoError(t, err)

	res, err := svc.Postpone(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, res.Next.ID, "меняется со следующим ожидающим той же очереди")
}

func TestPostponeNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Postpone(context.Background(), 404)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestPostponeConcurrentKeepsTimestamps(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	var entries []models.Entry
	for i := 0; i < 8; i++ {
		entries = append(entries, register(t, svc, fmt.Sprintf("u%d", i), fmt.Sprintf("p%d", i), "이력서1"))
	}
	before := sortedTimes(createdAtByID(t, store))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(e models.Entry) {
			defer wg.Done()
			_, _ = svc.Postpone(ctx, e.ID)
		}(entries[i%len(entries)])
	}
	wg.Wait()

	after := sortedTimes(createdAtByID(t, store))
	assert.Equal(t, before, after, "переносы только переставляют метки, набор не меняется")
}

func sortedTimes(m map[uint]int64) []int64 {
	out := make([]int64, 0, len(m))
	for _, ts := range m {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestCompletedLeavesRankCounts(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	a := register(t, svc, "a", "1", "이력서1")
	b := register(t, svc, "b", "2", "이력서1")
	c := register(t, svc, "c", "3", "이력서1")
	before := createdAtByID(t, store)

	_, err := svc.UpdateStatus(ctx, a.ID, models.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, 0, aheadOf(t, svc, b))
	assert.Equal(t, 1, aheadOf(t, svc, c))

	res, err := svc.StatusByPhone(ctx, a.Phone)
	require.NoError(t, err)
	assert.Empty(t, res, "завершённая запись в проверке статуса не видна")
	assert.Equal(t, before, createdAtByID(t, store))
}

func TestStatusByPhoneAcrossPartitions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "x", "9", "이력서1")
	register(t, svc, "y", "8", "이력서1")
	mine1 := register(t, svc, "me", "010-5555", "이력서1")
	mine2 := register(t, svc, "me", "010-5555", "기업추천1")

	res, err := svc.StatusByPhone(ctx, "010-5555")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, mine1.ID, res[0].ID)
	assert.Equal(t, 2, res[0].Ahead)
	assert.Equal(t, mine2.ID, res[1].ID)
	assert.Equal(t, 0, res[1].Ahead)

	none, err := svc.StatusByPhone(ctx, "000")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// consulting занимает место в очереди, но выставить его через API нельзя.
func TestConsultingIsActiveButNotSettable(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	c := models.Entry{Name: "c", Phone: "1", ListType: "이력서1", Status: models.StatusConsulting}
	_, err := store.Insert(ctx, &c)
	require.NoError(t, err)
	e := register(t, svc, "e", "2", "이력서1")

	assert.Equal(t, 1, aheadOf(t, svc, e))

	_, err = svc.UpdateStatus(ctx, e.ID, models.StatusConsulting)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBulkUpsert(t *testing.T) {
	svc, store, rec := newTestService(t)
	ctx := context.Background()
	existing := register(t, svc, "old", "010-1", "이력서1")

	res := svc.BulkUpsert(ctx, []RegisterInput{
		{Name: "new name", Phone: "010-1", JobGroup: "design", Years: 4, ListType: "이력서1"},
		{Name: "fresh", Phone: "010-2", ListType: "이력서2"},
		{Name: "no phone"},
		{Name: "bad list", Phone: "010-3", ListType: "nope"},
	})
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Total())
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Index)
	assert.Equal(t, 3, res.Errors[1].Index)
	assert.Contains(t, rec.Types(), events.EntriesImported)

	got, err := store.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "new name", got.Name)
	assert.Equal(t, "design", got.JobGroup)
	assert.True(t, got.CreatedAt.Equal(existing.CreatedAt))

	fresh, err := store.FindByPhone(ctx, "010-2")
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.True(t, fresh[0].CreatedAt.After(existing.CreatedAt))
	assert.Equal(t, "이력서2", fresh[0].ListType)
}

func TestBulkUpsertDuplicatePhonesInBatch(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	rows := make([]RegisterInput, 10)
	for i := range rows {
		rows[i] = RegisterInput{Name: fmt.Sprintf("n%d", i), Phone: "010-7"}
	}
	res := svc.BulkUpsert(ctx, rows)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 9, res.Updated)
	assert.Empty(t, res.Errors)

	all, err := store.FindByPhone(ctx, "010-7")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestQueueView(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := register(t, svc, "Alice", "1", "이력서1")
	b := register(t, svc, "Bob", "2", "이력서1")
	c := register(t, svc, "Carol", "3", "이력서1")
	_, err := svc.UpdateStatus(ctx, a.ID, models.StatusCompleted)
	require.NoError(t, err)

	view, err := svc.Queue(ctx, QueueQuery{ListType: "이력서1", IncludeClosed: true})
	require.NoError(t, err)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, 3, view.Total)
	assert.Nil(t, view.Rows[0].Ahead)
	require.NotNil(t, view.Rows[2].Ahead)
	assert.Equal(t, 1, *view.Rows[2].Ahead)

	filtered, err := svc.Queue(ctx, QueueQuery{ListType: "이력서1", Search: "carol"})
	require.NoError(t, err)
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, c.ID, filtered.Rows[0].ID)
	assert.Equal(t, 3, filtered.Rows[0].Position, "поиск не меняет номер")

	open, err := svc.Queue(ctx, QueueQuery{ListType: "이력서1"})
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID, c.ID}, []uint{open.Rows[0].ID, open.Rows[1].ID})

	_, err = svc.Queue(ctx, QueueQuery{ListType: "nope"})
	assert.ErrorIs(t, err, ErrInvalidListType)
}

func TestStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := register(t, svc, "a", "1", "이력서1")
	register(t, svc, "b", "2", "이력서2")
	_, err := svc.UpdateStatus(ctx, a.ID, models.StatusOnsite)
	require.NoError(t, err)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Total)
	assert.Equal(t, int64(1), st.ByStatus[models.StatusOnsite])
	assert.Equal(t, int64(1), st.ByList["이력서2"][models.StatusWaiting])
	assert.Contains(t, st.ByList, "기업추천2")
}

// seedTiedStore создаёт базу старого вида, где записи одного импорта
// получили одинаковый created_at, и открывает её заново через Migrate.
func seedTiedStore(t *testing.T, rows []models.Entry) (*Service, *storage.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tied.db")

	first, err := storage.Open(storage.Options{Driver: storage.DriverSQLite, Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Migrate(context.Background()))
	require.NoError(t, first.Close())

	raw, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, raw.Create(&rows).Error)
	rawDB, err := raw.DB()
	require.NoError(t, err)
	require.NoError(t, rawDB.Close())

	store, err := storage.Open(storage.Options{Driver: storage.DriverSQLite, Path: path, DefaultListType: testListTypes[0]})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return New(store, nil, nil, Options{ListTypes: testListTypes}), store
}

func TestPostponeWithTiedCreatedAt(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc, store := seedTiedStore(t, []models.Entry{
		{ID: 1, Name: "a", Phone: "p-a", ListType: "이력서1", Status: models.StatusWaiting, CreatedAt: ts},
		{ID: 2, Name: "b", Phone: "p-b", ListType: "이력서1", Status: models.StatusWaiting, CreatedAt: ts},
		{ID: 3, Name: "c", Phone: "p-c", ListType: "이력서1", Status: models.StatusWaiting, CreatedAt: ts.Add(time.Second)},
		{ID: 4, Name: "x", Phone: "p-x", ListType: "이력서2", Status: models.StatusWaiting, CreatedAt: ts},
		{ID: 5, Name: "y", Phone: "p-y", ListType: "이력서2", Status: models.StatusWaiting, CreatedAt: ts},
	})
	ctx := context.Background()

	stamps := createdAtByID(t, store)
	assert.Len(t, uniqueTimes(stamps), len(stamps), "после миграции метки уникальны")

	entries := make(map[string]models.Entry)
	all, err := store.List(ctx, storage.Filter{})
	require.NoError(t, err)
	for _, e := range all {
		entries[e.Name] = e
	}

	// порядок по (created_at, id) сохранён
	assert.Equal(t, 0, aheadOf(t, svc, entries["a"]))
	assert.Equal(t, 1, aheadOf(t, svc, entries["b"]))
	assert.Equal(t, 2, aheadOf(t, svc, entries["c"]))

	res, err := svc.Postpone(ctx, entries["a"].ID)
	require.NoError(t, err)
	assert.Equal(t, entries["b"].ID, res.Next.ID, "обмен с соседом, а не через одного")

	assert.Equal(t, 1, aheadOf(t, svc, entries["a"]))
	assert.Equal(t, 0, aheadOf(t, svc, entries["b"]))
	assert.Equal(t, 2, aheadOf(t, svc, entries["c"]))

	res, err = svc.Postpone(ctx, entries["x"].ID)
	require.NoError(t, err, "x не последний в очереди")
	assert.Equal(t, entries["y"].ID, res.Next.ID)
}

func uniqueTimes(m map[uint]int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(m))
	for _, v := range m {
		out[v] = struct{}{}
	}
	return out
}

func TestBulkMoveWaitsForSourcePartition(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	e := register(t, svc, "mover", "010-9", "이력서1")

	unlock := svc.partitions.Lock("이력서1")
	done := make(chan BulkResult, 1)
	go func() {
		done <- svc.BulkUpsert(ctx, []RegisterInput{{Name: "mover", Phone: "010-9", ListType: "이력서2"}})
	}()

	select {
	case res := <-done:
		unlock()
		t.Fatalf("импорт завершился при занятой исходной очереди: %+v", res)
	case <-time.After(200 * time.Millisecond):
	}

	got, err := store.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "이력서1", got.ListType)

	unlock()
	res := <-done
	assert.Equal(t, 1, res.Updated)

	got, err = store.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "이력서2", got.ListType)
}
