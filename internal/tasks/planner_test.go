package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"waitlist/internal/storage"
	"waitlist/internal/waitlist"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanner(t *testing.T, opts Options) *Planner {
	t.Helper()
	store, err := storage.Open(storage.Options{Driver: storage.DriverSQLite, Path: filepath.Join(t.TempDir(), "tasks.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	svc := waitlist.New(store, nil, nil, waitlist.Options{ListTypes: []string{"이력서1"}})
	_, err = svc.Register(context.Background(), waitlist.RegisterInput{Name: "a", Phone: "1"})
	require.NoError(t, err)
	return NewPlanner(svc, store, nil, opts)
}

func TestRegisterJobs(t *testing.T) {
	p := newTestPlanner(t, Options{SummaryCron: "0 */5 * * * *", BackupCron: "0 0 3 * * *"})
	c := cron.New(cron.WithSeconds())
	require.NoError(t, p.Register(c))
	assert.Len(t, c.Entries(), 1, "без BackupDir копирование не планируется")

	p = newTestPlanner(t, Options{SummaryCron: "0 */5 * * * *", BackupCron: "0 0 3 * * *", BackupDir: t.TempDir()})
	c = cron.New(cron.WithSeconds())
	require.NoError(t, p.Register(c))
	assert.Len(t, c.Entries(), 2)

	p = newTestPlanner(t, Options{SummaryCron: "каждые 5 минут"})
	assert.Error(t, p.Register(cron.New(cron.WithSeconds())))
}

func TestBackupDatabase(t *testing.T) {
	dir := t.TempDir()
	p := newTestPlanner(t, Options{BackupDir: dir})

	p.LogQueueSummary()
	p.BackupDatabase()

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
