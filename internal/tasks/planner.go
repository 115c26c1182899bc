package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"waitlist/internal/storage"
	"waitlist/internal/waitlist"

	"github.com/robfig/cron/v3"
)

// jobTimeout ограничивает одну итерацию задачи.
const jobTimeout = time.Minute

// Options - расписания фоновых задач в формате cron с секундами.
type Options struct {
	SummaryCron string
	BackupCron  string
	// BackupDir - каталог снимков sqlite. Пустой выключает резервное копирование.
	BackupDir string
}

// Planner - фоновые задачи листа ожидания.
type Planner struct {
	svc   *waitlist.Service
	store *storage.Store
	log   *slog.Logger
	opts  Options
}

func NewPlanner(svc *waitlist.Service, store *storage.Store, log *slog.Logger, opts Options) *Planner {
	if log == nil {
		log = slog.Default()
	}
	return &Planner{svc: svc, store: store, log: log.With("component", "tasks"), opts: opts}
}

// LogQueueSummary пишет в лог число записей по очередям и статусам.
func (p *Planner) LogQueueSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	st, err := p.svc.Stats(ctx)
	if err != nil {
		p.log.Error("ошибка подсчёта очередей", "error", err)
		return
	}
	for lt, byStatus := range st.ByList {
		p.log.Info("состояние очереди",
			"list_type", lt,
			"waiting", byStatus["waiting"],
			"called", byStatus["called"],
			"onsite", byStatus["onsite"],
			"completed", byStatus["completed"],
		)
	}
	p.log.Info("всего записей", "total", st.Total)
}

// BackupDatabase делает снимок базы в BackupDir.
func (p *Planner) BackupDatabase() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	path, err := p.store.Backup(ctx, p.opts.BackupDir)
	if errors.Is(err, storage.ErrBackupUnsupported) {
		p.log.Warn("резервное копирование доступно только для sqlite", "driver", p.store.Driver())
		return
	}
	if err != nil {
		p.log.Error("ошибка резервного копирования", "error", err)
		return
	}
	p.log.Info("резервная копия создана", "path", path)
}

// Register добавляет задачи в планировщик.
func (p *Planner) Register(c *cron.Cron) error {
	if p.opts.SummaryCron != "" {
		if _, err := c.AddFunc(p.opts.SummaryCron, p.LogQueueSummary); err != nil {
			return fmt.Errorf("ошибка запуска cron-задачи LogQueueSummary %q: %w", p.opts.SummaryCron, err)
		}
	}
	if p.opts.BackupDir != "" && p.opts.BackupCron != "" {
		if _, err := c.AddFunc(p.opts.BackupCron, p.BackupDatabase); err != nil {
			return fmt.Errorf("ошибка запуска cron-задачи BackupDatabase %q: %w", p.opts.BackupCron, err)
		}
	}
	return nil
}

// InitScheduler инициализирует и запускает планировщик cron-задач.
func InitScheduler(p *Planner) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	if err := p.Register(c); err != nil {
		return nil, err
	}
	c.Start()
	p.log.Info("cron-планировщик запущен", "jobs", len(c.Entries()))
	return c, nil
}
