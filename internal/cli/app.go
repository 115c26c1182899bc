package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"waitlist/internal/config"
	"waitlist/internal/events"
	"waitlist/internal/logger"
	"waitlist/internal/storage"
	"waitlist/internal/waitlist"
)

// app - собранные зависимости процесса.
type app struct {
	cfg       config.Config
	log       *slog.Logger
	store     *storage.Store
	publisher events.Publisher
	svc       *waitlist.Service
}

// bootstrap читает конфигурацию, открывает базу и выполняет миграцию.
func bootstrap(ctx context.Context) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	store, err := storage.Open(storage.Options{
		Driver:          cfg.DBDriver,
		Path:            cfg.DBPath,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		Name:            cfg.DBName,
		DefaultListType: cfg.DefaultListType,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ошибка при миграции: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange, log)
		if err != nil {
			// Лист ожидания работает и без брокера.
			log.Warn("rabbitmq недоступен, события не публикуются", "error", err)
		} else {
			pub = p
		}
	}

	svc := waitlist.New(store, pub, log, waitlist.Options{
		ListTypes:       cfg.ListTypes,
		DefaultListType: cfg.DefaultListType,
		BulkConcurrency: cfg.BulkConcurrency,
	})

	return &app{cfg: cfg, log: log, store: store, publisher: pub, svc: svc}, nil
}

func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Warn("ошибка закрытия publisher", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("ошибка закрытия базы", "error", err)
	}
}
