// Package cli - команды процесса: сервер, миграция и импорт из файла.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"waitlist/internal/auth"
	"waitlist/internal/ratelimit"
	"waitlist/internal/server"
	"waitlist/internal/storage"
	"waitlist/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// Execute запускает корневую команду.
func Execute() {
	if err := NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRoot собирает дерево команд. Без подкоманды запускается сервер.
func NewRoot() *cobra.Command {
	serve := newServeCommand()
	root := &cobra.Command{
		Use:           "waitlist",
		Short:         "Лист ожидания мероприятия",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCommand(), newImportCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Запустить HTTP API",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	authn, err := auth.New(a.cfg.AdminPassword, []byte(a.cfg.JWTSecret), a.cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	if !authn.Enabled() {
		a.log.Warn("ADMIN_PASSWORD не задан, админские эндпоинты открыты")
	}

	var limiter *ratelimit.Limiter
	if a.cfg.RateLimit.Enabled {
		rdb, err := storage.NewRedisClient(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
		if err != nil {
			a.log.Warn("redis недоступен, ограничение частоты выключено", "error", err)
		}
		if rdb != nil {
			defer rdb.Close()
		}
		limiter = ratelimit.New(rdb, a.cfg.RateLimit.Limit, a.cfg.RateLimit.Window, a.cfg.RateLimit.Prefix, a.log)
	}

	planner := tasks.NewPlanner(a.svc, a.store, a.log, tasks.Options{
		SummaryCron: a.cfg.SummaryCron,
		BackupCron:  a.cfg.BackupCron,
		BackupDir:   a.cfg.BackupDir,
	})
	scheduler, err := tasks.InitScheduler(planner)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	if a.cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.Deps{
		Config:  a.cfg,
		Service: a.svc,
		Store:   a.store,
		Auth:    authn,
		Limiter: limiter,
		Log:     a.log,
	})

	err = server.Run(ctx, net.JoinHostPort("", a.cfg.Port), router, a.log)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	}
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Создать или обновить схему базы и выйти",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			a.log.Info("миграция выполнена", "driver", a.store.Driver())
			return nil
		},
	}
}
