package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"waitlist/internal/auth"
	"waitlist/internal/config"
	"waitlist/internal/handlers"
	"waitlist/internal/logger"
	"waitlist/internal/ratelimit"
	"waitlist/internal/storage"
	"waitlist/internal/waitlist"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps - зависимости HTTP-слоя.
type Deps struct {
	Config  config.Config
	Service *waitlist.Service
	Store   *storage.Store
	Auth    *auth.Authenticator
	Limiter *ratelimit.Limiter
	Log     *slog.Logger
}

// NewRouter собирает маршруты API.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(d.Log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader, "Retry-After"},
		AllowCredentials: !allowsAny(d.Config.CORSOrigins),
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", healthHandler(d.Store))

	wh := handlers.NewWaitlistHandler(d.Service, d.Log)
	ah := handlers.NewAuthHandler(d.Auth)
	limit := d.Limiter.Middleware()
	admin := d.Auth.Middleware()

	api := r.Group(d.Config.APIPrefix)
	{
		api.POST("/auth/login", limit, ah.Login)
		api.GET("/list-types", wh.ListTypesHandler)

		// Публичные: участники регистрируются и проверяют свою позицию.
		api.POST("/waitlist", limit, wh.RegisterHandler)
		api.GET("/waitlist/status/:phone", limit, wh.StatusByPhoneHandler)

		adm := api.Group("/waitlist", admin)
		{
			adm.GET("", wh.ListHandler)
			adm.POST("/bulk", wh.BulkHandler)
			adm.GET("/stats", wh.StatsHandler)
			adm.GET("/queue/:list_type", wh.QueueHandler)
			adm.PUT("/:id", wh.UpdateStatusHandler)
			adm.PUT("/:id/postpone", wh.PostponeHandler)
		}
	}

	return r
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func healthHandler(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "driver": store.Driver()})
	}
}

// Run обслуживает запросы до отмены ctx, затем даёт активным запросам завершиться.
func Run(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("сервер запущен", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
