package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Поддерживаемые драйверы базы данных
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options описывает подключение к хранилищу.
type Options struct {
	Driver   string
	Path     string // файл базы для sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	// DefaultListType проставляется старым записям без list_type при миграции.
	DefaultListType string
	Logger          *slog.Logger
}

// Store - хранилище записей листа ожидания. Открывается при старте процесса
// и закрывается при остановке, глобального экземпляра нет.
type Store struct {
	db              *gorm.DB
	driver          string
	defaultListType string
	log             *slog.Logger
	clock           *clock
}

// Open подключается к базе выбранным драйвером.
func Open(opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	if opts.Driver == DriverSQLite || opts.Driver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Один писатель: sqlite сериализует запись, пул из одного соединения
		// исключает SQLITE_BUSY между горутинами процесса.
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("подключение к базе данных успешно", "driver", driverName(opts.Driver))

	return &Store{
		db:              db,
		driver:          driverName(opts.Driver),
		defaultListType: opts.DefaultListType,
		log:             log,
		clock:           newClock(time.Now),
	}, nil
}

// newGormLogger направляет предупреждения gorm в slog. Отсутствие записи
// обрабатывается вызывающим кодом и в лог не пишется.
func newGormLogger(log *slog.Logger) logger.Interface {
	return logger.New(slog.NewLogLogger(log.Handler(), slog.LevelWarn), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func driverName(d string) string {
	if d == "" {
		return DriverSQLite
	}
	return d
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch driverName(opts.Driver) {
	case DriverSQLite:
		path := opts.Path
		if path == "" {
			path = "waiting_list.db"
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("ошибка создания каталога данных: %w", err)
			}
		}
		return sqlite.Open(path + "?_busy_timeout=5000&_journal_mode=WAL"), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			opts.Host, opts.Port, opts.User, opts.Password, opts.Name)
		return postgres.Open(dsn), nil
	case DriverMySQL:
		auth := opts.User
		if opts.Password != "" {
			auth = fmt.Sprintf("%s:%s", opts.User, opts.Password)
		}
		dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, opts.Host, opts.Port, opts.Name)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("неизвестный DB_DRIVER %q", opts.Driver)
	}
}

// Close закрывает соединение с базой.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Driver возвращает имя используемого драйвера.
func (s *Store) Driver() string { return s.driver }

// Ping проверяет доступность базы.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction выполняет fn в одной транзакции. Store, переданный в fn,
// привязан к транзакции; ошибка из fn откатывает все изменения.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.withDB(tx))
	})
}

func (s *Store) withDB(db *gorm.DB) *Store {
	cp := *s
	cp.db = db
	return &cp
}

// ErrBackupUnsupported возвращается при попытке снять копию не-sqlite базы.
var ErrBackupUnsupported = errors.New("резервное копирование доступно только для sqlite")

// Backup сохраняет согласованную копию файла sqlite в каталог dir.
func (s *Store) Backup(ctx context.Context, dir string) (string, error) {
	if s.driver != DriverSQLite {
		return "", ErrBackupUnsupported
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога копий: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("waiting_list-%s.db", time.Now().UTC().Format("20060102-150405")))
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", path).Error; err != nil {
		return "", fmt.Errorf("ошибка резервного копирования: %w", err)
	}
	return path, nil
}

// clock выдаёт строго возрастающие метки времени с точностью до микросекунды,
// чтобы две вставки в одном процессе не получили одинаковый ключ сортировки.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newClock(now func() time.Time) *clock {
	return &clock{now: now}
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

func (c *clock) observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.last) {
		c.last = t.UTC()
	}
}
