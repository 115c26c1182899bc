package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultListTypes - четыре очереди мероприятия.
var DefaultListTypes = []string{"이력서1", "이력서2", "기업추천1", "기업추천2"}

// Config - настройки приложения из окружения.
type Config struct {
	Env       string
	Port      string
	APIPrefix string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ListTypes       []string
	DefaultListType string
	BulkConcurrency int

	AdminPassword  string
	JWTSecret      string
	AccessTokenTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateLimit     RateLimitConfig

	RabbitMQURL    string
	EventsExchange string

	SummaryCron string
	BackupCron  string
	BackupDir   string

	LogLevel    string
	LogFormat   string
	CORSOrigins []string
}

// RateLimitConfig - ограничение частоты запросов к публичным эндпоинтам.
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
	Prefix  string
}

// LoadDotEnv подгружает .env, если переменная ENV_CHEK не задана.
// Отсутствие файла не ошибка: значения берутся из окружения.
func LoadDotEnv(paths ...string) error {
	if os.Getenv("ENV_CHEK") != "" {
		return nil
	}
	err := godotenv.Load(paths...)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка получения .env: %w", err)
	}
	return nil
}

// Load собирает Config из переменных окружения с значениями по умолчанию.
func Load() (Config, error) {
	cfg := Config{
		Env:       envStr("APP_ENV", "dev"),
		Port:      envStr("APP_PORT", "3001"),
		APIPrefix: envStr("API_PREFIX", "/api"),

		DBDriver:   envStr("DB_DRIVER", "sqlite"),
		DBPath:     envStr("DB_PATH", "waiting_list.db"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ListTypes:       envList("LIST_TYPES", DefaultListTypes),
		DefaultListType: os.Getenv("DEFAULT_LIST_TYPE"),
		BulkConcurrency: envInt("BULK_CONCURRENCY", 8),

		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:      os.Getenv("JWT_ACCESS_SECRET"),
		AccessTokenTTL: envDur("ACCESS_TOKEN_TTL", 12*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RateLimit: RateLimitConfig{
			Enabled: envBool("RATE_LIMIT_ENABLED", true),
			Limit:   envInt("RATE_LIMIT_LIMIT", 60),
			Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
			Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
		},

		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsExchange: envStr("EVENTS_EXCHANGE", "waitlist.events"),

		SummaryCron: envStr("SUMMARY_CRON", "0 */5 * * * *"),
		BackupCron:  envStr("BACKUP_CRON", "0 0 3 * * *"),
		BackupDir:   os.Getenv("BACKUP_DIR"),

		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogFormat:   envStr("LOG_FORMAT", "json"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),
	}

	if cfg.DefaultListType == "" && len(cfg.ListTypes) > 0 {
		cfg.DefaultListType = cfg.ListTypes[0]
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("для sqlite нужен DB_PATH")
		}
	case "postgres", "mysql":
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("для %s нужны DB_HOST и DB_NAME", c.DBDriver)
		}
	default:
		return fmt.Errorf("неизвестный DB_DRIVER %q", c.DBDriver)
	}

	if len(c.ListTypes) > 0 {
		found := false
		for _, lt := range c.ListTypes {
			if lt == c.DefaultListType {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("DEFAULT_LIST_TYPE %q отсутствует в LIST_TYPES", c.DefaultListType)
		}
	}
	if c.BulkConcurrency < 1 {
		return fmt.Errorf("BULK_CONCURRENCY должен быть положительным")
	}
	return nil
}

// AuthEnabled - включена ли защита админских эндпоинтов паролем.
func (c Config) AuthEnabled() bool { return c.AdminPassword != "" }

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func envList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		out := make([]string, len(d))
		copy(out, d)
		return out
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
