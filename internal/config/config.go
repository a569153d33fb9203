package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stok düşüm modları
const (
	DeductionModeBestEffort = "best_effort" // her kalem kendi başına yazılır, hata öncesi kalemler kalır
	DeductionModeAtomic     = "atomic"      // tüm sipariş tek transaction içinde
)

const defaultDatabaseDSN = "host=localhost user=postgres password=postgres dbname=venue port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	LogLevel    string
	LogEncoding string

	DeductionMode string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockNamespace string // redis kilit anahtarlarının ön eki
	OrderLockTTL  time.Duration
}

// Load ortam değişkenlerini (ve varsa .env dosyasını) okuyup Config üretir.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", defaultDatabaseDSN),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogEncoding:   getEnv("LOG_ENCODING", "json"),
		DeductionMode: strings.ToLower(strings.TrimSpace(getEnv("DEDUCTION_MODE", DeductionModeBestEffort))),
		RedisAddr:     strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		LockNamespace: strings.TrimSpace(getEnv("LOCK_NAMESPACE", "venue")),
		OrderLockTTL:  getEnvDuration("ORDER_LOCK_TTL", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET en az 32 karakter olmalıdır")
	}
	switch c.DeductionMode {
	case DeductionModeBestEffort, DeductionModeAtomic:
	default:
		return fmt.Errorf("geçersiz DEDUCTION_MODE: %q", c.DeductionMode)
	}
	if c.OrderLockTTL <= 0 {
		return fmt.Errorf("ORDER_LOCK_TTL pozitif olmalıdır")
	}
	return nil
}

// UsesDefaultDSN production uyarısı için.
func (c *Config) UsesDefaultDSN() bool {
	return c.DatabaseDSN == defaultDatabaseDSN
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
