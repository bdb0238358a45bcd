package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Load reads the .env file specified by ORGDB_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ORGDB_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is the connection string of the maintenance database used to
// create tenant databases. Tenant pools reuse its host and credentials.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func JWTSecret() string {
	return os.Getenv("JWT_SECRET")
}

// AccessTokenTTL returns the default lifetime of issued access tokens.
// Defaults to 30 minutes if not set.
func AccessTokenTTL() time.Duration {
	return durationOr("ACCESS_TOKEN_TTL", 30*time.Minute)
}

// BcryptCost returns the bcrypt work factor.
// Defaults to bcrypt.DefaultCost; out of range values fall back to the default.
func BcryptCost() int {
	cost, err := strconv.Atoi(os.Getenv("BCRYPT_COST"))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashConcurrency bounds how many bcrypt operations run at once.
// Defaults to GOMAXPROCS.
func HashConcurrency() int {
	n, err := strconv.Atoi(os.Getenv("HASH_CONCURRENCY"))
	if err != nil || n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// RedisAddr returns the Redis address used for provisioning job records.
// Empty means jobs are kept in process memory.
func RedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func RedisDB() int {
	db, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		return 0
	}
	return db
}

// JobTTL returns how long provisioning job records are retained.
// Defaults to 24 hours.
func JobTTL() time.Duration {
	return durationOr("JOB_TTL", 24*time.Hour)
}

// PoolStatsInterval returns how often tenant pool statistics are published.
// Defaults to 30 seconds.
func PoolStatsInterval() time.Duration {
	return durationOr("POOL_STATS_INTERVAL", 30*time.Second)
}

// TenantPoolMaxConns caps connections per tenant pool. Zero keeps the pgxpool default.
func TenantPoolMaxConns() int32 {
	n, err := strconv.ParseInt(os.Getenv("TENANT_POOL_MAX_CONNS"), 10, 32)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
