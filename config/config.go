package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string
	RedisAddr string

	MongoMaxPoolSize     uint64
	MongoConnectAttempts int
	MongoConnectTimeout  time.Duration

	RequestTimeout  time.Duration
	CheckoutTimeout time.Duration

	CheckoutRateLimit  int
	ContactRateLimit   int
	LoginRateLimit     int
	RateLimitWindow    time.Duration
}

func LoadEnv() {
	_ = godotenv.Load()
}

func Load() Config {
	return Config{
		Port:      GetEnv("PORT", "8080"),
		MongoURI:  GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    GetEnv("DB_NAME", "storefront"),
		JWTSecret: GetEnv("JWT_SECRET", ""),
		RedisAddr: GetEnv("REDIS_ADDR", "localhost:6379"),

		MongoMaxPoolSize:     uint64(getInt("MONGO_MAX_POOL_SIZE", 16)),
		MongoConnectAttempts: getInt("MONGO_CONNECT_ATTEMPTS", 5),
		MongoConnectTimeout:  getDuration("MONGO_CONNECT_TIMEOUT", 5*time.Second),

		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 5*time.Second),
		CheckoutTimeout: getDuration("CHECKOUT_TIMEOUT", 10*time.Second),

		CheckoutRateLimit: getInt("CHECKOUT_RATE_LIMIT", 10),
		ContactRateLimit:  getInt("CONTACT_RATE_LIMIT", 5),
		LoginRateLimit:    getInt("LOGIN_RATE_LIMIT", 20),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
