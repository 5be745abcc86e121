package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"appname"`
	AppEnv  string `json:"appenv"`
	AppPort uint16 `json:"appport"`
	GinMode string `json:"ginmode"`

	MongoURI      string        `json:"mongodb_uri"`
	MongoDatabase string        `json:"mongodb_database"`
	DBTimeout     time.Duration `json:"db_timeout"`

	SessionSecret string        `json:"-"`
	SessionTTL    time.Duration `json:"session_ttl"`

	RedisAddr string `json:"redis_addr"`
	RedisPass string `json:"-"`
	RedisDB   int    `json:"redis_db"`

	// MySQL holds the security audit log only. Empty DBHost disables persistence.
	DBHost string `json:"dbhost"`
	DBPort uint16 `json:"dbport"`
	DBName string `json:"dbname"`
	DBUSER string `json:"dbuser"`
	DBPass string `json:"-"`

	CORSOrigins []string `json:"cors_origins"`
	GeoIPDBPath string   `json:"geoip_db_path"`
	SentryDSN   string   `json:"-"`
	LogLevel    string   `json:"log_level"`

	// TrustedProxies may set X-Forwarded-For; none are trusted by default.
	TrustedProxies []string `json:"trusted_proxies"`
}

var (
	config *Config
	once   sync.Once
)

// LoadConfig loads the environment variables (optionally from a .env file) and
// returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("could not read .env file")
		}
		config = fromEnv()
	})
	return config
}

func fromEnv() *Config {
	appPort, err := strconv.ParseUint(getEnv("APPPORT", "3000"), 10, 16)
	if err != nil || appPort == 0 {
		appPort = 3000
	}
	dbPort, err := strconv.ParseUint(getEnv("DBPORT", "3306"), 10, 16)
	if err != nil {
		dbPort = 3306
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}

	return &Config{
		AppName:        getEnv("APPNAME", "Clinic Care"),
		AppEnv:         getEnv("APPENV", "development"),
		AppPort:        uint16(appPort),
		GinMode:        getEnv("GINMODE", "debug"),
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "clinic_care"),
		DBTimeout:      getDuration("DB_TIMEOUT", 5*time.Second),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		DBHost:         os.Getenv("DBHOST"),
		DBPort:         uint16(dbPort),
		DBName:         os.Getenv("DBNAME"),
		DBUSER:         os.Getenv("DBUSER"),
		DBPass:         os.Getenv("DBPASS"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// IsTest reports whether the app runs under APPENV=test.
func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// IsProduction reports whether the app runs under APPENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.SessionSecret == "" && !c.IsTest() {
		return errors.New("SESSION_SECRET is required")
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 characters in production")
	}
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI is required")
	}
	return nil
}

// ResetConfigForTest drops the singleton so the next LoadConfig re-reads the environment.
func ResetConfigForTest() {
	config = nil
	once = sync.Once{}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
