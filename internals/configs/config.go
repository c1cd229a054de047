package configs

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env file not found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	if v := GetEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s=%q is not a number, using %d", key, v, def)
	}
	return def
}

func GetEnvFloat(key string, def float64) float64 {
	if v := GetEnv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[WARN] %s=%q is not a number, using %v", key, v, def)
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	if v := GetEnv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvMillis(key string, def time.Duration) time.Duration {
	return time.Duration(GetEnvInt(key, int(def/time.Millisecond))) * time.Millisecond
}

// =======================
// APP CONFIG
// =======================

type DBConfig struct {
	User          string
	Password      string
	Host          string
	Port          string
	Name          string
	SSLMode       string
	LogLevel      string
	SlowThreshold time.Duration
	AutoMigrate   bool
}

type OpenLibraryConfig struct {
	URL     string // {isbn} is substituted
	Timeout time.Duration
	RPS     float64
	Burst   int
}

type OSSConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	SecurityToken  string
	Bucket         string
	Folder         string
	PresignExpires time.Duration
}

func (c OSSConfig) Configured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

type AppConfig struct {
	Port           string
	StorageDriver  string // postgres | memory
	RequestTimeout time.Duration

	DB          DBConfig
	OpenLibrary OpenLibraryConfig
	OSS         OSSConfig

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	PageDefaultSize int
	PageMaxSize     int

	RateLimitGlobal   int
	RateLimitLogin    int
	RateLimitRegister int
	CorsAllowOrigins  string

	OTLPEndpoint string
	ServiceName  string
}

const DefaultOpenLibraryURL = "https://openlibrary.org/api/books?bibkeys=ISBN:{isbn}&format=json&jscmd=data"

// FromEnv reads every setting once; call after LoadEnv.
func FromEnv() AppConfig {
	cfg := AppConfig{
		Port:           GetEnv("PORT", "3000"),
		StorageDriver:  strings.ToLower(GetEnv("STORAGE_DRIVER", "postgres")),
		RequestTimeout: getEnvMillis("REQUEST_TIMEOUT_MS", 5*time.Second),

		DB: DBConfig{
			User:          GetEnv("DB_USER"),
			Password:      GetEnv("DB_PASSWORD"),
			Host:          GetEnv("DB_HOST", "localhost"),
			Port:          GetEnv("DB_PORT", "5432"),
			Name:          GetEnv("DB_NAME", "bookshelf"),
			SSLMode:       GetEnv("DB_SSLMODE", "disable"),
			LogLevel:      GetEnv("DB_LOG_LEVEL", "warn"),
			SlowThreshold: getEnvMillis("DB_SLOW_THRESHOLD_MS", 200*time.Millisecond),
			AutoMigrate:   GetEnvBool("DB_AUTO_MIGRATE", true),
		},
		OpenLibrary: OpenLibraryConfig{
			URL:     GetEnv("OPEN_LIBRARY_URL", DefaultOpenLibraryURL),
			Timeout: getEnvMillis("OPEN_LIBRARY_TIMEOUT_MS", 5*time.Second),
			RPS:     GetEnvFloat("OPEN_LIBRARY_RPS", 5),
			Burst:   GetEnvInt("OPEN_LIBRARY_BURST", 10),
		},
		OSS: OSSConfig{
			Endpoint:       GetEnv("ALI_OSS_ENDPOINT"),
			AccessKey:      GetEnv("ALI_OSS_ACCESS_KEY"),
			SecretKey:      GetEnv("ALI_OSS_SECRET_KEY"),
			SecurityToken:  GetEnv("ALI_OSS_SECURITY_TOKEN"),
			Bucket:         GetEnv("ALI_OSS_BUCKET"),
			Folder:         GetEnv("ALI_OSS_FOLDER", "uploads"),
			PresignExpires: time.Duration(GetEnvInt("ALI_OSS_PRESIGN_SECONDS", 900)) * time.Second,
		},

		JWTSecret:  GetEnv("JWT_SECRET"),
		JWTTTL:     time.Duration(GetEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute,
		BcryptCost: GetEnvInt("BCRYPT_COST", 10),

		PageDefaultSize: GetEnvInt("PAGE_DEFAULT_SIZE", 20),
		PageMaxSize:     GetEnvInt("PAGE_MAX_SIZE", 100),

		RateLimitGlobal:   GetEnvInt("RATE_LIMIT_GLOBAL", 100),
		RateLimitLogin:    GetEnvInt("RATE_LIMIT_LOGIN", 5),
		RateLimitRegister: GetEnvInt("RATE_LIMIT_REGISTER", 3),
		CorsAllowOrigins:  GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173, http://127.0.0.1:5500"),

		OTLPEndpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  GetEnv("OTEL_SERVICE_NAME", "bookshelf_backend"),
	}

	if cfg.JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set, bearer tokens are disabled")
	} else {
		log.Println("✅ JWT_SECRET loaded")
	}
	if !cfg.OSS.Configured() {
		log.Println("⚠️ ALI_OSS_* not set, file endpoints will answer 503")
	}
	return cfg
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(level string, slow time.Duration) gormLogger.Interface {
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	return &GormLogger{
		SlowThreshold: slow,
		LogLevel:      ParseGormLogLevel(level),
	}
}

func ParseGormLogLevel(level string) gormLogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !isRecordNotFound(err):
		sql, rows := fc()
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		sql, rows := fc()
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		sql, rows := fc()
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gormLogger.ErrRecordNotFound)
}
