package configs

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	JWTSecret      string
	AgentJWTSecret string

	SmsGatewayURL string
	SmsGatewayKey string
	SmsSenderID   string

	SmtpHost string
	SmtpPort string
	SmtpUser string
	SmtpPass string
	SmtpFrom string

	RedisAddr     string
	RedisPassword string

	IdentitySourceURL string
	IdentitySourceKey string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	AgentJWTSecret = GetEnv("AGENT_JWT_SECRET")

	SmsGatewayURL = GetEnv("SMS_GATEWAY_URL")
	SmsGatewayKey = GetEnv("SMS_GATEWAY_KEY")
	SmsSenderID = GetEnv("SMS_SENDER_ID", "Absensiku")

	SmtpHost = GetEnv("SMTP_HOST")
	SmtpPort = GetEnv("SMTP_PORT", "587")
	SmtpUser = GetEnv("SMTP_USER")
	SmtpPass = GetEnv("SMTP_PASS")
	SmtpFrom = GetEnv("SMTP_FROM")

	RedisAddr = GetEnv("REDIS_ADDR")
	RedisPassword = GetEnv("REDIS_PASSWORD")

	IdentitySourceURL = GetEnv("IDENTITY_SOURCE_URL")
	IdentitySourceKey = GetEnv("IDENTITY_SOURCE_KEY")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	}
	if AgentJWTSecret == "" {
		log.Println("❌ AGENT_JWT_SECRET belum diset! Endpoint agent akan menolak semua request.")
	}
	if SmsGatewayURL == "" {
		log.Println("⚠️ SMS_GATEWAY_URL kosong → channel SMS dianggap tidak tersedia")
	}
	if SmtpHost == "" {
		log.Println("⚠️ SMTP_HOST kosong → channel email dianggap tidak tersedia")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// GetEnvDuration membaca durasi (mis. "10m"); fallback ke default jika kosong/invalid.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("⚠️ %s tidak valid (%q), pakai default %s", key, v, def)
	}
	return def
}

func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[INFO] "+msg, data...)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[WARN] "+msg, data...)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	log.Printf("[ERROR] "+msg, data...)
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	if err != nil {
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	} else if elapsed > l.SlowThreshold {
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
