package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Reports   ReportsConfig
	VNPay     VNPayConfig
	Booking   BookingConfig
	CheckIn   CheckInConfig
	WalkIn    WalkInConfig
	Salary    SalaryConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ReportsConfig configures report export generation.
type ReportsConfig struct {
	Enabled           bool
	WorkerConcurrency int
	WorkerRetries     int
	RetryDelay        time.Duration
}

// VNPayConfig carries payment gateway credentials and endpoints.
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Locale     string
}

// BookingConfig tunes class booking behaviour.
type BookingConfig struct {
	CancelCutoff time.Duration
}

// CheckInConfig gates face-assisted check-in.
type CheckInConfig struct {
	FaceEnabled   bool
	FaceThreshold float64
}

// WalkInConfig fixes the single-visit guest price.
type WalkInConfig struct {
	VisitPrice int64
}

// SalaryConfig provides commission fallbacks used until an admin
// stores a configuration row.
type SalaryConfig struct {
	PackageRate           float64
	ClassRate             float64
	PersonalTrainingRate  float64
	MinStudentsForBonus   int
	PerformanceBonus      int64
	MinAttendanceForBonus float64
	AttendanceBonus       int64
	MaxCommissionPerMonth int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("REPORTS_RETRY_DELAY"), 5*time.Second),
	}

	cfg.VNPay = VNPayConfig{
		TmnCode:    v.GetString("VNPAY_TMN_CODE"),
		HashSecret: v.GetString("VNPAY_HASH_SECRET"),
		PayURL:     v.GetString("VNPAY_PAY_URL"),
		ReturnURL:  v.GetString("VNPAY_RETURN_URL"),
		Locale:     v.GetString("VNPAY_LOCALE"),
	}

	cfg.Booking = BookingConfig{
		CancelCutoff: parseDuration(v.GetString("BOOKING_CANCEL_CUTOFF"), 2*time.Hour),
	}

	cfg.CheckIn = CheckInConfig{
		FaceEnabled:   v.GetBool("ENABLE_FACE_CHECKIN"),
		FaceThreshold: v.GetFloat64("FACE_MATCH_THRESHOLD"),
	}

	cfg.WalkIn = WalkInConfig{
		VisitPrice: v.GetInt64("WALKIN_VISIT_PRICE"),
	}

	cfg.Salary = SalaryConfig{
		PackageRate:           v.GetFloat64("COMMISSION_PACKAGE_RATE"),
		ClassRate:             v.GetFloat64("COMMISSION_CLASS_RATE"),
		PersonalTrainingRate:  v.GetFloat64("COMMISSION_PT_RATE"),
		MinStudentsForBonus:   v.GetInt("COMMISSION_MIN_STUDENTS_FOR_BONUS"),
		PerformanceBonus:      v.GetInt64("COMMISSION_PERFORMANCE_BONUS"),
		MinAttendanceForBonus: v.GetFloat64("COMMISSION_MIN_ATTENDANCE_FOR_BONUS"),
		AttendanceBonus:       v.GetInt64("COMMISSION_ATTENDANCE_BONUS"),
		MaxCommissionPerMonth: v.GetInt64("COMMISSION_MAX_PER_MONTH"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gym_core")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
	v.SetDefault("REPORTS_RETRY_DELAY", "5s")

	v.SetDefault("VNPAY_TMN_CODE", "")
	v.SetDefault("VNPAY_HASH_SECRET", "")
	v.SetDefault("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	v.SetDefault("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/payments/vnpay/return")
	v.SetDefault("VNPAY_LOCALE", "vn")

	v.SetDefault("BOOKING_CANCEL_CUTOFF", "2h")

	v.SetDefault("ENABLE_FACE_CHECKIN", false)
	v.SetDefault("FACE_MATCH_THRESHOLD", 0.36)

	v.SetDefault("WALKIN_VISIT_PRICE", 50000)

	v.SetDefault("COMMISSION_PACKAGE_RATE", 0.05)
	v.SetDefault("COMMISSION_CLASS_RATE", 0.08)
	v.SetDefault("COMMISSION_PT_RATE", 0.25)
	v.SetDefault("COMMISSION_MIN_STUDENTS_FOR_BONUS", 10)
	v.SetDefault("COMMISSION_PERFORMANCE_BONUS", 500000)
	v.SetDefault("COMMISSION_MIN_ATTENDANCE_FOR_BONUS", 0.8)
	v.SetDefault("COMMISSION_ATTENDANCE_BONUS", 300000)
	v.SetDefault("COMMISSION_MAX_PER_MONTH", 10000000)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
