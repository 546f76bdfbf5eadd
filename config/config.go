package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Cloudinary   CloudinaryConfig
	Midtrans     MidtransConfig
	Settlement   SettlementConfig
	Subscription SubscriptionConfig
	Booth        BoothConfig
	Firebase     FirebaseConfig
	Admin        AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PublicURL    string // external base URL, used for gallery links and QR codes
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// MidtransConfig for the payment gateway. ServerKey doubles as the webhook
// signature secret; leave it empty to disable signature verification (local
// development only).
type MidtransConfig struct {
	ServerKey     string
	ClientKey     string
	Production    bool
	StatusTimeout time.Duration // outbound status-lookup deadline; fall back to raw payload past this
}

type SettlementConfig struct {
	FeePercent float64 // fallback when the platform_fee_percent setting is absent
}

type SubscriptionConfig struct {
	Price      int64 // IDR per period
	PeriodDays int
}

type BoothConfig struct {
	SessionTTL time.Duration // how long an unpaid session stays claimable
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envString("PORT", "8080"),
			Env:          envString("APP_ENV", "development"),
			ReadTimeout:  envDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: envDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			PublicURL:    envString("PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			DSN:             envString("DATABASE_DSN", "snapbooth:snapbooth@tcp(localhost:3306)/snapbooth?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret:  envString("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envString("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  envDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: envDuration("JWT_REFRESH_EXPIRY", 168*time.Hour),
			Issuer:        envString("JWT_ISSUER", "snapbooth"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: envString("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    envString("CLOUDINARY_API_KEY", ""),
			APISecret: envString("CLOUDINARY_API_SECRET", ""),
		},
		Midtrans: MidtransConfig{
			ServerKey:     envString("MIDTRANS_SERVER_KEY", ""),
			ClientKey:     envString("MIDTRANS_CLIENT_KEY", ""),
			Production:    envBool("MIDTRANS_PRODUCTION", false),
			StatusTimeout: envDuration("MIDTRANS_STATUS_TIMEOUT", 5*time.Second),
		},
		Settlement: SettlementConfig{
			FeePercent: envFloat("PLATFORM_FEE_PERCENT", 10),
		},
		Subscription: SubscriptionConfig{
			Price:      envInt64("SUBSCRIPTION_PRICE", 150000),
			PeriodDays: envInt("SUBSCRIPTION_PERIOD_DAYS", 30),
		},
		Booth: BoothConfig{
			SessionTTL: envDuration("BOOTH_SESSION_TTL", 30*time.Minute),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: envString("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Admin: AdminConfig{
			Email:    envString("ADMIN_EMAIL", "admin@snapbooth.local"),
			Password: envString("ADMIN_PASSWORD", ""),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
