package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	ImageMaxMB         int   `env:"IMAGE_MAX_MB"`
	WelcomeBonus       int64 `env:"WELCOME_BONUS" envDefault:"100"`
	ModerationRequired bool  `env:"MODERATION_REQUIRED" envDefault:"true"`

	RedisURL   string        `env:"REDIS_URL"`
	CatalogTTL time.Duration `env:"CATALOG_TTL" envDefault:"1m"`

	EmailAPIURL         string `env:"EMAIL_API_URL"`
	EmailServiceID      string `env:"EMAIL_SERVICE_ID"`
	EmailTemplateID     string `env:"EMAIL_TEMPLATE_ID"`
	EmailSwapTemplateID string `env:"EMAIL_SWAP_TEMPLATE_ID"`
	EmailPublicKey      string `env:"EMAIL_PUBLIC_KEY"`

	// первый администратор создаётся при старте, если заданы email и пароль
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST"`

	// 0 отключает фоновую сверку
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"10m"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	TokenFile    string `env:"TOKEN_FILE"`
	Version      bool   `env:"-"` // show client version and exit (flag only)
}

// ImageMaxBytes — лимит размера изображения в байтах.
func (c *Config) ImageMaxBytes() int64 {
	return int64(c.ImageMaxMB) << 20
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или путь к SQLite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "адрес Redis для кэша каталога")
	flag.BoolVar(&cfg.ModerationRequired, "moderation", cfg.ModerationRequired, "новые вещи требуют одобрения администратора")
	flag.Int64Var(&cfg.WelcomeBonus, "welcome-bonus", cfg.WelcomeBonus, "очки, начисляемые при регистрации")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the ReWear server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "directory for per-user client catalogs (SQLite)")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "rewear.db"
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.ImageMaxMB <= 0 {
		cfg.ImageMaxMB = 5
	}
	if cfg.WelcomeBonus < 0 {
		cfg.WelcomeBonus = 100
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = time.Minute
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 10
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.ReconcileInterval < 0 {
		cfg.ReconcileInterval = 0
	}

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	home, _ := os.UserHomeDir()
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(home, ".rwcli")
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = filepath.Join(home, ".rw_token")
	}
}
