package config

import (
	"errors"
	"io/fs"
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
	Env           string
	Port          int
	PublicBaseURL string

	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Session      SessionConfig
	SuperAdmin   SuperAdminConfig
	Security     SecurityConfig
	Identifiers  IdentifierConfig
	Uploads      UploadsConfig
	Certificates CertificatesConfig
	Gallery      GalleryConfig
	CORS         CORSConfig
	Log          LogConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig toggles Redis backed caching of public listings.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// SuperAdminConfig holds the single operator credential. PasswordHash wins over
// Password when both are set.
type SuperAdminConfig struct {
	Email        string
	Password     string
	PasswordHash string
}

type SecurityConfig struct {
	BcryptCost int
}

// IdentifierConfig controls the calendar used for sequence windows.
type IdentifierConfig struct {
	Timezone string
}

// UploadsConfig controls center document uploads.
type UploadsConfig struct {
	Dir              string
	MaxFileSizeBytes int64
	SignedURLSecret  string
	SignedURLTTL     time.Duration
}

// CertificatesConfig governs issuance metadata, PDF rendering and share tokens.
type CertificatesConfig struct {
	Issuer        string
	StorageDir    string
	ShareSecret   string
	Workers       int
	WorkerRetries int
}

type GalleryConfig struct {
	Dir       string
	URLPrefix string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		MaxAge:     parseDuration(v.GetString("SESSION_MAX_AGE"), 4*time.Hour),
		Secure:     cfg.Env == EnvProduction,
	}

	cfg.SuperAdmin = SuperAdminConfig{
		Email:        strings.ToLower(strings.TrimSpace(v.GetString("SUPER_ADMIN_EMAIL"))),
		Password:     v.GetString("SUPER_ADMIN_PASSWORD"),
		PasswordHash: v.GetString("SUPER_ADMIN_PASSWORD_HASH"),
	}

	cfg.Security = SecurityConfig{BcryptCost: v.GetInt("BCRYPT_COST")}

	cfg.Identifiers = IdentifierConfig{Timezone: v.GetString("ID_TIMEZONE")}

	maxUpload := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		Dir:              v.GetString("UPLOADS_DIR"),
		MaxFileSizeBytes: maxUpload,
		SignedURLSecret:  v.GetString("FILES_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("FILES_SIGNED_URL_TTL"), 30*time.Minute),
	}

	cfg.Certificates = CertificatesConfig{
		Issuer:        v.GetString("CERTIFICATE_ISSUER"),
		StorageDir:    v.GetString("CERTIFICATES_STORAGE_DIR"),
		ShareSecret:   v.GetString("CERTIFICATE_SHARE_SECRET"),
		Workers:       v.GetInt("CERTIFICATE_WORKERS"),
		WorkerRetries: v.GetInt("CERTIFICATE_WORKER_RETRIES"),
	}

	cfg.Gallery = GalleryConfig{
		Dir:       v.GetString("GALLERY_DIR"),
		URLPrefix: v.GetString("GALLERY_URL_PREFIX"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

// Location resolves the identifier time zone, falling back to UTC.
func (c IdentifierConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "miit_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SESSION_SECRET", "dev_session_secret_change_me")
	v.SetDefault("SESSION_COOKIE_NAME", "miit_session")
	v.SetDefault("SESSION_MAX_AGE", "4h")

	v.SetDefault("SUPER_ADMIN_EMAIL", "admin@miit.in")
	v.SetDefault("SUPER_ADMIN_PASSWORD", "")
	v.SetDefault("SUPER_ADMIN_PASSWORD_HASH", "")
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("ID_TIMEZONE", "UTC")

	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("FILES_SIGNED_URL_SECRET", "dev_files_secret")
	v.SetDefault("FILES_SIGNED_URL_TTL", "30m")

	v.SetDefault("CERTIFICATE_ISSUER", "MIIT Skill Development Pvt Ltd")
	v.SetDefault("CERTIFICATES_STORAGE_DIR", "./certificates")
	v.SetDefault("CERTIFICATE_SHARE_SECRET", "dev_certificate_secret")
	v.SetDefault("CERTIFICATE_WORKERS", 1)
	v.SetDefault("CERTIFICATE_WORKER_RETRIES", 3)

	v.SetDefault("GALLERY_DIR", "./public/images/MIITImages")
	v.SetDefault("GALLERY_URL_PREFIX", "/images/MIITImages")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
