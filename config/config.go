package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DatastoreMongo  = "mongo"
	DatastoreMemory = "memory"

	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
)

// Config is the server configuration. Every field can be set from the
// environment variable of the same name as its koanf key, upper-cased.
type Config struct {
	Port           string        `koanf:"port"`
	GinMode        string        `koanf:"gin_mode"`
	PublicOrigin   string        `koanf:"public_origin"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	CORSOrigins    []string      `koanf:"cors_origins"`

	Datastore       string `koanf:"datastore"`
	MongoURI        string `koanf:"mongodb_uri"`
	MongoDatabase   string `koanf:"mongodb_database"`
	ConnectAttempts int    `koanf:"connect_attempts"`

	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	Storage        string `koanf:"storage"`
	UploadDir      string `koanf:"upload_dir"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
	CloudinaryURL  string `koanf:"cloudinary_url"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	RejectSelfFollow bool `koanf:"reject_self_follow"`
}

func defaults() Config {
	return Config{
		Port:            "5000",
		GinMode:         "debug",
		PublicOrigin:    "http://localhost:5000",
		RequestTimeout:  10 * time.Second,
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		Datastore:       DatastoreMongo,
		MongoURI:        "mongodb://127.0.0.1:27017",
		MongoDatabase:   "sociomate",
		ConnectAttempts: 3,
		TokenTTL:        30 * 24 * time.Hour,
		Storage:         StorageLocal,
		UploadDir:       "uploads",
		MaxUploadBytes:  5 << 20,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// sliceKeys arrive from the environment as comma-separated strings.
var sliceKeys = []string{"cors_origins"}

// Load reads an optional .env file, then layers environment variables over
// the built-in defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a validated Config from defaults and the process environment.
func FromEnv() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	known := map[string]bool{}
	for _, key := range k.Keys() {
		known[key] = true
	}
	envProvider := env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !known[key] {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.PublicOrigin = strings.TrimRight(cfg.PublicOrigin, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that would stop the server from working.
func (c *Config) Validate() error {
	switch c.Datastore {
	case DatastoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI must be set")
		}
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET must be set when DATASTORE=mongo")
		}
	case DatastoreMemory:
	default:
		return fmt.Errorf("unknown DATASTORE %q", c.Datastore)
	}

	switch c.Storage {
	case StorageLocal:
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR must be set when STORAGE=local")
		}
	case StorageCloudinary:
		if c.CloudinaryURL == "" {
			return errors.New("CLOUDINARY_URL must be set when STORAGE=cloudinary")
		}
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}

	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.PublicOrigin == "" {
		return errors.New("PUBLIC_ORIGIN must not be empty")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.ConnectAttempts < 1 {
		c.ConnectAttempts = 1
	}
	return nil
}

// Secret returns the JWT signing key. The in-memory datastore is a
// development mode and falls back to a fixed key.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("sociomate-dev-secret")
	}
	return []byte(c.JWTSecret)
}
