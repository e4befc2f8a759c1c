package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type DatabaseConfig struct {
	Driver     string        `yaml:"driver"` // mongo | postgres | memory
	URL        string        `yaml:"url"`
	Name       string        `yaml:"name"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
}

type SessionConfig struct {
	Name           string        `yaml:"name"`
	HashKey        string        `yaml:"hash_key"`
	BlockKey       string        `yaml:"block_key"`
	MaxAge         time.Duration `yaml:"max_age"`
	RememberMaxAge time.Duration `yaml:"remember_max_age"`
	Insecure       bool          `yaml:"insecure"` // drop the Secure flag for plain-HTTP local runs
}

type LogConfig struct {
	Level  string        `yaml:"level"`
	Dev    bool          `yaml:"dev"`
	File   string        `yaml:"file"`
	MaxAge time.Duration `yaml:"max_age"`
}

type Config struct {
	Server struct {
		Port    int  `yaml:"port"`
		Swagger bool `yaml:"swagger"`
	} `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Email       EmailConfig    `yaml:"email"`
	Session     SessionConfig  `yaml:"session"`
	Log         LogConfig      `yaml:"log"`
	BearerToken string         `yaml:"bearer_token"`
	AppURL      string         `yaml:"app_url"`
	CORSOrigins []string       `yaml:"cors_origins"`
}

// LoadConfig reads the YAML file at path, then applies a .env file (if any)
// and LOGINPAGE_* environment overrides, then fills in defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only configuration
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "LOGINPAGE_DATABASE_DRIVER")
	setString(&c.Database.URL, "LOGINPAGE_DATABASE_URL")
	setString(&c.Database.Name, "LOGINPAGE_DATABASE_NAME")
	setString(&c.Email.SMTPHost, "LOGINPAGE_SMTP_HOST")
	setString(&c.Email.SMTPUser, "LOGINPAGE_SMTP_USER")
	setString(&c.Email.SMTPPassword, "LOGINPAGE_SMTP_PASSWORD")
	setString(&c.Email.FromEmail, "LOGINPAGE_SMTP_FROM")
	setString(&c.BearerToken, "LOGINPAGE_BEARER_TOKEN")
	setString(&c.AppURL, "LOGINPAGE_APP_URL")
	setString(&c.Session.HashKey, "LOGINPAGE_SESSION_HASH_KEY")
	setString(&c.Session.BlockKey, "LOGINPAGE_SESSION_BLOCK_KEY")
	setString(&c.Log.Level, "LOGINPAGE_LOG_LEVEL")

	if v, ok := os.LookupEnv("LOGINPAGE_CORS_ORIGINS"); ok {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
	if err := setInt(&c.Server.Port, "LOGINPAGE_PORT"); err != nil {
		return err
	}
	return setInt(&c.Email.SMTPPort, "LOGINPAGE_SMTP_PORT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mongo"
	}
	if c.Database.Name == "" {
		c.Database.Name = "loginDB"
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "Users"
	}
	if c.Database.Timeout == 0 {
		c.Database.Timeout = 30 * time.Second
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Login Page"
	}
	if c.Session.Name == "" {
		c.Session.Name = "loginpage_session"
	}
	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = 30 * time.Minute
	}
	if c.Session.RememberMaxAge == 0 {
		c.Session.RememberMaxAge = 14 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 7 * 24 * time.Hour
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:5173", "https://localhost:5173"}
	}
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	var missing []string
	if c.BearerToken == "" {
		missing = append(missing, "bearer_token")
	}
	if c.AppURL == "" {
		missing = append(missing, "app_url")
	}
	if c.Email.SMTPHost == "" {
		missing = append(missing, "email.smtp_host")
	}
	if c.Email.SMTPPassword == "" {
		missing = append(missing, "email.smtp_password")
	}
	switch c.Database.Driver {
	case "memory":
	case "mongo", "postgres":
		if c.Database.URL == "" {
			missing = append(missing, "database.url")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch len(c.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return errors.New("session.block_key must be 16, 24 or 32 bytes")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
