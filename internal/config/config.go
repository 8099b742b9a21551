package config

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
)

// Config holds every setting of the server, the lambda and shopctl. Values
// come from the struct defaults, then .env files, then the process env.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `env:"GRPC_ADDR" default:":50051"`

	DBDriver    string `env:"DB_DRIVER" default:"mysql"`
	DatabaseURL string `env:"DATABASE_URL" default:"root:root@tcp(localhost:3306)/microshop?parseTime=true"`

	RedisAddr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	WorkerCount int `env:"WORKER_COUNT" default:"4"`
	QueueSize   int `env:"QUEUE_SIZE" default:"1000"`

	MediaDir      string `env:"MEDIA_DIR" default:"media"`
	MediaURL      string `env:"MEDIA_URL" default:"/media/"`
	CloudinaryURL string `env:"CLOUDINARY_URL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" default:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" default:"noreply@example.com"`

	AdminTokenTTL   time.Duration `env:"ADMIN_TOKEN_TTL" default:"168h"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" default:"5m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"5s"`

	CORSOrigins []string `env:"CORS_ORIGINS" default:"[\"http://localhost:3000\"]"`

	APIURL     string `env:"SHOP_API_URL" default:"http://localhost:8080/api"`
	AdminToken string `env:"SHOP_ADMIN_TOKEN"`
}

// Load reads .env and .env.local from the working directory when present.
func Load() (*Config, error) {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err == nil {
			log.Printf("loaded %s", name)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from defaults overridden by lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("env")
		raw, ok := lookup(key)
		if key == "" || !ok {
			continue
		}
		if err := setField(v.Field(i), strings.TrimSpace(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setField(f reflect.Value, raw string) error {
	switch f.Interface().(type) {
	case string:
		f.SetString(raw)
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		f.SetInt(int64(n))
	case time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
	case []string:
		var out []string
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		f.Set(reflect.ValueOf(out))
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql, postgres or memory, got %q", c.DBDriver)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("QUEUE_SIZE must be positive")
	}
	return nil
}

// MailEnabled reports whether order emails can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// GRPCTarget is GRPCAddr in dialable form; a bare ":port" means localhost.
func (c *Config) GRPCTarget() string {
	if strings.HasPrefix(c.GRPCAddr, ":") {
		return "localhost" + c.GRPCAddr
	}
	return c.GRPCAddr
}
