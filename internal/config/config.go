package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Log struct {
		Level string
		File  struct {
			Path       string
			MaxSizeMB  int  `mapstructure:"max_size_mb"`
			MaxBackups int  `mapstructure:"max_backups"`
			MaxAgeDays int  `mapstructure:"max_age_days"`
			Compress   bool `mapstructure:"compress"`
		}
	} `mapstructure:"log"`

	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN      string
		MaxConns int32 `mapstructure:"max_conns"`
	} `mapstructure:"postgres"`

	Redis struct {
		Addr     string
		Password string
		DB       int
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Commissions struct {
		DefaultComponentPercentage float64 `mapstructure:"default_component_percentage"`
	} `mapstructure:"commissions"`

	Sessions struct {
		NextAppointmentAfter time.Duration `mapstructure:"next_appointment_after"`
	} `mapstructure:"sessions"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 50)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("commissions.default_component_percentage", 30)
	v.SetDefault("sessions.next_appointment_after", 7*24*time.Hour)
}

// Location — часовой пояс клиники; пустой — UTC.
func (c Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.App.Timezone)
}

// Load читает YAML-конфиг; переменные окружения APP_* (в том числе из .env)
// перекрывают значения файла: APP_POSTGRES_DSN -> postgres.dsn.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		// без файла работаем на дефолтах и ENV
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
