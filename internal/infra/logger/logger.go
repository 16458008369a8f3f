package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Spok95/spa-clinic/internal/config"
)

func New(cfg config.Config) *slog.Logger {
	level := parseLevel(cfg.Log.Level)
	if cfg.App.Env == "dev" {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stdout
	if f := cfg.Log.File; f.Path != "" {
		// файл с ротацией в дополнение к stdout
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   f.Path,
			MaxSize:    f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAge:     f.MaxAgeDays,
			Compress:   f.Compress,
		})
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(slog.String("env", cfg.App.Env))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
