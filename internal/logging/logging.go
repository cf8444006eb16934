// Package logging configures slog for the application.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Environments
const (
	EnvLocal = "local"
	EnvDebug = "debug"
	EnvProd  = "prod"
)

// Setup returns the logger for env writing to stdout
func Setup(env string) *slog.Logger {
	return New(env, os.Stdout)
}

// New returns the logger for env writing to out. Unknown environments log
// like prod.
func New(env string, out io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case EnvLocal:
		opts := PrettyHandlerOptions{
			SlogOpts: &slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		}
		log = slog.New(opts.NewPrettyHandler(out))
	case EnvDebug:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
