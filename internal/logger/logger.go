// Package logger configures structured logging for the module.
package logger

import (
	"io"
	"log/slog"
)

// New returns a JSON slog logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Component-specific child loggers off the process default.

func Mirror() *slog.Logger { return component("mirror") }

func Realtime() *slog.Logger { return component("realtime") }

func Board() *slog.Logger { return component("board") }

func Trash() *slog.Logger { return component("trash") }

func Gamify() *slog.Logger { return component("gamify") }

func Billing() *slog.Logger { return component("billing") }

func CLI() *slog.Logger { return component("cli") }

func component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
