package mylog

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/habiliai/edudash/config"
	"github.com/jcooky/go-din"
	"github.com/lmittmann/tint"
)

type Logger = slog.Logger

var (
	Key = din.NewRandomName()
)

func ToLogLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewLogger(logLevel string, logHandler string) *Logger {
	return NewLoggerWithWriter(os.Stderr, logLevel, logHandler)
}

func NewLoggerWithWriter(w io.Writer, logLevel string, logHandler string) *Logger {
	slogLevel := ToLogLevel(logLevel)

	var handler slog.Handler
	switch logHandler {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     slogLevel,
		})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			AddSource:  slogLevel == slog.LevelDebug,
			Level:      slogLevel,
			TimeFormat: time.Kitchen,
		})
	}

	return slog.New(handler)
}

func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

// Discard is used by components constructed without a logger.
func Discard() *Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func init() {
	din.Register(Key, func(c *din.Container) (any, error) {
		conf, err := din.GetT[*config.LogConfig](c)
		if err != nil {
			return nil, err
		}

		return NewLogger(conf.LogLevel, conf.LogHandler), nil
	})
}
