package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the process-wide logger. Output is JSON unless
// APP_ENV=development, where a human-readable console writer is used.
func Init() {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	writer := zerolog.New(os.Stdout)
	if strings.ToLower(os.Getenv("APP_ENV")) == "development" {
		writer = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	log = writer.Level(level).With().Timestamp().Logger()
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}

func Info(msg string, fields map[string]interface{}) {
	withFields(log.Info(), fields).Msg(msg)
}

func InfoWithUser(userID string, msg string, fields map[string]interface{}) {
	withFields(log.Info().Str("user_id", userID), fields).Msg(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	withFields(log.Warn(), fields).Msg(msg)
}

func Error(msg string, err error, fields map[string]interface{}) {
	withFields(log.Error().Err(err), fields).Msg(msg)
}
