// Package logging configures the process-wide zerolog output: a console
// writer for the terminal plus a size-rotated file, matching the rotating
// log files the bot has always shipped.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup builds the root logger. filePath may be empty to log to the
// console only.
func Setup(filePath string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}

	var out io.Writer = console
	if filePath != "" {
		file := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, file)
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
