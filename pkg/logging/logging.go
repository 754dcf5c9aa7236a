// Пакет logging создаёт корневой структурированный логгер сервиса
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New возвращает логгер с заданным уровнем.
// pretty=true включает человекочитаемый вывод для локальной разработки, иначе пишется JSON.
func New(level string, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, level)
}

// NewWithWriter возвращает JSON-логгер, пишущий в w; неизвестный уровень трактуется как info
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
