// Package logger wraps a process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// TimeFormat matches the timestamps the tray app has always written to its
// log file.
const TimeFormat = "2006-01-02 15:04:05"

var log atomic.Pointer[zerolog.Logger]

func init() {
	Set(zerolog.Nop())
}

func current() *zerolog.Logger { return log.Load() }

// Options controls where and how much is logged.
type Options struct {
	Level string
	// File, when set, receives the log instead of stderr. Parent
	// directories are created.
	File string
}

// Init replaces the global logger and sets the process-wide level. It returns
// a closer for the log file (a no-op when logging to stderr).
func Init(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nopCloser{}, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
		color            = term.IsTerminal(int(os.Stderr.Fd()))
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return closer, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closer, err
		}
		out, closer, color = f, f, false
	}

	Set(New(out, zerolog.TraceLevel, color))
	SetLevel(level)
	return closer, nil
}

// New builds a console-formatted logger without touching the global one.
func New(out io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TimeFormat,
		NoColor:    !color,
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
}

// SetLevel gates every logger in the process, including sub-loggers made
// with With before the call.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Set installs l as the global logger. Tests use it to capture output.
func Set(l zerolog.Logger) {
	log.Store(&l)
}

// With returns a sub-logger tagged with a component name.
func With(component string) zerolog.Logger {
	return current().With().Str("component", component).Logger()
}

func Debug() *zerolog.Event { return current().Debug() }
func Info() *zerolog.Event  { return current().Info() }
func Warn() *zerolog.Event  { return current().Warn() }
func Error() *zerolog.Event { return current().Error() }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
