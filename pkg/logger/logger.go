package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	out   *log.Logger
}

func NewLogger(level int) *defaultLogger {
	return NewNamedLogger("", level, os.Stderr)
}

// NewNamedLogger prefixes every line with the service name, so the output
// of the api, the realtime server and the watch client can be told apart.
func NewNamedLogger(name string, level int, w io.Writer) *defaultLogger {
	prefix := ""
	if name != "" {
		prefix = fmt.Sprintf("[%s] ", name)
	}

	return &defaultLogger{level: level, out: log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)}
}

// ParseLevel converts a level name from configuration. Unknown names fall
// back to INFO.
func ParseLevel(name string) int {
	switch strings.ToLower(name) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence", "off":
		return SILENCE
	default:
		return INFO
	}
}

func (l *defaultLogger) printf(level int, tag, msg string, a ...any) {
	if l.level <= level {
		l.out.Printf(tag+" "+msg+"\n", a...)
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) { l.printf(DEBUG, "[DEBUG]", msg, a...) }
func (l *defaultLogger) Infof(msg string, a ...any)  { l.printf(INFO, "[INFO]", msg, a...) }
func (l *defaultLogger) Warnf(msg string, a ...any)  { l.printf(WARNING, "[WARN]", msg, a...) }
func (l *defaultLogger) Errorf(msg string, a ...any) { l.printf(ERROR, "[ERROR]", msg, a...) }
