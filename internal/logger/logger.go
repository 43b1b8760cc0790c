// Package logger provides leveled logging to stdout (colored) and,
// when configured, to daily-rotated log files.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

var (
	mu         sync.Mutex
	out        *os.File
	dir        string
	currentDay string
)

// Init enables file logging under baseDir/logs. A nil error means every
// subsequent log line is also appended to the current day's file.
func Init(baseDir string) error {
	if baseDir == "" {
		return nil
	}
	resolved := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	dir = resolved
	return rotateLocked(time.Now())
}

// Close stops file logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		_ = out.Close()
		out = nil
	}
	dir = ""
}

func Info(format string, args ...interface{}) {
	write(LevelInfo, format, args...)
}

func Warn(format string, args ...interface{}) {
	write(LevelWarn, format, args...)
}

func Error(format string, args ...interface{}) {
	write(LevelError, format, args...)
}

func write(lvl Level, format string, args ...interface{}) {
	now := time.Now()
	stamp := now.Format("2006/01/02 15:04:05")
	msg := fmt.Sprintf(format, args...)

	var label, color string
	switch lvl {
	case LevelWarn:
		label = "[WARN] "
		color = "\033[33m"
	case LevelError:
		label = "[EROR] "
		color = "\033[31m"
	default:
		label = "[INFO] "
		color = "\033[32m"
	}

	mu.Lock()
	if dir != "" {
		if err := rotateLocked(now); err == nil && out != nil {
			fmt.Fprintf(out, "%s %s%s\n", stamp, label, msg)
		}
	}
	mu.Unlock()

	fmt.Fprintf(os.Stdout, "%s %s%s\033[0m%s\n", stamp, color, label, msg)
}

// rotateLocked opens the log file for t's day, closing the previous one
// when the day changed. Caller holds mu.
func rotateLocked(t time.Time) error {
	day := t.Format("2006-01-02")
	if out != nil && currentDay == day {
		return nil
	}
	if out != nil {
		_ = out.Close()
		out = nil
	}
	f, err := os.OpenFile(filepath.Join(dir, day+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	out = f
	currentDay = day
	return nil
}
