// Package logging builds the process logger and formats activity lines.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

var levels = map[domain.LogType]*color.Color{
	domain.LogInfo:    color.New(color.FgCyan),
	domain.LogSuccess: color.New(color.FgGreen),
	domain.LogWarn:    color.New(color.FgYellow),
	domain.LogError:   color.New(color.FgRed, color.Bold),
}

var labels = map[domain.LogType]string{
	domain.LogInfo:    "INFO ",
	domain.LogSuccess: "OK   ",
	domain.LogWarn:    "WARN ",
	domain.LogError:   "ERROR",
}

// New returns the process logger. A nil writer means stderr.
func New(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.New(w, "sentinel ", log.LstdFlags|log.Lmsgprefix)
}

// Level renders the tag for a log type, colored when the terminal allows it.
func Level(t domain.LogType) string {
	label, ok := labels[t]
	if !ok {
		label, t = labels[domain.LogInfo], domain.LogInfo
	}
	return levels[t].Sprint(label)
}

// Feed mirrors one activity line to logger.
func Feed(logger *log.Logger, t domain.LogType, msg string) {
	if logger == nil {
		return
	}
	logger.Printf("%s %s", Level(t), msg)
}
