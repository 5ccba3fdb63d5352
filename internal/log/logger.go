package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	logJSON bool
	logText bool
}

func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		console: os.Stdout,
		file:    file,
		logJSON: logJSON,
		logText: logText,
	}, nil
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type LogEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Level     string           `json:"level"`
	Message   string           `json:"message"`
	Note      string           `json:"note,omitempty"`
	OldPath   string           `json:"old_path,omitempty"`
	NewPath   string           `json:"new_path,omitempty"`
	Action    types.TaskAction `json:"action,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// LogRename records one committed or failed rename/conversion.
func (l *Logger) LogRename(note, oldPath, newPath string, action types.TaskAction, taskErr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   fmt.Sprintf("%s: %s -> %s", action, oldPath, newPath),
		Note:      note,
		OldPath:   oldPath,
		NewPath:   newPath,
		Action:    action,
	}

	if taskErr != "" {
		entry.Level = "ERROR"
		entry.Error = taskErr
	}

	l.writeEntry(entry)
}

func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   msg,
	}
	l.writeEntry(entry)
}

func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "ERROR",
		Message:   msg,
		Error:     err.Error(),
	}
	l.writeEntry(entry)
}

// Notice surfaces a user-visible message on the console and records it in
// the log file. Per-item failures of batch commands go through here;
// they never abort the batch.
func (l *Logger) Notice(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.console, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeEntry(LogEntry{
		Timestamp: time.Now(),
		Level:     "NOTICE",
		Message:   msg,
	})
}

func (l *Logger) writeEntry(entry LogEntry) {
	if l.logJSON && l.file != nil {
		data, _ := json.Marshal(entry)
		l.file.Write(data)
		l.file.Write([]byte("\n"))
	}

	if l.logText && l.file != nil {
		line := fmt.Sprintf("[%s] %s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.Message,
		)
		if entry.Error != "" {
			line = fmt.Sprintf("[%s] %s %s - Error: %s\n",
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.Level,
				entry.Message,
				entry.Error,
			)
		}
		l.file.WriteString(line)
	}
}

func (l *Logger) Summary(summary types.RunSummary) {
	fmt.Fprintln(l.console, "\n=== paste-image-rename Summary ===")
	fmt.Fprintf(l.console, "Scanned:     %d\n", summary.Scanned)
	fmt.Fprintf(l.console, "Proposed:    %d\n", summary.Proposed)
	fmt.Fprintf(l.console, "Renamed:     %d\n", summary.Renamed)
	fmt.Fprintf(l.console, "Converted:   %d\n", summary.Converted)
	fmt.Fprintf(l.console, "Skipped:     %d\n", summary.Skipped)
	fmt.Fprintf(l.console, "Failed:      %d\n", summary.Failed)
	fmt.Fprintf(l.console, "Duration:    %s\n", summary.Duration.Round(time.Millisecond))
	fmt.Fprintln(l.console, "==================================")
}

func (l *Logger) Progress(current, total int, filename string) {
	fmt.Fprintf(l.console, "\r[%d/%d] %s", current, total, filename)
}
