// Package audit keeps an append-only JSON-lines log of the edits made to a
// project: every executed, undone and redone command, plus saves and exports.
package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Dir is the directory, next to the project file, that holds the log.
const Dir = ".carbon"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Operation string         `json:"op"` // execute, undo, redo, save, export
	Command   string         `json:"command,omitempty"`
	Path      string         `json:"path,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Logger handles writing to the audit log.
type Logger struct {
	path    string
	enabled bool
	mu      sync.Mutex
	now     func() time.Time
}

// New creates an audit logger for the project file at projectPath.
// If enabled is false, the logger will be a no-op.
func New(projectPath string, enabled bool) *Logger {
	if !enabled || projectPath == "" {
		return &Logger{enabled: false}
	}
	return &Logger{
		path:    filepath.Join(filepath.Dir(projectPath), Dir, "audit.log"),
		enabled: true,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Path returns the log file, or "" when disabled.
func (l *Logger) Path() string { return l.path }

// Enabled returns true if the audit logger is enabled.
func (l *Logger) Enabled() bool { return l.enabled }

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// LogCommand records a command being executed, undone or redone. It lets the
// logger serve as an editor auditor.
func (l *Logger) LogCommand(action, command string) error {
	return l.Log(Entry{Operation: action, Command: command})
}

// LogSave records a successful save.
func (l *Logger) LogSave(path string) error {
	return l.Log(Entry{Operation: "save", Path: path})
}

// LogExport records the files written by an export.
func (l *Logger) LogExport(format string, files []string) error {
	return l.Log(Entry{
		Operation: "export",
		Extra:     map[string]any{"format": format, "files": files},
	})
}

// Read reads all entries from the audit log. Malformed lines are skipped.
func (l *Logger) Read() ([]Entry, error) {
	if !l.enabled {
		return nil, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, sc.Err()
}

// ReadSince reads entries from the audit log since the given time.
func (l *Logger) ReadSince(since time.Time) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if !entry.Timestamp.Before(since) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// Tail returns the last n entries.
func (l *Logger) Tail(n int) ([]Entry, error) {
	all, err := l.Read()
	if err != nil || n <= 0 || len(all) <= n {
		return all, err
	}
	return all[len(all)-n:], nil
}
