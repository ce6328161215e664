// Package logger sets up structured logging and records crash reports.
package logger

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const (
	// CrashLogDir is the crash log directory relative to the state dir.
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the number of crash logs kept on disk.
	MaxCrashLogs = 10
)

// CrashReport is one recovered panic.
type CrashReport struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	PanicValue string    `json:"panic_value"`
	StackTrace string    `json:"stack_trace"`
	LastInput  string    `json:"last_input,omitempty"`
	GoVersion  string    `json:"go_version"`
	OS         string    `json:"os"`
	Arch       string    `json:"arch"`
}

// CrashReporter writes crash reports below a state directory.
type CrashReporter struct {
	fs  afero.Fs
	dir string

	mu        sync.RWMutex
	version   string
	lastInput string
	now       func() time.Time
}

// NewCrashReporter returns a reporter writing to <stateDir>/crash_logs.
// A nil fs means the OS filesystem.
func NewCrashReporter(fsys afero.Fs, stateDir string) *CrashReporter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if stateDir == "" {
		stateDir = ".taskmate"
	}
	return &CrashReporter{
		fs:  fsys,
		dir: filepath.Join(stateDir, CrashLogDir),
		now: time.Now,
	}
}

// Dir returns the crash log directory.
func (c *CrashReporter) Dir() string { return c.dir }

func (c *CrashReporter) SetVersion(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = v
}

// SetLastInput remembers the latest user message for the next report.
func (c *CrashReporter) SetLastInput(input string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastInput = truncateForLog(strings.TrimSpace(input), 500)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// Record writes a report for panicValue and returns its path.
func (c *CrashReporter) Record(source string, panicValue any) (string, error) {
	c.mu.RLock()
	report := CrashReport{
		Timestamp:  c.now(),
		Version:    c.version,
		Source:     source,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(debug.Stack()),
		LastInput:  c.lastInput,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
	c.mu.RUnlock()

	return c.write(report)
}

func (c *CrashReporter) write(report CrashReport) (string, error) {
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}
	if err := c.prune(MaxCrashLogs - 1); err != nil {
		slog.Warn("failed to prune crash logs", "error", err)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("crash_%s.log", report.Timestamp.Format("20060102_150405.000")))
	if err := afero.WriteFile(c.fs, path, []byte(formatCrashReport(report)), 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

// prune removes the oldest logs until at most keep remain.
func (c *CrashReporter) prune(keep int) error {
	logs, err := c.List()
	if err != nil || len(logs) <= keep {
		return err
	}
	for _, p := range logs[:len(logs)-keep] {
		if err := c.fs.Remove(p); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// List returns crash log paths, oldest first.
func (c *CrashReporter) List() ([]string, error) {
	entries, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if isCrashLog(e) {
			logs = append(logs, filepath.Join(c.dir, e.Name()))
		}
	}
	sort.Strings(logs)
	return logs, nil
}

// Read returns the content of one crash log.
func (c *CrashReporter) Read(path string) (string, error) {
	b, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isCrashLog(e fs.FileInfo) bool {
	return !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log")
}

// HandlePanic recovers a panic in the calling goroutine, records it and exits.
// Usage: defer reporter.HandlePanic("cli")
func (c *CrashReporter) HandlePanic(source string) {
	r := recover()
	if r == nil {
		return
	}
	path, err := c.Record(source, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n[CRASH] Failed to write crash log: %v\n", err)
		fmt.Fprintf(os.Stderr, "[CRASH] Panic: %v\n%s\n", r, debug.Stack())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "\ntaskmate encountered an unexpected error.\n")
	fmt.Fprintf(os.Stderr, "A crash log has been saved to:\n  %s\n\n", path)
	os.Exit(1)
}

func formatCrashReport(r CrashReport) string {
	var sb strings.Builder
	rule := strings.Repeat("-", 80)

	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString("TASKMATE CRASH LOG\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	fmt.Fprintf(&sb, "Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", r.Version)
	fmt.Fprintf(&sb, "Source:    %s\n", r.Source)
	fmt.Fprintf(&sb, "Go:        %s\n", r.GoVersion)
	fmt.Fprintf(&sb, "OS/Arch:   %s/%s\n", r.OS, r.Arch)

	section := func(title, body string) {
		sb.WriteString("\n" + rule + "\n" + title + "\n" + rule + "\n")
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
	}
	section("PANIC VALUE", r.PanicValue)
	section("STACK TRACE", r.StackTrace)
	if r.LastInput != "" {
		section("LAST USER INPUT", r.LastInput)
	}

	sb.WriteString("\n" + strings.Repeat("=", 80) + "\n")
	return sb.String()
}
