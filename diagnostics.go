package main

import (
	"fmt"
	"log"
)

// Severity of a diagnostic notification
type Severity int

const (
	SeverityInfo  Severity = 0
	SeverityAlert Severity = 1
)

func (s Severity) String() string {
	if s == SeverityAlert {
		return "alert"
	}
	return "info"
}

// Diagnostics receives player-facing notifications (health changes, kills,
// session outcomes). It replaces an on-screen debug message sink.
type Diagnostics interface {
	Notify(sev Severity, msg string)
}

// LogDiagnostics writes notifications to a logger
type LogDiagnostics struct {
	logger *log.Logger
	prefix string
}

// NewLogDiagnostics creates a LogDiagnostics. A nil logger uses log.Default().
func NewLogDiagnostics(logger *log.Logger, prefix string) *LogDiagnostics {
	if logger == nil {
		logger = log.Default()
	}
	return &LogDiagnostics{logger: logger, prefix: prefix}
}

func (d *LogDiagnostics) Notify(sev Severity, msg string) {
	d.logger.Printf("[%s] %s%s", sev, d.prefix, msg)
}

type nopDiagnostics struct{}

func (nopDiagnostics) Notify(Severity, string) {}

func notifyf(d Diagnostics, sev Severity, format string, args ...any) {
	if d == nil {
		return
	}
	d.Notify(sev, fmt.Sprintf(format, args...))
}
