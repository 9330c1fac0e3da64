// Package report collects the user-facing outcome of an operation as a list
// of classified messages.
package report

import (
	"fmt"
	"strings"
)

// Level classifies a message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Message is one line of an operation outcome.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Report is the structured result of an operation.
type Report struct {
	Operation string    `json:"operation"`
	Messages  []Message `json:"messages"`

	causes []error
}

// New creates an empty report for the named operation.
func New(operation string) *Report {
	return &Report{Operation: operation, Messages: []Message{}}
}

func (r *Report) add(level Level, format string, args ...any) {
	r.Messages = append(r.Messages, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Success records a success message.
func (r *Report) Success(format string, args ...any) { r.add(LevelSuccess, format, args...) }

// Warning records a non-fatal problem.
func (r *Report) Warning(format string, args ...any) { r.add(LevelWarning, format, args...) }

// Error records a failure.
func (r *Report) Error(format string, args ...any) { r.add(LevelError, format, args...) }

// Info records an informational message.
func (r *Report) Info(format string, args ...any) { r.add(LevelInfo, format, args...) }

// Fail records err as an error message and returns the report. err stays
// reachable through errors.Is and errors.As on Err.
func (r *Report) Fail(err error) *Report {
	r.add(LevelError, "%v", err)
	r.causes = append(r.causes, err)
	return r
}

// Merge appends every message of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Messages = append(r.Messages, other.Messages...)
	r.causes = append(r.causes, other.causes...)
}

// Count returns the number of messages at level.
func (r *Report) Count(level Level) int {
	n := 0
	for _, m := range r.Messages {
		if m.Level == level {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error was recorded.
func (r *Report) HasErrors() bool {
	return r.Count(LevelError) > 0
}

// HasWarnings reports whether any warning was recorded.
func (r *Report) HasWarnings() bool {
	return r.Count(LevelWarning) > 0
}

// Err returns an error joining every error message, or nil.
func (r *Report) Err() error {
	var texts []string
	for _, m := range r.Messages {
		if m.Level == LevelError {
			texts = append(texts, m.Text)
		}
	}
	if len(texts) == 0 {
		return nil
	}
	return &failure{
		msg:    fmt.Sprintf("%s failed: %s", r.Operation, strings.Join(texts, "; ")),
		causes: r.causes,
	}
}

type failure struct {
	msg    string
	causes []error
}

func (f *failure) Error() string { return f.msg }

func (f *failure) Unwrap() []error { return f.causes }
