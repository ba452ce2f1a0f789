// Package report defines the diagnostic report produced by audit, repair,
// and migration operations: a severity-tagged issue list with a computed
// overall status and concrete recovery suggestions.
package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a single issue.
type Severity string

// Severity vocabulary, ordered from most to least severe.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Status classifies the overall outcome of a diagnostic pass.
type Status string

// Status vocabulary.
const (
	StatusHealthy     Status = "HEALTHY"
	StatusNeedsRepair Status = "NEEDS REPAIR"
	StatusCritical    Status = "CRITICAL"
)

// Issue is a single finding. Path is the config or file path the finding
// refers to (e.g. "stack.framework"). Suggestion, when non-empty, is a
// concrete fix the repair operation can propose. AutoFixable marks the
// safe subset that may be applied without confirmation.
type Issue struct {
	Severity    Severity `json:"severity"`
	Code        string   `json:"code"`
	Path        string   `json:"path,omitempty"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion,omitempty"`
	AutoFixable bool     `json:"auto_fixable,omitempty"`
}

// Report is an ordered collection of issues from one diagnostic pass.
type Report struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	GeneratedAt time.Time `json:"generated_at"`
	Issues      []Issue   `json:"issues"`
}

// New creates an empty report for the named operation.
func New(operation string) *Report {
	return &Report{
		ID:          uuid.NewString(),
		Operation:   operation,
		GeneratedAt: time.Now().UTC(),
	}
}

// Add appends an issue, preserving insertion order.
func (r *Report) Add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// Status derives the overall status: any CRITICAL issue makes the report
// CRITICAL, any HIGH or MEDIUM issue makes it NEEDS REPAIR, otherwise the
// report is HEALTHY. LOW and INFO findings are advisory and do not change
// the status.
func (r *Report) Status() Status {
	status := StatusHealthy
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityCritical:
			return StatusCritical
		case SeverityHigh, SeverityMedium:
			status = StatusNeedsRepair
		}
	}
	return status
}

// Count returns the number of issues at the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// AutoFixable returns the issues that can be applied without confirmation.
func (r *Report) AutoFixable() []Issue {
	var fixable []Issue
	for _, issue := range r.Issues {
		if issue.AutoFixable {
			fixable = append(fixable, issue)
		}
	}
	return fixable
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
