package streamgen

import (
	"fmt"
)

// Diagnostic codes are stable; tooling matches on them.
const (
	// CodeStarted is reported once when a pass begins
	CodeStarted = "SG000"

	// CodeCatalog reports how many interfaces the catalog holds
	CodeCatalog = "SG001"

	// CodeCatalogWarning relays a warning raised while loading the catalog
	CodeCatalogWarning = "SG002"

	// CodeRejected is reported for a unit that failed syntax validation
	CodeRejected = "SG998"

	// CodeInternal is reported for an unexpected failure, including a
	// catalog that cannot be loaded
	CodeInternal = "SG999"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText renders the severity by name in JSON and TOML output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a message for the host build.
type Diagnostic struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Interface is the qualified interface name, empty for pass-level diagnostics
	Interface string `json:"interface,omitempty"`

	// File is the unit file name, when one was assembled
	File string `json:"file,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

// Reporter receives diagnostics. The driver calls it from a single goroutine.
type Reporter interface {
	Report(d Diagnostic)
}

// SummaryReporter is an optional interface a Reporter can implement to be
// told about the outcome of a whole pass.
type SummaryReporter interface {
	ReportSummary(s Summary)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// MultiReporter fans diagnostics out to several reporters, in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		r.Report(d)
	}
}

func (m MultiReporter) ReportSummary(s Summary) {
	for _, r := range m {
		if sr, ok := r.(SummaryReporter); ok {
			sr.ReportSummary(s)
		}
	}
}

func infof(code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func errorf(code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}
