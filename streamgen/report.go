package streamgen

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/teranos/streamgen/logger"
)

// CLIReporter prints diagnostics to the terminal using pterm.
// Info diagnostics are only shown from verbosity 1 (-v) up.
type CLIReporter struct {
	verbosity int
	out       io.Writer
}

// NewCLIReporter creates a terminal reporter writing to stdout.
func NewCLIReporter(verbosity int) *CLIReporter {
	return &CLIReporter{verbosity: verbosity, out: os.Stdout}
}

// WithWriter redirects output, e.g. to a buffer in tests.
func (r *CLIReporter) WithWriter(w io.Writer) *CLIReporter {
	r.out = w
	return r
}

// Report prints one diagnostic
func (r *CLIReporter) Report(d Diagnostic) {
	msg := pterm.Gray(d.Code) + " " + d.Message
	if d.Interface != "" {
		msg += " " + pterm.LightCyan(d.Interface)
	}
	switch d.Severity {
	case SeverityError:
		pterm.Error.WithWriter(r.out).Println(msg)
	case SeverityWarning:
		pterm.Warning.WithWriter(r.out).Println(msg)
	default:
		if r.verbosity >= logger.VerbosityInfo {
			pterm.Info.WithWriter(r.out).Println(msg)
		}
	}
}

// ReportSummary prints the outcome of a pass
func (r *CLIReporter) ReportSummary(s Summary) {
	switch {
	case s.Failed > 0 || s.Rejected > 0:
		pterm.Warning.WithWriter(r.out).Printfln("Generated %s units, %s rejected, %s failed",
			pterm.Green(s.Emitted), pterm.Yellow(s.Rejected), pterm.Red(s.Failed))
	default:
		pterm.Success.WithWriter(r.out).Printfln("Generated %s units from %d interfaces",
			pterm.Green(s.Emitted), s.Interfaces)
	}
	if r.verbosity >= logger.VerbosityInfo {
		pterm.Fprintln(r.out, "  run: "+s.RunID)
		pterm.Fprintln(r.out, "  duration: "+s.Duration.Round(time.Millisecond).String())
	}
}

// DiagnosticEvent is the JSON form of a diagnostic
type DiagnosticEvent struct {
	Type      string      `json:"type"` // "diagnostic" or "summary"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// JSONReporter writes one JSON event per line, for tools driving the generator.
type JSONReporter struct {
	encoder *json.Encoder
}

// NewJSONReporter creates a JSON reporter on w (stdout when nil).
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{encoder: json.NewEncoder(w)}
}

// Report emits a diagnostic event as JSON
func (r *JSONReporter) Report(d Diagnostic) {
	r.encoder.Encode(DiagnosticEvent{
		Type:      "diagnostic",
		Timestamp: time.Now(),
		Data:      d,
	})
}

// ReportSummary emits a summary event as JSON
func (r *JSONReporter) ReportSummary(s Summary) {
	r.encoder.Encode(DiagnosticEvent{
		Type:      "summary",
		Timestamp: time.Now(),
		Data:      s,
	})
}

// LogReporter forwards diagnostics to a zap logger.
type LogReporter struct {
	log *zap.SugaredLogger
}

// NewLogReporter creates a reporter on log, or on the streamgen.diagnostics
// component logger when log is nil.
func NewLogReporter(log *zap.SugaredLogger) *LogReporter {
	if log == nil {
		log = logger.ComponentLogger("streamgen.diagnostics")
	}
	return &LogReporter{log: log}
}

// Report logs one diagnostic at the level matching its severity
func (r *LogReporter) Report(d Diagnostic) {
	fields := []interface{}{logger.FieldCode, d.Code}
	if d.Interface != "" {
		fields = append(fields, logger.FieldInterface, d.Interface)
	}
	if d.File != "" {
		fields = append(fields, logger.FieldFile, d.File)
	}
	switch d.Severity {
	case SeverityError:
		r.log.Errorw(d.Message, fields...)
	case SeverityWarning:
		r.log.Warnw(d.Message, fields...)
	default:
		r.log.Infow(d.Message, fields...)
	}
}

// ReportSummary logs the outcome of a pass
func (r *LogReporter) ReportSummary(s Summary) {
	r.log.Infow("Generation pass finished",
		logger.FieldRunID, s.RunID,
		logger.FieldCount, s.Interfaces,
		logger.FieldEmitted, s.Emitted,
		logger.FieldRejected, s.Rejected,
		logger.FieldFailed, s.Failed,
		logger.FieldDurationMS, s.Duration.Milliseconds())
}

// MemoryReporter collects diagnostics in memory.
type MemoryReporter struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
	summaries   []Summary
}

// Report appends d
func (r *MemoryReporter) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// ReportSummary appends s
func (r *MemoryReporter) ReportSummary(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
}

// Diagnostics returns a copy of everything reported so far
func (r *MemoryReporter) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}

// Summaries returns a copy of the reported summaries
func (r *MemoryReporter) Summaries() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Summary(nil), r.summaries...)
}

// WithCode returns the diagnostics carrying code
func (r *MemoryReporter) WithCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
