package helper

import (
	"context"
	"sync"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
)

// ExportedLog is the part of an exported OpenTelemetry log record the tests look at.
type ExportedLog struct {
	Body    string
	TraceID trace.TraceID
}

// LogExporterSpy is an sdklog.Exporter that keeps every exported record in memory.
type LogExporterSpy struct {
	logs []ExportedLog
	mu   sync.Mutex
}

// NewLogExporterSpy creates an empty LogExporterSpy.
func NewLogExporterSpy() *LogExporterSpy {
	return &LogExporterSpy{}
}

// Export implements sdklog.Exporter. Records are copied, the SDK reuses them.
func (s *LogExporterSpy) Export(_ context.Context, records []sdklog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		s.logs = append(s.logs, ExportedLog{Body: record.Body().AsString(), TraceID: record.TraceID()})
	}

	return nil
}

// Shutdown implements sdklog.Exporter.
func (s *LogExporterSpy) Shutdown(context.Context) error {
	return nil
}

// ForceFlush implements sdklog.Exporter.
func (s *LogExporterSpy) ForceFlush(context.Context) error {
	return nil
}

// Logs returns a copy of the exported records.
func (s *LogExporterSpy) Logs() []ExportedLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ExportedLog(nil), s.logs...)
}

// HasBody reports whether a record with the given body was exported.
func (s *LogExporterSpy) HasBody(body string) bool {
	for _, log := range s.Logs() {
		if log.Body == body {
			return true
		}
	}

	return false
}

var _ sdklog.Exporter = (*LogExporterSpy)(nil)
