package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gabibotos/go-handoff/log"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
)

// logExporter writes finished spans to the log and keeps the latest data of
// every opencensus view, which it serves as JSON on /metrics/opencensus.
type logExporter struct {
	lg log.Logger

	mu    sync.Mutex
	views map[string][]string
}

func newLogExporter(lg log.Logger) *logExporter {
	return &logExporter{lg: lg, views: make(map[string][]string)}
}

func (e *logExporter) ExportSpan(s *trace.SpanData) {
	e.lg.Printf("span name=%s trace=%s span=%s took=%s status=%d",
		s.Name, s.TraceID, s.SpanID, s.EndTime.Sub(s.StartTime), s.Status.Code)
}

func (e *logExporter) ExportView(vd *view.Data) {
	rows := make([]string, 0, len(vd.Rows))
	for _, r := range vd.Rows {
		rows = append(rows, r.String())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.views[vd.View.Name] = rows
}

func (e *logExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	if err := json.NewEncoder(w).Encode(e.views); err != nil {
		e.lg.Printf("failed to write opencensus views: %v", err)
	}
}
