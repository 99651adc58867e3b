package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

// Report is a single call recorded by MemoryAPI.
type Report struct {
	Kind   string
	ID     string
	Params []any
	Count  int64
}

// MemoryAPI implements API by keeping every report in memory, it is
// meant for asserting on reports in tests.
type MemoryAPI struct {
	mutex   sync.Mutex
	reports []Report
}

func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{}
}

func (m *MemoryAPI) push(r Report) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reports = append(m.reports, r)
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.push(Report{Kind: "broken", ID: id, Params: params})
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.push(Report{Kind: "warning", ID: id, Params: params})
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.push(Report{Kind: "debug", ID: msg, Params: params})
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.push(Report{Kind: "count", ID: id, Count: count})
}

// Reports returns a copy of the reports of the given kind ("broken",
// "warning", "debug", "count"), an empty kind returns everything.
func (m *MemoryAPI) Reports(kind string) []Report {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := []Report{}
	for _, r := range m.reports {
		if kind == "" || r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether a report of the given kind was made with an id
// ending in suffix.
func (m *MemoryAPI) Has(kind, suffix string) bool {
	for _, r := range m.Reports(kind) {
		if strings.HasSuffix(r.ID, suffix) {
			return true
		}
	}
	return false
}

func (r Report) String() string {
	if r.Kind == "count" {
		return fmt.Sprintf("[%s] %s = %d", r.Kind, r.ID, r.Count)
	}
	return fmt.Sprintf("[%s] %s %v", r.Kind, r.ID, r.Params)
}
