package telemetry

import (
	"fmt"
)

// API is where components report what happened to them. Production code
// logs through SlogAPI, tests assert on MemoryAPI.
type API interface {
	// ReportBroken reports a component that failed in a way someone should
	// fix. The id names the component, not the line that failed: an ambr
	// adapter that cannot parse one avatar reports `adapter.parse` under
	// the adapter's scope and puts the avatar id in params.
	//
	// Ids are lowercase, underscores separate words of a component name and
	// dots separate a component from its method.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something worth investigating that did not stop
	// the component, a skipped item or a missing optional asset.
	ReportWarning(id string, params ...any)

	// ReportDebug is dropped unless running verbosely.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a data point, e.g. how many records a group
	// produced. Counts with the same id are not meant to be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id it reports with a namespace, typically the
// game, category and source of an adapter.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
