// Package testutil builds the collaborators adapter tests share.
package testutil

import (
	"fmt"
	"testing"
	"time"
	"wikispider/internal/assets"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/request"
	"wikispider/internal/spider"
	libtelemetry "wikispider/lib/telemetry"
)

type DepsResult struct {
	spider.Deps
	// Memory is the same telemetry as Deps.Tel, kept typed so tests can
	// inspect reports.
	Memory *telemetry.MemoryAPI
}

// SetupDeps returns adapter deps backed by a fresh asset store under
// t.TempDir() and a client that does not retry.
func SetupDeps(t testing.TB, name string) DepsResult {
	t.Helper()
	t.Cleanup(libtelemetry.SetupForTesting(t, fmt.Sprintf("test:%s", name)))

	store, err := assets.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	memory := telemetry.NewMemoryAPI()
	client := request.NewClient(request.Options{Retries: -1, Backoff: time.Millisecond}, memory)

	return DepsResult{
		Deps: spider.Deps{
			Client: client,
			Store:  store,
			Tel:    memory,
		},
		Memory: memory,
	}
}
