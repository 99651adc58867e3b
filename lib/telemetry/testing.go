package telemetry

import (
	"context"
	"sync"
	"testing"
)

var (
	testEnvMutex          sync.Mutex
	setupTestEnvironments = map[string]struct{}{}
)

// SetupForTesting installs telemetry for a test package once per service
// name, the returned func flushes it.
func SetupForTesting(t testing.TB, serviceName string) func() {
	testEnvMutex.Lock()
	defer testEnvMutex.Unlock()

	_, setupAlready := setupTestEnvironments[serviceName]
	if setupAlready {
		return func() {}
	}
	setupTestEnvironments[serviceName] = struct{}{}

	tel, err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		err := tel.Shutdown(context.Background())
		if err != nil {
			t.Error(err)
		}
	}
}
