package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"wikispider/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	return NewClient(Options{
		Retries: retries,
		Backoff: time.Millisecond,
		Timeout: time.Second * 5,
	}, telemetry.NewMemoryAPI())
}

func TestClientRetriesUntilSuccess(t *testing.T) {
	var hits int64
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&hits, 1)
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(3)
	var out struct {
		Ok bool `json:"ok"`
	}
	err := client.GetJSON(context.Background(), server.URL, &out)
	require.NoError(t, err)
	require.True(t, out.Ok)
	require.EqualValues(t, 3, atomic.LoadInt64(&hits))
	require.Equal(t, DefaultUserAgent, userAgent.Load())
}

func TestClientGivesUpAfterRetryBound(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(3)
	_, err := client.Get(context.Background(), server.URL+"/missing.png")
	require.Error(t, err)

	var reqErr *Error
	require.True(t, errors.As(err, &reqErr))
	require.Equal(t, http.MethodGet, reqErr.Method)
	require.Equal(t, server.URL+"/missing.png", reqErr.URL)
	require.Equal(t, http.StatusNotFound, reqErr.Status)
	// the first attempt plus three retries
	require.EqualValues(t, 4, atomic.LoadInt64(&hits))
}

func TestClientNegativeRetriesDisablesRetrying(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(-1)
	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt64(&hits))
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(1)
	_, err := client.Get(context.Background(), url)

	var reqErr *Error
	require.True(t, errors.As(err, &reqErr))
	require.Zero(t, reqErr.Status)
	require.NotNil(t, reqErr.Err)
}

func TestClientStopsOnCancelledContext(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Options{
		Retries: 3,
		Backoff: time.Hour,
	}, telemetry.NewMemoryAPI())

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*200)
	defer cancel()

	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.EqualValues(t, 1, atomic.LoadInt64(&hits))
}

type dumpOutput struct {
	mutex sync.Mutex
	dumps map[string]string
}

func (o *dumpOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.dumps[id] = contents
}

func TestClientDumpsExchangesToOutput(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id": 10000002}`))
	}))
	defer server.Close()

	output := &dumpOutput{dumps: map[string]string{}}
	tel := telemetry.NewMemoryAPI()
	client := NewClient(Options{
		Retries: 1,
		Backoff: time.Millisecond,
		Output:  output,
	}, tel)

	body, err := client.Get(context.Background(), server.URL+"/avatar")
	require.NoError(t, err)
	require.Equal(t, `{"id": 10000002}`, string(body))

	output.mutex.Lock()
	defer output.mutex.Unlock()
	require.Len(t, output.dumps, 2)
	for id, dump := range output.dumps {
		require.True(t, strings.HasPrefix(dump, "---- REQUEST ----"), id)
		require.Contains(t, dump, "GET "+server.URL+"/avatar", id)
		require.Contains(t, dump, "<NO BODY AVAILABLE>", id)
	}
	require.Empty(t, tel.Reports("broken"))
}
