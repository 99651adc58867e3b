package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExporterTransport(t *testing.T) {
	cases := []struct {
		endpoint string
		grpc     bool
		url      string
		fails    bool
	}{
		{endpoint: "grpc://localhost:4317", grpc: true, url: "http://localhost:4317"},
		{endpoint: "grpcs://otel.example.com", grpc: true, url: "https://otel.example.com"},
		{endpoint: "http://localhost:4318/v1/traces", url: "http://localhost:4318/v1/traces"},
		{endpoint: "localhost:4317", fails: true},
		{endpoint: "udp://localhost:4317", fails: true},
	}
	for _, c := range cases {
		grpc, url, err := Exporter{Endpoint: c.endpoint}.transport()
		if c.fails {
			require.Error(t, err, c.endpoint)
			continue
		}
		require.NoError(t, err, c.endpoint)
		require.Equal(t, c.grpc, grpc, c.endpoint)
		require.Equal(t, c.url, url, c.endpoint)
	}
}

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupRejectsBadEndpoint(t *testing.T) {
	_, err := Setup(context.Background(), "test:telemetry", Config{
		Traces: Exporter{Endpoint: "localhost"},
	})
	require.Error(t, err)
}
