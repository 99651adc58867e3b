package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("wikispider/lib/telemetry")

var (
	cpuGauge, _       = meter.Float64Gauge("process.cpu_usage", metric.WithUnit("%"))
	heapGauge, _      = meter.Int64Gauge("process.heap_alloc", metric.WithUnit("MB"))
	liveObjGauge, _   = meter.Int64Gauge("process.live_objects")
	goroutineGauge, _ = meter.Int64Gauge("process.goroutines")
)

// InstrumentPerfStats samples process stats every interval until ctx is
// done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)

				cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
				if err == nil && len(cpuUsage) > 0 {
					cpuGauge.Record(ctx, cpuUsage[0])
				} else if err != nil {
					slog.Debug("failed to read cpu usage", "err", err)
				}

				heapGauge.Record(ctx, int64(memStats.HeapAlloc/1_000_000))
				liveObjGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
			case <-ctx.Done():
				return
			}
		}
	}()
}
