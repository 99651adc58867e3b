package telemetry

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
	"wikispider/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

type instrumentResty struct {
	tel    API
	output restyutil.InstrumentOutput
	nextID *atomic.Uint64
}

// InstrumentResty reports every exchange made by client as debug reports
// and transport failures as warnings. When output is non-nil each
// completed exchange is also written to it, keyed by a per-client
// sequence number.
func InstrumentResty(client *resty.Client, tel API, output restyutil.InstrumentOutput) {
	i := instrumentResty{tel: tel, output: output, nextID: &atomic.Uint64{}}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type exchangeKey struct{}

// exchange is attached to the request context. Durations are measured
// with the monotonic clock so chrono is not involved.
type exchange struct {
	id    uint64
	start time.Time
}

func exchangeOf(req *resty.Request) (exchange, bool) {
	ex, ok := req.Context().Value(exchangeKey{}).(exchange)
	return ex, ok
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ex := exchange{id: i.nextID.Add(1), start: time.Now()}
	i.tel.ReportDebug(report_resty_request, ex.id, req.Method, req.URL, "attempt", req.Attempt)
	req.SetContext(context.WithValue(req.Context(), exchangeKey{}, ex))
	return nil
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ex, ok := exchangeOf(res.Request)
	if !ok {
		i.tel.ReportBroken(report_resty_response, "response without a request id", res.Request.URL)
		return nil
	}
	i.tel.ReportDebug(report_resty_response, ex.id, time.Since(ex.start).String(), res.Status())
	if i.output != nil {
		i.output.Write(strconv.FormatUint(ex.id, 10), restyutil.FormatHttpMessage(res))
	}
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	var elapsed time.Duration
	if ex, ok := exchangeOf(req); ok {
		elapsed = time.Since(ex.start)
	}
	i.tel.ReportWarning(report_resty_response, err, req.Method, req.URL, elapsed.String())
}
