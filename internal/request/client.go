// Package request is the shared HTTP client every adapter fetches through.
// It retries transient failures a bounded number of times with a fixed
// backoff and reports exhausted requests as *Error.
package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"wikispider/internal/components/assert"
	"wikispider/internal/components/telemetry"
	"wikispider/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wikispider/internal/request")

const (
	report_client_do = "client.do"
)

const (
	DefaultRetries = 3
	DefaultBackoff = 300 * time.Millisecond
	DefaultTimeout = 60 * time.Second

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/90.0.4430.212 Safari/537.36"
)

// Error is returned once every attempt of a request has failed. Status is
// zero when the last attempt failed before a response was received.
type Error struct {
	Method string
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request %s %s failed with status code %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	// Retries is the number of attempts made after the first one fails,
	// zero falls back to DefaultRetries and negative values disable retrying.
	Retries int
	// Backoff is the fixed wait between attempts, zero falls back to
	// DefaultBackoff.
	Backoff time.Duration
	Timeout time.Duration
	// CloudflareBypass wraps the transport so requests look like they come
	// from a regular browser.
	CloudflareBypass bool
	// Output receives a dump of every exchange when non-nil.
	Output restyutil.InstrumentOutput
}

// Client is safe for concurrent use, one instance is shared by all adapters.
type Client struct {
	http    *resty.Client
	retries int
	backoff time.Duration
	tel     telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("request", tel)

	switch {
	case opts.Retries == 0:
		opts.Retries = DefaultRetries
	case opts.Retries < 0:
		opts.Retries = 0
	}
	if opts.Backoff == 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("User-Agent", DefaultUserAgent)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	restyutil.InstrumentTracing(httpClient, tracer)
	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &Client{
		http:    httpClient,
		retries: opts.Retries,
		backoff: opts.Backoff,
		tel:     tel,
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Do performs the request, retrying on transport errors and non-2xx
// statuses. The returned response always has a 2xx status.
func (c *Client) Do(ctx context.Context, method, url string) (*resty.Response, error) {
	ctx, span := tracer.Start(ctx, "Do")
	defer span.End()
	span.SetAttributes(
		attribute.String("method", method),
		attribute.String("url", url),
	)

	var lastErr *Error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr.Err = errors.Join(lastErr.Err, ctx.Err())
				span.RecordError(lastErr)
				span.SetStatus(codes.Error, "context done while retrying")
				return nil, lastErr
			case <-time.After(c.backoff):
			}
		}

		res, err := c.http.R().SetContext(ctx).Execute(method, url)
		if err == nil && isSuccess(res.StatusCode()) {
			span.SetAttributes(attribute.Int("attempts", attempt+1))
			return res, nil
		}

		lastErr = &Error{Method: method, URL: url, Err: err}
		if err == nil {
			lastErr.Status = res.StatusCode()
		}
		if ctx.Err() != nil {
			break
		}
	}

	c.tel.ReportDebug(report_client_do, lastErr)
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "request failed")
	return nil, lastErr
}

// Get returns the body of a successful GET request.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.Do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// GetJSON decodes the body of a successful GET request into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	err = json.Unmarshal(body, out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
