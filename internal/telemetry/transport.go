package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const httpScopeName = "github.com/missionrelease/assetlink/http"

// InstrumentedTransport wraps an http.RoundTripper with OTel tracing and
// metrics. Every round trip gets a client span and is counted in
// assetlink.http.* metrics. Use WrapTransport to create one.
type InstrumentedTransport struct {
	inner  http.RoundTripper
	api    string
	tracer trace.Tracer
	reqs   metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapTransport returns rt decorated with OTel instrumentation, labelling
// every request with api (e.g. "jira", "assets"). When telemetry is disabled
// rt is returned as-is.
func WrapTransport(rt http.RoundTripper, api string) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if !Enabled() {
		return rt
	}
	m := Meter(httpScopeName)
	reqs, _ := m.Int64Counter("assetlink.http.requests",
		metric.WithDescription("Total HTTP requests sent to Atlassian APIs"),
	)
	dur, _ := m.Float64Histogram("assetlink.http.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("assetlink.http.errors",
		metric.WithDescription("HTTP requests that failed or returned a non-2xx status"),
	)
	return &InstrumentedTransport{
		inner:  rt,
		api:    api,
		tracer: Tracer(httpScopeName),
		reqs:   reqs,
		dur:    dur,
		errs:   errs,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attrs := []attribute.KeyValue{
		attribute.String("assetlink.api", t.api),
		attribute.String("http.request.method", req.Method),
	}
	ctx, span := t.tracer.Start(req.Context(), t.api+" "+req.Method,
		trace.WithAttributes(append(attrs, attribute.String("url.path", req.URL.Path))...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	start := time.Now()
	t.reqs.Add(ctx, 1, metric.WithAttributes(attrs...))

	resp, err := t.inner.RoundTrip(req.WithContext(ctx))

	t.dur.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
		t.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	return resp, nil
}
