package dispatch

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/metrics"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

const (
	// DefaultRegion is used when neither the request nor the config names one.
	DefaultRegion = "us-south"
	// DefaultTimeout bounds each outbound call when none is configured.
	DefaultTimeout = 30 * time.Second

	unknownTool = "unknown"

	tracerName = "github.com/bobmcallan/openapi-toolproxy/internal/dispatch"
)

// Tools resolves tool names to records. *registry.Registry implements it.
type Tools interface {
	Lookup(name string) (registry.ToolRecord, bool)
}

// Options configures a Dispatcher.
type Options struct {
	Timeout       time.Duration
	DefaultRegion string
	Metrics       *metrics.Metrics
}

// Dispatcher interprets tool records. It is safe for concurrent use.
type Dispatcher struct {
	tools         Tools
	transport     Transport
	timeout       time.Duration
	defaultRegion string
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	logger        *common.Logger
}

// New creates a dispatcher over tools using transport for outbound calls.
func New(tools Tools, transport Transport, opts Options, logger *common.Logger) *Dispatcher {
	d := &Dispatcher{
		tools:         tools,
		transport:     transport,
		timeout:       opts.Timeout,
		defaultRegion: opts.DefaultRegion,
		metrics:       opts.Metrics,
		tracer:        otel.Tracer(tracerName),
		logger:        logger,
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.defaultRegion == "" {
		d.defaultRegion = DefaultRegion
	}
	return d
}

// Invoke calls the named tool. Any upstream status is returned as a Result;
// errors are *ToolNotFoundError or *UpstreamError.
func (d *Dispatcher) Invoke(ctx context.Context, name string, req Request) (*Result, error) {
	start := time.Now()

	rec, ok := d.tools.Lookup(name)
	if !ok {
		// Unknown names are caller input; keep them out of metric labels.
		d.metrics.ObserveInvocation(unknownTool, metrics.OutcomeNotFound, 0, time.Since(start))
		d.logger.Debug().Str("tool", name).Msg("tool not found")
		return nil, &ToolNotFoundError{Name: name}
	}

	ctx, span := d.tracer.Start(ctx, "toolproxy.invoke",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tool.name", rec.Name),
			attribute.String("tool.source", rec.Source),
			attribute.String("http.request.method", rec.Method),
		),
	)
	defer span.End()

	call, err := d.buildCall(rec, req)
	if err != nil {
		return nil, d.fail(span, rec, call.URL, err, start)
	}
	span.SetAttributes(attribute.String("url.full", call.URL))

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := d.transport.Send(callCtx, call)
	if err != nil {
		return nil, d.fail(span, rec, call.URL, err, start)
	}

	duration := time.Since(start)
	span.SetAttributes(attribute.Int("http.response.status_code", result.StatusCode))
	d.metrics.ObserveInvocation(rec.Name, metrics.OutcomeOK, result.StatusCode, duration)
	d.logger.Info().
		Str("tool", rec.Name).
		Str("method", call.Method).
		Int("status", result.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("tool invoked")

	return result, nil
}

// buildCall resolves the record and request into an outbound call.
func (d *Dispatcher) buildCall(rec registry.ToolRecord, req Request) (Call, error) {
	region := req.Region
	if region == "" {
		region = d.defaultRegion
	}

	target := BaseURL(rec, region) + TemplatePath(rec.PathTemplate, req.pathValues())
	target = joinQuery(target, req.queryValues().Encode())

	call := Call{Method: rec.Method, URL: target, Header: make(http.Header, len(req.Headers)+1)}
	for _, k := range sortedHeaderKeys(req.Headers) {
		call.Header.Set(k, req.Headers[k])
	}

	body, err := req.bodyBytes()
	if err != nil {
		return call, err
	}
	if body != nil {
		call.Body = body
		if call.Header.Get("Content-Type") == "" {
			call.Header.Set("Content-Type", "application/json")
		}
	}
	return call, nil
}

func (d *Dispatcher) fail(span trace.Span, rec registry.ToolRecord, target string, err error, start time.Time) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	d.metrics.ObserveInvocation(rec.Name, metrics.OutcomeUpstream, 0, time.Since(start))
	d.logger.Warn().
		Str("tool", rec.Name).
		Str("url", target).
		Str("error", err.Error()).
		Msg("tool invocation failed")
	return &UpstreamError{Tool: rec.Name, URL: target, Err: err}
}
