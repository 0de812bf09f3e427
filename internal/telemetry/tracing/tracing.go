package tracing

import (
	"fmt"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GlobalTracer is used to create spans all over the place
var GlobalTracer = otel.Tracer("fitzone-backend")

// EndSpanWithErrCheck will end the span, but also check the provided error,
// and if not nil, set the span status to error
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

// HoneycombSetup sets up the OpenTelemetry exporter pipeline and instruments
// the redis client. The returned shutdown function must be called before exit.
func HoneycombSetup(honeycombTracingEnabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !honeycombTracingEnabled {
		log.Debugln("honeycomb tracing disabled")
		return func() {}, nil
	}

	// uses HONEYCOMB_API_KEY and OTEL_EXPORTER_* env vars
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, fmt.Errorf("configure open telemetry: %w", err)
	}

	rdb.AddHook(redisotel.NewTracingHook())

	log.Debugln("honeycomb tracing set up")

	return otelShutdown, nil
}
