package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reputationlabs/repstress/internal/runner"
)

// spanRequester decorates a Requester with one client span per call.
type spanRequester struct {
	inner  runner.Requester
	tracer trace.Tracer
}

// WithSpans wraps req so every request is recorded as a client span carrying
// the target and status. With a no-op tracer the overhead is negligible.
func WithSpans(req runner.Requester, tracer trace.Tracer) runner.Requester {
	return &spanRequester{inner: req, tracer: tracer}
}

func (s *spanRequester) Do(ctx context.Context, target string) runner.Outcome {
	ctx, span := s.tracer.Start(ctx, "reputation ranking",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(attribute.String("repstress.target", target))

	out := s.inner.Do(ctx, target)

	span.SetAttributes(attribute.Int("http.response.status_code", out.Status))
	switch out.Kind {
	case runner.KindSuccess:
		span.SetStatus(codes.Ok, "")
	case runner.KindTransportError:
		if out.Err != nil {
			span.RecordError(out.Err)
		}
		span.SetStatus(codes.Error, out.Reason())
	default:
		span.SetStatus(codes.Error, out.Reason())
	}
	span.End()

	return out
}
