package observability

import "context"

// NoOpTracer is a tracer that does nothing. It is the default when
// Langfuse is not configured or is explicitly disabled.
type NoOpTracer struct{}

func (n *NoOpTracer) StartTrace(_ string, _ TraceOptions) TraceContext {
	return TraceContext{}
}

func (n *NoOpTracer) RecordGeneration(_ TraceContext, _ GenerationInput) {}

func (n *NoOpTracer) CompleteTrace(_ TraceContext, _ CompleteOptions) {}

func (n *NoOpTracer) Flush(_ context.Context) error { return nil }

func (n *NoOpTracer) Stop(_ context.Context) error { return nil }
