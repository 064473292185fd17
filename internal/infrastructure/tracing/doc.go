/*
Package tracing provides lightweight spans for ingestion stages and HTTP requests.

Spans are buffered and exported asynchronously to the zap logger. Trace
context travels in the request context and, across HTTP, in the
X-Trace-ID and X-Span-ID headers.

# Usage

	tracer := tracing.New("unchive", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.Start(ctx, "ingest.open")
	span.SetTag("source", name)
	err := open(ctx)
	span.End(err)

A nil *Tracer is valid and produces spans that are never exported.
*/
package tracing
