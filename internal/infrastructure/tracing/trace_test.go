package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestSpanParenting(t *testing.T) {
	tracer, logs := newObserved()

	parent, ctx := tracer.Start(context.Background(), "ingest")
	child, _ := tracer.Start(ctx, "ingest.open")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Empty(t, parent.ParentID)
	assert.Equal(t, parent.TraceID, TraceIDFrom(ctx))

	child.SetTag("source", "a.aia")
	child.End(errors.New("boom"))
	child.End(nil)
	parent.End(nil)
	tracer.Close()

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "Span completed with error", entries[0].Message)
	assert.Equal(t, "a.aia", entries[0].ContextMap()["tag.source"])
	assert.Equal(t, "Span completed", entries[1].Message)
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	span, ctx := tracer.Start(context.Background(), "noop")
	span.SetTag("k", "v")
	span.End(nil)

	assert.NotEmpty(t, span.TraceID)
	assert.Equal(t, span.SpanID, SpanIDFrom(ctx))
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, logs := newObserved()
	tracer.Close()
	tracer.Close()

	span, _ := tracer.Start(context.Background(), "late")
	span.End(nil)
	assert.Equal(t, 0, logs.Len())
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObserved()

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	var seen TraceID
	router.GET("/projects/:id", func(c *gin.Context) {
		seen = TraceIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/projects/abc", nil)
	req.Header.Set(HeaderTraceID, "trace-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	tracer.Close()

	assert.Equal(t, TraceID("trace-123"), seen)
	assert.Equal(t, "trace-123", w.Header().Get(HeaderTraceID))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET /projects/:id", fields["operation"])
	assert.Equal(t, "204", fields["tag.http.status"])
}
