package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs, err := New(Options{ServiceName: "course-workers-test", Registerer: reg})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "get-course-suggestions", "completed")
	obs.RecordJobDuration(ctx, "get-course-suggestions", 15*time.Millisecond, "completed")
	obs.RecordSuggestions(ctx, 8, false)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	// The exporter keeps dotted instrument names and appends type and unit suffixes.
	assert.Contains(t, names, "jobs.processed_total")
	assert.Contains(t, names, "jobs.duration_milliseconds")
	assert.Contains(t, names, "recommendations.generated_total")
}

func TestObservability_NilIsNoop(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "x", "failed")
	obs.RecordSuggestions(ctx, 0, true)
	spanCtx, span := obs.StartSpan(ctx, "noop")
	span.End()

	assert.Equal(t, ctx, spanCtx)
	assert.NoError(t, obs.Shutdown(ctx))
}

func TestObservability_SpanWithoutTracing(t *testing.T) {
	obs, err := New(Options{ServiceName: "svc", Registerer: promclient.NewRegistry()})
	require.NoError(t, err)

	_, span := obs.StartSpan(context.Background(), "get-suggestions")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
