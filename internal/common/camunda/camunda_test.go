package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"course-workers/internal/common/errors"
	"course-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

// ==========================
// Retry Tests
// ==========================

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), fastRetry, nil, func(context.Context) error {
		calls++
		if calls < 3 {
			return stderrors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), fastRetry, nil, func(context.Context) error {
		calls++
		return stderrors.New("unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, 4, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), fastRetry, isRetryableZeebeError, func(context.Context) error {
		calls++
		return stderrors.New("job not found")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestRetry_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := RetryConfig{MaxRetries: 5, BaseDelay: time.Second}

	_, err := Retry(ctx, slow, nil, func(context.Context) error {
		cancel()
		return stderrors.New("timeout")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	rc := RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 3))
}

// ==========================
// Error Mapping Tests
// ==========================

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"job with key 42 not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{"timeout", "deadline exceeded", "TIMEOUT_ERROR", true},
		{"not found", "job not found", "RESOURCE_NOT_FOUND", false},
		{"duplicate", "process instance already exists", errors.ErrCodeInvalidInput, false},
		{"auth", "unauthorized", "EXTERNAL_SERVICE_ERROR", false},
		{"connection", "connection refused", "EXTERNAL_SERVICE_ERROR", true},
		{"unknown", "boom", "EXTERNAL_SERVICE_ERROR", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "complete-job", 2)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestMapZeebeError_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection reset by peer")

	err := mapZeebeError(cause, "topology", 4)

	assert.ErrorIs(t, err, cause)
	stdErr, _ := errors.AsStandardError(err)
	assert.Contains(t, stdErr.Details, "after 4 attempts")
}

// ==========================
// Worker Instrumentation Tests
// ==========================

type handlerFunc func(worker.JobClient, entities.Job)

func (f handlerFunc) Handle(c worker.JobClient, j entities.Job) { f(c, j) }

func TestInstrument_TracksActiveJobsAndDuration(t *testing.T) {
	const taskType = "instrument-test"
	before := testutil.CollectAndCount(metrics.WorkerJobDuration)

	var activeDuring float64
	wrapped := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) {
		activeDuring = testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType))
	}), nil)

	wrapped(nil, entities.Job{})

	assert.Equal(t, float64(1), activeDuring)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.WorkerJobDuration))
}

func TestWorker_CloseNilIsNoOp(t *testing.T) {
	var w *Worker
	assert.NotPanics(t, w.Close)
}
