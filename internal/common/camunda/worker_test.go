package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-analytics/internal/common/errors"
	"merchant-analytics/internal/common/logger"
	"merchant-analytics/internal/common/metrics"
)

type handlerFunc func(client worker.JobClient, job entities.Job) error

func (f handlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

func testJob() entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: "instrument-test"}}
}

func TestInstrument_RecordsOutcome(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("completed", func(t *testing.T) {
		taskType := "instrument-test-ok"
		before := testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType))

		calls := 0
		h := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error {
			calls++
			return nil
		}), nil, log)
		h(nil, testJob())

		assert.Equal(t, 1, calls)
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(taskType)))
		assert.Equal(t, float64(0), testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
	})

	t.Run("failed with standard error code", func(t *testing.T) {
		taskType := "instrument-test-fail"
		code := string(errors.ErrCodeInvalidIdentifier)
		before := testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, code))

		h := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error {
			return errors.NewInvalidIdentifierError("merchant_dashboard", stderrors.New("22P02"))
		}), nil, log)
		h(nil, testJob())

		assert.Equal(t, before+1, testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, code)))
	})

	t.Run("failed with plain error", func(t *testing.T) {
		taskType := "instrument-test-plain"
		code := string(errors.ErrCodeInternal)

		h := Instrument(taskType, handlerFunc(func(worker.JobClient, entities.Job) error {
			return stderrors.New("boom")
		}), nil, log)
		h(nil, testJob())

		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(taskType, code)))
	})
}

func TestRetry(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	log := logger.NewNoOpLogger()

	t.Run("transient errors are retried until success", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), rc, "topology", log, func(context.Context) error {
			attempts++
			if attempts < 3 {
				return stderrors.New("rpc error: code = Unavailable desc = connection refused")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), rc, "topology", log, func(context.Context) error {
			attempts++
			return stderrors.New("permission denied")
		})

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		err := Retry(context.Background(), rc, "topology", log, func(context.Context) error {
			attempts++
			return stderrors.New("deadline exceeded")
		})

		require.Error(t, err)
		assert.Equal(t, rc.MaxRetries+1, attempts)
	})

	t.Run("context cancellation aborts backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := &RetryConfig{MaxRetries: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}

		err := Retry(ctx, slow, "topology", log, func(context.Context) error {
			cancel()
			return stderrors.New("unavailable")
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("connection reset by peer")))
	assert.True(t, isRetryableZeebeError(stderrors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(stderrors.New("NOT_FOUND: no such job")))
}
