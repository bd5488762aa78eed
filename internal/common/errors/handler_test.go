package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.messages = append(l.messages, msg)
}

func jobWithRetries(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:     42,
		Type:    "query-merchant-analytics",
		Retries: retries,
	}}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		jobRetries  int32
		err         error
		wantThrow   bool
		wantRetries int32
		wantCode    ErrorCode
	}{
		{
			name:        "retryable with plenty of engine retries is capped by code budget",
			jobRetries:  10,
			err:         NewQueryExecutionFailedError("merchant_dashboard", stderrors.New("boom")),
			wantRetries: 3,
			wantCode:    ErrCodeQueryExecutionFailed,
		},
		{
			name:        "retryable with few engine retries decrements",
			jobRetries:  2,
			err:         NewQueryTimeoutError("time_series", context.DeadlineExceeded),
			wantRetries: 1,
			wantCode:    ErrCodeQueryTimeout,
		},
		{
			name:       "retryable on last attempt is thrown",
			jobRetries: 1,
			err:        NewDatabaseConnectionFailedError(stderrors.New("connection refused")),
			wantThrow:  true,
			wantCode:   ErrCodeDatabaseConnectionFailed,
		},
		{
			name:       "invalid identifier is thrown",
			jobRetries: 3,
			err:        NewInvalidIdentifierError("top_intents", stderrors.New("22P02")),
			wantThrow:  true,
			wantCode:   ErrCodeInvalidIdentifier,
		},
		{
			name:       "plain error becomes internal and is thrown",
			jobRetries: 3,
			err:        stderrors.New("unexpected"),
			wantThrow:  true,
			wantCode:   ErrCodeInternal,
		},
	}

	h := NewErrorHandler(&recordingLogger{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.Resolve(jobWithRetries(tt.jobRetries), tt.err)

			assert.Equal(t, tt.wantThrow, out.Throw)
			assert.Equal(t, tt.wantRetries, out.Retries)
			assert.Equal(t, tt.wantCode, out.StdErr.Code)
			assert.Equal(t, string(tt.wantCode), out.BPMN.Code)
		})
	}
}
