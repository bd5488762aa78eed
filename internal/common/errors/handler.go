// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns worker errors into Zeebe fail or throw-error commands.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// JobOutcome is what the handler decided to do with a failed job.
type JobOutcome struct {
	StdErr  *StandardError
	BPMN    *BPMNError
	Throw   bool
	Retries int32
}

// Resolve classifies err for job without talking to the broker.
// Retryable codes fail the job while the engine still has retries left;
// everything else is thrown as a BPMN error so the process can route it.
func (h *ErrorHandler) Resolve(job entities.Job, err error) JobOutcome {
	stdErr := normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	out := JobOutcome{StdErr: stdErr, BPMN: bpmnErr, Throw: true}

	remaining := job.GetRetries() - 1
	if bpmnErr.Retries > 0 && remaining > 0 {
		out.Throw = false
		out.Retries = remaining
		if int32(bpmnErr.Retries) < remaining {
			out.Retries = int32(bpmnErr.Retries)
		}
	}
	return out
}

// HandleJobError reports err for job back to the engine.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	out := h.Resolve(job, err)
	h.logError(job, out)

	var sendErr error
	if out.Throw {
		sendErr = h.throwBPMNError(ctx, client, job, out.BPMN)
	} else {
		sendErr = h.failJob(ctx, client, job, out.BPMN, out.Retries)
	}
	if sendErr != nil {
		h.logger.Error("Failed to report job error", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
		})
	}
}

func normalizeError(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			_, err = withVars.Send(ctx)
			return err
		}
	}

	_, err = cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.GetKey()).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err == nil {
		if withVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			_, err = withVars.Send(ctx)
			return err
		}
	}

	_, err = cmd.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, out JobOutcome) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.GetKey(),
		"jobType":          job.GetType(),
		"errorCode":        string(out.StdErr.Code),
		"message":          out.BPMN.Message,
		"details":          out.StdErr.Details,
		"retryable":        out.StdErr.Retryable,
		"retries":          out.Retries,
		"thrown":           out.Throw,
		"errorCategory":    GetErrorCategory(out.StdErr.Code),
		"workflowInstance": job.GetProcessInstanceKey(),
	})
}
