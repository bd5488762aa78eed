// internal/workers/analytics/query-merchant-analytics/handler.go
package querymerchantanalytics

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"merchant-analytics/internal/analytics"
	"merchant-analytics/internal/common/errors"
	"merchant-analytics/internal/common/logger"
	"merchant-analytics/internal/common/validation"
	"merchant-analytics/internal/models"
	"merchant-analytics/internal/workers/analytics/query-merchant-analytics/queries"
)

const (
	TaskType = "query-merchant-analytics"
)

var inputValidator = validation.MustNewValidator(validation.AnalyticsJobSchema)

type Handler struct {
	config     *Config
	aggregator *analytics.Aggregator
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, aggregator *analytics.Aggregator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		aggregator: aggregator,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

// Handle processes one job and completes or fails it on the broker.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.GetKey(),
		"workflowKey": job.GetProcessInstanceKey(),
	})

	output, err := h.process(job.GetVariables())
	if err != nil {
		h.errHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	return h.completeJob(client, job, output)
}

func (h *Handler) process(variables string) (*Output, error) {
	input, err := ParseInput(variables)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	return h.execute(ctx, input)
}

// ParseInput checks the variables against the job schema and decodes them.
func ParseInput(variables string) (*Input, error) {
	result, err := inputValidator.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	if !result.Valid {
		stdErr := errors.NewInvalidInputError(result.Error())
		stdErr.Metadata = map[string]interface{}{"validationErrors": result.Errors}
		return nil, stdErr
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}

	params := queries.Params{
		MerchantID: input.MerchantID,
		Limit:      analytics.DefaultIntentLimit,
	}
	if input.TimeRange != nil {
		params.TimeRange = *input.TimeRange
	}
	if input.Limit != nil {
		params.Limit = *input.Limit
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.aggregator, models.QueryType(input.QueryType), params)
	if err != nil {
		if stderrors.Is(err, queries.ErrUnknownQueryType) {
			return nil, errors.NewInvalidQueryTypeError(input.QueryType)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewQueryTimeoutError(input.QueryType, err)
		}
		return nil, errors.NewStoreError(input.QueryType, err)
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType":   input.QueryType,
		"merchantId":  input.MerchantID,
		"rowCount":    rowCount,
		"executionMs": execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
