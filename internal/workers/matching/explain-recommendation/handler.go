package explainrecommendation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/metrics"
	"matching-workers/internal/common/observability"
	"matching-workers/internal/models"
)

const TaskType = "explain-recommendation"

type Explainer interface {
	ExplainRecommendation(ctx context.Context, campaignID, candidateID string) (*models.Explanation, error)
}

type InputValidator interface {
	ValidateInput(taskType, variables string) error
}

type Handler struct {
	config     *Config
	explainer  Explainer
	validator  InputValidator
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, explainer Explainer, validator InputValidator, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		explainer:  explainer,
		validator:  validator,
		obs:        obs,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	done := metrics.TrackJob(TaskType)

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.Key))
	defer span.End()

	output, err := h.run(ctx, job)
	if err != nil {
		// A missing result is a process outcome, not a worker failure.
		stdErr := apperrors.Normalize(err)
		if !apperrors.IsNotFound(stdErr) {
			span.RecordError(stdErr)
		}
		h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
		done(string(stdErr.Code))
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
		return
	}

	h.completeJob(client, job, output)
	done("")
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) run(ctx context.Context, job entities.Job) (*Output, error) {
	if h.validator != nil {
		if err := h.validator.ValidateInput(TaskType, job.Variables); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidJobInputError("parse input: " + err.Error())
	}
	return h.Execute(ctx, &input)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	explanation, err := h.explainer.ExplainRecommendation(ctx, input.CampaignID, input.CandidateID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("recommendation explained", map[string]interface{}{
		"campaignId":   explanation.CampaignID,
		"candidateId":  explanation.CandidateID,
		"overallScore": explanation.OverallScore,
	})
	return explanation, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}
