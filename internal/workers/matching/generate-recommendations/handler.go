package generaterecommendations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"matching-workers/internal/common/aws"
	apperrors "matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/metrics"
	"matching-workers/internal/common/observability"
	"matching-workers/internal/models"
)

const TaskType = "generate-recommendations"

type Engine interface {
	GenerateRecommendations(ctx context.Context, criteria *models.MatchingCriteria) ([]models.MatchResult, error)
}

type EventPublisher interface {
	PublishRecommendationsGenerated(ctx context.Context, event aws.RecommendationsGenerated) (string, error)
}

type InputValidator interface {
	ValidateInput(taskType, variables string) error
}

type Handler struct {
	config     *Config
	engine     Engine
	publisher  EventPublisher
	validator  InputValidator
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler builds the handler. publisher and validator may be nil.
func NewHandler(config *Config, engine Engine, publisher EventPublisher, validator InputValidator, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		publisher:  publisher,
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
		stdErr := apperrors.Normalize(err)
		span.RecordError(stdErr)
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

// Execute runs one recommendation request and publishes the generated
// event when results were persisted.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	results, err := h.engine.GenerateRecommendations(ctx, input.Criteria())
	if err != nil {
		return nil, err
	}

	output := &Output{
		CampaignID:       input.CampaignID,
		AlgorithmVersion: h.config.AlgorithmVersion,
		ResultCount:      len(results),
		Recommendations:  results,
	}
	if len(results) > 0 {
		output.RunID = results[0].RunID
		output.AlgorithmVersion = results[0].AlgorithmVersion
	}

	if h.config.PublishEvents && h.publisher != nil && len(results) > 0 {
		h.publish(ctx, output)
	}

	h.logger.Info("recommendations ready", map[string]interface{}{
		"campaignId":  output.CampaignID,
		"runId":       output.RunID,
		"resultCount": output.ResultCount,
	})
	return output, nil
}

// publish reports the run. The results are already committed, so a
// failed publish is logged and the job still completes.
func (h *Handler) publish(ctx context.Context, output *Output) {
	ids := make([]string, len(output.Recommendations))
	for i, r := range output.Recommendations {
		ids[i] = r.CandidateID
	}

	messageID, err := h.publisher.PublishRecommendationsGenerated(ctx, aws.RecommendationsGenerated{
		CampaignID:       output.CampaignID,
		RunID:            output.RunID,
		AlgorithmVersion: output.AlgorithmVersion,
		ResultCount:      output.ResultCount,
		CandidateIDs:     ids,
	})
	if err != nil {
		stdErr := apperrors.NewNotificationPublishError(err)
		h.logger.Warn("recommendations event not published", map[string]interface{}{
			"campaignId": output.CampaignID,
			"runId":      output.RunID,
			"errorCode":  string(stdErr.Code),
			"error":      err,
		})
		return
	}
	h.logger.Debug("recommendations event published", map[string]interface{}{
		"campaignId": output.CampaignID,
		"messageId":  messageID,
	})
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
