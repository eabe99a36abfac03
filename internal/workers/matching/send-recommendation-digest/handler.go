package sendrecommendationdigest

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
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

const (
	TaskType   = "send-recommendation-digest"
	StatusSent = "sent"
)

type RunReader interface {
	LatestRun(ctx context.Context, campaignID string, limit int) ([]models.MatchResult, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) (string, error)
}

type InputValidator interface {
	ValidateInput(taskType, variables string) error
}

type Handler struct {
	config     *Config
	runs       RunReader
	mailer     Mailer
	validator  InputValidator
	obs        *observability.Observability
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, runs RunReader, mailer Mailer, validator InputValidator, obs *observability.Observability, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		runs:       runs,
		mailer:     mailer,
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

// Execute mails the campaign's latest run to the recipient.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.CampaignID) == "" {
		return nil, apperrors.NewInvalidJobInputError("campaignId is required")
	}
	if !isValidEmail(input.RecipientEmail) {
		return nil, apperrors.NewInvalidJobInputError(fmt.Sprintf("invalid recipient email: %q", input.RecipientEmail))
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.config.DefaultLimit
	}
	if limit > maxDigestLimit {
		limit = maxDigestLimit
	}

	results, err := h.runs.LatestRun(ctx, input.CampaignID, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperrors.NewRunNotFoundError(input.CampaignID)
	}

	subject := fmt.Sprintf("%s for campaign %s", h.config.SubjectPrefix, input.CampaignID)
	messageID, err := h.mailer.Send(ctx, input.RecipientEmail, subject, renderText(input.CampaignID, results), renderHTML(input.CampaignID, results))
	if err != nil {
		return nil, apperrors.NewEmailSendError(err)
	}

	h.logger.Info("recommendation digest sent", map[string]interface{}{
		"campaignId": input.CampaignID,
		"runId":      results[0].RunID,
		"sentCount":  len(results),
		"messageId":  messageID,
	})

	return &Output{
		CampaignID: input.CampaignID,
		RunID:      results[0].RunID,
		SentCount:  len(results),
		MessageID:  messageID,
		Status:     StatusSent,
	}, nil
}

func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}

func renderText(campaignID string, results []models.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d recommended creators for campaign %s\n\n", len(results), campaignID)
	for _, r := range results {
		fmt.Fprintf(&b, "%d. %s: %.1f%%\n", r.Rank, r.CandidateID, r.OverallScore*100)
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "   - %s\n", reason)
		}
	}
	return b.String()
}

func renderHTML(campaignID string, results []models.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Recommended creators for campaign %s</h2>\n<ol>\n", html.EscapeString(campaignID))
	for _, r := range results {
		fmt.Fprintf(&b, "<li><strong>%s</strong> %.1f%%", html.EscapeString(r.CandidateID), r.OverallScore*100)
		if len(r.Reasons) > 0 {
			b.WriteString("<ul>")
			for _, reason := range r.Reasons {
				fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(reason))
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
	return b.String()
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
