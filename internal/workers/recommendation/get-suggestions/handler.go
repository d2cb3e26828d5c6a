// internal/workers/recommendation/get-suggestions/handler.go
package getsuggestions

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"course-workers/internal/common/errors"
	"course-workers/internal/common/events"
	"course-workers/internal/common/logger"
	"course-workers/internal/common/metrics"
	"course-workers/internal/common/observability"
	"course-workers/internal/common/validation"
	"course-workers/internal/models"
	"course-workers/internal/recommendation/signals"
	"course-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "get-course-suggestions"
)

// Suggester produces ranked suggestions for a user.
type Suggester interface {
	GetSuggestions(ctx context.Context, userID string) ([]models.ScoredCourse, error)
	GetSuggestionsFor(ctx context.Context, userID string, source signals.Collaborator) ([]models.ScoredCourse, error)
}

type Handler struct {
	config       *Config
	service      Suggester
	publisher    events.Publisher
	errorHandler *errors.ErrorHandler
	activity     *registry.Activity
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(
	config *Config,
	service Suggester,
	publisher events.Publisher,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      service,
		publisher:    publisher,
		errorHandler: errors.NewErrorHandler(log),
		activity:     registry.MustActivity(TaskType),
		obs:          obs,
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job)
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError("variables are not a JSON object: " + err.Error())
	}
	if err := validation.Validate(h.activity.InputSchema, vars); err != nil {
		return nil, err
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError("parse input: " + err.Error())
	}
	return h.Execute(ctx, &input)
}

// Execute runs the suggestion pipeline for one request and announces the
// result. Event publishing never fails the request.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	ctx, span := h.obs.StartSpan(ctx, "worker."+TaskType, attribute.String("user.id", userID))
	defer span.End()

	var (
		suggestions []models.ScoredCourse
		err         error
	)
	if input.Snapshot != nil {
		suggestions, err = h.service.GetSuggestionsFor(ctx, userID, input.Snapshot)
	} else {
		suggestions, err = h.service.GetSuggestions(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	output := &Output{
		RequestID:   uuid.NewString(),
		UserID:      userID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		GeneratedAt: time.Now().UTC(),
	}
	h.publish(ctx, output)
	return output, nil
}

func (h *Handler) publish(ctx context.Context, output *Output) {
	ids := make([]string, 0, len(output.Suggestions))
	for _, sc := range output.Suggestions {
		ids = append(ids, sc.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.PublishTimeout)
	defer cancel()

	event := events.NewEvent(events.SuggestionsGenerated, GeneratedPayload{
		RequestID: output.RequestID,
		UserID:    output.UserID,
		CourseIDs: ids,
		Count:     output.Count,
	})
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish suggestions event", map[string]interface{}{
			"requestId": output.RequestID,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":    job.Key,
		"requestId": output.RequestID,
		"count":     output.Count,
	})
}
