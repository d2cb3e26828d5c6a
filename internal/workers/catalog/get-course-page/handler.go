// internal/workers/catalog/get-course-page/handler.go
package getcoursepage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"course-workers/internal/catalog/pagination"
	"course-workers/internal/common/errors"
	"course-workers/internal/common/logger"
	"course-workers/internal/common/metrics"
	"course-workers/internal/common/observability"
	"course-workers/internal/common/validation"
	"course-workers/internal/models"
	"course-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "get-course-page"
)

// SessionStore hands out the page loader bound to a browse session.
type SessionStore interface {
	Loader(sessionID string, query models.CatalogQuery, pageSize int) *pagination.Loader
}

type Handler struct {
	config       *Config
	sessions     SessionStore
	errorHandler *errors.ErrorHandler
	activity     *registry.Activity
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(config *Config, sessions SessionStore, obs *observability.Observability, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sessions:     sessions,
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

// Execute loads the next page of the session's catalog view. A new session
// ID is issued when none is given; page 1 restarts the session.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	query, err := buildQuery(input)
	if err != nil {
		return nil, err
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, span := h.obs.StartSpan(ctx, "worker."+TaskType,
		attribute.String("session.id", sessionID),
		attribute.String("query", query.Key()),
	)
	defer span.End()

	loader := h.sessions.Loader(sessionID, query, input.PageSize)
	if input.Page == 1 && loader.Cursor().Page > 0 {
		loader.Reset(loader.Query())
	}

	res, err := loader.Load(ctx)
	switch {
	case stderrors.Is(err, pagination.ErrRequestInFlight):
		return nil, errors.NewPageRequestInFlightError(sessionID)
	case stderrors.Is(err, pagination.ErrStaleResponse):
		return nil, errors.NewPageRequestInFlightError(sessionID).WithMetadata("reason", "superseded")
	case err != nil:
		return nil, err
	}
	items := res.Items
	if items == nil {
		items = []models.Course{}
	}

	cursor := res.Cursor
	h.logger.Debug("page loaded", map[string]interface{}{
		"sessionId": sessionID,
		"page":      cursor.Page,
		"items":     len(items),
		"hasMore":   cursor.HasMore,
	})

	return &Output{
		SessionID:   sessionID,
		Items:       items,
		Cursor:      cursor,
		LoadedCount: res.LoadedCount,
		Query:       res.Query,
	}, nil
}

func buildQuery(input *Input) (models.CatalogQuery, error) {
	q := models.CatalogQuery{SearchTerm: input.SearchTerm, Category: input.Category}
	if input.PriceRange != nil {
		r := *input.PriceRange
		if r.Label != "" {
			if _, ok := models.PriceRangeByLabel(r.Label); !ok {
				return q, errors.NewInvalidInputError(fmt.Sprintf("unknown price range %q", r.Label))
			}
		}
		if r.Min < 0 || r.Max < 0 || (r.Max > 0 && r.Min > r.Max) {
			return q, errors.NewInvalidInputError(fmt.Sprintf("invalid price range %d-%d", r.Min, r.Max))
		}
		q.PriceRange = r
	}
	return q.Normalize(), nil
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
		"jobKey":      job.Key,
		"sessionId":   output.SessionID,
		"page":        output.Cursor.Page,
		"loadedCount": output.LoadedCount,
	})
}
