package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"doctools/internal/model"
	"doctools/internal/repository"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityListResult is the service-level DTO for paginated activities.
type ActivityListResult struct {
	Items []model.Activity `json:"data"`
	Total int              `json:"total"`
}

// ActivityService exposes the activity log.
type ActivityService interface {
	// List returns activities, newest first, using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*ActivityListResult, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

// NewActivityService constructs a new ActivityService.
func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

// List returns paginated activities without exposing repository types.
func (s *activityService) List(ctx context.Context, limit, offset int) (*ActivityListResult, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ActivityListResult{Items: res.Items, Total: res.Total}, nil
}

// activityLog records activities on a best-effort basis: failures are logged and never reach
// the caller.
type activityLog struct {
	repo   repository.ActivityRepository
	logger *slog.Logger
	now    func() time.Time
}

func (l activityLog) record(ctx context.Context, a model.Activity) {
	if l.repo == nil {
		return
	}
	a.ID = uuid.NewString()
	a.CreatedAt = l.now().UTC()
	if err := l.repo.Record(context.WithoutCancel(ctx), &a); err != nil {
		l.logger.Warn("activity_record_failed",
			slog.String("kind", a.Kind),
			slog.String("status", a.Status),
			slog.Any("error", err),
		)
	}
}
