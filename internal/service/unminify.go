package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"doctools/internal/model"
	"doctools/internal/repository"
	"doctools/internal/unminify"
)

// UnminifyService reformats source text.
type UnminifyService interface {
	// Unminify formats code as declared, or as detected when declared is empty.
	Unminify(ctx context.Context, code, declared string) (*unminify.Result, error)
}

type unminifyService struct {
	u          *unminify.Unminifier
	activities activityLog
}

// NewUnminifyService wraps u. repo may be nil.
func NewUnminifyService(u *unminify.Unminifier, repo repository.ActivityRepository, logger *slog.Logger) UnminifyService {
	return &unminifyService{
		u:          u,
		activities: activityLog{repo: repo, logger: logger, now: time.Now},
	}
}

func (s *unminifyService) Unminify(ctx context.Context, code, declared string) (*unminify.Result, error) {
	res, err := s.u.Unminify(code, declared)
	if errors.Is(err, unminify.ErrNoCode) || errors.Is(err, unminify.ErrUnsupportedFormat) {
		return nil, err
	}

	a := model.Activity{Kind: model.ActivityUnminify, Size: int64(len(code)), Status: model.StatusSuccess}
	if err != nil {
		a.Status = model.StatusFailed
		a.Format = declared
	} else {
		a.Format = res.Format.String()
	}
	s.activities.record(ctx, a)

	return res, err
}
