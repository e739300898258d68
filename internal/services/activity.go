package services

import (
	"context"
	"time"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"go.uber.org/zap"
)

// ActivityService appends to and reads the per-user activity log. Without a document
// store it records nothing and lists empty pages.
type ActivityService struct {
	repo repositories.ActivityRepository
	now  func() time.Time
}

func NewActivityService(repo repositories.ActivityRepository, now func() time.Time) *ActivityService {
	return &ActivityService{repo: repo, now: now}
}

// Record appends an entry after the action committed. Failures are logged only.
func (s *ActivityService) Record(ctx context.Context, userID, verb string, target *models.Ref) {
	if s.repo == nil {
		return
	}
	err := s.repo.RecordActivity(ctx, &models.Activity{
		UserID:    userID,
		Verb:      verb,
		Target:    target,
		CreatedAt: s.now(),
	})
	if err != nil {
		logger.Log.Warn("failed to record activity",
			zap.String("user_id", userID),
			zap.String("verb", verb),
			zap.Stringer("target", target),
			zap.Error(err),
		)
	}
}

// List returns the caller's own activity, newest first.
func (s *ActivityService) List(ctx context.Context, caller auth.Caller, p pagination.Params) (pagination.Page[models.Activity], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Activity]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Activity]{}, err
	}
	if s.repo == nil {
		return pagination.Page[models.Activity]{Items: []models.Activity{}}, nil
	}
	page, err := s.repo.GetActivities(ctx, caller.UserID, p)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeBadRequest) {
			return page, err
		}
		return page, apperrors.Internal("failed to list activity", err)
	}
	return page, nil
}
