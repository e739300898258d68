package services

import (
	"context"
	"strings"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"go.uber.org/zap"
)

// Profile is a user together with their follow counts.
type Profile struct {
	*models.User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
}

type UserService struct {
	repos         *repositories.Repositories
	notifications *NotificationService
}

func NewUserService(repos *repositories.Repositories, notifications *NotificationService) *UserService {
	return &UserService{repos: repos, notifications: notifications}
}

func (s *UserService) Me(ctx context.Context, caller auth.Caller) (*Profile, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	return s.Get(ctx, caller, caller.UserID)
}

// Get returns a profile. Anonymous callers may read profiles.
func (s *UserService) Get(ctx context.Context, caller auth.Caller, id string) (*Profile, error) {
	user, err := s.repos.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "user")
	}
	profile := &Profile{User: user}
	if profile.FollowersCount, err = s.repos.Follows.GetFollowersCount(ctx, id); err != nil {
		return nil, apperrors.FromStore(err, "follow")
	}
	if profile.FollowingCount, err = s.repos.Follows.GetFollowingCount(ctx, id); err != nil {
		return nil, apperrors.FromStore(err, "follow")
	}
	if caller.IsAuthenticated && !caller.Is(id) {
		if profile.IsFollowing, err = s.repos.Follows.IsFollowing(ctx, caller.UserID, id); err != nil {
			return nil, apperrors.FromStore(err, "follow")
		}
	}
	return profile, nil
}

// Update changes the caller's own profile fields that are present in req.
func (s *UserService) Update(ctx context.Context, caller auth.Caller, req models.UpdateUserRequest) (*Profile, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		fields["display_name"] = sanitizeText(*req.DisplayName)
	}
	if req.Bio != nil {
		fields["bio"] = sanitizeText(*req.Bio)
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if len(fields) > 0 {
		if err := s.repos.Users.UpdateUser(ctx, caller.UserID, fields); err != nil {
			return nil, apperrors.FromStore(err, "user")
		}
	}
	return s.Get(ctx, caller, caller.UserID)
}

// Search lists users whose username or display name starts with query.
func (s *UserService) Search(ctx context.Context, query string, p pagination.Params) (pagination.Page[models.User], error) {
	if err := p.Validate(); err != nil {
		return pagination.Page[models.User]{}, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return pagination.Page[models.User]{}, apperrors.BadRequest("search query is required")
	}
	page, err := s.repos.Users.SearchUsers(ctx, query, p)
	if err != nil {
		return page, apperrors.FromStore(err, "user")
	}
	return page, nil
}

// Delete hard-deletes a user and everything that cascades from it. It is an operator
// action with no API route.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := n.RemovingUser(id); err != nil {
			return err
		}
		return apperrors.FromStore(tx.Users.DeleteUser(ctx, id), "user")
	})
	if err != nil {
		return err
	}
	logger.Log.Info("user deleted", zap.String("user_id", id))
	return nil
}
