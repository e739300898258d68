// Package services implements the procedures of the API on top of the repositories.
// Every procedure takes the caller explicitly and returns *apperrors.Error on failure.
package services

import (
	"context"
	"time"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/cache"
	"github.com/anonto42/future-media/backend/internal/metrics"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

// Deps are the collaborators shared by all services. Optional ones may be nil.
type Deps struct {
	Repos      *repositories.Repositories
	Activities repositories.ActivityRepository
	Unread     cache.UnreadCounts
	Metrics    *metrics.Metrics
	Tokens     *auth.TokenManager
	Firebase   IdentityVerifier

	StoryTTL          time.Duration
	FollowerBatchSize int
	Now               func() time.Time
}

// Services bundles every service of the API.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Posts         *PostService
	Stories       *StoryService
	Reels         *ReelService
	Comments      *CommentService
	Likes         *LikeService
	Reactions     *ReactionService
	Follows       *FollowService
	SavedPosts    *SavedPostService
	Messages      *MessageService
	Notifications *NotificationService
	Activity      *ActivityService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.StoryTTL <= 0 {
		d.StoryTTL = 24 * time.Hour
	}
	notifications := NewNotificationService(d.Repos, d.Unread, d.Metrics, d.FollowerBatchSize)
	activity := NewActivityService(d.Activities, d.Now)

	return &Services{
		Auth:          NewAuthService(d.Repos, d.Tokens, d.Firebase),
		Users:         NewUserService(d.Repos, notifications),
		Posts:         NewPostService(d.Repos, notifications, activity),
		Stories:       NewStoryService(d.Repos, notifications, activity, d.StoryTTL, d.Now),
		Reels:         NewReelService(d.Repos, notifications, activity),
		Comments:      NewCommentService(d.Repos, notifications, activity),
		Likes:         NewLikeService(d.Repos, notifications, activity),
		Reactions:     NewReactionService(d.Repos, notifications, activity, d.Now),
		Follows:       NewFollowService(d.Repos, notifications, activity),
		SavedPosts:    NewSavedPostService(d.Repos, activity),
		Messages:      NewMessageService(d.Repos, notifications, activity),
		Notifications: notifications,
		Activity:      activity,
	}
}

// ownerOf loads the entity ref points at and returns its owner. Missing entities are
// NOT_FOUND.
func ownerOf(ctx context.Context, repos *repositories.Repositories, ref *models.Ref) (string, error) {
	switch ref.Kind {
	case models.RefPost:
		post, err := repos.Posts.GetPostByID(ctx, ref.ID)
		if err != nil {
			return "", apperrors.FromStore(err, "post")
		}
		return post.UserID, nil
	case models.RefComment:
		comment, err := repos.Comments.GetCommentByID(ctx, ref.ID)
		if err != nil {
			return "", apperrors.FromStore(err, "comment")
		}
		return comment.UserID, nil
	case models.RefStory:
		story, err := repos.Stories.GetStoryByID(ctx, ref.ID)
		if err != nil {
			return "", apperrors.FromStore(err, "story")
		}
		return story.UserID, nil
	case models.RefReel:
		reel, err := repos.Reels.GetReelByID(ctx, ref.ID)
		if err != nil {
			return "", apperrors.FromStore(err, "reel")
		}
		return reel.UserID, nil
	case models.RefMessage:
		message, err := repos.Messages.GetMessageByID(ctx, ref.ID)
		if err != nil {
			return "", apperrors.FromStore(err, "message")
		}
		return message.SenderID, nil
	}
	return "", apperrors.BadRequest("unknown target kind")
}

// ParseKind validates a target kind taken from a request path.
func ParseKind(kind string) (models.RefKind, error) {
	switch k := models.RefKind(kind); k {
	case models.RefPost, models.RefComment, models.RefStory, models.RefReel, models.RefMessage:
		return k, nil
	}
	return "", apperrors.BadRequest("unknown target kind " + kind)
}

// mentionEvent resolves the @names in text and builds a MENTION event for them.
func mentionEvent(ctx context.Context, tx *repositories.Repositories, senderID, text string, target *models.Ref) (Event, error) {
	names := mentions(text)
	ev := Event{Type: models.NotificationMention, SenderID: senderID, Target: target, Content: "mentioned you"}
	if len(names) == 0 {
		return ev, nil
	}
	users, err := tx.Users.GetUsersByUsernames(ctx, names)
	if err != nil {
		return ev, apperrors.FromStore(err, "user")
	}
	for _, u := range users {
		ev.Recipients = append(ev.Recipients, u.ID)
	}
	return ev, nil
}
