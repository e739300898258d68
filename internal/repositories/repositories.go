package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every relational repository over one handle. Inside Transaction
// the bundle is rebound to the transaction so all writes commit or roll back together.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Posts         PostRepository
	Stories       StoryRepository
	Reels         ReelRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Reactions     ReactionRepository
	Follows       FollowRepository
	SavedPosts    SavedPostRepository
	Messages      MessageRepository
	Groups        GroupRepository
	Notifications NotificationRepository
}

// New creates the repository bundle for db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Posts:         NewPostgresPostRepository(db),
		Stories:       NewPostgresStoryRepository(db),
		Reels:         NewPostgresReelRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		Likes:         NewPostgresLikeRepository(db),
		Reactions:     NewPostgresReactionRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		SavedPosts:    NewPostgresSavedPostRepository(db),
		Messages:      NewPostgresMessageRepository(db),
		Groups:        NewPostgresGroupRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// DB returns the handle the bundle is bound to.
func (r *Repositories) DB() *gorm.DB { return r.db }

// Transaction runs fn with a bundle bound to a new transaction. Returning an error rolls
// back every write fn made.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
