// Package seed fills a development database with fake users and content. Everything is
// created through the services so counters, notifications and activity stay consistent.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/services"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
)

// Options sizes a seeding run.
type Options struct {
	Users           int
	PostsPerUser    int
	FollowsPerUser  int
	CommentsPerPost int
}

func DefaultOptions() Options {
	return Options{Users: 20, PostsPerUser: 3, FollowsPerUser: 5, CommentsPerPost: 2}
}

// Seeder handles database seeding operations
type Seeder struct {
	svcs *services.Services
	fake *gofakeit.Faker
	rng  *rand.Rand
}

// NewSeeder creates a new seeder. A zero seed picks a random one.
func NewSeeder(svcs *services.Services, seed uint64) *Seeder {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Seeder{
		svcs: svcs,
		fake: gofakeit.New(seed),
		rng:  rand.New(rand.NewSource(int64(seed))),
	}
}

// Stats counts what a run created.
type Stats struct {
	Users    int
	Posts    int
	Follows  int
	Comments int
	Likes    int
}

// SeedDev creates users, follow edges, posts, comments and likes.
func (s *Seeder) SeedDev(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats

	logger.Log.Info("Creating users...", zap.Int("count", opts.Users))
	users, err := s.seedUsers(ctx, opts.Users)
	if err != nil {
		return stats, fmt.Errorf("failed to seed users: %w", err)
	}
	stats.Users = len(users)

	logger.Log.Info("Creating follows...")
	if stats.Follows, err = s.seedFollows(ctx, users, opts.FollowsPerUser); err != nil {
		return stats, fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(ctx, users, opts.PostsPerUser)
	if err != nil {
		return stats, fmt.Errorf("failed to seed posts: %w", err)
	}
	stats.Posts = len(posts)

	logger.Log.Info("Creating comments and likes...")
	if stats.Comments, stats.Likes, err = s.seedEngagement(ctx, users, posts, opts.CommentsPerPost); err != nil {
		return stats, fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("users", stats.Users),
		zap.Int("posts", stats.Posts),
		zap.Int("follows", stats.Follows),
		zap.Int("comments", stats.Comments),
		zap.Int("likes", stats.Likes),
	)
	return stats, nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", s.fake.Regex("[a-z]{6,10}"), i)
		res, err := s.svcs.Auth.Register(ctx, models.RegisterRequest{
			Email:       username + "@example.com",
			Username:    username,
			DisplayName: s.fake.Name(),
			Password:    "password123",
		})
		if err != nil {
			return nil, err
		}
		bio := s.fake.HipsterSentence()
		avatar := s.fake.URL()
		if _, err := s.svcs.Users.Update(ctx, auth.UserCaller(res.User.ID), models.UpdateUserRequest{Bio: &bio, AvatarURL: &avatar}); err != nil {
			return nil, err
		}
		users = append(users, res.User)
	}
	return users, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []*models.User, perUser int) (int, error) {
	count := 0
	for _, u := range users {
		for _, idx := range s.rng.Perm(len(users))[:min(perUser, len(users))] {
			target := users[idx]
			if target.ID == u.ID {
				continue
			}
			if _, err := s.svcs.Follows.Follow(ctx, auth.UserCaller(u.ID), target.ID); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, perUser int) ([]*models.Post, error) {
	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			req := models.CreatePostRequest{Caption: s.fake.HipsterSentence(), ContentType: "text"}
			if s.rng.Intn(2) == 0 {
				req.ContentType = "image"
				req.MediaURL = s.fake.URL()
			}
			post, err := s.svcs.Posts.Create(ctx, auth.UserCaller(u.ID), req)
			if err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (s *Seeder) seedEngagement(ctx context.Context, users []*models.User, posts []*models.Post, commentsPerPost int) (comments, likes int, err error) {
	for _, post := range posts {
		for i := 0; i < commentsPerPost; i++ {
			author := users[s.rng.Intn(len(users))]
			_, err := s.svcs.Comments.Create(ctx, auth.UserCaller(author.ID), models.PostRef(post.ID),
				models.CreateCommentRequest{Content: s.fake.HipsterSentence()})
			if err != nil {
				return comments, likes, err
			}
			comments++
		}
		liker := users[s.rng.Intn(len(users))]
		if err := s.svcs.Likes.Like(ctx, auth.UserCaller(liker.ID), models.PostRef(post.ID)); err != nil {
			return comments, likes, err
		}
		likes++
	}
	return comments, likes, nil
}
