package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/metrics"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/internal/testutil"
)

// memoryCache is an in-process UnreadCounts that remembers invalidations.
type memoryCache struct {
	mu          sync.Mutex
	counts      map[string]int64
	generations map[string]int
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{counts: map[string]int64{}, generations: map[string]int{}}
}

func (c *memoryCache) Get(_ context.Context, userID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.counts[userID]
	return n, ok
}

func (c *memoryCache) Stamp(_ context.Context, userID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strconv.Itoa(c.generations[userID])
}

func (c *memoryCache) Set(_ context.Context, userID, stamp string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stamp != strconv.Itoa(c.generations[userID]) {
		return
	}
	c.counts[userID] = n
}

func (c *memoryCache) Invalidate(_ context.Context, userIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.counts, id)
		c.generations[id]++
		c.invalidated = append(c.invalidated, id)
	}
}

// put seeds a cached count directly.
func (c *memoryCache) put(userID string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = n
}

type fixture struct {
	db    *gorm.DB
	svcs  *Services
	cache *memoryCache
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:    testutil.NewDB(t),
		cache: newMemoryCache(),
		now:   time.Now().UTC().Truncate(time.Second),
	}
	f.svcs = New(Deps{
		Repos:             repositories.New(f.db),
		Unread:            f.cache,
		Metrics:           metrics.NewForRegistry(prometheus.NewRegistry()),
		Tokens:            auth.NewTokenManager("test-secret", time.Hour),
		StoryTTL:          24 * time.Hour,
		FollowerBatchSize: 2,
		Now:               func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) user(t *testing.T, username string) (*models.User, auth.Caller) {
	t.Helper()
	u := testutil.CreateUser(t, f.db, username)
	return u, auth.UserCaller(u.ID)
}

// inbox returns every notification addressed to receiverID, oldest first.
func (f *fixture) inbox(t *testing.T, receiverID string) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, f.db.Where("receiver_id = ?", receiverID).Order("created_at ASC").Order("id ASC").Find(&rows).Error)
	return rows
}

func (f *fixture) inboxOfType(t *testing.T, receiverID string, typ models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	for _, n := range f.inbox(t, receiverID) {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func (f *fixture) post(t *testing.T, caller auth.Caller, caption string) *models.Post {
	t.Helper()
	post, err := f.svcs.Posts.Create(context.Background(), caller, models.CreatePostRequest{Caption: caption, ContentType: "text"})
	require.NoError(t, err)
	return post
}

func requireCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperrors.CodeOf(err), "unexpected error: %v", err)
}
