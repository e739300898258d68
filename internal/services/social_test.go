package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
)

func TestLikeNotifiesOwnerOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")
	post := f.post(t, aliceCaller, "sunset")

	require.NoError(t, f.svcs.Likes.Like(ctx, bobCaller, models.PostRef(post.ID)))

	likes := f.inboxOfType(t, alice.ID, models.NotificationLike)
	require.Len(t, likes, 1)
	require.NotNil(t, likes[0].SenderID)
	assert.Equal(t, bob.ID, *likes[0].SenderID)
	assert.Equal(t, models.PostRef(post.ID), likes[0].Target)
	assert.False(t, likes[0].IsRead)

	err := f.svcs.Likes.Like(ctx, bobCaller, models.PostRef(post.ID))
	requireCode(t, err, apperrors.CodeBadRequest)
	assert.Len(t, f.inboxOfType(t, alice.ID, models.NotificationLike), 1)

	got, err := f.svcs.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
}

func TestLikeOwnPostIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	post := f.post(t, aliceCaller, "me")

	require.NoError(t, f.svcs.Likes.Like(ctx, aliceCaller, models.PostRef(post.ID)))
	assert.Empty(t, f.inbox(t, alice.ID))
}

func TestLikeRejectsUnlikeableAndMissingTargets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, bob := f.user(t, "bob")

	requireCode(t, f.svcs.Likes.Like(ctx, bob, models.StoryRef("x")), apperrors.CodeBadRequest)
	requireCode(t, f.svcs.Likes.Like(ctx, bob, models.PostRef("missing")), apperrors.CodeNotFound)
}

func TestUnlikeKeepsNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	_, bob := f.user(t, "bob")
	post := f.post(t, aliceCaller, "sunset")

	require.NoError(t, f.svcs.Likes.Like(ctx, bob, models.PostRef(post.ID)))
	require.NoError(t, f.svcs.Likes.Unlike(ctx, bob, models.PostRef(post.ID)))
	requireCode(t, f.svcs.Likes.Unlike(ctx, bob, models.PostRef(post.ID)), apperrors.CodeNotFound)

	assert.Len(t, f.inboxOfType(t, alice.ID, models.NotificationLike), 1)

	status, err := f.svcs.Likes.Status(ctx, bob, models.PostRef(post.ID))
	require.NoError(t, err)
	assert.Zero(t, status.Count)
	assert.False(t, status.Liked)
}

func TestCommentNotifiesPostOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	_, bob := f.user(t, "bob")
	post := f.post(t, aliceCaller, "sunset")

	comment, err := f.svcs.Comments.Create(ctx, bob, models.PostRef(post.ID), models.CreateCommentRequest{Content: "<b>lovely</b>"})
	require.NoError(t, err)
	assert.Equal(t, "lovely", comment.Content)

	comments := f.inboxOfType(t, alice.ID, models.NotificationComment)
	require.Len(t, comments, 1)
	assert.Equal(t, models.CommentRef(comment.ID), comments[0].Target)

	got, err := f.svcs.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	require.NoError(t, f.svcs.Comments.Delete(ctx, bob, comment.ID))
	got, err = f.svcs.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CommentsCount)
}

func TestCommentOnMissingPostWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, bob := f.user(t, "bob")

	_, err := f.svcs.Comments.Create(ctx, bob, models.PostRef("missing"), models.CreateCommentRequest{Content: "hi"})
	requireCode(t, err, apperrors.CodeNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFollowRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")

	_, err := f.svcs.Follows.Follow(ctx, aliceCaller, alice.ID)
	requireCode(t, err, apperrors.CodeBadRequest)

	_, err = f.svcs.Follows.Follow(ctx, aliceCaller, "missing")
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.svcs.Follows.Follow(ctx, aliceCaller, bob.ID)
	require.NoError(t, err)
	_, err = f.svcs.Follows.Follow(ctx, aliceCaller, bob.ID)
	requireCode(t, err, apperrors.CodeBadRequest)

	follows := f.inboxOfType(t, bob.ID, models.NotificationFollow)
	require.Len(t, follows, 1)
	assert.Nil(t, follows[0].Target)

	profile, err := f.svcs.Users.Get(ctx, aliceCaller, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.FollowersCount)
	assert.True(t, profile.IsFollowing)

	require.NoError(t, f.svcs.Follows.Unfollow(ctx, aliceCaller, bob.ID))
	requireCode(t, f.svcs.Follows.Unfollow(ctx, aliceCaller, bob.ID), apperrors.CodeNotFound)
	assert.Len(t, f.inboxOfType(t, bob.ID, models.NotificationFollow), 1)

	_, err = f.svcs.Follows.Follow(ctx, bobCaller, alice.ID)
	require.NoError(t, err)
}

func TestNewPostReachesEveryFollower(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, authorCaller := f.user(t, "author")

	var followers []*models.User
	for _, name := range []string{"fa", "fb", "fc", "fd", "fe"} {
		u, c := f.user(t, name+"follower")
		_, err := f.svcs.Follows.Follow(ctx, c, author.ID)
		require.NoError(t, err)
		followers = append(followers, u)
	}

	post := f.post(t, authorCaller, "news")

	for _, u := range followers {
		got := f.inboxOfType(t, u.ID, models.NotificationNewPost)
		require.Len(t, got, 1, u.Username)
		assert.Equal(t, models.PostRef(post.ID), got[0].Target)
	}
	assert.Empty(t, f.inboxOfType(t, author.ID, models.NotificationNewPost))
}

func TestMentionsNotifyEachUserOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, _ := f.user(t, "bob")
	carol, _ := f.user(t, "carol")

	post := f.post(t, alice, "hey @bob and @bob, also @carol and @ghost @alice")

	for _, u := range []*models.User{bob, carol} {
		got := f.inboxOfType(t, u.ID, models.NotificationMention)
		require.Len(t, got, 1)
		assert.Equal(t, models.PostRef(post.ID), got[0].Target)
	}

	comment, err := f.svcs.Comments.Create(ctx, alice, models.PostRef(post.ID), models.CreateCommentRequest{Content: "ping @carol"})
	require.NoError(t, err)
	got := f.inboxOfType(t, carol.ID, models.NotificationMention)
	require.Len(t, got, 2)
	assert.Equal(t, models.CommentRef(comment.ID), got[1].Target)
}

func TestReactionChangeIsSilent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	_, bob := f.user(t, "bob")
	post := f.post(t, aliceCaller, "sunset")
	target := models.PostRef(post.ID)

	first, err := f.svcs.Reactions.React(ctx, bob, target, models.ReactRequest{Emoji: "🔥"})
	require.NoError(t, err)
	second, err := f.svcs.Reactions.React(ctx, bob, target, models.ReactRequest{Emoji: "😍"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "😍", second.Emoji)
	assert.Len(t, f.inboxOfType(t, alice.ID, models.NotificationLike), 1)

	reactions, err := f.svcs.Reactions.List(ctx, bob, target)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, "😍", reactions[0].Emoji)

	require.NoError(t, f.svcs.Reactions.Unreact(ctx, bob, target))
	requireCode(t, f.svcs.Reactions.Unreact(ctx, bob, target), apperrors.CodeNotFound)
}

func TestStoryViewNotifiesOnFirstViewOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	_, bob := f.user(t, "bob")

	story, err := f.svcs.Stories.Create(ctx, aliceCaller, models.CreateStoryRequest{MediaURL: "https://cdn.example.com/s.jpg", ContentType: "image"})
	require.NoError(t, err)

	require.NoError(t, f.svcs.Stories.View(ctx, bob, story.ID))
	require.NoError(t, f.svcs.Stories.View(ctx, bob, story.ID))
	require.NoError(t, f.svcs.Stories.View(ctx, aliceCaller, story.ID))

	views := f.inboxOfType(t, alice.ID, models.NotificationStoryView)
	require.Len(t, views, 1)
	assert.Equal(t, models.StoryRef(story.ID), views[0].Target)

	viewers, err := f.svcs.Stories.Viewers(ctx, aliceCaller, story.ID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, viewers.Items, 1)

	_, err = f.svcs.Stories.Viewers(ctx, bob, story.ID, pagination.Params{Limit: 10})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestExpiredStoryIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	_, bob := f.user(t, "bob")

	story, err := f.svcs.Stories.Create(ctx, alice, models.CreateStoryRequest{MediaURL: "https://cdn.example.com/s.jpg", ContentType: "image"})
	require.NoError(t, err)

	f.now = f.now.Add(25 * time.Hour)

	_, err = f.svcs.Stories.Get(ctx, bob, story.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	requireCode(t, f.svcs.Stories.View(ctx, bob, story.ID), apperrors.CodeNotFound)
}

func TestReelViewCountedOncePerViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	_, bob := f.user(t, "bob")

	reel, err := f.svcs.Reels.Create(ctx, aliceCaller, models.CreateReelRequest{VideoURL: "https://cdn.example.com/r.mp4"})
	require.NoError(t, err)

	require.NoError(t, f.svcs.Reels.View(ctx, bob, reel.ID))
	require.NoError(t, f.svcs.Reels.View(ctx, bob, reel.ID))

	assert.Len(t, f.inboxOfType(t, alice.ID, models.NotificationReelView), 1)

	got, err := f.svcs.Reels.Get(ctx, reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewsCount)
}

func TestSavePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	_, bob := f.user(t, "bob")
	post := f.post(t, alice, "keep")

	_, err := f.svcs.SavedPosts.Save(ctx, bob, post.ID)
	require.NoError(t, err)
	_, err = f.svcs.SavedPosts.Save(ctx, bob, post.ID)
	requireCode(t, err, apperrors.CodeBadRequest)

	page, err := f.svcs.SavedPosts.List(ctx, bob, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Post)
	assert.Equal(t, post.ID, page.Items[0].Post.ID)

	require.NoError(t, f.svcs.SavedPosts.Unsave(ctx, bob, post.ID))
	requireCode(t, f.svcs.SavedPosts.Unsave(ctx, bob, post.ID), apperrors.CodeNotFound)
}
