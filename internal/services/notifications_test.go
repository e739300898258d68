package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
)

func systemNotice(receiverID string) models.CreateNotificationRequest {
	return models.CreateNotificationRequest{ReceiverID: receiverID, Type: string(models.NotificationSystem), Content: "hello"}
}

func TestNotifySkipsSenderAndDuplicateRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	bob, _ := f.user(t, "bob")
	carol, _ := f.user(t, "carol")

	err := f.svcs.Notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		return n.Notify(Event{
			Type:       models.NotificationFollow,
			SenderID:   alice.ID,
			Recipients: []string{alice.ID, bob.ID, bob.ID, carol.ID},
		})
	})
	require.NoError(t, err)

	assert.Empty(t, f.inbox(t, alice.ID))
	assert.Len(t, f.inbox(t, bob.ID), 1)
	assert.Len(t, f.inbox(t, carol.ID), 1)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, f.cache.invalidated)
}

func TestMutateRollsBackNotificationsOnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.user(t, "alice")
	bob, _ := f.user(t, "bob")

	boom := errors.New("boom")
	err := f.svcs.Notifications.Mutate(ctx, func(tx *repositories.Repositories, n *Notifier) error {
		if err := n.Notify(Event{Type: models.NotificationFollow, SenderID: alice.ID, Recipients: []string{bob.ID}}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Empty(t, f.inbox(t, bob.ID))
	assert.Empty(t, f.cache.invalidated)
}

func TestMarkAsReadOnlyByReceiver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")
	_, carol := f.user(t, "carol")

	n, err := f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
	require.NoError(t, err)

	_, err = f.svcs.Notifications.MarkAsRead(ctx, carol, n.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svcs.Notifications.MarkAsRead(ctx, bobCaller, "missing")
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.svcs.Notifications.MarkAsRead(ctx, auth.Anonymous, n.ID)
	requireCode(t, err, apperrors.CodeUnauthorized)

	read, err := f.svcs.Notifications.MarkAsRead(ctx, bobCaller, n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	again, err := f.svcs.Notifications.MarkAsRead(ctx, bobCaller, n.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)
}

func TestMarkAllAsReadClearsUnreadCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")

	for i := 0; i < 3; i++ {
		_, err := f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
		require.NoError(t, err)
	}

	count, err := f.svcs.Notifications.UnreadCount(ctx, bobCaller)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	updated, err := f.svcs.Notifications.MarkAllAsRead(ctx, bobCaller)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	count, err = f.svcs.Notifications.UnreadCount(ctx, bobCaller)
	require.NoError(t, err)
	assert.Zero(t, count)

	updated, err = f.svcs.Notifications.MarkAllAsRead(ctx, bobCaller)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestUnreadCountPrefersCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob, bobCaller := f.user(t, "bob")

	f.cache.put(bob.ID, 42)
	count, err := f.svcs.Notifications.UnreadCount(ctx, bobCaller)
	require.NoError(t, err)
	assert.EqualValues(t, 42, count)
}

func TestListOnlyUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")

	first, err := f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
	require.NoError(t, err)
	_, err = f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
	require.NoError(t, err)
	_, err = f.svcs.Notifications.MarkAsRead(ctx, bobCaller, first.ID)
	require.NoError(t, err)

	p := pagination.Params{Limit: 10}
	all, err := f.svcs.Notifications.List(ctx, bobCaller, false, p)
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	unread, err := f.svcs.Notifications.List(ctx, bobCaller, true, p)
	require.NoError(t, err)
	require.Len(t, unread.Items, 1)
	assert.NotEqual(t, first.ID, unread.Items[0].ID)
	require.NotNil(t, unread.Items[0].Sender)
	assert.Equal(t, "alice", unread.Items[0].Sender.Username)
}

func TestCreateValidatesTypeAndTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, _ := f.user(t, "bob")
	post := f.post(t, alice, "hello")

	req := systemNotice(bob.ID)
	req.Type = "POKE"
	_, err := f.svcs.Notifications.Create(ctx, alice, req)
	requireCode(t, err, apperrors.CodeBadRequest)

	req = systemNotice(bob.ID)
	req.Type = string(models.NotificationNewStory)
	req.PostID = &post.ID
	_, err = f.svcs.Notifications.Create(ctx, alice, req)
	requireCode(t, err, apperrors.CodeBadRequest)

	missing := "missing"
	req = systemNotice(bob.ID)
	req.PostID = &missing
	_, err = f.svcs.Notifications.Create(ctx, alice, req)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.svcs.Notifications.Create(ctx, alice, systemNotice("missing"))
	requireCode(t, err, apperrors.CodeNotFound)

	req = systemNotice(bob.ID)
	req.PostID = &post.ID
	n, err := f.svcs.Notifications.Create(ctx, alice, req)
	require.NoError(t, err)
	assert.Equal(t, models.PostRef(post.ID), n.Target)
}

func TestDeletingSenderKeepsNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	bob, _ := f.user(t, "bob")

	_, err := f.svcs.Notifications.Create(ctx, aliceCaller, systemNotice(bob.ID))
	require.NoError(t, err)

	require.NoError(t, f.svcs.Users.Delete(ctx, alice.ID))

	inbox := f.inbox(t, bob.ID)
	require.Len(t, inbox, 1)
	assert.Nil(t, inbox[0].SenderID)
}

func TestDeletingReceiverRemovesNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, _ := f.user(t, "bob")

	_, err := f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
	require.NoError(t, err)

	require.NoError(t, f.svcs.Users.Delete(ctx, bob.ID))
	assert.Empty(t, f.inbox(t, bob.ID))

	err = f.svcs.Users.Delete(ctx, bob.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestDeletingTargetRemovesNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, aliceCaller := f.user(t, "alice")
	_, bob := f.user(t, "bob")
	post := f.post(t, aliceCaller, "hello")

	require.NoError(t, f.svcs.Likes.Like(ctx, bob, models.PostRef(post.ID)))
	require.Len(t, f.inbox(t, alice.ID), 1)

	require.NoError(t, f.svcs.Posts.Delete(ctx, aliceCaller, post.ID))
	assert.Empty(t, f.inbox(t, alice.ID))
}

func TestDeleteNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")

	n, err := f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
	require.NoError(t, err)

	requireCode(t, f.svcs.Notifications.Delete(ctx, alice, n.ID), apperrors.CodeForbidden)
	require.NoError(t, f.svcs.Notifications.Delete(ctx, bobCaller, n.ID))
	requireCode(t, f.svcs.Notifications.Delete(ctx, bobCaller, n.ID), apperrors.CodeNotFound)
}

func TestDeletesInvalidateCachedUnreadCounts(t *testing.T) {
	tests := []struct {
		name string
		// arrange leaves receiver with exactly one unread notification and returns the
		// deletion that removes it.
		arrange func(t *testing.T, f *fixture, receiver *models.User, receiverCaller, actor auth.Caller) func() error
	}{
		{
			name: "comment",
			arrange: func(t *testing.T, f *fixture, _ *models.User, receiver, actor auth.Caller) func() error {
				ctx := context.Background()
				post := f.post(t, receiver, "hello")
				comment, err := f.svcs.Comments.Create(ctx, actor, models.PostRef(post.ID), models.CreateCommentRequest{Content: "nice"})
				require.NoError(t, err)
				return func() error { return f.svcs.Comments.Delete(ctx, actor, comment.ID) }
			},
		},
		{
			name: "post with a mention in one of its comments",
			arrange: func(t *testing.T, f *fixture, receiver *models.User, _, actor auth.Caller) func() error {
				ctx := context.Background()
				post := f.post(t, actor, "hello")
				_, err := f.svcs.Comments.Create(ctx, actor, models.PostRef(post.ID), models.CreateCommentRequest{Content: "hey @" + receiver.Username})
				require.NoError(t, err)
				return func() error { return f.svcs.Posts.Delete(ctx, actor, post.ID) }
			},
		},
		{
			name: "story",
			arrange: func(t *testing.T, f *fixture, _ *models.User, receiver, actor auth.Caller) func() error {
				ctx := context.Background()
				story, err := f.svcs.Stories.Create(ctx, receiver, models.CreateStoryRequest{MediaURL: "https://cdn.example.com/s.jpg", ContentType: "image"})
				require.NoError(t, err)
				require.NoError(t, f.svcs.Stories.View(ctx, actor, story.ID))
				return func() error { return f.svcs.Stories.Delete(ctx, receiver, story.ID) }
			},
		},
		{
			name: "reel",
			arrange: func(t *testing.T, f *fixture, _ *models.User, receiver, actor auth.Caller) func() error {
				ctx := context.Background()
				reel, err := f.svcs.Reels.Create(ctx, receiver, models.CreateReelRequest{VideoURL: "https://cdn.example.com/r.mp4"})
				require.NoError(t, err)
				require.NoError(t, f.svcs.Reels.View(ctx, actor, reel.ID))
				return func() error { return f.svcs.Reels.Delete(ctx, receiver, reel.ID) }
			},
		},
		{
			name: "group message",
			arrange: func(t *testing.T, f *fixture, receiver *models.User, _, actor auth.Caller) func() error {
				ctx := context.Background()
				group, err := f.svcs.Messages.CreateGroup(ctx, actor, models.CreateGroupRequest{Name: "crew", MemberIDs: []string{receiver.ID}})
				require.NoError(t, err)
				msg, err := f.svcs.Messages.SendGroup(ctx, actor, group.ID, models.SendMessageRequest{Content: "@" + receiver.Username + " look"})
				require.NoError(t, err)
				return func() error { return f.svcs.Messages.Delete(ctx, actor, msg.ID) }
			},
		},
		{
			name: "author account",
			arrange: func(t *testing.T, f *fixture, _ *models.User, receiver, actor auth.Caller) func() error {
				ctx := context.Background()
				_, err := f.svcs.Follows.Follow(ctx, receiver, actor.UserID)
				require.NoError(t, err)
				f.post(t, actor, "fresh")
				return func() error { return f.svcs.Users.Delete(ctx, actor.UserID) }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			receiver, receiverCaller := f.user(t, "alice")
			_, actor := f.user(t, "bob")

			remove := tt.arrange(t, f, receiver, receiverCaller, actor)

			count, err := f.svcs.Notifications.UnreadCount(ctx, receiverCaller)
			require.NoError(t, err)
			require.EqualValues(t, 1, count)
			_, cached := f.cache.Get(ctx, receiver.ID)
			require.True(t, cached)

			require.NoError(t, remove())

			assert.Empty(t, f.inbox(t, receiver.ID))
			count, err = f.svcs.Notifications.UnreadCount(ctx, receiverCaller)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestUnreadCountDoesNotCacheCountReadBeforeInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob, _ := f.user(t, "bob")

	stamp := f.cache.Stamp(ctx, bob.ID)
	f.cache.Invalidate(ctx, bob.ID)
	f.cache.Set(ctx, bob.ID, stamp, 5)

	_, cached := f.cache.Get(ctx, bob.ID)
	assert.False(t, cached)
}

func TestUnreadCursorSurvivesMarkAllAsRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")

	for i := 0; i < 3; i++ {
		_, err := f.svcs.Notifications.Create(ctx, alice, systemNotice(bob.ID))
		require.NoError(t, err)
	}

	first, err := f.svcs.Notifications.List(ctx, bobCaller, true, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.NotNil(t, first.NextCursor)

	_, err = f.svcs.Notifications.MarkAllAsRead(ctx, bobCaller)
	require.NoError(t, err)

	next, err := f.svcs.Notifications.List(ctx, bobCaller, true, pagination.Params{Limit: 1, Cursor: *first.NextCursor})
	require.NoError(t, err)
	assert.Empty(t, next.Items)
	assert.Nil(t, next.NextCursor)
}

func TestCreateRejectsMessageCallerCannotSee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, alice := f.user(t, "alice")
	bob, bobCaller := f.user(t, "bob")
	_, carol := f.user(t, "carol")

	msg, err := f.svcs.Messages.SendDirect(ctx, alice, bob.ID, models.SendMessageRequest{Content: "secret"})
	require.NoError(t, err)

	req := systemNotice(bob.ID)
	req.MessageID = &msg.ID
	_, err = f.svcs.Notifications.Create(ctx, carol, req)
	requireCode(t, err, apperrors.CodeForbidden)
	assert.Empty(t, f.inbox(t, bob.ID))

	req = systemNotice(alice.UserID)
	req.MessageID = &msg.ID
	n, err := f.svcs.Notifications.Create(ctx, bobCaller, req)
	require.NoError(t, err)
	assert.Equal(t, models.MessageRef(msg.ID), n.Target)
}
