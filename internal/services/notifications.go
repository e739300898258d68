package services

import (
	"context"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/cache"
	"github.com/anonto42/future-media/backend/internal/metrics"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/pagination"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"go.uber.org/zap"
)

// Event describes notifications caused by one action.
type Event struct {
	Type       models.NotificationType
	SenderID   string
	Content    string
	Target     *models.Ref
	Recipients []string
}

// NotificationService owns the notification table: fan-out from mutations and the
// receiver-facing read side.
type NotificationService struct {
	repos             *repositories.Repositories
	unread            cache.UnreadCounts
	metrics           *metrics.Metrics
	followerBatchSize int
}

func NewNotificationService(repos *repositories.Repositories, unread cache.UnreadCounts, m *metrics.Metrics, followerBatchSize int) *NotificationService {
	if unread == nil {
		unread = cache.Noop{}
	}
	if followerBatchSize <= 0 {
		followerBatchSize = 500
	}
	return &NotificationService{repos: repos, unread: unread, metrics: m, followerBatchSize: followerBatchSize}
}

// Notifier inserts notifications inside the transaction of the mutation that caused them.
type Notifier struct {
	ctx       context.Context
	tx        *repositories.Repositories
	svc       *NotificationService
	receivers map[string]struct{}
	created   map[models.NotificationType]int
}

// Mutate runs fn in one transaction together with every notification it queues. When the
// transaction commits, the unread counts of all receivers are invalidated.
func (s *NotificationService) Mutate(ctx context.Context, fn func(tx *repositories.Repositories, n *Notifier) error) error {
	n := &Notifier{
		ctx:       ctx,
		svc:       s,
		receivers: map[string]struct{}{},
		created:   map[models.NotificationType]int{},
	}
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		n.tx = tx
		return fn(tx, n)
	})
	if err != nil {
		return err
	}
	s.afterCommit(ctx, n)
	return nil
}

func (s *NotificationService) afterCommit(ctx context.Context, n *Notifier) {
	if len(n.receivers) > 0 {
		ids := make([]string, 0, len(n.receivers))
		for id := range n.receivers {
			ids = append(ids, id)
		}
		s.unread.Invalidate(ctx, ids...)
	}
	if s.metrics != nil {
		for typ, count := range n.created {
			s.metrics.NotificationsCreated.WithLabelValues(string(typ)).Add(float64(count))
		}
	}
}

// Notify inserts one notification per recipient. The sender never notifies themselves
// and a recipient listed twice gets one row.
func (n *Notifier) Notify(ev Event) error {
	seen := make(map[string]struct{}, len(ev.Recipients))
	rows := make([]*models.Notification, 0, len(ev.Recipients))
	for _, id := range ev.Recipients {
		if id == "" || id == ev.SenderID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, newNotification(ev, id))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := n.tx.Notifications.CreateNotifications(n.ctx, rows); err != nil {
		return apperrors.Internal("failed to create notifications", err)
	}
	for id := range seen {
		n.receivers[id] = struct{}{}
	}
	n.created[ev.Type] += len(rows)
	return nil
}

// NotifyFollowers sends ev to every follower of authorID, one batch at a time.
func (n *Notifier) NotifyFollowers(authorID string, ev Event) error {
	ev.SenderID = authorID
	return n.tx.Follows.EachFollowerBatch(n.ctx, authorID, n.svc.followerBatchSize, func(ids []string) error {
		batch := ev
		batch.Recipients = ids
		return n.Notify(batch)
	})
}

// Removing marks the receivers whose unread notifications go away when target is deleted
// in this transaction. Call it before the delete.
func (n *Notifier) Removing(target *models.Ref) error {
	ids, err := n.tx.Notifications.GetReceiversOfTarget(n.ctx, target)
	if err != nil {
		return apperrors.FromStore(err, "notification")
	}
	n.touch(ids)
	return nil
}

// RemovingUser is Removing for a user and everything they own.
func (n *Notifier) RemovingUser(userID string) error {
	ids, err := n.tx.Notifications.GetReceiversOfUserContent(n.ctx, userID)
	if err != nil {
		return apperrors.FromStore(err, "notification")
	}
	n.touch(ids)
	n.touch([]string{userID})
	return nil
}

func (n *Notifier) touch(ids []string) {
	for _, id := range ids {
		n.receivers[id] = struct{}{}
	}
}

func newNotification(ev Event, receiverID string) *models.Notification {
	row := &models.Notification{
		ReceiverID: receiverID,
		Type:       ev.Type,
		Content:    ev.Content,
	}
	if ev.SenderID != "" {
		sender := ev.SenderID
		row.SenderID = &sender
	}
	if ev.Target != nil {
		target := *ev.Target
		row.Target = &target
	}
	return row
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, caller auth.Caller, onlyUnread bool, p pagination.Params) (pagination.Page[models.Notification], error) {
	if err := caller.Require(); err != nil {
		return pagination.Page[models.Notification]{}, err
	}
	if err := p.Validate(); err != nil {
		return pagination.Page[models.Notification]{}, err
	}
	page, err := s.repos.Notifications.GetByReceiverID(ctx, caller.UserID, onlyUnread, p)
	if err != nil {
		return pagination.Page[models.Notification]{}, apperrors.FromStore(err, "notification")
	}
	return page, nil
}

// UnreadCount returns how many of the caller's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, caller auth.Caller) (int64, error) {
	if err := caller.Require(); err != nil {
		return 0, err
	}
	if n, ok := s.unread.Get(ctx, caller.UserID); ok {
		s.observeCache(true)
		return n, nil
	}
	s.observeCache(false)
	stamp := s.unread.Stamp(ctx, caller.UserID)
	n, err := s.repos.Notifications.GetUnreadCount(ctx, caller.UserID)
	if err != nil {
		return 0, apperrors.FromStore(err, "notification")
	}
	s.unread.Set(ctx, caller.UserID, stamp, n)
	return n, nil
}

func (s *NotificationService) observeCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.Inc()
	} else {
		s.metrics.CacheMissesTotal.Inc()
	}
}

// MarkAsRead marks one notification read. Only its receiver may do so.
func (s *NotificationService) MarkAsRead(ctx context.Context, caller auth.Caller, id string) (*models.Notification, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	n, err := s.repos.Notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "notification")
	}
	if !caller.Is(n.ReceiverID) {
		return nil, apperrors.Forbidden("not your notification")
	}
	if !n.IsRead {
		if err := s.repos.Notifications.MarkAsRead(ctx, id); err != nil {
			return nil, apperrors.FromStore(err, "notification")
		}
		n.IsRead = true
		s.unread.Invalidate(ctx, caller.UserID)
		if s.metrics != nil {
			s.metrics.NotificationsRead.Inc()
		}
	}
	return n, nil
}

// MarkAllAsRead marks every unread notification of the caller and returns the count changed.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, caller auth.Caller) (int64, error) {
	if err := caller.Require(); err != nil {
		return 0, err
	}
	updated, err := s.repos.Notifications.MarkAllAsRead(ctx, caller.UserID)
	if err != nil {
		return 0, apperrors.FromStore(err, "notification")
	}
	s.unread.Invalidate(ctx, caller.UserID)
	if s.metrics != nil && updated > 0 {
		s.metrics.NotificationsRead.Add(float64(updated))
	}
	logger.Log.Debug("marked notifications read", zap.String("user_id", caller.UserID), zap.Int64("updated", updated))
	return updated, nil
}

// Create inserts a notification sent by the caller. The receiver may be the caller.
func (s *NotificationService) Create(ctx context.Context, caller auth.Caller, req models.CreateNotificationRequest) (*models.Notification, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	typ := models.NotificationType(req.Type)
	if !typ.Valid() {
		return nil, apperrors.BadRequest("unknown notification type")
	}
	target, err := req.Ref()
	if err != nil {
		return nil, apperrors.BadRequest(err.Error())
	}
	if !typ.Accepts(target) {
		return nil, apperrors.BadRequest("reference is not compatible with notification type " + req.Type)
	}

	row := &models.Notification{
		ReceiverID: req.ReceiverID,
		Type:       typ,
		Content:    sanitizeText(req.Content),
		Target:     target,
	}
	sender := caller.UserID
	row.SenderID = &sender

	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		exists, err := tx.Users.Exists(ctx, req.ReceiverID)
		if err != nil {
			return apperrors.FromStore(err, "user")
		}
		if !exists {
			return apperrors.NotFound("receiver")
		}
		if err := referable(ctx, tx, caller, target); err != nil {
			return err
		}
		return tx.Notifications.CreateNotifications(ctx, []*models.Notification{row})
	})
	if err != nil {
		return nil, apperrors.FromStore(err, "notification")
	}
	s.unread.Invalidate(ctx, row.ReceiverID)
	if s.metrics != nil {
		s.metrics.NotificationsCreated.WithLabelValues(string(typ)).Inc()
	}
	return row, nil
}

// referable checks that target exists and that the caller may point at it. Messages are
// private to their participants.
func referable(ctx context.Context, tx *repositories.Repositories, caller auth.Caller, target *models.Ref) error {
	if target == nil {
		return nil
	}
	if target.Kind == models.RefMessage {
		message, err := tx.Messages.GetMessageByID(ctx, target.ID)
		if err != nil {
			return apperrors.FromStore(err, "message")
		}
		return canSee(ctx, tx, caller, message)
	}
	_, err := ownerOf(ctx, tx, target)
	return err
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, caller auth.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	n, err := s.repos.Notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return apperrors.FromStore(err, "notification")
	}
	if !caller.Is(n.ReceiverID) {
		return apperrors.Forbidden("not your notification")
	}
	if err := s.repos.Notifications.DeleteNotification(ctx, id); err != nil {
		return apperrors.FromStore(err, "notification")
	}
	s.unread.Invalidate(ctx, caller.UserID)
	return nil
}
