// Package pagination implements keyset pagination ordered by (created_at DESC, id DESC).
//
// A cursor is the id of the first row of the page it opens. Pages are fetched with one
// extra row; when that row exists its id becomes the next cursor.
package pagination

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the list input shared by every list procedure.
type Params struct {
	Limit  int
	Cursor string
}

// New builds Params from optional request values, applying the default limit.
func New(limit *int, cursor string) (Params, error) {
	p := Params{Limit: DefaultLimit, Cursor: cursor}
	if limit != nil {
		p.Limit = *limit
	}
	return p, p.Validate()
}

// Validate rejects limits outside [1, MaxLimit].
func (p Params) Validate() error {
	if p.Limit < 1 || p.Limit > MaxLimit {
		return apperrors.BadRequest("limit must be between 1 and 100")
	}
	return nil
}

// Page is one slice of an ordered list.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// Item is anything with a stable cursor id.
type Item interface {
	CursorID() string
}

// Trim turns up to limit+1 fetched rows into a page.
func Trim[T Item](rows []T, limit int) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		next := rows[limit].CursorID()
		page.Items = rows[:limit]
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}

// Paginate runs a keyset query for T over the rows selected by filter (nil selects the
// whole table). preload names associations loaded on the returned items only.
func Paginate[T Item](ctx context.Context, db *gorm.DB, p Params, filter func(*gorm.DB) *gorm.DB, preload ...string) (Page[T], error) {
	return PaginateWithin[T](ctx, db, p, filter, nil, preload...)
}

// PaginateWithin is Paginate with the selection split in two. The cursor is resolved
// against scope alone, while rows must also match state. A row that leaves the state
// filter between requests, such as a notification marked read, stays a valid cursor.
func PaginateWithin[T Item](ctx context.Context, db *gorm.DB, p Params, scope, state func(*gorm.DB) *gorm.DB, preload ...string) (Page[T], error) {
	if err := p.Validate(); err != nil {
		return Page[T]{}, err
	}
	scoped := func() *gorm.DB {
		q := db.WithContext(ctx).Model(new(T))
		if scope != nil {
			q = q.Scopes(scope)
		}
		return q
	}
	base := func() *gorm.DB {
		q := scoped()
		if state != nil {
			q = q.Scopes(state)
		}
		return q
	}

	q := base()
	if p.Cursor != "" {
		var anchor struct {
			ID        string
			CreatedAt time.Time
		}
		err := scoped().Select("id", "created_at").Where("id = ?", p.Cursor).Take(&anchor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Page[T]{}, apperrors.BadRequest("invalid cursor")
		}
		if err != nil {
			return Page[T]{}, apperrors.Internal("failed to resolve cursor", err)
		}
		q = q.Where("(created_at < ? OR (created_at = ? AND id <= ?))", anchor.CreatedAt, anchor.CreatedAt, anchor.ID)
	}
	for _, name := range preload {
		q = q.Preload(name)
	}

	var rows []T
	err := q.Order("created_at DESC").Order("id DESC").Limit(p.Limit + 1).Find(&rows).Error
	if err != nil {
		return Page[T]{}, apperrors.Internal("failed to list", err)
	}
	return Trim(rows, p.Limit), nil
}
