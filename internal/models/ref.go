package models

import (
	"fmt"

	"github.com/google/uuid"
)

// RefKind names the kind of content entity a Ref points at.
type RefKind string

const (
	RefPost    RefKind = "post"
	RefComment RefKind = "comment"
	RefStory   RefKind = "story"
	RefReel    RefKind = "reel"
	RefMessage RefKind = "message"
)

// Ref points at exactly one content entity. Rows that may reference one of several
// entity kinds expose a *Ref and keep one nullable foreign key column per kind in the
// store, so deleting the entity cascades.
type Ref struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

func PostRef(id string) *Ref    { return &Ref{Kind: RefPost, ID: id} }
func CommentRef(id string) *Ref { return &Ref{Kind: RefComment, ID: id} }
func StoryRef(id string) *Ref   { return &Ref{Kind: RefStory, ID: id} }
func ReelRef(id string) *Ref    { return &Ref{Kind: RefReel, ID: id} }
func MessageRef(id string) *Ref { return &Ref{Kind: RefMessage, ID: id} }

func (r *Ref) String() string {
	if r == nil {
		return "none"
	}
	return string(r.Kind) + ":" + r.ID
}

// refSlots is the column form of a Ref. Nil slot pointers mean the row has no column
// for that kind.
type refSlots struct {
	post, comment, story, reel, message **string
}

func (s refSlots) slot(kind RefKind) **string {
	switch kind {
	case RefPost:
		return s.post
	case RefComment:
		return s.comment
	case RefStory:
		return s.story
	case RefReel:
		return s.reel
	case RefMessage:
		return s.message
	}
	return nil
}

func (s refSlots) each(fn func(RefKind, **string)) {
	for _, kind := range []RefKind{RefPost, RefComment, RefStory, RefReel, RefMessage} {
		if p := s.slot(kind); p != nil {
			fn(kind, p)
		}
	}
}

// store writes ref into the columns, clearing the others.
func (s refSlots) store(ref *Ref) error {
	s.each(func(_ RefKind, p **string) { *p = nil })
	if ref == nil {
		return nil
	}
	if ref.ID == "" {
		return fmt.Errorf("reference to %s has no id", ref.Kind)
	}
	p := s.slot(ref.Kind)
	if p == nil {
		return fmt.Errorf("reference kind %q is not supported here", ref.Kind)
	}
	id := ref.ID
	*p = &id
	return nil
}

// load reads the populated column back into a Ref.
func (s refSlots) load() (*Ref, error) {
	var found *Ref
	var err error
	s.each(func(kind RefKind, p **string) {
		if *p == nil {
			return
		}
		if found != nil {
			err = fmt.Errorf("more than one reference populated (%s and %s)", found.Kind, kind)
			return
		}
		found = &Ref{Kind: kind, ID: **p}
	})
	return found, err
}

func newID() string {
	return uuid.NewString()
}
