package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity verbs.
const (
	VerbPost    = "post"
	VerbStory   = "story"
	VerbReel    = "reel"
	VerbComment = "comment"
	VerbLike    = "like"
	VerbReact   = "react"
	VerbFollow  = "follow"
	VerbSave    = "save"
	VerbMessage = "message"
)

// Activity is an append-only record of something a user did (MongoDB).
type Activity struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Verb      string             `json:"verb" bson:"verb"`
	Target    *Ref               `json:"target,omitempty" bson:"target,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

func (a Activity) CursorID() string { return a.ID.Hex() }
