package models

// All returns every relational model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Story{},
		&Reel{},
		&Comment{},
		&Group{},
		&GroupMember{},
		&Message{},
		&Follow{},
		&Like{},
		&Reaction{},
		&StoryView{},
		&ReelView{},
		&SavedPost{},
		&Notification{},
	}
}
