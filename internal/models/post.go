package models

import "time"

// Comment is an entry in a post's ordered comment sequence. Comments live
// inside the post document rather than in their own table.
type Comment struct {
	Text      string    `json:"text"`
	AuthorID  uint      `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentList is the ordered comment sequence, stored as a JSON column.
type CommentList []Comment

// Post is the post aggregate. Likes holds the IDs of users who liked the
// post; the same IDs appear in each liker's LikedPosts list.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	User      *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text      string      `json:"text"`
	ImageURL  string      `json:"img"`
	Likes     IDList      `gorm:"serializer:json" json:"likes"`
	Comments  CommentList `gorm:"serializer:json" json:"comments"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
