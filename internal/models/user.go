package models

import "time"

// User is the account aggregate. Follow and like state is denormalized onto
// the document itself: Following and Followers are symmetric duals maintained
// by the social service (if A follows B then B.Followers contains A), and
// LikedPosts mirrors the Likes list of each liked post. The store only
// guarantees per-row atomicity, so keeping the duals consistent is the
// service's job, not the schema's.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	FullName   string    `gorm:"not null" json:"fullname"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	Bio        string    `json:"bio"`
	Link       string    `json:"link"`
	ProfileImg string    `json:"profileImg"`
	CoverImg   string    `json:"coverImg"`
	Following  IDList    `gorm:"serializer:json" json:"following"`
	Followers  IDList    `gorm:"serializer:json" json:"followers"`
	LikedPosts IDList    `gorm:"serializer:json" json:"likedPosts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
