// Package seed creates demo data for development environments. It writes
// through the same repositories and social service as the API so the
// denormalized follow/like lists stay consistent.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"flock/internal/models"
	"flock/internal/repository"
	"flock/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo data gets created.
type Options struct {
	Users          int
	PostsPerUser   int
	FollowsPerUser int
	LikesPerUser   int
	// Password is shared by every seeded account so they are easy to log
	// into locally.
	Password string
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:          25,
		PostsPerUser:   4,
		FollowsPerUser: 6,
		LikesPerUser:   8,
		Password:       "password123",
	}
}

// Run populates the database with fake users, posts, follows and likes.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	notifs := repository.NewNotificationRepository(db)
	social := service.NewSocialService(users, posts, notifs)

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	seeded := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			FullName: gofakeit.Name(),
			Email:    fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Password: string(hash),
			Bio:      gofakeit.Sentence(8),
			Link:     gofakeit.URL(),
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		seeded = append(seeded, user)
	}

	var allPosts []*models.Post
	for _, user := range seeded {
		for i := 0; i < opts.PostsPerUser; i++ {
			post := &models.Post{
				UserID: user.ID,
				Text:   gofakeit.Paragraph(1, 2, 8, " "),
			}
			if rand.Intn(3) == 0 {
				post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
			}
			if err := posts.Create(ctx, post); err != nil {
				return fmt.Errorf("seeding post for user %d: %w", user.ID, err)
			}
			allPosts = append(allPosts, post)
		}
	}

	for _, user := range seeded {
		for i := 0; i < opts.FollowsPerUser; i++ {
			target := seeded[rand.Intn(len(seeded))]
			if target.ID == user.ID {
				continue
			}
			// ToggleFollow is idempotent per call; hitting the same pair
			// twice just unfollows, which keeps the data varied anyway.
			if _, err := social.ToggleFollow(ctx, user.ID, target.ID); err != nil {
				return fmt.Errorf("seeding follow %d->%d: %w", user.ID, target.ID, err)
			}
		}
		for i := 0; i < opts.LikesPerUser; i++ {
			post := allPosts[rand.Intn(len(allPosts))]
			if _, err := social.ToggleLike(ctx, user.ID, post.ID); err != nil {
				return fmt.Errorf("seeding like %d->%d: %w", user.ID, post.ID, err)
			}
			if rand.Intn(4) == 0 {
				if _, err := social.AddComment(ctx, post.ID, user.ID, gofakeit.Sentence(10)); err != nil {
					return fmt.Errorf("seeding comment: %w", err)
				}
			}
		}
	}

	slog.Info("seed complete",
		"users", len(seeded),
		"posts", len(allPosts),
	)
	return nil
}
