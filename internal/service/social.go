// Package service implements the social graph mutator: the follow and like
// toggles that keep the denormalized user and post documents consistent, and
// the notification side effects they emit. The store only guarantees
// per-document atomicity, so each toggle is a sequence of independent single
// row writes; per-document locks serialize concurrent mutations touching the
// same row in-process, and a failure between writes is surfaced to the
// caller rather than rolled back.
package service

import (
	"context"
	"log/slog"
	"time"

	"flock/internal/models"
	"flock/internal/observability"
	"flock/internal/repository"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// SocialService mutates follow and like relations and appends comments.
type SocialService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	notifs repository.NotificationRepository
	locks  docLocks
}

// NewSocialService creates a social service over the given repositories.
func NewSocialService(users repository.UserRepository, posts repository.PostRepository, notifs repository.NotificationRepository) *SocialService {
	return &SocialService{users: users, posts: posts, notifs: notifs}
}

// FollowResult reports the state after a follow toggle.
type FollowResult struct {
	// Following is true when the toggle ended with actor following target.
	Following bool
	Target    *models.User
}

// ToggleFollow flips the follow edge between actor and target. Following
// pushes target into actor.Following and actor into target.Followers;
// unfollowing pulls both. A new follow emits a follow notification to the
// target; unfollowing emits nothing.
func (s *SocialService) ToggleFollow(ctx context.Context, actorID, targetID uint) (*FollowResult, error) {
	if actorID == targetID {
		return nil, models.NewInvalidOperationError("You cannot follow or unfollow yourself")
	}

	unlock := s.locks.lock(userKey(actorID), userKey(targetID))
	defer unlock()

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !actor.Following.Contains(targetID) {
		if err := s.users.SetFollowing(ctx, actorID, actor.Following.Push(targetID)); err != nil {
			return nil, err
		}
		if err := s.users.SetFollowers(ctx, targetID, target.Followers.Push(actorID)); err != nil {
			s.reportPartialWrite(ctx, "follow", err)
			return nil, err
		}
		if err := s.emit(ctx, models.NotificationFollow, actorID, targetID); err != nil {
			return nil, err
		}
		observability.GraphMutations.WithLabelValues("follow", "on").Inc()
		return &FollowResult{Following: true, Target: target}, nil
	}

	if err := s.users.SetFollowing(ctx, actorID, actor.Following.Pull(targetID)); err != nil {
		return nil, err
	}
	if err := s.users.SetFollowers(ctx, targetID, target.Followers.Pull(actorID)); err != nil {
		s.reportPartialWrite(ctx, "follow", err)
		return nil, err
	}
	observability.GraphMutations.WithLabelValues("follow", "off").Inc()
	return &FollowResult{Following: false, Target: target}, nil
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	// Liked is true when the toggle ended with the post liked by the actor.
	Liked bool
	Post  *models.Post
}

// ToggleLike flips the actor's membership in the post's likes. Membership is
// tested by exact ID equality against the post's likes list. Liking pushes
// the actor into post.Likes and the post into actor.LikedPosts and emits a
// like notification to the post owner; unliking pulls both and stays silent.
func (s *SocialService) ToggleLike(ctx context.Context, actorID, postID uint) (*LikeResult, error) {
	unlock := s.locks.lock(postKey(postID), userKey(actorID))
	defer unlock()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if !post.Likes.Contains(actorID) {
		post.Likes = post.Likes.Push(actorID)
		if err := s.posts.SetLikes(ctx, postID, post.Likes); err != nil {
			return nil, err
		}
		if err := s.users.SetLikedPosts(ctx, actorID, actor.LikedPosts.Push(postID)); err != nil {
			s.reportPartialWrite(ctx, "like", err)
			return nil, err
		}
		if err := s.emit(ctx, models.NotificationLike, actorID, post.UserID); err != nil {
			return nil, err
		}
		observability.GraphMutations.WithLabelValues("like", "on").Inc()
		return &LikeResult{Liked: true, Post: post}, nil
	}

	post.Likes = post.Likes.Pull(actorID)
	if err := s.posts.SetLikes(ctx, postID, post.Likes); err != nil {
		return nil, err
	}
	if err := s.users.SetLikedPosts(ctx, actorID, actor.LikedPosts.Pull(postID)); err != nil {
		s.reportPartialWrite(ctx, "like", err)
		return nil, err
	}
	observability.GraphMutations.WithLabelValues("like", "off").Inc()
	return &LikeResult{Liked: false, Post: post}, nil
}

// AddComment appends a comment to the post's ordered sequence and returns
// the updated post.
func (s *SocialService) AddComment(ctx context.Context, postID, actorID uint, text string) (*models.Post, error) {
	if text == "" {
		return nil, models.NewValidationError("No comment provided")
	}

	unlock := s.locks.lockOne(postKey(postID))
	defer unlock()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	post.Comments = append(post.Comments, models.Comment{
		Text:      text,
		AuthorID:  actorID,
		CreatedAt: nowUTC(),
	})
	if err := s.posts.SetComments(ctx, postID, post.Comments); err != nil {
		return nil, err
	}
	return post, nil
}

// emit persists a notification record. Emission is part of the mutation's
// write sequence, so a failure here is surfaced like any other partial
// failure.
func (s *SocialService) emit(ctx context.Context, kind models.NotificationType, fromID, toID uint) error {
	n := &models.Notification{Type: kind, FromID: fromID, ToID: toID}
	if err := s.notifs.Create(ctx, n); err != nil {
		s.reportPartialWrite(ctx, string(kind), err)
		return err
	}
	observability.NotificationsEmitted.WithLabelValues(string(kind)).Inc()
	return nil
}

func (s *SocialService) reportPartialWrite(ctx context.Context, relation string, err error) {
	observability.PartialWriteFailures.WithLabelValues(relation).Inc()
	slog.ErrorContext(ctx, "graph mutation left documents inconsistent",
		"relation", relation,
		"error", err,
	)
}
