package server

import (
	"log/slog"

	"flock/internal/images"
	"flock/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllPosts handles GET /api/post?limit&cursor — the global feed.
func (s *Server) GetAllPosts(c *fiber.Ctx) error {
	limit, cursor := parseFeedParams(c)

	posts, next, err := s.postRepo.ListFeed(c.UserContext(), limit, cursor)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return feedResponse(c, "Posts fetched successfully", posts, next)
}

// GetFollowingPosts handles GET /api/post/following/posts — posts authored
// by users the requester follows.
func (s *Server) GetFollowingPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limit, cursor := parseFeedParams(c)

	user, err := s.userRepo.GetByID(ctx, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, next, err := s.postRepo.ListByAuthors(ctx, user.Following, limit, cursor)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return feedResponse(c, "Following feed fetched successfully", posts, next)
}

// GetPostsForYou handles GET /api/post/foryou/posts — everyone's posts
// except the requester's own.
func (s *Server) GetPostsForYou(c *fiber.Ctx) error {
	limit, cursor := parseFeedParams(c)

	posts, next, err := s.postRepo.ListExcludingAuthor(c.UserContext(), currentUserID(c), limit, cursor)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return feedResponse(c, "For-you feed fetched successfully", posts, next)
}

// GetLikedPosts handles GET /api/post/user/likes and /api/post/user/likes/:id.
// Without an id it pages the requester's own liked posts.
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	limit, cursor := parseFeedParams(c)

	targetID := currentUserID(c)
	if c.Params("id") != "" {
		id, err := s.parseID(c, "id", "user ID")
		if err != nil {
			return nil
		}
		targetID = id
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts, next, err := s.postRepo.ListByIDs(ctx, user.LikedPosts, limit, cursor)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return feedResponse(c, "Liked posts fetched successfully", posts, next)
}

// CreatePost handles POST /api/post/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req struct {
		Text string `json:"text"`
		Img  string `json:"img"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Text == "" && req.Img == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Post must have text or image content in it"))
	}

	imageURL := ""
	if req.Img != "" {
		url, err := s.uploader.Upload(ctx, req.Img)
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
		imageURL = url
	}

	post := &models.Post{
		UserID:   userID,
		Text:     req.Text,
		ImageURL: imageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, err)
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "New post was created successfully",
		"data":    created,
	})
}

// LikePost handles POST /api/post/likes/:postId. The endpoint toggles: if
// already liked it unlikes, otherwise it likes.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId", "post ID")
	if err != nil {
		return nil
	}

	result, err := s.social.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Post unliked"
	if result.Liked {
		message = "Post liked"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    result.Post,
	})
}

// CreateComment handles POST /api/post/comments/:postId
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.social.AddComment(c.UserContext(), postID, currentUserID(c), req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "A new comment was added",
		"data":    post,
	})
}

// DeletePost handles DELETE /api/post/delete/:postId. Owner only. The
// post's stored image is destroyed best effort: a blob host failure is
// logged but never blocks the delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "postId", "post ID")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if post.UserID != currentUserID(c) {
		return models.RespondWithError(c,
			models.NewForbiddenError("You can only delete your own posts"))
	}

	if post.ImageURL != "" {
		if err := s.uploader.Destroy(ctx, images.PublicID(post.ImageURL)); err != nil {
			slog.WarnContext(ctx, "post image destroy failed", "post_id", post.ID, "error", err)
		}
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted successfully",
	})
}
