package repository

import (
	"context"
	"errors"

	"flock/internal/models"
	"flock/internal/pagination"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post document operations. The four
// List methods are the feed call sites of the pagination engine; they differ
// only in the filter applied before paging.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	SetLikes(ctx context.Context, id uint, likes models.IDList) error
	SetComments(ctx context.Context, id uint, comments models.CommentList) error
	ListFeed(ctx context.Context, limit int, cursor uint) ([]models.Post, *uint, error)
	ListByAuthors(ctx context.Context, authors models.IDList, limit int, cursor uint) ([]models.Post, *uint, error)
	ListExcludingAuthor(ctx context.Context, authorID uint, limit int, cursor uint) ([]models.Post, *uint, error)
	ListByIDs(ctx context.Context, ids models.IDList, limit int, cursor uint) ([]models.Post, *uint, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) SetLikes(ctx context.Context, id uint, likes models.IDList) error {
	return r.updateColumn(ctx, id, "likes", &models.Post{Likes: likes})
}

func (r *postRepository) SetComments(ctx context.Context, id uint, comments models.CommentList) error {
	return r.updateColumn(ctx, id, "comments", &models.Post{Comments: comments})
}

// updateColumn writes a single column of a single post row through the model
// so serialized columns are encoded.
func (r *postRepository) updateColumn(ctx context.Context, id uint, column string, values *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Select(column).
		Updates(values)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// ListFeed pages the global feed, no filter.
func (r *postRepository) ListFeed(ctx context.Context, limit int, cursor uint) ([]models.Post, *uint, error) {
	return r.page(r.feedQuery(ctx), limit, cursor)
}

// ListByAuthors pages posts whose author is in the given set. An empty set
// yields an empty, terminated page without touching the store.
func (r *postRepository) ListByAuthors(ctx context.Context, authors models.IDList, limit int, cursor uint) ([]models.Post, *uint, error) {
	if len(authors) == 0 {
		return []models.Post{}, nil, nil
	}
	return r.page(r.feedQuery(ctx).Where("user_id IN ?", []uint(authors)), limit, cursor)
}

// ListExcludingAuthor pages posts by everyone except the given author.
func (r *postRepository) ListExcludingAuthor(ctx context.Context, authorID uint, limit int, cursor uint) ([]models.Post, *uint, error) {
	return r.page(r.feedQuery(ctx).Where("user_id != ?", authorID), limit, cursor)
}

// ListByIDs pages posts whose ID is in the given set, used for a user's
// liked-posts feed.
func (r *postRepository) ListByIDs(ctx context.Context, ids models.IDList, limit int, cursor uint) ([]models.Post, *uint, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil, nil
	}
	return r.page(r.feedQuery(ctx).Where("id IN ?", []uint(ids)), limit, cursor)
}

func (r *postRepository) feedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).Preload("User")
}

func (r *postRepository) page(query *gorm.DB, limit int, cursor uint) ([]models.Post, *uint, error) {
	posts, next, err := pagination.Paginate(query, limit, cursor, func(p *models.Post) uint { return p.ID })
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return posts, next, nil
}
