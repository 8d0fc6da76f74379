// Package repository provides the data access layer. Each repository treats
// its table as a collection of documents: reads fetch whole rows, writes
// touch exactly one row, and the store guarantees nothing across rows. The
// denormalized reference lists (following, followers, liked posts) are
// written back column-wise by the service layer, which owns cross-document
// consistency.
package repository

import (
	"context"
	"errors"

	"flock/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user document operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, bool, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateProfile(ctx context.Context, user *models.User) error
	SetFollowing(ctx context.Context, id uint, list models.IDList) error
	SetFollowers(ctx context.Context, id uint, list models.IDList) error
	SetLikedPosts(ctx context.Context, id uint, list models.IDList) error
	Sample(ctx context.Context, excludeID uint, size int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// FindByUsername is the explicit found/not-found variant used by existence
// checks, where absence is an expected outcome rather than an error.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	return &user, true, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	return &user, true, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateColumn(ctx, id, "password", &models.User{Password: hash})
}

// UpdateProfile persists the mutable profile fields of user in one row write.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"full_name":   user.FullName,
			"email":       user.Email,
			"bio":         user.Bio,
			"link":        user.Link,
			"profile_img": user.ProfileImg,
			"cover_img":   user.CoverImg,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) SetFollowing(ctx context.Context, id uint, list models.IDList) error {
	return r.updateColumn(ctx, id, "following", &models.User{Following: list})
}

func (r *userRepository) SetFollowers(ctx context.Context, id uint, list models.IDList) error {
	return r.updateColumn(ctx, id, "followers", &models.User{Followers: list})
}

func (r *userRepository) SetLikedPosts(ctx context.Context, id uint, list models.IDList) error {
	return r.updateColumn(ctx, id, "liked_posts", &models.User{LikedPosts: list})
}

// updateColumn writes a single column of a single user row. The value goes
// through the model so serialized columns are encoded; Select forces the
// write even when the field is zero. This is the only atomicity the store
// offers; anything spanning two rows belongs to the service layer.
func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, values *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Select(column).
		Updates(values)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

// Sample returns up to size users in random order, excluding excludeID.
func (r *userRepository) Sample(ctx context.Context, excludeID uint, size int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id != ?", excludeID).
		Order("RANDOM()").
		Limit(size).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
