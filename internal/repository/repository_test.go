package repository

import (
	"context"
	"testing"

	"flock/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Notification{}))
	return db
}

func mustCreateUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		FullName: username,
		Email:    username + "@example.com",
		Password: "hash",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := mustCreateUser(t, repo, "alice")
	require.NotZero(t, created.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

// Find variants report absence as a value, not an error.
func TestUserRepository_FindVariants(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")

	got, found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, alice.ID, got.ID)

	got, found, err = repo.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	_, found, err = repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = repo.FindByEmail(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}

// The denormalized list columns survive a write-read round trip through the
// JSON serializer.
func TestUserRepository_ListColumnsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")

	require.NoError(t, repo.SetFollowing(ctx, alice.ID, models.IDList{2, 3, 5}))
	require.NoError(t, repo.SetFollowers(ctx, alice.ID, models.IDList{7}))
	require.NoError(t, repo.SetLikedPosts(ctx, alice.ID, models.IDList{11, 13}))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IDList{2, 3, 5}, got.Following)
	assert.Equal(t, models.IDList{7}, got.Followers)
	assert.Equal(t, models.IDList{11, 13}, got.LikedPosts)

	// Writing an empty list clears the column rather than erroring.
	require.NoError(t, repo.SetFollowing(ctx, alice.ID, models.IDList{}))
	got, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Following)
}

// A one-element list must be stored as a JSON array, not a bare number, so
// the row stays readable afterwards.
func TestUserRepository_SingleElementListStaysReadable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")
	require.NoError(t, repo.SetFollowing(ctx, alice.ID, models.IDList{3}))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IDList{3}, got.Following)

	var raw string
	require.NoError(t, db.Raw("SELECT following FROM users WHERE id = ?", alice.ID).Scan(&raw).Error)
	assert.JSONEq(t, "[3]", raw)
}

func TestUserRepository_SetOnMissingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	err := repo.SetFollowing(context.Background(), 999, models.IDList{1})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice")
	alice.FullName = "Alice Ammermann"
	alice.Bio = "gopher"
	alice.Link = "https://alice.example.com"
	alice.ProfileImg = "https://img.example.com/p.png"
	require.NoError(t, repo.UpdateProfile(ctx, alice))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Ammermann", got.FullName)
	assert.Equal(t, "gopher", got.Bio)
	assert.Equal(t, "https://alice.example.com", got.Link)
	assert.Equal(t, "https://img.example.com/p.png", got.ProfileImg)
	assert.Equal(t, "alice", got.Username, "username is immutable through UpdateProfile")
}

func TestUserRepository_Sample(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	me := mustCreateUser(t, repo, "me")
	for _, name := range []string{"a", "b", "c", "d"} {
		mustCreateUser(t, repo, name)
	}

	users, err := repo.Sample(ctx, me.ID, 10)
	require.NoError(t, err)
	assert.Len(t, users, 4)
	for _, u := range users {
		assert.NotEqual(t, me.ID, u.ID, "sample must exclude the requester")
	}

	users, err = repo.Sample(ctx, me.ID, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestPostRepository_CreateGetDelete(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, users, "alice")
	post := &models.Post{UserID: alice.ID, Text: "hello", ImageURL: "https://img.example.com/1.png"}
	require.NoError(t, posts.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	require.NotNil(t, got.User, "author is preloaded")
	assert.Equal(t, "alice", got.User.Username)

	require.NoError(t, posts.Delete(ctx, post.ID))
	_, err = posts.GetByID(ctx, post.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostRepository_SetLikesAndComments(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, users, "alice")
	post := &models.Post{UserID: alice.ID, Text: "hello"}
	require.NoError(t, posts.Create(ctx, post))

	require.NoError(t, posts.SetLikes(ctx, post.ID, models.IDList{alice.ID}))
	require.NoError(t, posts.SetComments(ctx, post.ID, models.CommentList{{Text: "hi", AuthorID: alice.ID}}))

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IDList{alice.ID}, got.Likes)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "hi", got.Comments[0].Text)

	err = posts.SetLikes(ctx, 999, models.IDList{1})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func seedFeed(t *testing.T, db *gorm.DB) (alice, bob *models.User, aliceIDs, bobIDs []uint) {
	t.Helper()
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	alice = mustCreateUser(t, users, "alice")
	bob = mustCreateUser(t, users, "bob")
	for i := 0; i < 4; i++ {
		p := &models.Post{UserID: alice.ID, Text: "alice"}
		require.NoError(t, posts.Create(ctx, p))
		aliceIDs = append(aliceIDs, p.ID)
		q := &models.Post{UserID: bob.ID, Text: "bob"}
		require.NoError(t, posts.Create(ctx, q))
		bobIDs = append(bobIDs, q.ID)
	}
	return alice, bob, aliceIDs, bobIDs
}

func TestPostRepository_ListFeed(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	ctx := context.Background()
	seedFeed(t, db)

	page, next, err := posts.ListFeed(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, page, 5)
	require.NotNil(t, next)
	require.NotNil(t, page[0].User, "feed rows carry their author")

	page, next, err = posts.ListFeed(ctx, 5, *next)
	require.NoError(t, err)
	assert.Len(t, page, 3)
	assert.Nil(t, next)
}

func TestPostRepository_ListByAuthors(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	ctx := context.Background()
	alice, _, aliceIDs, _ := seedFeed(t, db)

	page, next, err := posts.ListByAuthors(ctx, models.IDList{alice.ID}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page, len(aliceIDs))
	assert.Nil(t, next)
	for _, p := range page {
		assert.Equal(t, alice.ID, p.UserID)
	}

	// An empty author set is a terminated empty page, not an error.
	page, next, err = posts.ListByAuthors(ctx, models.IDList{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Nil(t, next)
}

func TestPostRepository_ListExcludingAuthor(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	ctx := context.Background()
	alice, bob, _, _ := seedFeed(t, db)

	page, next, err := posts.ListExcludingAuthor(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page, 4)
	assert.Nil(t, next)
	for _, p := range page {
		assert.Equal(t, bob.ID, p.UserID)
	}
}

func TestPostRepository_ListByIDs(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	ctx := context.Background()
	_, _, aliceIDs, bobIDs := seedFeed(t, db)

	want := models.IDList{aliceIDs[0], bobIDs[2], aliceIDs[3]}
	page, next, err := posts.ListByIDs(ctx, want, 10, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)
	assert.Nil(t, next)
	for _, p := range page {
		assert.True(t, want.Contains(p.ID))
	}

	page, next, err = posts.ListByIDs(ctx, models.IDList{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Nil(t, next)
}

func TestNotificationRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	notifs := NewNotificationRepository(db)
	ctx := context.Background()

	alice := mustCreateUser(t, users, "alice")
	bob := mustCreateUser(t, users, "bob")

	for i := 0; i < 3; i++ {
		n := &models.Notification{Type: models.NotificationFollow, FromID: alice.ID, ToID: bob.ID}
		require.NoError(t, notifs.Create(ctx, n))
	}
	other := &models.Notification{Type: models.NotificationLike, FromID: bob.ID, ToID: alice.ID}
	require.NoError(t, notifs.Create(ctx, other))

	list, err := notifs.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Greater(t, list[0].ID, list[2].ID, "newest first")
	require.NotNil(t, list[0].From)
	assert.Equal(t, "alice", list[0].From.Username)
	for _, n := range list {
		assert.False(t, n.Read)
	}

	require.NoError(t, notifs.MarkAllRead(ctx, bob.ID))
	list, err = notifs.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	for _, n := range list {
		assert.True(t, n.Read)
	}
	// Idempotent.
	require.NoError(t, notifs.MarkAllRead(ctx, bob.ID))

	require.NoError(t, notifs.Delete(ctx, list[0].ID))
	remaining, err := notifs.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	require.NoError(t, notifs.DeleteAllForUser(ctx, bob.ID))
	remaining, err = notifs.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Alice's notification is untouched by bob-scoped deletes.
	aliceList, err := notifs.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceList, 1)
}
