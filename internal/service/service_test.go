package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blog-records/internal/cache"
	"github.com/example/blog-records/internal/config"
	"github.com/example/blog-records/internal/db"
	"github.com/example/blog-records/internal/models"
	"github.com/example/blog-records/internal/repository"
	"github.com/example/blog-records/internal/search"
)

func setupDB(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.Connect(&config.Config{
		DBDriver:   db.DriverSQLite,
		DBPath:     filepath.Join(t.TempDir(), "service.db"),
		DBLogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.AutoMigrate(&models.Author{}, &models.Post{}, &models.ActivityLog{}))
	require.NoError(t, database.EnsureIndexes())
	return database
}

func setupCache(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisClient(&config.Config{RedisAddr: mr.Addr(), CacheTTLSec: 60})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func strPtr(s string) *string { return &s }

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]search.PostDocument
	failAll bool
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]search.PostDocument{}} }

func (f *fakeIndex) IndexPost(_ context.Context, doc search.PostDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("index unavailable")
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) DeletePost(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) SearchPosts(_ context.Context, query, category string, _ int) ([]search.PostHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var hits []search.PostHit
	for _, d := range f.docs {
		if strings.Contains(strings.ToLower(d.Title), strings.ToLower(query)) &&
			(category == "" || d.Category == strings.ToLower(category)) {
			hits = append(hits, search.PostHit{PostDocument: d, Score: 1})
		}
	}
	return hits, nil
}

func longContent() *string { return strPtr(strings.Repeat("word ", 60)) }

func TestCreateAuthorRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthorService(setupDB(t), WithLogger(quietLogger()))

	jane, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane", PhoneNumber: strPtr("5550001111")})
	require.NoError(t, err)
	assert.NotZero(t, jane.ID)

	_, err = svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDuplicateValue)

	jack, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jack"})
	require.NoError(t, err)
	assert.Nil(t, jack.PhoneNumber)
}

func TestCreateAuthorJoinsFieldErrors(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	svc := NewAuthorService(setupDB(t), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	_, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "", PhoneNumber: strPtr("123")})
	require.Error(t, err)
	fes := models.FieldErrors(err)
	require.Len(t, fes, 2)
	assert.Equal(t, "name", fes[0].Field)
	assert.ErrorIs(t, fes[0], models.ErrMissingValue)
	assert.Equal(t, "phone_number", fes[1].Field)
	assert.ErrorIs(t, fes[1], models.ErrInvalidFormat)

	assert.Contains(t, logs.String(), "validation rejected")
	assert.Contains(t, logs.String(), "field=phone_number")

	authors, err := svc.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors, "nothing is persisted on rejection")
}

func TestCreateAuthorValidatesEmptyPhoneNumber(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthorService(setupDB(t), WithLogger(quietLogger()))

	_, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane", PhoneNumber: strPtr("")})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidFormat)

	authors, err := svc.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Empty(t, authors)

	jane, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane"})
	require.NoError(t, err)
	assert.Nil(t, jane.PhoneNumber, "an omitted phone number is stored as NULL")
}

func TestConcurrentCreatesKeepNamesUnique(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthorService(setupDB(t), WithLogger(quietLogger()))

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Racer"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrDuplicateValue)
	}
	assert.Equal(t, 1, succeeded)
}

func TestUpdateAuthor(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	svc := NewAuthorService(setupDB(t), WithLogger(quietLogger()), WithCache(c))

	jane, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane", PhoneNumber: strPtr("5550001111")})
	require.NoError(t, err)
	_, err = svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jack"})
	require.NoError(t, err)

	_, err = svc.GetAuthor(ctx, jane.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.AuthorKey(jane.ID)))

	_, err = svc.UpdateAuthor(ctx, jane.ID, UpdateAuthorInput{Name: strPtr("Jack")})
	assert.ErrorIs(t, err, models.ErrDuplicateValue)

	same, err := svc.UpdateAuthor(ctx, jane.ID, UpdateAuthorInput{Name: strPtr("Jane")})
	require.NoError(t, err, "keeping its own name is not a duplicate")
	assert.Equal(t, "Jane", same.Name)

	_, err = svc.UpdateAuthor(ctx, jane.ID, UpdateAuthorInput{PhoneNumber: strPtr("")})
	assert.ErrorIs(t, err, models.ErrInvalidFormat, "an empty phone number is validated, not treated as a clear")

	_, err = svc.UpdateAuthor(ctx, jane.ID, UpdateAuthorInput{PhoneNumber: strPtr("5551112222"), ClearPhoneNumber: true})
	assert.ErrorIs(t, err, models.ErrInvalidFormat)

	updated, err := svc.UpdateAuthor(ctx, jane.ID, UpdateAuthorInput{ClearPhoneNumber: true})
	require.NoError(t, err)
	assert.Nil(t, updated.PhoneNumber)
	assert.False(t, mr.Exists(cache.AuthorKey(jane.ID)), "update evicts the cached copy")

	_, err = svc.UpdateAuthor(ctx, 999, UpdateAuthorInput{Name: strPtr("Ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAuthor(t *testing.T) {
	ctx := context.Background()
	database := setupDB(t)
	svc := NewAuthorService(database, WithLogger(quietLogger()))

	jane, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAuthor(ctx, jane.ID))
	assert.ErrorIs(t, svc.DeleteAuthor(ctx, jane.ID), ErrNotFound)
	_, err = svc.GetAuthor(ctx, jane.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the name is free again
	_, err = svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane"})
	assert.NoError(t, err)

	log, err := repository.NewActivityRepository(database.Gorm).ForRecord(ctx, models.RecordAuthor, jane.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, models.ActionDelete, log[1].Action)
}

func TestGetAuthorServesFromCache(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)
	database := setupDB(t)
	svc := NewAuthorService(database, WithLogger(quietLogger()), WithCache(c))

	jane, err := svc.CreateAuthor(ctx, CreateAuthorInput{Name: "Jane"})
	require.NoError(t, err)
	_, err = svc.GetAuthor(ctx, jane.ID)
	require.NoError(t, err)

	// change the row behind the service's back
	require.NoError(t, database.Gorm.Model(&models.Author{}).Where("id = ?", jane.ID).Update("name", "Changed").Error)
	cached, err := svc.GetAuthor(ctx, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", cached.Name)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(setupDB(t), WithLogger(quietLogger()))

	_, err := svc.CreatePost(ctx, CreatePostInput{
		Title:    "Ordinary Day",
		Content:  strPtr("too short"),
		Summary:  strPtr(strings.Repeat("s", 251)),
		Category: strPtr("mystery"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidFormat)
	assert.ErrorIs(t, err, models.ErrTooShort)
	assert.ErrorIs(t, err, models.ErrTooLong)
	assert.ErrorIs(t, err, models.ErrInvalidEnum)
	assert.Len(t, models.FieldErrors(err), 4)

	post, err := svc.CreatePost(ctx, CreatePostInput{
		Title:    "My Secret Plan",
		Content:  longContent(),
		Summary:  strPtr("A plan."),
		Category: strPtr("Fiction"),
	})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Fiction", *post.Category, "accepted values are stored unchanged")

	titleOnly, err := svc.CreatePost(ctx, CreatePostInput{Title: "Guess again"})
	require.NoError(t, err)
	assert.Nil(t, titleOnly.Content)
	assert.Nil(t, titleOnly.Category)
}

func TestUpdatePostRevalidatesEachField(t *testing.T) {
	ctx := context.Background()
	idx := newFakeIndex()
	c, mr := setupCache(t)
	svc := NewPostService(setupDB(t), WithLogger(quietLogger()), WithCache(c), WithPostIndex(idx))

	post, err := svc.CreatePost(ctx, CreatePostInput{Title: "Top stories", Category: strPtr("fiction")})
	require.NoError(t, err)
	_, err = svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(cache.PostKey(post.ID)))

	_, err = svc.UpdatePost(ctx, post.ID, UpdatePostInput{Title: strPtr("Secret stories"), Category: strPtr("poetry")})
	require.ErrorIs(t, err, models.ErrInvalidEnum)

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Top stories", got.Title, "a rejected update changes nothing")

	updated, err := svc.UpdatePost(ctx, post.ID, UpdatePostInput{Category: strPtr("Non-Fiction"), Content: longContent()})
	require.NoError(t, err)
	assert.Equal(t, "Top stories", updated.Title)
	assert.Equal(t, "Non-Fiction", *updated.Category)
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))
	assert.Equal(t, "non-fiction", idx.docs[post.ID].Category)

	_, err = svc.UpdatePost(ctx, 999, UpdatePostInput{Title: strPtr("Top")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostIndexingAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newFakeIndex()
	svc := NewPostService(setupDB(t), WithLogger(quietLogger()), WithPostIndex(idx))

	a, err := svc.CreatePost(ctx, CreatePostInput{Title: "Top secret recipes", Category: strPtr("Non-Fiction")})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, CreatePostInput{Title: "Guess the ending", Category: strPtr("fiction")})
	require.NoError(t, err)

	hits, err := svc.SearchPosts(ctx, "secret", "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a.ID, hits[0].ID)

	require.NoError(t, svc.DeletePost(ctx, a.ID))
	hits, err = svc.SearchPosts(ctx, "secret", "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.ErrorIs(t, svc.DeletePost(ctx, a.ID), ErrNotFound)
}

func TestIndexFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	idx := newFakeIndex()
	idx.failAll = true
	var logs bytes.Buffer
	svc := NewPostService(setupDB(t), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))), WithPostIndex(idx))

	post, err := svc.CreatePost(ctx, CreatePostInput{Title: "Top"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Contains(t, logs.String(), "index post failed")
}

func TestSearchDisabledWithoutIndex(t *testing.T) {
	svc := NewPostService(setupDB(t), WithLogger(quietLogger()))
	_, err := svc.SearchPosts(context.Background(), "top", "", 5)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}

func TestListPostsAndStats(t *testing.T) {
	ctx := context.Background()
	svc := NewPostService(setupDB(t), WithLogger(quietLogger()))

	for _, in := range []CreatePostInput{
		{Title: "Top 1", Category: strPtr("Fiction")},
		{Title: "Top 2", Category: strPtr("fiction")},
		{Title: "Top 3", Category: strPtr("NON-FICTION")},
	} {
		_, err := svc.CreatePost(ctx, in)
		require.NoError(t, err)
	}

	fiction, err := svc.ListPosts(ctx, "fiction")
	require.NoError(t, err)
	assert.Len(t, fiction, 2)

	stats, err := svc.CategoryStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repository.CategoryCount{
		{Category: "fiction", Total: 2},
		{Category: "non-fiction", Total: 1},
	}, stats)
}
