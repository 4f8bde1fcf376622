package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/blog-records/internal/cache"
	"github.com/example/blog-records/internal/db"
	"github.com/example/blog-records/internal/models"
	"github.com/example/blog-records/internal/repository"
	"github.com/example/blog-records/internal/search"
)

type PostService struct {
	db       *db.Database
	repo     *repository.PostRepository
	activity *repository.ActivityRepository
	stats    *repository.StatsRepository
	cache    Cache
	index    PostIndex
	obs      *observer
}

func NewPostService(database *db.Database, opts ...Option) *PostService {
	o := buildOptions(opts)
	return &PostService{
		db:       database,
		repo:     repository.NewPostRepository(database.Gorm),
		activity: repository.NewActivityRepository(database.Gorm),
		stats:    repository.NewStatsRepository(database.SQL, database.SQLXDriver),
		cache:    o.cache,
		index:    o.index,
		obs:      newObserver(o),
	}
}

// Optional fields stay NULL when omitted.
type CreatePostInput struct {
	Title    string  `json:"title"`
	Content  *string `json:"content"`
	Summary  *string `json:"summary"`
	Category *string `json:"category"`
}

type UpdatePostInput struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Summary  *string `json:"summary"`
	Category *string `json:"category"`
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := s.obs.start(ctx, "PostService.CreatePost")
	defer func() { span.Fail(err); span.End() }()

	post := &models.Post{}
	if err := s.assign(ctx, post, UpdatePostInput{Title: &in.Title, Content: in.Content, Summary: in.Summary, Category: in.Category}); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, post); err != nil {
			return err
		}
		return s.activity.Log(ctx, tx, models.ActionCreate, models.RecordPost, post.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.obs.written(ctx, models.RecordPost, models.ActionCreate, post.ID)
	s.reindex(ctx, post)
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (_ *models.Post, err error) {
	ctx, span := s.obs.start(ctx, "PostService.GetPost")
	defer func() { span.Fail(err); span.End() }()

	key := cache.PostKey(id)
	if s.cache != nil {
		var post models.Post
		if found, err := s.cache.GetJSON(ctx, key, &post); err == nil && found {
			return &post, nil
		}
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(models.RecordPost, id, err)
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, p); err != nil {
			s.obs.sideEffectFailed(ctx, "cache post", id, err)
		}
	}
	return p, nil
}

// ListPosts returns posts newest first, optionally limited to one category.
func (s *PostService) ListPosts(ctx context.Context, category string) ([]models.Post, error) {
	return s.repo.List(ctx, category)
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, in UpdatePostInput) (_ *models.Post, err error) {
	ctx, span := s.obs.start(ctx, "PostService.UpdatePost")
	defer func() { span.Fail(err); span.End() }()

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(models.RecordPost, id, err)
	}
	if err := s.assign(ctx, post, in); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, post); err != nil {
			return err
		}
		return s.activity.Log(ctx, tx, models.ActionUpdate, models.RecordPost, id)
	})
	if err != nil {
		return nil, notFound(models.RecordPost, id, err)
	}
	s.forget(ctx, id)
	s.obs.written(ctx, models.RecordPost, models.ActionUpdate, id)

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, updated)
	return updated, nil
}

func (s *PostService) DeletePost(ctx context.Context, id uint) (err error) {
	ctx, span := s.obs.start(ctx, "PostService.DeletePost")
	defer func() { span.Fail(err); span.End() }()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.activity.Log(ctx, tx, models.ActionDelete, models.RecordPost, id)
	})
	if err != nil {
		return notFound(models.RecordPost, id, err)
	}
	s.forget(ctx, id)
	s.obs.written(ctx, models.RecordPost, models.ActionDelete, id)
	if s.index != nil {
		if err := s.index.DeletePost(ctx, id); err != nil {
			s.obs.sideEffectFailed(ctx, "unindex post", id, err)
		}
	}
	return nil
}

func (s *PostService) SearchPosts(ctx context.Context, query, category string, limit int) ([]search.PostHit, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	return s.index.SearchPosts(ctx, query, category, limit)
}

func (s *PostService) CategoryStats(ctx context.Context) ([]repository.CategoryCount, error) {
	return s.stats.CategoryCounts(ctx)
}

func (s *PostService) assign(ctx context.Context, p *models.Post, in UpdatePostInput) error {
	var errs []error
	if in.Title != nil {
		if err := p.SetTitle(*in.Title); err != nil {
			errs = append(errs, err)
		}
	}
	if in.Content != nil {
		if err := p.SetContent(*in.Content); err != nil {
			errs = append(errs, err)
		}
	}
	if in.Summary != nil {
		if err := p.SetSummary(*in.Summary); err != nil {
			errs = append(errs, err)
		}
	}
	if in.Category != nil {
		if err := p.SetCategory(*in.Category); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.obs.rejected(ctx, models.RecordPost, err)
		return err
	}
	return nil
}

func (s *PostService) reindex(ctx context.Context, p *models.Post) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexPost(ctx, search.NewPostDocument(p)); err != nil {
		s.obs.sideEffectFailed(ctx, "index post", p.ID, err)
	}
}

func (s *PostService) forget(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.PostKey(id)); err != nil {
		s.obs.sideEffectFailed(ctx, "evict post", id, err)
	}
}
