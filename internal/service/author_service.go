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
)

type AuthorService struct {
	db       *db.Database
	repo     *repository.AuthorRepository
	activity *repository.ActivityRepository
	cache    Cache
	obs      *observer
}

func NewAuthorService(database *db.Database, opts ...Option) *AuthorService {
	o := buildOptions(opts)
	return &AuthorService{
		db:       database,
		repo:     repository.NewAuthorRepository(database.Gorm),
		activity: repository.NewActivityRepository(database.Gorm),
		cache:    o.cache,
		obs:      newObserver(o),
	}
}

// A nil PhoneNumber stores no phone number; any supplied value is validated.
type CreateAuthorInput struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

// Nil fields are left unchanged. ClearPhoneNumber removes the phone number
// and cannot be combined with a new PhoneNumber.
type UpdateAuthorInput struct {
	Name             *string `json:"name"`
	PhoneNumber      *string `json:"phone_number"`
	ClearPhoneNumber bool    `json:"clear_phone_number"`
}

func (s *AuthorService) CreateAuthor(ctx context.Context, in CreateAuthorInput) (_ *models.Author, err error) {
	ctx, span := s.obs.start(ctx, "AuthorService.CreateAuthor")
	defer func() { span.Fail(err); span.End() }()

	author := &models.Author{}
	if err := s.assign(ctx, author, &in.Name, in.PhoneNumber, false); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, author); err != nil {
			return err
		}
		return s.activity.Log(ctx, tx, models.ActionCreate, models.RecordAuthor, author.ID)
	})
	if err != nil {
		return nil, s.writeError(ctx, "create author", err)
	}
	s.obs.written(ctx, models.RecordAuthor, models.ActionCreate, author.ID)
	return author, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, id uint) (_ *models.Author, err error) {
	ctx, span := s.obs.start(ctx, "AuthorService.GetAuthor")
	defer func() { span.Fail(err); span.End() }()

	key := cache.AuthorKey(id)
	if s.cache != nil {
		var author models.Author
		if found, err := s.cache.GetJSON(ctx, key, &author); err == nil && found {
			return &author, nil
		}
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(models.RecordAuthor, id, err)
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, a); err != nil {
			s.obs.sideEffectFailed(ctx, "cache author", id, err)
		}
	}
	return a, nil
}

func (s *AuthorService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	return s.repo.List(ctx)
}

func (s *AuthorService) UpdateAuthor(ctx context.Context, id uint, in UpdateAuthorInput) (_ *models.Author, err error) {
	ctx, span := s.obs.start(ctx, "AuthorService.UpdateAuthor")
	defer func() { span.Fail(err); span.End() }()

	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(models.RecordAuthor, id, err)
	}
	if err := s.assign(ctx, author, in.Name, in.PhoneNumber, in.ClearPhoneNumber); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, author); err != nil {
			return err
		}
		return s.activity.Log(ctx, tx, models.ActionUpdate, models.RecordAuthor, id)
	})
	if err != nil {
		return nil, notFound(models.RecordAuthor, id, s.writeError(ctx, "update author", err))
	}
	s.forget(ctx, id)
	s.obs.written(ctx, models.RecordAuthor, models.ActionUpdate, id)
	return s.repo.GetByID(ctx, id)
}

func (s *AuthorService) DeleteAuthor(ctx context.Context, id uint) (err error) {
	ctx, span := s.obs.start(ctx, "AuthorService.DeleteAuthor")
	defer func() { span.Fail(err); span.End() }()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.activity.Log(ctx, tx, models.ActionDelete, models.RecordAuthor, id)
	})
	if err != nil {
		return notFound(models.RecordAuthor, id, err)
	}
	s.forget(ctx, id)
	s.obs.written(ctx, models.RecordAuthor, models.ActionDelete, id)
	return nil
}

// assign runs every supplied field through its setter and joins the rejections.
func (s *AuthorService) assign(ctx context.Context, a *models.Author, name, phone *string, clearPhone bool) error {
	var errs []error
	if name != nil {
		if err := a.SetName(ctx, s.repo, *name); err != nil {
			if !isFieldError(err) {
				return fmt.Errorf("check author name: %w", err)
			}
			errs = append(errs, err)
		}
	}
	switch {
	case clearPhone && phone != nil:
		errs = append(errs, &models.FieldError{
			Field:   "phone_number",
			Kind:    models.ErrInvalidFormat,
			Message: "Phone number cannot be set and cleared together.",
		})
	case clearPhone:
		a.ClearPhoneNumber()
	case phone != nil:
		if err := a.SetPhoneNumber(*phone); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.obs.rejected(ctx, models.RecordAuthor, err)
		return err
	}
	return nil
}

// writeError turns a unique index rejection into the same error the name pre-check gives.
func (s *AuthorService) writeError(ctx context.Context, op string, err error) error {
	if db.IsUniqueViolation(err) {
		dup := errors.Join(models.NameTakenError())
		s.obs.rejected(ctx, models.RecordAuthor, dup)
		return dup
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *AuthorService) forget(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.AuthorKey(id)); err != nil {
		s.obs.sideEffectFailed(ctx, "evict author", id, err)
	}
}
