package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/blog-records/internal/models"
)

type AuthorRepository struct{ db *gorm.DB }

func NewAuthorRepository(db *gorm.DB) *AuthorRepository { return &AuthorRepository{db: db} }

func (r *AuthorRepository) Create(ctx context.Context, tx *gorm.DB, a *models.Author) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *AuthorRepository) Update(ctx context.Context, tx *gorm.DB, a *models.Author) error {
	res := tx.WithContext(ctx).Model(&models.Author{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"name":         a.Name,
		"phone_number": a.PhoneNumber,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AuthorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *AuthorRepository) List(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

func (r *AuthorRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := tx.WithContext(ctx).Delete(&models.Author{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NameTaken implements models.AuthorNameLookup with an exact-match query.
func (r *AuthorRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Author{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
