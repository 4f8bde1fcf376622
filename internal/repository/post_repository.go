package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/blog-records/internal/models"
)

type PostRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) *PostRepository { return &PostRepository{db: db} }

func (r *PostRepository) Create(ctx context.Context, tx *gorm.DB, p *models.Post) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *PostRepository) Update(ctx context.Context, tx *gorm.DB, p *models.Post) error {
	res := tx.WithContext(ctx).Model(&models.Post{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"title":    p.Title,
		"content":  p.Content,
		"summary":  p.Summary,
		"category": p.Category,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts newest first; an empty category matches all posts.
func (r *PostRepository) List(ctx context.Context, category string) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.WithContext(ctx).Order("id DESC")
	if category != "" {
		// LOWER(category) uses idx_posts_category_lower
		q = q.Where("LOWER(category) = LOWER(?)", category)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := tx.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
