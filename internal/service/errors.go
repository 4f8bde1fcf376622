package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/blog-records/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrSearchDisabled = errors.New("search is not configured")
)

func notFound(record string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", record, id, ErrNotFound)
	}
	return err
}

// isFieldError separates value rejections from store failures.
func isFieldError(err error) bool {
	var fe *models.FieldError
	return errors.As(err, &fe)
}
