package models

import (
	"context"
	"fmt"
	"time"
)

type Author struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_authors_name" json:"name"`
	PhoneNumber *string   `gorm:"type:varchar(32)" json:"phone_number"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SetName assigns name if no other author holds it.
func (a *Author) SetName(ctx context.Context, lookup AuthorNameLookup, name string) error {
	v, err := ValidateName(ctx, lookup, name, a.ID)
	if err != nil {
		return err
	}
	a.Name = v
	return nil
}

func (a *Author) SetPhoneNumber(number string) error {
	v, err := ValidatePhoneNumber(number)
	if err != nil {
		return err
	}
	a.PhoneNumber = &v
	return nil
}

func (a *Author) ClearPhoneNumber() { a.PhoneNumber = nil }

func (a Author) String() string {
	return fmt.Sprintf("Author(id=%d, name=%s)", a.ID, a.Name)
}
