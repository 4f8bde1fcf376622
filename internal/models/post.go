package models

import (
	"fmt"
	"time"
)

// Post fields other than Title are nullable; a nil field was never assigned.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Content   *string   `gorm:"type:text" json:"content"`
	Summary   *string   `gorm:"type:text" json:"summary"`
	Category  *string   `gorm:"type:varchar(32)" json:"category"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Post) SetTitle(title string) error {
	v, err := ValidateTitle(title)
	if err != nil {
		return err
	}
	p.Title = v
	return nil
}

func (p *Post) SetContent(content string) error {
	v, err := ValidateContent(content)
	if err != nil {
		return err
	}
	p.Content = &v
	return nil
}

func (p *Post) SetSummary(summary string) error {
	v, err := ValidateSummary(summary)
	if err != nil {
		return err
	}
	p.Summary = &v
	return nil
}

func (p *Post) SetCategory(category string) error {
	v, err := ValidateCategory(category)
	if err != nil {
		return err
	}
	p.Category = &v
	return nil
}

func (p Post) String() string {
	return fmt.Sprintf("Post(id=%d, title=%s, content=%s, summary=%s)", p.ID, p.Title, deref(p.Content), deref(p.Summary))
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
