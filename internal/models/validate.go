package models

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	PhoneNumberLength = 10
	MinContentLength  = 250
	MaxSummaryLength  = 250
)

// TitleMarkers are matched case-insensitively against post titles.
var TitleMarkers = []string{"won't believe", "secret", "top", "guess"}

// Categories lists the accepted post categories in lower case.
var Categories = []string{"fiction", "non-fiction"}

// AuthorNameLookup reports whether an author other than excludeID already uses name.
// It reads persisted state, so a positive answer is only as fresh as the read.
type AuthorNameLookup interface {
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
}

// ValidateName rejects a name already held by another author.
// selfID is the id of the author being changed, 0 for a new one.
func ValidateName(ctx context.Context, lookup AuthorNameLookup, name string, selfID uint) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", reject("name", ErrMissingValue, "Name is required.")
	}
	taken, err := lookup.NameTaken(ctx, name, selfID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", NameTakenError()
	}
	return name, nil
}

// NameTakenError is the rejection returned for a duplicate author name.
func NameTakenError() *FieldError {
	return reject("name", ErrDuplicateValue, "Name must be unique.")
}

// ValidatePhoneNumber checks length only; any 10 characters pass.
func ValidatePhoneNumber(number string) (string, error) {
	if utf8.RuneCountInString(number) != PhoneNumberLength {
		return "", reject("phone_number", ErrInvalidFormat, "Phone number must be exactly ten digits.")
	}
	return number, nil
}

func ValidateTitle(title string) (string, error) {
	lower := lowerDotted(title)
	for _, marker := range TitleMarkers {
		if strings.Contains(lower, marker) {
			return title, nil
		}
	}
	return "", reject("title", ErrInvalidFormat, "Post title must contain one of: 'Won't Believe', 'Secret', 'Top', 'Guess'")
}

func ValidateContent(content string) (string, error) {
	if trimmedLen(content) < MinContentLength {
		return "", reject("content", ErrTooShort, "Post content must be at least 250 characters long")
	}
	return content, nil
}

func ValidateSummary(summary string) (string, error) {
	if trimmedLen(summary) > MaxSummaryLength {
		return "", reject("summary", ErrTooLong, "Post summary must be a maximum of 250 characters")
	}
	return summary, nil
}

// ValidateCategory compares with simple case folding, so dotted capital I
// (U+0130) never matches "i".
func ValidateCategory(category string) (string, error) {
	for _, c := range Categories {
		if strings.EqualFold(category, c) {
			return category, nil
		}
	}
	return "", reject("category", ErrInvalidEnum, "Post category must be either 'Fiction' or 'Non-Fiction'")
}

// dottedI keeps U+0130 from lower-casing to a plain "i".
var dottedI = strings.NewReplacer("\u0130", "i\u0307")

func lowerDotted(s string) string {
	return strings.ToLower(dottedI.Replace(s))
}

func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
