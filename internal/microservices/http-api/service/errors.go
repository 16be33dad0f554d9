package service

import (
	"errors"
	"strings"

	"reviewhub/database"
	"reviewhub/internal/apperror"

	"gorm.io/gorm"
)

const (
	duplicateReviewMessage = "review already exists for this user+title"
	blankMessage           = "this field may not be blank"
)

// requireText trims value and records a blank-field error under field when
// nothing is left.
func requireText(field, value string, fields apperror.Fields) string {
	value = strings.TrimSpace(value)
	if value == "" {
		fields[field] = blankMessage
	}
	return value
}

// uniqueFields maps unique index names to the request field they protect.
var uniqueFields = map[string]struct{ field, message string }{
	"idx_users_username":       {"username", "a user with that username already exists"},
	"idx_users_email":          {"email", "a user with that email already exists"},
	"idx_categories_name":      {"name", "category with this name already exists"},
	"idx_categories_slug":      {"slug", "category with this slug already exists"},
	"idx_genres_name":          {"name", "genre with this name already exists"},
	"idx_genres_slug":          {"slug", "genre with this slug already exists"},
	"idx_reviews_author_title": {"non_field_errors", duplicateReviewMessage},
}

// notFound maps gorm.ErrRecordNotFound to a not-found error with msg and
// passes other errors through.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(msg)
	}
	return err
}

// translateWrite turns a unique violation from the database into the same
// validation error the pre-check would have produced.
func translateWrite(err error) error {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return err
	}
	if f, known := uniqueFields[constraint]; known {
		return apperror.Field(f.field, f.message)
	}
	return apperror.Validation("a record with these values already exists")
}
