package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// Field limits for user-supplied text.
const (
	maxNameLength  = 100
	maxLabelLength = 50
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from user input and trims it.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// requireText cleans value and checks it is non-empty and at most max runes.
func requireText(field, value string, max int) (string, error) {
	value = cleanText(value)
	if value == "" {
		return "", apperr.Validation("%s is required", field)
	}
	if utf8.RuneCountInString(value) > max {
		return "", apperr.Validation("%s must be at most %d characters", field, max)
	}
	return value, nil
}

// optionalText is requireText for fields that may be empty.
func optionalText(field, value string, max int) (string, error) {
	value = cleanText(value)
	if utf8.RuneCountInString(value) > max {
		return "", apperr.Validation("%s must be at most %d characters", field, max)
	}
	return value, nil
}

// storeError maps a storage failure to the public error taxonomy.
// what names the entity for NotFound messages.
func storeError(err error, what string) error {
	var appErr *apperr.AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(fmt.Sprintf("%s not found", what))
	case errors.Is(err, storage.ErrNotPending):
		return apperr.Conflict(apperr.ReasonAlreadyTerminal, fmt.Sprintf("%s was already resolved", what))
	case errors.Is(err, storage.ErrConflict):
		return apperr.Conflict(apperr.ReasonDuplicateInvitation, fmt.Sprintf("%s already exists", what))
	default:
		return apperr.Internal(err)
	}
}
