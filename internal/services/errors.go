package services

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses at the handler layer.
var (
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrResponseNotFound = errors.New("response not found")
	ErrTokenNotFound    = errors.New("token not found")

	// ErrTokenInvalidOrExpired deliberately covers unknown, revoked and
	// expired tokens so callers cannot distinguish the cases.
	ErrTokenInvalidOrExpired = errors.New("token is invalid or expired")

	ErrSurveyNotPublishable = errors.New("cannot publish survey without questions")
	ErrSurveyNotPublished   = errors.New("survey is not accepting responses")
	ErrDuplicateResponse    = errors.New("a response for this survey and respondent already exists")

	ErrInvalidStatusTransition = errors.New("invalid survey status transition")
)

// PermissionError indicates the caller is not allowed to perform an action on
// a resource they can otherwise see.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}
