package util

import "errors"

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrSuggestionNotFound  = errors.New("suggestion not found")
	ErrVoteNotFound        = errors.New("vote not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrQuotaExhausted      = errors.New("vote quota exhausted")
	ErrInvalidSuggestionID = errors.New("invalid suggestion id")
	ErrDuplicateDefinition = errors.New("a definition with that title already exists")
	ErrUnknownStatus       = errors.New("unknown status")
	ErrEmptyTitle          = errors.New("title must not be empty")
	ErrEmptyComment        = errors.New("comment must not be empty")
)
