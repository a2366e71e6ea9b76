package models

import (
	"errors"
)

// custom error types (generic types found in apperror package)

// user
var (
	ErrInvalidUser = errors.New("unknown user")
)

// question
// transformed by controllers to respective Unprocessable Entity (422)
var (
	ErrTitleLength    = errors.New("title must be between 5 and 130 characters")
	ErrContentMissing = errors.New("content is required")
	ErrTagCount       = errors.New("between 1 and 3 tags are required")
	ErrTagNameMissing = errors.New("tag names must not be empty")
)

// answer
var (
	ErrAnswerEmpty = errors.New("answer content is required")
)

// vote
var (
	ErrInvalidVote        = errors.New("invalid vote action")
	ErrInvalidContentType = errors.New("invalid content type")
)
