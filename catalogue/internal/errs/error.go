package errs

import (
	"errors"
)

// ErrNotFound is returned by repositories when a row is absent.
var ErrNotFound = errors.New("not found")

// NotFoundError carries the client-facing message of a 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// BadRequestError carries the client-facing message of a 400 that is not a
// field validation failure.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

var (
	ErrBookNotFound = &NotFoundError{Message: "Book not found!"}

	ErrBookAndReviewNotFound = &NotFoundError{Message: "No book and review are found!"}
	ErrReviewBookNotFound    = &NotFoundError{Message: "Book not found, cannot update review!"}
	ErrReviewNotFound        = &NotFoundError{Message: "Book found, but the review is not found!"}

	ErrImageRequired = &BadRequestError{Message: `"image" is required`}
	ErrInvalidImage  = &BadRequestError{Message: `"image" must be a valid image`}
)
