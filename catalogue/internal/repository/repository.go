package repository

import (
	"context"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
)

// Repository is the storage the catalogue operations run against. Lookups of
// absent rows return errs.ErrNotFound.
type Repository interface {
	BookRepository
	ReviewRepository
}

type BookRepository interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	FindBookByTitle(ctx context.Context, title string) (model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	// DeleteBook removes the book together with its reviews.
	DeleteBook(ctx context.Context, id string) error
	// CountBooksByImage reports how many books point at the cover path.
	CountBooksByImage(ctx context.Context, image string) (int, error)
}

type ReviewRepository interface {
	ListReviews(ctx context.Context, bookID string) ([]model.Review, error)
	// GetReview looks the review up by id alone, whatever book it belongs to.
	GetReview(ctx context.Context, id string) (model.Review, error)
	CreateReview(ctx context.Context, review model.Review) (model.Review, error)
	UpdateReview(ctx context.Context, review model.Review) (model.Review, error)
	DeleteReview(ctx context.Context, bookID, id string) error
}
