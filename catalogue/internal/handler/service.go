package handler

import (
	"context"
	"io"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookService interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	FindBookByTitle(ctx context.Context, title string) (*model.Book, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, p model.BookPayload, img io.Reader) (model.Book, error)
	UpdateBook(ctx context.Context, id string, p model.BookPayload, img io.Reader) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type ReviewService interface {
	ListReviews(ctx context.Context, bookID string) ([]model.Review, error)
	GetReview(ctx context.Context, bookID, reviewID string) (model.Review, error)
	CreateReview(ctx context.Context, bookID string, p model.ReviewPayload) (model.Review, error)
	UpdateReview(ctx context.Context, bookID, reviewID string, p model.ReviewPayload) (model.Review, error)
	DeleteReview(ctx context.Context, bookID, reviewID string) error
}

var (
	_ BookService   = (*service.Service)(nil)
	_ ReviewService = (*service.Service)(nil)
)
