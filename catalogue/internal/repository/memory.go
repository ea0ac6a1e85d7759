package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/errs"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"go.uber.org/zap"
)

// memory keeps books and reviews in process memory. Listing order is
// insertion order, the same as created_at order of the postgres backend.
type memory struct {
	mu  sync.RWMutex
	now func() time.Time
	log *zap.Logger

	books     map[string]model.Book
	bookOrder []string

	reviews     map[string]model.Review
	reviewOrder []string
}

func NewMemoryRepository(log *zap.Logger) *memory {
	return &memory{
		now:     func() time.Time { return time.Now().UTC() },
		log:     log.Named("repo.memory"),
		books:   make(map[string]model.Book),
		reviews: make(map[string]model.Review),
	}
}

var _ Repository = (*memory)(nil)

func (m *memory) ListBooks(_ context.Context) ([]model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]model.Book, 0, len(m.bookOrder))
	for _, id := range m.bookOrder {
		books = append(books, m.books[id])
	}
	return books, nil
}

func (m *memory) FindBookByTitle(_ context.Context, title string) (model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.bookOrder {
		if b := m.books[id]; b.Title == title {
			return b, nil
		}
	}
	return model.Book{}, errs.ErrNotFound
}

func (m *memory) GetBook(_ context.Context, id string) (model.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return b, nil
}

func (m *memory) CreateBook(_ context.Context, book model.Book) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[book.ID]; ok {
		return model.Book{}, errDuplicateID(book.ID)
	}
	now := m.now()
	book.CreatedAt, book.UpdatedAt = now, now
	m.books[book.ID] = book
	m.bookOrder = append(m.bookOrder, book.ID)
	m.log.Debug("CreateBook", zap.String("id", book.ID))
	return book, nil
}

func (m *memory) UpdateBook(_ context.Context, book model.Book) (model.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.books[book.ID]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	book.CreatedAt = cur.CreatedAt
	book.UpdatedAt = m.now()
	m.books[book.ID] = book
	return book, nil
}

func (m *memory) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.books, id)
	m.bookOrder = without(m.bookOrder, id)

	kept := m.reviewOrder[:0]
	for _, rid := range m.reviewOrder {
		if m.reviews[rid].BookID == id {
			delete(m.reviews, rid)
			continue
		}
		kept = append(kept, rid)
	}
	m.reviewOrder = kept
	return nil
}

func (m *memory) CountBooksByImage(_ context.Context, image string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, b := range m.books {
		if b.Image == image {
			n++
		}
	}
	return n, nil
}

func (m *memory) ListReviews(_ context.Context, bookID string) ([]model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reviews := make([]model.Review, 0)
	for _, id := range m.reviewOrder {
		if r := m.reviews[id]; r.BookID == bookID {
			reviews = append(reviews, r)
		}
	}
	return reviews, nil
}

func (m *memory) GetReview(_ context.Context, id string) (model.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return model.Review{}, errs.ErrNotFound
	}
	return r, nil
}

func (m *memory) CreateReview(_ context.Context, review model.Review) (model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[review.BookID]; !ok {
		return model.Review{}, errs.ErrNotFound
	}
	if _, ok := m.reviews[review.ID]; ok {
		return model.Review{}, errDuplicateID(review.ID)
	}
	now := m.now()
	review.CreatedAt, review.UpdatedAt = now, now
	m.reviews[review.ID] = review
	m.reviewOrder = append(m.reviewOrder, review.ID)
	return review, nil
}

func (m *memory) UpdateReview(_ context.Context, review model.Review) (model.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.reviews[review.ID]
	if !ok || cur.BookID != review.BookID {
		return model.Review{}, errs.ErrNotFound
	}
	review.CreatedAt = cur.CreatedAt
	review.UpdatedAt = m.now()
	m.reviews[review.ID] = review
	return review, nil
}

func (m *memory) DeleteReview(_ context.Context, bookID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.reviews[id]
	if !ok || cur.BookID != bookID {
		return errs.ErrNotFound
	}
	delete(m.reviews, id)
	m.reviewOrder = without(m.reviewOrder, id)
	return nil
}

func without(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

type errDuplicateID string

func (e errDuplicateID) Error() string {
	return "duplicate id " + string(e)
}
