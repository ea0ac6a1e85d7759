package repository

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/errs"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
)

// querier is the part of *pgxpool.Pool the repository runs statements on.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repository struct {
	db  querier
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

var _ Repository = (*repository)(nil)

const (
	booksTableName   = `books`
	reviewsTableName = `reviews`
)

var (
	qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	bookColumns = []string{
		"id::text as id", "title", "description", "author", "image", "rating", "created_at", "updated_at",
	}
	reviewColumns = []string{
		"id::text as id", "book_id::text as book_id", "reviewer", "review", "rating", "created_at", "updated_at",
	}
)

func (r *repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", query))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListBooks")
	}
	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, errors.Wrap(err, "ListBooks collect")
	}
	return books, nil
}

func (r *repository) FindBookByTitle(ctx context.Context, title string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"title": title}).
		OrderBy("created_at", "id").
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.oneBook(ctx, "FindBookByTitle", query, args)
}

func (r *repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	if !isUUID(id) {
		return model.Book{}, errs.ErrNotFound
	}
	query, args, err := qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.oneBook(ctx, "GetBook", query, args)
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("id", "title", "description", "author", "image", "rating").
		Values(book.ID, book.Title, book.Description, book.Author, book.Image, book.Rating).
		Suffix("returning " + joinColumns(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.oneBook(ctx, "CreateBook", query, args)
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	if !isUUID(book.ID) {
		return model.Book{}, errs.ErrNotFound
	}
	query, args, err := qb.Update(booksTableName).
		Set("title", book.Title).
		Set("description", book.Description).
		Set("author", book.Author).
		Set("image", book.Image).
		Set("rating", book.Rating).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": book.ID}).
		Suffix("returning " + joinColumns(bookColumns)).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.oneBook(ctx, "UpdateBook", query, args)
}

func (r *repository) DeleteBook(ctx context.Context, id string) error {
	if !isUUID(id) {
		return errs.ErrNotFound
	}
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return r.mapErr("DeleteBook", query, args, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) CountBooksByImage(ctx context.Context, image string) (int, error) {
	query, args, err := qb.Select("count(*) as count").
		From(booksTableName).
		Where(sq.Eq{"image": image}).
		ToSql()
	if err != nil {
		return 0, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "CountBooksByImage")
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowTo[int])
	if err != nil {
		return 0, errors.Wrap(err, "CountBooksByImage collect")
	}
	return n, nil
}

func (r *repository) ListReviews(ctx context.Context, bookID string) ([]model.Review, error) {
	if !isUUID(bookID) {
		return []model.Review{}, nil
	}
	query, args, err := qb.Select(reviewColumns...).
		From(reviewsTableName).
		Where(sq.Eq{"book_id": bookID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "ListReviews")
	}
	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Review])
	if err != nil {
		return nil, errors.Wrap(err, "ListReviews collect")
	}
	return reviews, nil
}

func (r *repository) GetReview(ctx context.Context, id string) (model.Review, error) {
	if !isUUID(id) {
		return model.Review{}, errs.ErrNotFound
	}
	query, args, err := qb.Select(reviewColumns...).
		From(reviewsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}
	return r.oneReview(ctx, "GetReview", query, args)
}

func (r *repository) CreateReview(ctx context.Context, review model.Review) (model.Review, error) {
	if !isUUID(review.BookID) {
		return model.Review{}, errs.ErrNotFound
	}
	query, args, err := qb.Insert(reviewsTableName).
		Columns("id", "book_id", "reviewer", "review", "rating").
		Values(review.ID, review.BookID, review.Reviewer, review.Review, review.Rating).
		Suffix("returning " + joinColumns(reviewColumns)).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}
	return r.oneReview(ctx, "CreateReview", query, args)
}

func (r *repository) UpdateReview(ctx context.Context, review model.Review) (model.Review, error) {
	if !isUUID(review.ID) || !isUUID(review.BookID) {
		return model.Review{}, errs.ErrNotFound
	}
	query, args, err := qb.Update(reviewsTableName).
		Set("reviewer", review.Reviewer).
		Set("review", review.Review).
		Set("rating", review.Rating).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": review.ID, "book_id": review.BookID}).
		Suffix("returning " + joinColumns(reviewColumns)).
		ToSql()
	if err != nil {
		return model.Review{}, err
	}
	return r.oneReview(ctx, "UpdateReview", query, args)
}

func (r *repository) DeleteReview(ctx context.Context, bookID, id string) error {
	if !isUUID(id) || !isUUID(bookID) {
		return errs.ErrNotFound
	}
	query, args, err := qb.Delete(reviewsTableName).
		Where(sq.Eq{"id": id, "book_id": bookID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return r.mapErr("DeleteReview", query, args, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) oneBook(ctx context.Context, op, query string, args []interface{}) (model.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Book{}, r.mapErr(op, query, args, err)
	}
	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return model.Book{}, r.mapErr(op, query, args, err)
	}
	return book, nil
}

func (r *repository) oneReview(ctx context.Context, op, query string, args []interface{}) (model.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Review{}, r.mapErr(op, query, args, err)
	}
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Review])
	if err != nil {
		return model.Review{}, r.mapErr(op, query, args, err)
	}
	return review, nil
}

// mapErr turns "no such row" conditions into errs.ErrNotFound: an empty
// result, a malformed uuid and a review pointing at a missing book.
func (r *repository) mapErr(op, query string, args []interface{}, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.InvalidTextRepresentation, pgerrcode.ForeignKeyViolation:
			return errs.ErrNotFound
		}
	}
	r.log.Error(op, zap.String("q", query), zap.Any("args", args), zap.Error(err))
	return errors.Wrap(err, op)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
