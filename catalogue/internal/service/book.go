package service

import (
	"context"
	"io"
	"strconv"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/errs"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/events"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/image"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"github.com/pkg/errors"
)

func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.ListBooks(ctx)
}

// FindBookByTitle returns nil without error when no book has exactly this title.
func (s *Service) FindBookByTitle(ctx context.Context, title string) (*model.Book, error) {
	book, err := s.repo.FindBookByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

// CreateBook stores the cover read from img and then the book. The cover is
// mandatory.
func (s *Service) CreateBook(ctx context.Context, p model.BookPayload, img io.Reader) (model.Book, error) {
	fields, err := s.validateBook(p)
	if err != nil {
		return model.Book{}, err
	}
	if img == nil {
		return model.Book{}, errs.ErrImageRequired
	}

	fields.ID = s.newID()
	name := s.naming.Filename(fields.ID, fields.Title)
	if err = s.saveImage(name, img); err != nil {
		return model.Book{}, err
	}
	fields.Image = image.PublicPath(name)

	book, err := s.repo.CreateBook(ctx, fields)
	if err != nil {
		s.releaseImage(ctx, fields.Image)
		return model.Book{}, err
	}
	s.publish(ctx, events.NewEvent(events.BookCreated, book.ID, ""))
	return book, nil
}

// UpdateBook replaces every field of the book. When img is nil the stored
// cover path is kept as is, even if the title changes.
func (s *Service) UpdateBook(ctx context.Context, id string, p model.BookPayload, img io.Reader) (model.Book, error) {
	fields, err := s.validateBook(p)
	if err != nil {
		return model.Book{}, err
	}
	cur, err := s.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}

	fields.ID = cur.ID
	fields.Image = cur.Image
	if img != nil {
		name := s.naming.Filename(cur.ID, fields.Title)
		if err = s.saveImage(name, img); err != nil {
			return model.Book{}, err
		}
		fields.Image = image.PublicPath(name)
	}

	book, err := s.repo.UpdateBook(ctx, fields)
	if err != nil {
		if fields.Image != cur.Image {
			s.releaseImage(ctx, fields.Image)
		}
		if errors.Is(err, errs.ErrNotFound) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, err
	}
	// the old cover goes only once the row points at the new one
	if cur.Image != book.Image {
		s.releaseImage(ctx, cur.Image)
	}
	s.publish(ctx, events.NewEvent(events.BookUpdated, book.ID, ""))
	return book, nil
}

// DeleteBook removes the book, its reviews and its cover file.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	cur, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}
	if err = s.repo.DeleteBook(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrBookNotFound
		}
		return err
	}
	s.releaseImage(ctx, cur.Image)
	s.publish(ctx, events.NewEvent(events.BookDeleted, id, ""))
	return nil
}

// validateBook returns the book p describes, without id and image.
func (s *Service) validateBook(p model.BookPayload) (model.Book, error) {
	if err := s.validator.Validate(p); err != nil {
		return model.Book{}, err
	}
	rating, err := strconv.ParseFloat(*p.Rating, 64)
	if err != nil {
		return model.Book{}, errRating
	}
	return model.Book{
		Title:       *p.Title,
		Description: *p.Description,
		Author:      *p.Author,
		Rating:      rating,
	}, nil
}

func (s *Service) saveImage(name string, img io.Reader) error {
	if err := s.images.Save(name, img); err != nil {
		if errors.Is(err, image.ErrUndecodable) {
			return errs.ErrInvalidImage
		}
		return errors.Wrap(err, "save image")
	}
	return nil
}
