package service

import (
	"context"
	"io"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/events"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/image"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/repository"
	"github.com/Astemirdum/catalogue-service/pkg/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStore persists book covers by file name.
type ImageStore interface {
	Save(name string, r io.Reader) error
	Remove(name string) (image.RemoveResult, error)
}

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	images    ImageStore
	pub       events.Publisher
	validator *validate.CustomValidator
	naming    image.Naming
	newID     func() string
}

type Option func(s *Service)

func WithNaming(n image.Naming) Option {
	return func(s *Service) {
		s.naming = n
	}
}

func NewService(repo repository.Repository, images ImageStore, pub events.Publisher, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		images:    images,
		pub:       pub,
		validator: validate.NewCustomValidator(),
		naming:    image.NamingTitle,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish never fails the request: the change is already committed.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.pub.Publish(ctx, e); err != nil {
		s.log.Warn("publish event",
			zap.String("type", string(e.Type)),
			zap.String("book_id", e.BookID),
			zap.Error(err))
	}
}

// errRating backs up the number rule of the payloads.
var errRating = &validate.FieldError{Field: "rating", Tag: "number", Message: `"rating" must be a number`}

// releaseImage removes the cover at path unless another book still points at
// it. Title based names are shared by titles that differ only in case or
// punctuation.
func (s *Service) releaseImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	n, err := s.repo.CountBooksByImage(ctx, path)
	switch {
	case err != nil:
		s.log.Warn("count image references, keeping file", zap.String("image", path), zap.Error(err))
		return
	case n > 0:
		s.log.Debug("image still referenced", zap.String("image", path), zap.Int("books", n))
		return
	}
	s.removeImage(image.FilenameFromPath(path))
}

// removeImage deletes a cover and only logs the outcome.
func (s *Service) removeImage(name string) {
	if name == "" {
		return
	}
	res, err := s.images.Remove(name)
	switch {
	case err != nil:
		s.log.Error("remove image", zap.String("file", name), zap.Error(err))
	case res == image.NotPresent:
		s.log.Warn("remove image", zap.String("file", name), zap.Stringer("result", res))
	default:
		s.log.Debug("remove image", zap.String("file", name), zap.Stringer("result", res))
	}
}
