package service

import (
	"context"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/errs"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/events"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func (s *Service) ListReviews(ctx context.Context, bookID string) ([]model.Review, error) {
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListReviews(ctx, bookID)
}

func (s *Service) GetReview(ctx context.Context, bookID, reviewID string) (model.Review, error) {
	return s.lookupBookReview(ctx, bookID, reviewID)
}

func (s *Service) CreateReview(ctx context.Context, bookID string, p model.ReviewPayload) (model.Review, error) {
	fields, err := s.validateReview(p)
	if err != nil {
		return model.Review{}, err
	}
	if _, err = s.GetBook(ctx, bookID); err != nil {
		return model.Review{}, err
	}
	fields.ID, fields.BookID = s.newID(), bookID
	review, err := s.repo.CreateReview(ctx, fields)
	if err != nil {
		// the book went away between the check and the insert
		if errors.Is(err, errs.ErrNotFound) {
			return model.Review{}, errs.ErrBookNotFound
		}
		return model.Review{}, err
	}
	s.publish(ctx, events.NewEvent(events.ReviewCreated, bookID, review.ID))
	return review, nil
}

// UpdateReview checks that both the book and the review exist before it
// looks at the payload.
func (s *Service) UpdateReview(ctx context.Context, bookID, reviewID string, p model.ReviewPayload) (model.Review, error) {
	if _, err := s.lookupBookReview(ctx, bookID, reviewID); err != nil {
		return model.Review{}, err
	}
	fields, err := s.validateReview(p)
	if err != nil {
		return model.Review{}, err
	}
	fields.ID, fields.BookID = reviewID, bookID
	review, err := s.repo.UpdateReview(ctx, fields)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Review{}, errs.ErrReviewNotFound
		}
		return model.Review{}, err
	}
	s.publish(ctx, events.NewEvent(events.ReviewUpdated, bookID, reviewID))
	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, bookID, reviewID string) error {
	if _, err := s.lookupBookReview(ctx, bookID, reviewID); err != nil {
		return err
	}
	if err := s.repo.DeleteReview(ctx, bookID, reviewID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrReviewNotFound
		}
		return err
	}
	s.publish(ctx, events.NewEvent(events.ReviewDeleted, bookID, reviewID))
	return nil
}

// lookupBookReview fetches the book and the review concurrently and tells
// which of the two is missing. A review of another book is missing here.
func (s *Service) lookupBookReview(ctx context.Context, bookID, reviewID string) (model.Review, error) {
	var (
		bookFound, reviewFound bool
		review                 model.Review
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.repo.GetBook(gCtx, bookID)
		switch {
		case err == nil:
			bookFound = true
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}
		return nil
	})
	g.Go(func() error {
		r, err := s.repo.GetReview(gCtx, reviewID)
		switch {
		case err == nil:
			review, reviewFound = r, true
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.Review{}, err
	}

	if reviewFound && bookFound && review.BookID != bookID {
		reviewFound = false
	}
	switch {
	case !bookFound && !reviewFound:
		return model.Review{}, errs.ErrBookAndReviewNotFound
	case !bookFound:
		return model.Review{}, errs.ErrReviewBookNotFound
	case !reviewFound:
		return model.Review{}, errs.ErrReviewNotFound
	}
	return review, nil
}

func (s *Service) validateReview(p model.ReviewPayload) (model.Review, error) {
	if err := s.validator.Validate(p); err != nil {
		return model.Review{}, err
	}
	rating, err := p.Rating.Float64()
	if err != nil {
		return model.Review{}, errRating
	}
	return model.Review{
		Reviewer: *p.Reviewer,
		Review:   *p.Review,
		Rating:   rating,
	}, nil
}
