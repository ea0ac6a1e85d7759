package handler

import (
	"encoding/json"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"github.com/Astemirdum/catalogue-service/pkg/response"
	"github.com/labstack/echo/v4"
)

// GetReviews godoc
// @Summary  List reviews of a book
// @Tags     reviews
// @Produce  json
// @Param    id   path      string  true  "book id"
// @Success  200  {object}  response.Envelope{data=[]model.Review}
// @Failure  404  {object}  response.ErrorBody
// @Router   /books/{id}/reviews [get]
func (h *Handler) GetReviews(c echo.Context) error {
	reviews, err := h.reviewSvc.ListReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, response.MsgSuccess, reviews)
}

// GetReview godoc
// @Summary  Get review
// @Tags     reviews
// @Produce  json
// @Param    id        path      string  true  "book id"
// @Param    reviewId  path      string  true  "review id"
// @Success  200  {object}  response.Envelope{data=model.Review}
// @Failure  404  {object}  response.ErrorBody
// @Router   /books/{id}/reviews/{reviewId} [get]
func (h *Handler) GetReview(c echo.Context) error {
	review, err := h.reviewSvc.GetReview(c.Request().Context(), c.Param("id"), c.Param("reviewId"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, response.MsgSuccess, review)
}

// CreateReview godoc
// @Summary   Create review
// @Tags      reviews
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id       path  string               true  "book id"
// @Param     payload  body  model.ReviewPayload  true  "review"
// @Success   201  {object}  response.Envelope{data=model.Review}
// @Failure   400  {object}  response.ErrorBody
// @Failure   404  {object}  response.ErrorBody
// @Router    /books/{id}/reviews [post]
func (h *Handler) CreateReview(c echo.Context) error {
	p, err := bindReview(c)
	if err != nil {
		return response.BadRequest(c, bindMessage(err))
	}
	review, err := h.reviewSvc.CreateReview(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, MsgReviewCreated, review)
}

// UpdateReview godoc
// @Summary   Update review
// @Tags      reviews
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id        path  string               true  "book id"
// @Param     reviewId  path  string               true  "review id"
// @Param     payload   body  model.ReviewPayload  true  "review"
// @Success   200  {object}  response.Envelope{data=model.Review}
// @Failure   400  {object}  response.ErrorBody
// @Failure   404  {object}  response.ErrorBody
// @Router    /books/{id}/reviews/{reviewId} [put]
func (h *Handler) UpdateReview(c echo.Context) error {
	p, err := bindReview(c)
	if err != nil {
		return response.BadRequest(c, bindMessage(err))
	}
	review, err := h.reviewSvc.UpdateReview(c.Request().Context(), c.Param("id"), c.Param("reviewId"), p)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, MsgReviewUpdated, review)
}

// DeleteReview godoc
// @Summary   Delete review
// @Tags      reviews
// @Produce   json
// @Security  BearerAuth
// @Param     id        path  string  true  "book id"
// @Param     reviewId  path  string  true  "review id"
// @Success   200  {object}  response.Envelope
// @Failure   404  {object}  response.ErrorBody
// @Router    /books/{id}/reviews/{reviewId} [delete]
func (h *Handler) DeleteReview(c echo.Context) error {
	if err := h.reviewSvc.DeleteReview(c.Request().Context(), c.Param("id"), c.Param("reviewId")); err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, MsgReviewDeleted, nil)
}

// bindReview reads a JSON body, or the form the same way bindBook does.
func bindReview(c echo.Context) (model.ReviewPayload, error) {
	var p model.ReviewPayload
	if isJSON(c) {
		err := c.Bind(&p)
		return p, err
	}
	if _, err := c.FormParams(); err != nil {
		return p, err
	}
	form := c.Request().PostForm
	p.Reviewer = formValue(form, "reviewer")
	p.Review = formValue(form, "review")
	if v := formValue(form, "rating"); v != nil {
		n := json.Number(*v)
		p.Rating = &n
	}
	return p, nil
}
