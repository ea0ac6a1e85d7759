package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"github.com/Astemirdum/catalogue-service/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const imageField = "image"

// GetBooks godoc
// @Summary      List books
// @Description  all books, or the book with exactly the given title (data is null when none)
// @Tags         books
// @Produce      json
// @Param        title  query  string  false  "exact title"
// @Success      200  {object}  response.Envelope{data=[]model.Book}
// @Failure      500  {object}  response.ErrorBody
// @Router       /books [get]
func (h *Handler) GetBooks(c echo.Context) error {
	ctx := c.Request().Context()
	if title := c.QueryParam("title"); title != "" {
		book, err := h.bookSvc.FindBookByTitle(ctx, title)
		if err != nil {
			return h.fail(c, err)
		}
		return response.Success(c, response.MsgSuccess, book)
	}
	books, err := h.bookSvc.ListBooks(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, response.MsgSuccess, books)
}

// GetBook godoc
// @Summary  Get book
// @Tags     books
// @Produce  json
// @Param    id   path      string  true  "book id"
// @Success  200  {object}  response.Envelope{data=model.Book}
// @Failure  404  {object}  response.ErrorBody
// @Router   /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.bookSvc.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, response.MsgSuccess, book)
}

// CreateBook godoc
// @Summary   Create book
// @Tags      books
// @Accept    mpfd
// @Produce   json
// @Security  BearerAuth
// @Param     title        formData  string  true  "title"
// @Param     description  formData  string  true  "description"
// @Param     author       formData  string  true  "author"
// @Param     rating       formData  number  true  "rating"
// @Param     image        formData  file    true  "cover"
// @Success   201  {object}  response.Envelope{data=model.Book}
// @Failure   400  {object}  response.ErrorBody
// @Failure   401  {object}  response.ErrorBody
// @Router    /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	p, err := bindBook(c)
	if err != nil {
		return response.BadRequest(c, bindMessage(err))
	}
	img, err := formImage(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	if img != nil {
		defer img.Close()
	}

	book, err := h.bookSvc.CreateBook(c.Request().Context(), p, reader(img))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, MsgBookCreated, book)
}

// UpdateBook godoc
// @Summary      Update book
// @Description  replaces all fields; without a new image the stored one is kept
// @Tags         books
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true   "book id"
// @Param        title        formData  string  true   "title"
// @Param        description  formData  string  true   "description"
// @Param        author       formData  string  true   "author"
// @Param        rating       formData  number  true   "rating"
// @Param        image        formData  file    false  "cover"
// @Success      200  {object}  response.Envelope{data=model.Book}
// @Failure      400  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	p, err := bindBook(c)
	if err != nil {
		return response.BadRequest(c, bindMessage(err))
	}
	img, err := formImage(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	if img != nil {
		defer img.Close()
	}

	book, err := h.bookSvc.UpdateBook(c.Request().Context(), c.Param("id"), p, reader(img))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, MsgBookUpdated, book)
}

// DeleteBook godoc
// @Summary   Delete book
// @Tags      books
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "book id"
// @Success   200  {object}  response.Envelope
// @Failure   404  {object}  response.ErrorBody
// @Router    /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	if err := h.bookSvc.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, MsgBookDeleted, nil)
}

// bindBook reads the book fields from a JSON body or from the form. A field
// the client did not send stays nil, an empty one points at "".
func bindBook(c echo.Context) (model.BookPayload, error) {
	var p model.BookPayload
	if isJSON(c) {
		err := c.Bind(&p)
		return p, err
	}
	if _, err := c.FormParams(); err != nil {
		return p, err
	}
	form := c.Request().PostForm
	p.Title = formValue(form, "title")
	p.Description = formValue(form, "description")
	p.Author = formValue(form, "author")
	p.Image = formValue(form, "image")
	p.Rating = formValue(form, "rating")
	return p, nil
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func formValue(form url.Values, key string) *string {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

// formImage opens the uploaded cover. A request without one gives nil.
func formImage(c echo.Context) (multipart.File, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read image")
	}
	return fh.Open()
}

// reader keeps a nil file a nil interface.
func reader(f multipart.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
