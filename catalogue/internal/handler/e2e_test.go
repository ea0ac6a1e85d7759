package handler_test

import (
	"bytes"
	"encoding/json"
	stdimage "image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/events"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/handler"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/image"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/model"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/repository"
	"github.com/Astemirdum/catalogue-service/catalogue/internal/service"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Status     int    `json:"status"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
}

type app struct {
	t      *testing.T
	e      *echo.Echo
	token  string
	images *image.Store
}

func newApp(t *testing.T, secret string) *app {
	t.Helper()
	log := zap.NewNop()
	images, err := image.NewStore(t.TempDir(), image.Options{MaxWidth: 200, MaxHeight: 200}, log)
	require.NoError(t, err)
	svc := service.NewService(repository.NewMemoryRepository(log), images, events.NewNoop(), log)
	h := handler.New(svc, svc, log)

	a := &app{
		t:      t,
		e:      h.NewRouter(handler.RouterConfig{ImageDir: images.Dir(), JWTSecret: secret, BodyLimit: "2M"}),
		images: images,
	}
	if secret != "" {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "librarian",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		a.token, err = tok.SignedString([]byte(secret))
		require.NoError(t, err)
	}
	return a
}

func (a *app) do(r *http.Request) *httptest.ResponseRecorder {
	a.t.Helper()
	if a.token != "" {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.e.ServeHTTP(w, r)
	return w
}

func (a *app) form(method, target string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	a.t.Helper()
	var img []byte
	if withImage {
		img = coverPNG(a.t)
	}
	buf, contentType := multipartBody(a.t, fields, img)
	r := httptest.NewRequest(method, target, buf)
	r.Header.Set(echo.HeaderContentType, contentType)
	return a.do(r)
}

func (a *app) json(method, target, reqBody string) *httptest.ResponseRecorder {
	a.t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(reqBody))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return a.do(r)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 16, 16))
	img.Set(2, 2, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bookFields(title, rating string) map[string]string {
	return map[string]string{"title": title, "description": "desc", "author": "author", "rating": rating}
}

func TestE2E_Books(t *testing.T) {
	t.Parallel()
	a := newApp(t, "")

	w := a.form(http.MethodPost, "/books", bookFields("Test", "5"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Book](t, w)
	require.Equal(t, 201, created.StatusCode)
	require.Equal(t, "Book Created!", created.Message)
	require.Equal(t, "Test", created.Data.Title)
	require.True(t, strings.HasSuffix(created.Data.Image, ".jpg"))
	require.Equal(t, "/image/"+image.DeriveFilename("Test"), created.Data.Image)

	w = a.do(httptest.NewRequest(http.MethodGet, created.Data.Image, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []byte{0xff, 0xd8}, w.Body.Bytes()[:2])

	w = a.form(http.MethodPut, "/books/"+created.Data.ID, bookFields("Test", "3"), false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Book](t, w)
	require.Equal(t, "Book Updated!", updated.Message)
	require.Equal(t, 3.0, updated.Data.Rating)
	require.Equal(t, created.Data.Image, updated.Data.Image)

	w = a.do(httptest.NewRequest(http.MethodGet, "/books?title=Test", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, created.Data.ID, decode[model.Book](t, w).Data.ID)

	w = a.do(httptest.NewRequest(http.MethodGet, "/books?title=NonExistent", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"statusCode":200,"message":"Success","data":null}`, w.Body.String())

	w = a.do(httptest.NewRequest(http.MethodGet, "/books", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]model.Book](t, w).Data, 1)

	w = a.do(httptest.NewRequest(http.MethodDelete, "/books/"+created.Data.ID, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Book deleted!", decode[any](t, w).Message)

	w = a.do(httptest.NewRequest(http.MethodDelete, "/books/"+created.Data.ID, http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"status":404,"message":"Book not found!"}`, w.Body.String())

	w = a.do(httptest.NewRequest(http.MethodGet, created.Data.Image, http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestE2E_BookValidation(t *testing.T) {
	t.Parallel()
	a := newApp(t, "")

	tests := []struct {
		name      string
		fields    map[string]string
		withImage bool
		message   string
	}{
		{name: "no title", fields: map[string]string{"description": "d", "author": "a", "rating": "1"}, withImage: true, message: `"title" is required`},
		{name: "no description", fields: map[string]string{"title": "t", "author": "a", "rating": "1"}, withImage: true, message: `"description" is required`},
		{name: "no author", fields: map[string]string{"title": "t", "description": "d", "rating": "1"}, withImage: true, message: `"author" is required`},
		{name: "no rating", fields: map[string]string{"title": "t", "description": "d", "author": "a"}, withImage: true, message: `"rating" is required`},
		{name: "empty title", fields: bookFields("", "1"), withImage: true, message: `"title" is not allowed to be empty`},
		{name: "blank author", fields: map[string]string{"title": "t", "description": "d", "author": " ", "rating": "1"}, withImage: true, message: `"author" is not allowed to be empty`},
		{name: "text rating", fields: bookFields("t", "high"), withImage: true, message: `"rating" must be a number`},
		{name: "empty rating", fields: bookFields("t", ""), withImage: true, message: `"rating" must be a number`},
		{name: "overflowing rating", fields: bookFields("t", "1"+strings.Repeat("0", 400)), withImage: true, message: `"rating" must be a number`},
		{name: "no image", fields: bookFields("t", "1"), message: `"image" is required`},
	}
	for _, tt := range tests {
		w := a.form(http.MethodPost, "/books", tt.fields, tt.withImage)
		require.Equal(t, http.StatusBadRequest, w.Code, tt.name)
		env := decode[any](t, w)
		require.Equal(t, 400, env.Status, tt.name)
		require.Equal(t, tt.message, env.Message, tt.name)
	}

	w := a.form(http.MethodPut, "/books/00000000-0000-0000-0000-000000000000", bookFields("t", "1"), false)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Book not found!", decode[any](t, w).Message)

	w = a.form(http.MethodPost, "/books", bookFields("Scaled", "1e2"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, 100.0, decode[model.Book](t, w).Data.Rating)
}

func TestE2E_SharedCover(t *testing.T) {
	t.Parallel()
	a := newApp(t, "")

	w := a.form(http.MethodPost, "/books", bookFields("Dune", "5"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dune := decode[model.Book](t, w).Data
	w = a.form(http.MethodPost, "/books", bookFields("dune!", "4"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	twin := decode[model.Book](t, w).Data
	require.Equal(t, "/image/dune.jpg", dune.Image)
	require.Equal(t, dune.Image, twin.Image)

	w = a.do(httptest.NewRequest(http.MethodDelete, "/books/"+twin.ID, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(httptest.NewRequest(http.MethodGet, dune.Image, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(httptest.NewRequest(http.MethodDelete, "/books/"+dune.ID, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	w = a.do(httptest.NewRequest(http.MethodGet, dune.Image, http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestE2E_Reviews(t *testing.T) {
	t.Parallel()
	a := newApp(t, "")

	w := a.form(http.MethodPost, "/books", bookFields("Reviewed", "4"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookID := decode[model.Book](t, w).Data.ID

	w = a.do(httptest.NewRequest(http.MethodGet, "/books/"+bookID+"/reviews", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"statusCode":200,"message":"Success","data":[]}`, w.Body.String())

	w = a.json(http.MethodPost, "/books/"+bookID+"/reviews", `{"reviewer":"janedoe","review":"good"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `"rating" is required`, decode[any](t, w).Message)

	w = a.json(http.MethodPost, "/books/missing/reviews", `{"reviewer":"janedoe","review":"good","rating":4}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Book not found!", decode[any](t, w).Message)

	w = a.json(http.MethodPost, "/books/"+bookID+"/reviews", `{"reviewer":"janedoe","review":"good","rating":4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Review](t, w)
	require.Equal(t, "Review Created!", created.Message)
	require.Equal(t, "janedoe", created.Data.Reviewer)
	reviewID := created.Data.ID

	w = a.do(httptest.NewRequest(http.MethodGet, "/books/"+bookID+"/reviews/"+reviewID, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, reviewID, decode[model.Review](t, w).Data.ID)

	for _, tt := range []struct {
		target  string
		message string
	}{
		{target: "/books/missing/reviews/missing", message: "No book and review are found!"},
		{target: "/books/missing/reviews/" + reviewID, message: "Book not found, cannot update review!"},
		{target: "/books/" + bookID + "/reviews/missing", message: "Book found, but the review is not found!"},
	} {
		w = a.json(http.MethodPut, tt.target, `{"reviewer":"x","review":"y","rating":1}`)
		require.Equal(t, http.StatusNotFound, w.Code, tt.target)
		require.Equal(t, tt.message, decode[any](t, w).Message, tt.target)

		w = a.do(httptest.NewRequest(http.MethodDelete, tt.target, http.NoBody))
		require.Equal(t, http.StatusNotFound, w.Code, tt.target)
		require.Equal(t, tt.message, decode[any](t, w).Message, tt.target)
	}

	w = a.json(http.MethodPut, "/books/"+bookID+"/reviews/"+reviewID, `{"reviewer":"janedoe","review":"","rating":2}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `"review" is not allowed to be empty`, decode[any](t, w).Message)

	w = a.json(http.MethodPut, "/books/"+bookID+"/reviews/"+reviewID, `{"reviewer":"janedoe","rating":2}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `"review" is required`, decode[any](t, w).Message)

	w = a.json(http.MethodPut, "/books/"+bookID+"/reviews/"+reviewID,
		`{"reviewer":"janedoe","review":"huge","rating":1`+strings.Repeat("0", 400)+`}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, `"rating" must be a number`, decode[any](t, w).Message)

	w = a.json(http.MethodPut, "/books/"+bookID+"/reviews/"+reviewID, `{"reviewer":"janedoe","review":"scaled","rating":1e2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 100.0, decode[model.Review](t, w).Data.Rating)

	w = a.json(http.MethodPut, "/books/"+bookID+"/reviews/"+reviewID, `{"reviewer":"janedoe","review":"better","rating":"4.5"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Review](t, w)
	require.Equal(t, "Review Updated!", updated.Message)
	require.Equal(t, 4.5, updated.Data.Rating)

	w = a.do(httptest.NewRequest(http.MethodDelete, "/books/"+bookID+"/reviews/"+reviewID, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Review Deleted!", decode[any](t, w).Message)
}

func TestE2E_Auth(t *testing.T) {
	t.Parallel()
	a := newApp(t, "s3cret")

	w := a.form(http.MethodPost, "/books", bookFields("Secured", "5"), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	a.token = ""
	w = a.form(http.MethodPost, "/books", bookFields("Anonymous", "5"), true)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"status":401,"message":"Unauthorized"}`, w.Body.String())

	w = a.do(httptest.NewRequest(http.MethodGet, "/books", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]model.Book](t, w).Data, 1)
}

func TestE2E_Health(t *testing.T) {
	t.Parallel()
	a := newApp(t, "")
	w := a.do(httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}
