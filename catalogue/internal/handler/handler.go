package handler

import (
	"fmt"
	"net/http"

	"github.com/Astemirdum/catalogue-service/catalogue/internal/errs"
	md "github.com/Astemirdum/catalogue-service/pkg/middleware"
	"github.com/Astemirdum/catalogue-service/pkg/response"
	"github.com/Astemirdum/catalogue-service/pkg/validate"
	_ "github.com/Astemirdum/catalogue-service/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const (
	MsgBookCreated   = "Book Created!"
	MsgBookUpdated   = "Book Updated!"
	MsgBookDeleted   = "Book deleted!"
	MsgReviewCreated = "Review Created!"
	MsgReviewUpdated = "Review Updated!"
	MsgReviewDeleted = "Review Deleted!"
)

type Handler struct {
	bookSvc   BookService
	reviewSvc ReviewService
	log       *zap.Logger
}

func New(bookSvc BookService, reviewSvc ReviewService, log *zap.Logger) *Handler {
	return &Handler{
		bookSvc:   bookSvc,
		reviewSvc: reviewSvc,
		log:       log.Named("handler"),
	}
}

type RouterConfig struct {
	// ImageDir is served under /image.
	ImageDir string
	// JWTSecret guards the write routes when not empty.
	JWTSecret string
	BodyLimit string
}

func (h *Handler) NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HTTPErrorHandler = response.HTTPErrorHandler(h.log)
	e.Validator = validate.NewCustomValidator()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	if cfg.ImageDir != "" {
		api.Static("/image", cfg.ImageDir)
	}

	var write []echo.MiddlewareFunc
	if cfg.BodyLimit != "" {
		write = append(write, middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.JWTSecret != "" {
		write = append(write, md.JwtAuthentication([]byte(cfg.JWTSecret), h.log))
	}

	api.GET("/books", h.GetBooks)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook, write...)
	api.PUT("/books/:id", h.UpdateBook, write...)
	api.DELETE("/books/:id", h.DeleteBook, write...)

	api.GET("/books/:id/reviews", h.GetReviews)
	api.GET("/books/:id/reviews/:reviewId", h.GetReview)
	api.POST("/books/:id/reviews", h.CreateReview, write...)
	api.PUT("/books/:id/reviews/:reviewId", h.UpdateReview, write...)
	api.DELETE("/books/:id/reviews/:reviewId", h.DeleteReview, write...)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// fail renders err. Validation and lookup failures carry their client message,
// anything else is logged and hidden behind a 500.
func (h *Handler) fail(c echo.Context, err error) error {
	var (
		fieldErr    *validate.FieldError
		badRequest  *errs.BadRequestError
		notFoundErr *errs.NotFoundError
	)
	switch {
	case errors.As(err, &fieldErr):
		return response.BadRequest(c, fieldErr.Message)
	case errors.As(err, &badRequest):
		return response.BadRequest(c, badRequest.Message)
	case errors.As(err, &notFoundErr):
		return response.NotFound(c, notFoundErr.Message)
	}
	h.log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return response.Error(c, response.MsgInternal)
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}
