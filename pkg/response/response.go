package response

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	MsgSuccess      = "Success"
	MsgBadRequest   = "Bad Request"
	MsgNotFound     = "Not Found"
	MsgUnauthorized = "Unauthorized"
	MsgInternal     = "Internal server error!"
)

// Envelope wraps every response that carries data.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// ErrorBody is the body of every response without data.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func NewEnvelope(status int, message string, data interface{}) Envelope {
	return Envelope{StatusCode: status, Message: message, Data: data}
}

func NewErrorBody(message string, status ...int) ErrorBody {
	code := http.StatusInternalServerError
	if len(status) > 0 && status[0] != 0 {
		code = status[0]
	}
	return ErrorBody{Status: code, Message: message}
}

func Send(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, NewEnvelope(status, message, data))
}

func Success(c echo.Context, message string, data interface{}) error {
	return Send(c, http.StatusOK, message, data)
}

func Created(c echo.Context, message string, data interface{}) error {
	return Send(c, http.StatusCreated, message, data)
}

// Error writes {status, message}; status defaults to 500.
func Error(c echo.Context, message string, status ...int) error {
	body := NewErrorBody(message, status...)
	return c.JSON(body.Status, body)
}

func BadRequest(c echo.Context, message string) error {
	if message == "" {
		message = MsgBadRequest
	}
	return Error(c, message, http.StatusBadRequest)
}

func NotFound(c echo.Context, message string) error {
	if message == "" {
		message = MsgNotFound
	}
	return Error(c, message, http.StatusNotFound)
}

func Unauthorized(c echo.Context) error {
	return Error(c, MsgUnauthorized, http.StatusUnauthorized)
}

// HTTPErrorHandler renders errors escaping handlers and middleware
// (unknown routes, bind failures, rate limiting, recovered panics) in the
// same shape as Error. Messages of 5xx errors are never sent to the client.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := MsgInternal

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if status < http.StatusInternalServerError {
				msg = httpErrorMessage(he)
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = Error(c, msg, status)
		}
		if err != nil {
			log.Error("write error response", zap.Error(err))
		}
	}
}

func httpErrorMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}
