package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an application error rendered to clients as {message, error?}.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error. A non-nil err is exposed to the client as the detail.
func New(code int, message string, err error) *Error {
	e := &Error{Code: code, Message: message, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func BadRequest(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string, err error) *Error {
	return New(http.StatusConflict, message, err)
}

// Internal hides err from the client; it stays available through Unwrap for logging.
func Internal(message string, err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: message, Err: err}
}

// Respond writes err as JSON and aborts the chain. Errors that are not *Error become 500s.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("Internal server error", err)
	}
	c.AbortWithStatusJSON(appErr.Code, appErr)
}

// ErrorMiddleware renders the last error attached with c.Error when no response was written.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		Respond(c, c.Errors.Last().Err)
	}
}
