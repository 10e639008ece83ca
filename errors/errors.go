package errors

import (
	"net/http"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error carries a user-facing message and the http status it maps to.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrNotFound            = New("resource not found", http.StatusNotFound)
	ErrBadRequest          = New("bad request", http.StatusBadRequest)
	ErrUnauthorized        = New("unauthorized", http.StatusUnauthorized)
	ErrInsufficientCredits = New("insufficient credits", http.StatusPaymentRequired)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
	InActiveUserError      = New("user is inactive", http.StatusUnauthorized)
)

// GetUniqueContraintError maps postgres unique-violation errors from signup
// to a friendly message.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("email already exists", http.StatusBadRequest)
	case strings.Contains(msg, "cpf"):
		return New("cpf already exists", http.StatusBadRequest)
	case strings.Contains(msg, "phone"):
		return New("phone already exists", http.StatusBadRequest)
	default:
		return New("record already exists", http.StatusBadRequest)
	}
}

// ErrorHandler is the gin-rate-limit error handler.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"errors": "too many requests, try again in " + time.Until(info.ResetTime).String(),
	})
}
