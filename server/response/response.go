package response

import (
	"net/http"

	apiError "github.com/amorlink/amorlink/errors"
	"github.com/gin-gonic/gin"
)

// JSON writes the standard response envelope.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	errMessage := ""
	if err != nil {
		errMessage = err.Error()
	}

	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
		"errors":  errMessage,
		"status":  http.StatusText(status),
	})
}

// HandleErrors maps an error to its http status, falling back to 500 for
// anything that is not an apiError.
func HandleErrors(c *gin.Context, err error) {
	if apiErr, ok := err.(*apiError.Error); ok {
		JSON(c, "", apiErr.Status, nil, apiErr)
		return
	}
	JSON(c, "", http.StatusInternalServerError, nil, apiError.ErrInternalServerError)
}
