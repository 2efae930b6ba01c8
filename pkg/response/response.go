package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the minimal error payload for endpoints without a richer
// failure shape.
type ErrorBody struct {
	Error string `json:"error"`
}

// Success sends a 200 response with the payload as-is.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends the payload with the given status. Callers pass a
// well-shaped empty body so clients never have to special-case failures.
func Error(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, data interface{}) {
	Error(c, http.StatusBadRequest, data)
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrorBody{Error: message})
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, data interface{}) {
	Error(c, http.StatusInternalServerError, data)
}
