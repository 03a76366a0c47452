package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const genericInternalError = "internal server error"

// Meta is the pagination block returned alongside list data.
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
}

// pagedResponse is the envelope for paginated list responses.
type pagedResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// OK sends a 200 response with the given body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// List sends a 200 response wrapping a bare array with no pagination
// metadata (resources that do not declare a total-count need).
func List(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Paged sends a paginated list envelope.
func Paged(c *gin.Context, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, pagedResponse{Data: data, Meta: meta})
}

// Created sends a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message sends a 200 confirmation message (delete/reorder acknowledgements
// return a human-readable message, not the affected entity).
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	abortWith(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	abortWith(c, http.StatusUnauthorized, "authentication required")
}

// Forbidden sends a 403 error response.
func Forbidden(c *gin.Context) {
	abortWith(c, http.StatusForbidden, "insufficient permissions")
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	abortWith(c, http.StatusNotFound, message)
}

// InternalError sends a 500 with the error's message, or a generic phrase
// when the message is empty.
func InternalError(c *gin.Context, err error) {
	msg := genericInternalError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	abortWith(c, http.StatusInternalServerError, msg)
}

// Conflict sends a 409 error response.
func Conflict(c *gin.Context, message string) {
	abortWith(c, http.StatusConflict, message)
}

// MethodNotAllowed sends a 405 error response.
func MethodNotAllowed(c *gin.Context) {
	abortWith(c, http.StatusMethodNotAllowed, "method not allowed")
}

// TooManyRequests sends a 429 error response.
func TooManyRequests(c *gin.Context, message string) {
	abortWith(c, http.StatusTooManyRequests, message)
}

// abortWith emits the uniform error body. All error responses share the
// shape {"message": string}.
func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
