package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Bodies are flat JSON objects keyed by "message" plus the payload fields
// the storefront clients read directly.

type MessageBody struct {
	Message string `json:"message"`
}

func SuccessResponse(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

func MessageResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageBody{Message: message})
}

func CreatedResponse(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, MessageBody{Message: message})
}

func InternalServerErrorResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, ErrInternalServer)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = ErrUnauthorized
	}
	ErrorResponse(c, http.StatusUnauthorized, message)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = ErrForbidden
	}
	ErrorResponse(c, http.StatusForbidden, message)
}

func NotFoundResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

type PaginatedBody struct {
	Items      interface{}     `json:"items"`
	Pagination *PaginationMeta `json:"pagination"`
}

func PaginatedResponse(c *gin.Context, items interface{}, meta *PaginationMeta) {
	c.JSON(http.StatusOK, PaginatedBody{Items: items, Pagination: meta})
}
