package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"storefront/internal/middleware"
	"storefront/internal/services"
	"storefront/internal/utils"
	"storefront/internal/validators"
)

// respondError writes a service error with the status for its kind.
// Internal failures never expose their cause.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch services.KindOf(err) {
	case services.KindUnauthenticated:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict, services.KindInvalidInput:
		status = http.StatusBadRequest
	case services.KindRateLimited:
		status = http.StatusTooManyRequests
	}
	utils.ErrorResponse(c, status, services.MessageOf(err))
}

// bindJSON decodes the body into request and runs its validate tags. An
// empty body is accepted when optional is set.
func bindJSON(c *gin.Context, request interface{}, optional bool) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			utils.BadRequestResponse(c, "Invalid request body")
			return false
		}
	}

	if err := validators.Validate(request); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return false
	}
	return true
}

// actingUser returns the authenticated user. A userId sent in the body is
// accepted only when it names that same user.
func actingUser(c *gin.Context, bodyUserID string) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return "", false
	}
	if bodyUserID != "" && bodyUserID != userID {
		utils.ForbiddenResponse(c, utils.ErrIdentityMismatch)
		return "", false
	}
	return userID, true
}
