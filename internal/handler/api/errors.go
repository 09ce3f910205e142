package api

import (
	"errors"
	"net/http"

	resdto "shuttle-service/internal/handler/dto/response"
	"shuttle-service/internal/handler/httperr"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// Reached only when a handler runs without RequireAuth in front of it.
var errMissingActor = errs.New("authenticated actor missing from context")

// respondError maps usecase sentinels to HTTP statuses. Anything unmapped is
// an opaque 500 so storage details never leak into responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Validation failed", nil)
	case errors.Is(err, errs.ErrNotificationNotResendable):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Notification cannot be resent", nil)
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, commands.ErrAuthenticationFailed),
		errors.Is(err, commands.ErrTokenValidation):
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid email or password", nil)
	case errors.Is(err, commands.ErrUserInactive):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Account is inactive", nil)
	case errors.Is(err, errs.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Forbidden", nil)
	case errors.Is(err, errs.ErrSubscriptionNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Subscription not found", nil)
	case errors.Is(err, errs.ErrTripNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Trip not found", nil)
	case errors.Is(err, errs.ErrTaskNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Task not found", nil)
	case errors.Is(err, errs.ErrNotificationNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Notification not found", nil)
	case errors.Is(err, errs.ErrUserNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "User not found", nil)
	case errors.Is(err, errs.ErrSubscriptionConflict):
		var conflict *commands.SubscriptionConflictError
		var detail any
		if errors.As(err, &conflict) && conflict.Existing != nil {
			detail = resdto.FromSubscriptionSnapshot(conflict.Existing)
		}
		httperr.AbortWithError(c, http.StatusConflict, err, "Active subscription already exists", detail)
	case errors.Is(err, errs.ErrPreconditionFailed):
		httperr.AbortWithError(c, http.StatusPreconditionFailed, err, "Resource was modified; refresh and retry", nil)
	case errors.Is(err, errs.ErrPreconditionRequired):
		httperr.AbortWithError(c, http.StatusPreconditionRequired, err, "If-Match header is required", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
