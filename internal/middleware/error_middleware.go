package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid request"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Authentication required"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email not verified"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource already exists"},
	{apperrors.ErrUpstreamFailure, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "External service failure"},
}

// HandleAPIError maps err to a status code and aborts with the error envelope
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		message := m.message
		if custom, ok := apperrors.MessageOf(err); ok {
			message = custom
		}

		detail := dto.NewErrorDetail(m.code, message)
		if field := apperrors.FieldOf(err); field != "" {
			detail = detail.WithField(field)
		}
		if m.status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Upstream failure")
		}

		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("Unhandled error")

	detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
}
