// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uniconnect/api/internal/app/services"
	"github.com/uniconnect/api/internal/middleware"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// caller returns the authenticated identity; it writes 401 and returns false
// when the request was not authenticated
func caller(ctx *gin.Context) (services.Caller, bool) {
	accountID, ok := middleware.GetAccountID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenNotFound)
		return services.Caller{}, false
	}
	role, _ := middleware.GetRole(ctx)
	return services.Caller{ID: accountID, Role: role}, true
}

// optionalFile returns the uploaded file under field, or nil when the request
// is not multipart or carries no such file
func optionalFile(ctx *gin.Context, field string) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		return nil, nil
	}
	fh, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewFieldError(field, "the uploaded file could not be read")
	}
	return fh, nil
}
