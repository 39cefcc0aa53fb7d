package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/uniconnect/api/internal/pkg/apperrors"
	"github.com/uniconnect/api/internal/pkg/validation"
)

// BindJSON decodes the request body into obj and runs its validate tags.
// On failure it writes a 400 response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, apperrors.NewBadRequestError("invalid request body"))
		return false
	}
	return validate(c, obj)
}

// Bind is BindJSON for bodies that may also arrive as multipart forms
func Bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		HandleAPIError(c, apperrors.NewBadRequestError("invalid request body"))
		return false
	}
	return validate(c, obj)
}

func validate(c *gin.Context, obj interface{}) bool {
	if err := validation.Struct(obj); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			HandleAPIError(c, err)
			return false
		}
		field, message := validation.FieldMessage(verrs)
		HandleAPIError(c, apperrors.NewFieldError(field, message))
		return false
	}
	return true
}
