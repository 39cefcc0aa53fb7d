package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validation rule values
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// HandlePattern allows letters, digits, dots and underscores
	HandlePattern = `^[a-zA-Z0-9._]{3,30}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 150

	// MaxImageSize is the upload limit for avatars and publication media
	MaxImageSize int64 = 5 << 20
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email  *regexp.Regexp
	Handle *regexp.Regexp
}{
	Email:  regexp.MustCompile(EmailPattern),
	Handle: regexp.MustCompile(HandlePattern),
}

// AllowedImageTypes are the accepted media content types
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report wire names ("contenido") instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return IsValidHandle(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return v
}

// Struct validates a struct with the shared validator instance
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// IsValidEmail checks the lowercase email shape
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(email))
}

// IsValidHandle checks the public handle shape
func IsValidHandle(handle string) bool {
	return CompiledPatterns.Handle.MatchString(handle)
}

// IsStrongPassword requires the minimum length, a letter and a digit
func IsStrongPassword(password string) bool {
	if len(password) < PasswordMinLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// HasAllowedDomain reports whether email ends with one of the "@domain" suffixes
func HasAllowedDomain(email string, domains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, domain := range domains {
		if strings.HasSuffix(email, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// IsAllowedImageType reports whether the content type is an accepted image type
func IsAllowedImageType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	return AllowedImageTypes[ct]
}

// FieldMessage turns a validator error into a short message for the first failing field
func FieldMessage(err error) (field, message string) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "", err.Error()
	}
	e := verrs[0]
	field = e.Field()

	switch e.Tag() {
	case "required":
		return field, field + " is required"
	case "min":
		return field, field + " must be at least " + e.Param() + " characters"
	case "max":
		return field, field + " must be at most " + e.Param() + " characters"
	case "email":
		return field, field + " must be a valid email address"
	case "uuid", "uuid4":
		return field, field + " must be a valid identifier"
	case "handle":
		return field, field + " may only contain letters, digits, dots and underscores (3-30)"
	case "password":
		return field, field + " must have at least 8 characters including a letter and a digit"
	default:
		return field, field + " validation failed: " + e.Tag()
	}
}
