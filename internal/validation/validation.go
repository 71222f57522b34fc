// Package validation runs the client-side form checks before a mutation is
// submitted. These are cosmetic constraints the server re-enforces; failing
// here just means the request is never sent and the message is shown next
// to the offending field.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return v
}

// strongPassword requires one uppercase letter, one digit and one special
// character; length is checked separately so each rule gets its own message.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special = true
		}
	}
	return upper && digit && special
}

// FieldErrors maps field names to inline messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// SignupForm mirrors the signup page's fields.
type SignupForm struct {
	FirstName       string `validate:"required,min=2"`
	LastName        string `validate:"required,min=2"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8,strongpassword"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// LoginForm mirrors the login page's fields.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// PostForm mirrors the post create/edit modal.
type PostForm struct {
	Title   string `validate:"required,max=120"`
	Content string `validate:"required,max=5000"`
}

const (
	// MaxImages bounds attachments per post.
	MaxImages = 4
	// MaxImageSize bounds one attachment (5 MB).
	MaxImageSize = 5 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ImageMeta is what the form knows about a selected file before upload.
type ImageMeta struct {
	Filename    string
	ContentType string
	Size        int64
}

// Struct validates any of the form types, returning FieldErrors on failure.
func Struct(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// Images validates the attachment set for a post.
func Images(images []ImageMeta) error {
	if len(images) > MaxImages {
		return FieldErrors{"Images": fmt.Sprintf("at most %d images per post", MaxImages)}
	}
	for _, img := range images {
		if img.Size > MaxImageSize {
			return FieldErrors{"Images": fmt.Sprintf("%s is larger than 5 MB", img.Filename)}
		}
		if !allowedImageTypes[img.ContentType] {
			return FieldErrors{"Images": fmt.Sprintf("%s: unsupported type %s", img.Filename, img.ContentType)}
		}
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return requiredMessage(fe.Field())
	case "min":
		if fe.Field() == "Password" {
			return "Password must be at least 8 characters"
		}
		return "Name too short"
	case "max":
		return fmt.Sprintf("%s too long", fe.Field())
	case "email":
		return "Invalid email address"
	case "eqfield":
		return "Passwords do not match"
	case "strongpassword":
		return "Password must contain an uppercase letter, a number and a special character"
	default:
		return "Invalid value"
	}
}

func requiredMessage(field string) string {
	switch field {
	case "Password":
		return "Password is required"
	case "Email":
		return "Email is required"
	default:
		return field + " is required"
	}
}
