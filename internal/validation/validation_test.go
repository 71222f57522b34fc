package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupForm {
	return SignupForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
	}
}

func TestSignupFormValid(t *testing.T) {
	assert.NoError(t, Struct(validSignup()))
}

func TestSignupFormFieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SignupForm)
		field   string
		message string
	}{
		{"short first name", func(f *SignupForm) { f.FirstName = "A" }, "FirstName", "Name too short"},
		{"short last name", func(f *SignupForm) { f.LastName = "L" }, "LastName", "Name too short"},
		{"bad email", func(f *SignupForm) { f.Email = "not-an-email" }, "Email", "Invalid email address"},
		{"short password", func(f *SignupForm) {
			f.Password = "S!1a"
			f.ConfirmPassword = "S!1a"
		}, "Password", "Password must be at least 8 characters"},
		{"no uppercase", func(f *SignupForm) {
			f.Password = "weakpass1!"
			f.ConfirmPassword = "weakpass1!"
		}, "Password", "Password must contain an uppercase letter, a number and a special character"},
		{"no digit", func(f *SignupForm) {
			f.Password = "Weakpass!"
			f.ConfirmPassword = "Weakpass!"
		}, "Password", "Password must contain an uppercase letter, a number and a special character"},
		{"no special", func(f *SignupForm) {
			f.Password = "Weakpass1"
			f.ConfirmPassword = "Weakpass1"
		}, "Password", "Password must contain an uppercase letter, a number and a special character"},
		{"mismatch", func(f *SignupForm) { f.ConfirmPassword = "Other0!pass" }, "ConfirmPassword", "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validSignup()
			tt.mutate(&form)
			err := Struct(form)
			require.Error(t, err)
			ferrs, ok := err.(FieldErrors)
			require.True(t, ok)
			assert.Equal(t, tt.message, ferrs[tt.field])
		})
	}
}

func TestLoginForm(t *testing.T) {
	assert.NoError(t, Struct(LoginForm{Email: "a@example.com", Password: "x"}))

	err := Struct(LoginForm{Email: "a@example.com"})
	require.Error(t, err)
	assert.Equal(t, "Password is required", err.(FieldErrors)["Password"])
}

func TestPostForm(t *testing.T) {
	assert.NoError(t, Struct(PostForm{Title: "hello", Content: "world"}))

	err := Struct(PostForm{Content: "world"})
	require.Error(t, err)
	assert.Contains(t, err.(FieldErrors)["Title"], "required")
}

func TestImages(t *testing.T) {
	ok := ImageMeta{Filename: "a.jpg", ContentType: "image/jpeg", Size: 1024}
	assert.NoError(t, Images([]ImageMeta{ok, ok}))

	tooMany := []ImageMeta{ok, ok, ok, ok, ok}
	assert.Error(t, Images(tooMany))

	assert.Error(t, Images([]ImageMeta{{Filename: "x.jpg", ContentType: "image/jpeg", Size: MaxImageSize + 1}}))
	assert.Error(t, Images([]ImageMeta{{Filename: "x.pdf", ContentType: "application/pdf", Size: 10}}))
	assert.NoError(t, Images(nil))
}
