package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"abc12345", nil},
		{"Pässwörd1", nil},
		{"short1", ErrPasswordTooShort},
		{"12345678", ErrPasswordNoLetter},
		{"abcdefgh", ErrPasswordNoDigit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CheckPassword(tt.password), tt.password)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@college.edu"))
	assert.True(t, IsValidEmail(" Ada.Lovelace+events@Example.Studio "))
	assert.False(t, IsValidEmail("ada@"))
	assert.False(t, IsValidEmail("not an email"))
	assert.ErrorIs(t, CheckEmail("x"), ErrEmailFormat)
}

func TestCheckName(t *testing.T) {
	assert.NoError(t, CheckName("MIT"))
	assert.ErrorIs(t, CheckName(" a "), ErrNameLength)
}

func TestCheckOptionalURL(t *testing.T) {
	assert.NoError(t, CheckOptionalURL(""))
	assert.NoError(t, CheckOptionalURL("https://careers.example.com/apply"))
	assert.ErrorIs(t, CheckOptionalURL("ftp://files.example.com"), ErrURLFormat)
	assert.ErrorIs(t, CheckOptionalURL("example.com/jobs"), ErrURLFormat)
}

func TestStringValidationOptional(t *testing.T) {
	assert.True(t, NewStringValidation("").WithRequired(false).WithMinLength(3).Validate())
	assert.False(t, NewStringValidation("").Validate())
	assert.False(t, NewStringValidation("toolong").WithMaxLength(3).Validate())
}
