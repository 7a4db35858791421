package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("jane.doe@example.com"))
	assert.True(t, ValidateEmail("a+b@sub.example.co"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("@example.com"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+14155552671"))
	assert.True(t, ValidatePhone("14155552671"))
	assert.True(t, ValidatePhone(""), "empty phone is optional")
	assert.False(t, ValidatePhone("0123"), "leading zero not allowed")
	assert.False(t, ValidatePhone("+1 415 555"), "spaces not allowed")
	assert.False(t, ValidatePhone("abc"))
}

func TestValidateName(t *testing.T) {
	ok, _ := ValidateName("Jane Doe")
	assert.True(t, ok)

	ok, msg := ValidateName("J")
	assert.False(t, ok)
	assert.Equal(t, "Name must be at least 2 characters", msg)

	ok, msg = ValidateName("Jane123")
	assert.False(t, ok)
	assert.Equal(t, "Name can only contain letters and spaces", msg)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	ok, msg = ValidateName(string(long))
	assert.False(t, ok)
	assert.Equal(t, "Name must be at most 50 characters", msg)
}

func TestValidatePasswordStrength(t *testing.T) {
	ok, violations := ValidatePasswordStrength("Str0ng!pass")
	assert.True(t, ok)
	assert.Empty(t, violations)

	// Every violated rule must be reported, not just the first
	ok, violations = ValidatePasswordStrength("abc")
	assert.False(t, ok)
	assert.Len(t, violations, 4)

	ok, violations = ValidatePasswordStrength("alllowercase1!")
	assert.False(t, ok)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "uppercase")

	ok, violations = ValidatePasswordStrength("NoNumberHere!")
	assert.False(t, ok)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "number")
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello \x00"))
	assert.Equal(t, "a b", SanitizeString("a b"))
	assert.Equal(t, "", SanitizeString("\x00\x00"))
}
