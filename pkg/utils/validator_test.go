package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ana.perez@example.com"))
	assert.NoError(t, ValidateEmail("a+tag@sub.example.co"))
	assert.Error(t, ValidateEmail("ana@"))
	assert.Error(t, ValidateEmail("not an email"))
	assert.Error(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"+584121234567", true},
		{"0412-123-4567", true},
		{"(0212) 555.12.34", true},
		{"12345", false},
		{"+58 412 abc 4567", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+584121234567", NormalizePhone(" +58 (412) 123-4567 "))
}

func TestValidatePolicyNumber(t *testing.T) {
	assert.NoError(t, ValidatePolicyNumber("POL-2024/001"))
	assert.Error(t, ValidatePolicyNumber("P"))
	assert.Error(t, ValidatePolicyNumber("-abc"))
	assert.Error(t, ValidatePolicyNumber("has space"))
}

func TestValidateCheckDigit(t *testing.T) {
	assert.NoError(t, ValidateCheckDigit(""))
	assert.NoError(t, ValidateCheckDigit("7"))
	assert.Error(t, ValidateCheckDigit("12"))
	assert.Error(t, ValidateCheckDigit("-"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hola mundo", SanitizeString("  hola\x00 mundo\x7f "))
}
