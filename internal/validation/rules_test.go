package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/webstack/webstack/internal/errors"
)

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Passw0rd!", false},
		{"too short", "P0w!", true},
		{"missing uppercase", "passw0rd!", true},
		{"missing lowercase", "PASSW0RD!", true},
		{"missing number", "Password!", true},
		{"missing special", "Passw0rd1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordStrength_NonString(t *testing.T) {
	rule := PasswordStrength{MinLength: 8}
	assert.Error(t, rule.Validate(12345))
}

func TestEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"alice@example.com", false},
		{"alice.smith+tag@sub.example.co", false},
		{"not-an-email", true},
		{"@example.com", true},
		{"alice@", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := Email.Validate(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("hello"))
	assert.Error(t, NotBlank.Validate("   "))
	// empty strings are skipped by string rules; Required handles those
	assert.NoError(t, NotBlank.Validate(""))
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(apperrors.New("name is required"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "name is required")
}
