package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "SecurePass1!", false},
		{"Exactly Min Length", "Abcdef1!", false},
		{"Exactly Max Length", "A" + strings.Repeat("b", 97) + "1!", false},
		{"Too Short", "Sml1!ab", true},
		{"Too Long", "A" + strings.Repeat("b", 98) + "1!", true},
		{"No Upper", "securepass1!", true},
		{"No Lower", "SECUREPASS1!", true},
		{"No Digit", "SecurePass!!", true},
		{"No Special", "SecurePass123", true},
		{"Special Outside Allowed Set", "SecurePass1#", true},
		{"Digits And Special Only", "12345678!@", true},
		{"Unicode Characters", "ÅngstromPass1!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
